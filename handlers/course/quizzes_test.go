package course

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skillhub/skillhub-api/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Course{},
		&model.CourseModule{},
		&model.Lesson{},
		&model.Quiz{},
		&model.Question{},
		&model.Answer{},
	)
	require.NoError(t, err)
	return db
}

// setupApp mounts the quiz routes with a middleware stub that injects the
// given user, or no user at all when user is nil.
func setupApp(db *gorm.DB, user *model.User) *fiber.App {
	handler := NewCourseHandler(db, nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals("user", user)
		}
		return c.Next()
	})

	app.Get("/lessons/:lessonId/quiz", handler.GetQuiz)
	app.Post("/lessons/:lessonId/quiz", handler.CreateQuiz)
	app.Put("/quizzes/:id", handler.UpdateQuiz)
	return app
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()
	user := model.User{Email: email, FullName: email, Role: role, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// seedLesson builds a full course/module/lesson chain owned by author.
func seedLesson(t *testing.T, db *gorm.DB, author *model.User, title string) model.Lesson {
	t.Helper()

	category := model.Category{Name: "Programming " + title}
	require.NoError(t, db.Create(&category).Error)

	course := model.Course{AuthorID: author.ID, CategoryID: category.ID, Title: "Course " + title, Level: model.LevelBeginner}
	require.NoError(t, db.Create(&course).Error)

	module := model.CourseModule{CourseID: course.ID, Title: "Module " + title}
	require.NoError(t, db.Create(&module).Error)

	lesson := model.Lesson{ModuleID: module.ID, Title: title}
	require.NoError(t, db.Create(&lesson).Error)
	return lesson
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestGetQuiz_ReturnsTheRequestedLessonsQuiz(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)

	first := seedLesson(t, db, author, "Lesson One")
	second := seedLesson(t, db, author, "Lesson Two")

	require.NoError(t, db.Create(&model.Quiz{LessonID: first.ID, Title: "First Quiz"}).Error)
	require.NoError(t, db.Create(&model.Quiz{LessonID: second.ID, Title: "Second Quiz"}).Error)

	app := setupApp(db, nil)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/lessons/%d/quiz", second.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data model.Quiz `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, second.ID, body.Data.LessonID)
	assert.Equal(t, "Second Quiz", body.Data.Title)
}

func TestGetQuiz_PreloadsQuestionsAndAnswers(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	lesson := seedLesson(t, db, author, "Lesson One")

	quiz := model.Quiz{LessonID: lesson.ID, Title: "Quiz"}
	require.NoError(t, db.Create(&quiz).Error)
	question := model.Question{QuizID: quiz.ID, Text: "What is a goroutine?"}
	require.NoError(t, db.Create(&question).Error)
	require.NoError(t, db.Create(&model.Answer{QuestionID: question.ID, Text: "A lightweight thread", IsCorrect: true}).Error)

	app := setupApp(db, nil)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/lessons/%d/quiz", lesson.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data model.Quiz `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data.Questions, 1)
	require.Len(t, body.Data.Questions[0].Answers, 1)
	assert.True(t, body.Data.Questions[0].Answers[0].IsCorrect)
}

func TestGetQuiz_LessonWithoutQuiz(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	lesson := seedLesson(t, db, author, "Lesson One")

	app := setupApp(db, nil)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/lessons/%d/quiz", lesson.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateQuiz_CourseAuthor(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	lesson := seedLesson(t, db, author, "Lesson One")

	app := setupApp(db, author)
	resp := postJSON(t, app, fmt.Sprintf("/lessons/%d/quiz", lesson.ID), map[string]interface{}{
		"title": "Checkpoint",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var quiz model.Quiz
	require.NoError(t, db.Where("lesson_id = ?", lesson.ID).First(&quiz).Error)
	assert.Equal(t, "Checkpoint", quiz.Title)
}

func TestCreateQuiz_OtherInstructorRejected(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	other := createUser(t, db, "other@skillhub.io", model.RoleInstructor)
	lesson := seedLesson(t, db, author, "Lesson One")

	app := setupApp(db, other)
	resp := postJSON(t, app, fmt.Sprintf("/lessons/%d/quiz", lesson.ID), map[string]interface{}{
		"title": "Checkpoint",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&model.Quiz{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateQuiz_StudentRejected(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	student := createUser(t, db, "student@skillhub.io", model.RoleStudent)
	lesson := seedLesson(t, db, author, "Lesson One")

	app := setupApp(db, student)
	resp := postJSON(t, app, fmt.Sprintf("/lessons/%d/quiz", lesson.ID), map[string]interface{}{
		"title": "Checkpoint",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateQuiz_OnePerLesson(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	lesson := seedLesson(t, db, author, "Lesson One")

	app := setupApp(db, author)
	resp := postJSON(t, app, fmt.Sprintf("/lessons/%d/quiz", lesson.ID), map[string]interface{}{
		"title": "Checkpoint",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, fmt.Sprintf("/lessons/%d/quiz", lesson.ID), map[string]interface{}{
		"title": "Second Checkpoint",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
