package review

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
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
		&model.Review{},
	)
	require.NoError(t, err)
	return db
}

// setupApp mounts the review routes with a middleware stub that injects the
// given user, or no user at all when user is nil.
func setupApp(db *gorm.DB, user *model.User) *fiber.App {
	handler := NewReviewHandler(db)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals("user", user)
		}
		return c.Next()
	})

	app.Get("/courses/:courseId/reviews", handler.ListCourseReviews)
	app.Post("/courses/:courseId/reviews", handler.CreateReview)
	app.Put("/reviews/:id", handler.UpdateReview)
	app.Delete("/reviews/:id", handler.DeleteReview)
	return app
}

func seedCourse(t *testing.T, db *gorm.DB) model.Course {
	t.Helper()

	author := model.User{Email: "author@skillhub.io", FullName: "Author", Role: model.RoleInstructor, PasswordHash: "x"}
	require.NoError(t, db.Create(&author).Error)

	category := model.Category{Name: "Programming"}
	require.NoError(t, db.Create(&category).Error)

	course := model.Course{AuthorID: author.ID, CategoryID: category.ID, Title: "Go Basics", Level: model.LevelBeginner}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func createStudent(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := model.User{Email: email, FullName: email, Role: model.RoleStudent, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return &user
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

func TestCreateReview_RatingOutOfRangeRejected(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)
	student := createStudent(t, db, "student@skillhub.io")
	app := setupApp(db, student)

	for _, rating := range []int{0, 6, -1} {
		resp := postJSON(t, app, fmt.Sprintf("/courses/%d/reviews", course.ID), map[string]interface{}{
			"rating": rating,
			"title":  "Nice course",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "rating %d", rating)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "rating")
	}

	// Nothing persisted.
	var count int64
	require.NoError(t, db.Model(&model.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateReview_Success(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)
	student := createStudent(t, db, "student@skillhub.io")
	app := setupApp(db, student)

	resp := postJSON(t, app, fmt.Sprintf("/courses/%d/reviews", course.ID), map[string]interface{}{
		"rating":  5,
		"title":   "Loved it",
		"content": "Clear and practical.",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var review model.Review
	require.NoError(t, db.First(&review).Error)
	assert.Equal(t, student.ID, review.UserID)
	assert.Equal(t, course.ID, review.CourseID)
	assert.Equal(t, 5, review.Rating)
}

func TestCreateReview_OnePerUserPerCourse(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)
	student := createStudent(t, db, "student@skillhub.io")
	app := setupApp(db, student)

	resp := postJSON(t, app, fmt.Sprintf("/courses/%d/reviews", course.ID), map[string]interface{}{
		"rating": 4, "title": "Good stuff",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, fmt.Sprintf("/courses/%d/reviews", course.ID), map[string]interface{}{
		"rating": 2, "title": "Changed my mind",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateReview_RequiresAuthentication(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)
	app := setupApp(db, nil)

	resp := postJSON(t, app, fmt.Sprintf("/courses/%d/reviews", course.ID), map[string]interface{}{
		"rating": 4, "title": "Good stuff",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateReview_CourseNotFound(t *testing.T) {
	db := setupTestDB(t)
	student := createStudent(t, db, "student@skillhub.io")
	app := setupApp(db, student)

	resp := postJSON(t, app, "/courses/9999/reviews", map[string]interface{}{
		"rating": 4, "title": "Good stuff",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListCourseReviews_AverageAndCount(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)

	for i, rating := range []int{2, 4} {
		student := createStudent(t, db, fmt.Sprintf("student%d@skillhub.io", i))
		require.NoError(t, db.Create(&model.Review{
			UserID: student.ID, CourseID: course.ID, Rating: rating, Title: "Review",
		}).Error)
	}

	app := setupApp(db, nil)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/courses/%d/reviews", course.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data CourseReviewsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 2, body.Data.Count)
	assert.InDelta(t, 3.0, body.Data.AvgRating, 0.001)
	require.Len(t, body.Data.Reviews, 2)

	// Each review carries its author and the course it is for.
	for _, r := range body.Data.Reviews {
		assert.NotEmpty(t, r.User.FullName)
		assert.Equal(t, course.ID, r.Course.ID)
		assert.Equal(t, "Go Basics", r.Course.Title)
	}
}

func TestUpdateReview_OnlyAuthorOrAdmin(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)
	owner := createStudent(t, db, "owner@skillhub.io")
	other := createStudent(t, db, "other@skillhub.io")

	review := model.Review{UserID: owner.ID, CourseID: course.ID, Rating: 3, Title: "Fine"}
	require.NoError(t, db.Create(&review).Error)

	// Another student is rejected.
	app := setupApp(db, other)
	body, _ := json.Marshal(map[string]interface{}{"rating": 1})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/reviews/%d", review.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// An admin may edit anyone's review.
	admin := model.User{Email: "admin@skillhub.io", FullName: "Admin", Role: model.RoleAdmin, PasswordHash: "x"}
	require.NoError(t, db.Create(&admin).Error)

	app = setupApp(db, &admin)
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/reviews/%d", review.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded model.Review
	require.NoError(t, db.First(&reloaded, review.ID).Error)
	assert.Equal(t, 1, reloaded.Rating)
}

func TestDeleteReview_Owner(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)
	owner := createStudent(t, db, "owner@skillhub.io")

	review := model.Review{UserID: owner.ID, CourseID: course.ID, Rating: 3, Title: "Fine"}
	require.NoError(t, db.Create(&review).Error)

	app := setupApp(db, owner)
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/reviews/%d", review.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&model.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}
