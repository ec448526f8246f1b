package permission

import (
	"context"
	"testing"

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

// seedHierarchy creates one full content chain owned by author and returns
// every node of it.
func seedHierarchy(t *testing.T, db *gorm.DB, author *model.User) (model.Course, model.CourseModule, model.Lesson, model.Quiz, model.Question, model.Answer) {
	t.Helper()

	category := model.Category{Name: "Programming"}
	require.NoError(t, db.Create(&category).Error)

	course := model.Course{AuthorID: author.ID, CategoryID: category.ID, Title: "Go Basics", Level: model.LevelBeginner}
	require.NoError(t, db.Create(&course).Error)

	courseModule := model.CourseModule{CourseID: course.ID, Title: "Getting Started"}
	require.NoError(t, db.Create(&courseModule).Error)

	lesson := model.Lesson{ModuleID: courseModule.ID, Title: "Hello World"}
	require.NoError(t, db.Create(&lesson).Error)

	quiz := model.Quiz{LessonID: lesson.ID, Title: "Hello World Quiz"}
	require.NoError(t, db.Create(&quiz).Error)

	question := model.Question{QuizID: quiz.ID, Text: "What prints hello?"}
	require.NoError(t, db.Create(&question).Error)

	answer := model.Answer{QuestionID: question.ID, Text: "fmt.Println", IsCorrect: true}
	require.NoError(t, db.Create(&answer).Error)

	return course, courseModule, lesson, quiz, question, answer
}

func createUser(t *testing.T, db *gorm.DB, email, role string) *model.User {
	t.Helper()
	user := model.User{Email: email, FullName: email, Role: role, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestCanWrite_SafeMethodsAllowAnyone(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)
	ctx := context.Background()

	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	course, _, _, _, _, _ := seedHierarchy(t, db, author)

	for _, method := range []string{"GET", "HEAD", "OPTIONS"} {
		// anonymous requester
		assert.True(t, resolver.CanWrite(ctx, method, nil, CourseNode(course.ID)), method)

		student := createUser(t, db, "student-"+method+"@skillhub.io", model.RoleStudent)
		assert.True(t, resolver.CanWrite(ctx, method, student, CourseNode(course.ID)), method)
	}
}

func TestCanWrite_AnonymousDeniedUnsafe(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)
	ctx := context.Background()

	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	course, _, _, _, _, _ := seedHierarchy(t, db, author)

	for _, method := range []string{"POST", "PUT", "PATCH", "DELETE"} {
		assert.False(t, resolver.CanWrite(ctx, method, nil, CourseNode(course.ID)), method)
	}
}

func TestCanWrite_StudentDeniedEverywhere(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)
	ctx := context.Background()

	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	student := createUser(t, db, "student@skillhub.io", model.RoleStudent)
	course, courseModule, lesson, quiz, question, answer := seedHierarchy(t, db, author)

	nodes := []Node{
		CourseNode(course.ID),
		ModuleNode(courseModule.ID),
		LessonNode(lesson.ID),
		QuizNode(quiz.ID),
		QuestionNode(question.ID),
		AnswerNode(answer.ID),
	}
	for _, node := range nodes {
		assert.False(t, resolver.CanWrite(ctx, "POST", student, node))
		assert.False(t, resolver.CanWrite(ctx, "DELETE", student, node))
	}
}

func TestCanWrite_AdminAllowedUnconditionally(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)
	ctx := context.Background()

	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	admin := createUser(t, db, "admin@skillhub.io", model.RoleAdmin)
	course, courseModule, lesson, quiz, question, answer := seedHierarchy(t, db, author)

	nodes := []Node{
		CourseNode(course.ID),
		ModuleNode(courseModule.ID),
		LessonNode(lesson.ID),
		QuizNode(quiz.ID),
		QuestionNode(question.ID),
		AnswerNode(answer.ID),
	}
	for _, node := range nodes {
		assert.True(t, resolver.CanWrite(ctx, "DELETE", admin, node))
	}
}

func TestCanWrite_InstructorOwnership(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner@skillhub.io", model.RoleInstructor)
	other := createUser(t, db, "other@skillhub.io", model.RoleInstructor)
	course, courseModule, lesson, quiz, question, answer := seedHierarchy(t, db, owner)

	nodes := []Node{
		CourseNode(course.ID),
		ModuleNode(courseModule.ID),
		LessonNode(lesson.ID),
		QuizNode(quiz.ID),
		QuestionNode(question.ID),
		AnswerNode(answer.ID),
	}
	for _, node := range nodes {
		assert.True(t, resolver.CanWrite(ctx, "PUT", owner, node), "owner should write node kind %d", node.Kind)
		assert.False(t, resolver.CanWrite(ctx, "PUT", other, node), "non-owner should not write node kind %d", node.Kind)
	}
}

func TestResolveAuthor_BrokenChainDenies(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner@skillhub.io", model.RoleInstructor)
	_, _, _, _, question, answer := seedHierarchy(t, db, owner)

	// Delete the question out from under the answer. Resolution must deny,
	// not fail.
	require.NoError(t, db.Unscoped().Delete(&model.Question{}, question.ID).Error)

	_, ok := resolver.ResolveAuthor(ctx, AnswerNode(answer.ID))
	assert.False(t, ok)
	assert.False(t, resolver.CanWrite(ctx, "DELETE", owner, AnswerNode(answer.ID)))
}

func TestResolveAuthor_MissingNodeDenies(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner@skillhub.io", model.RoleInstructor)

	_, ok := resolver.ResolveAuthor(ctx, LessonNode(9999))
	assert.False(t, ok)
	assert.False(t, resolver.CanWrite(ctx, "DELETE", owner, LessonNode(9999)))
}

func TestResolveAuthor_UnrecognizedKindDenies(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewResolver(db)
	ctx := context.Background()

	owner := createUser(t, db, "owner@skillhub.io", model.RoleInstructor)
	bogus := Node{Kind: NodeKind(42), ID: 1}

	_, ok := resolver.ResolveAuthor(ctx, bogus)
	assert.False(t, ok)
	assert.False(t, resolver.CanWrite(ctx, "POST", owner, bogus))
}

func TestAdminOrReadOnly(t *testing.T) {
	admin := &model.User{Role: model.RoleAdmin}
	instructor := &model.User{Role: model.RoleInstructor}
	student := &model.User{Role: model.RoleStudent}

	assert.True(t, AdminOrReadOnly("GET", nil))
	assert.True(t, AdminOrReadOnly("GET", student))
	assert.True(t, AdminOrReadOnly("POST", admin))
	assert.False(t, AdminOrReadOnly("POST", instructor))
	assert.False(t, AdminOrReadOnly("POST", student))
	assert.False(t, AdminOrReadOnly("DELETE", nil))
}

func TestRoleCapability(t *testing.T) {
	assert.Equal(t, CapabilityFullWrite, RoleCapability(model.RoleAdmin))
	assert.Equal(t, CapabilityOwnerWrite, RoleCapability(model.RoleInstructor))
	assert.Equal(t, CapabilityReadOnly, RoleCapability(model.RoleStudent))
	assert.Equal(t, CapabilityReadOnly, RoleCapability("unknown"))
}
