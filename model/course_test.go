package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&User{},
		&Category{},
		&Course{},
		&CourseModule{},
		&Lesson{},
	)
	require.NoError(t, err)
	return db
}

func seedCourse(t *testing.T, db *gorm.DB) Course {
	t.Helper()

	author := User{Email: "author@skillhub.io", FullName: "Author", Role: RoleInstructor, PasswordHash: "x"}
	require.NoError(t, db.Create(&author).Error)

	category := Category{Name: "Programming"}
	require.NoError(t, db.Create(&category).Error)

	course := Course{AuthorID: author.ID, CategoryID: category.ID, Title: "Go Basics", Level: LevelBeginner}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func TestCourseModulePositionAssignment(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)

	first := CourseModule{CourseID: course.ID, Title: "Intro"}
	require.NoError(t, db.Create(&first).Error)
	assert.EqualValues(t, 1, first.Position)

	second := CourseModule{CourseID: course.ID, Title: "Syntax"}
	require.NoError(t, db.Create(&second).Error)
	assert.EqualValues(t, 2, second.Position)

	// An explicit position is kept as is.
	pinned := CourseModule{CourseID: course.ID, Title: "Appendix", Position: 10}
	require.NoError(t, db.Create(&pinned).Error)
	assert.EqualValues(t, 10, pinned.Position)

	// The next implicit position follows the highest sibling.
	next := CourseModule{CourseID: course.ID, Title: "Closing"}
	require.NoError(t, db.Create(&next).Error)
	assert.EqualValues(t, 11, next.Position)
}

func TestCourseModulePositionPerCourse(t *testing.T) {
	db := setupTestDB(t)
	courseA := seedCourse(t, db)

	courseB := Course{AuthorID: courseA.AuthorID, CategoryID: courseA.CategoryID, Title: "Go Advanced", Level: LevelAdvanced}
	require.NoError(t, db.Create(&courseB).Error)

	moduleA := CourseModule{CourseID: courseA.ID, Title: "A1"}
	require.NoError(t, db.Create(&moduleA).Error)

	// Positions count per parent, not globally.
	moduleB := CourseModule{CourseID: courseB.ID, Title: "B1"}
	require.NoError(t, db.Create(&moduleB).Error)
	assert.EqualValues(t, 1, moduleB.Position)
}

func TestLessonPositionAssignment(t *testing.T) {
	db := setupTestDB(t)
	course := seedCourse(t, db)

	courseModule := CourseModule{CourseID: course.ID, Title: "Intro"}
	require.NoError(t, db.Create(&courseModule).Error)

	first := Lesson{ModuleID: courseModule.ID, Title: "Hello"}
	require.NoError(t, db.Create(&first).Error)
	assert.EqualValues(t, 1, first.Position)

	second := Lesson{ModuleID: courseModule.ID, Title: "Variables"}
	require.NoError(t, db.Create(&second).Error)
	assert.EqualValues(t, 2, second.Position)
}

func TestIsValidLevel(t *testing.T) {
	assert.True(t, IsValidLevel(LevelBeginner))
	assert.True(t, IsValidLevel(LevelIntermediate))
	assert.True(t, IsValidLevel(LevelAdvanced))
	assert.False(t, IsValidLevel("expert"))
	assert.False(t, IsValidLevel(""))
}
