package course

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/model"
	"github.com/skillhub/skillhub-api/utils/response"
)

func setupAppCourses(db *gorm.DB) *fiber.App {
	handler := NewCourseHandler(db, nil)
	app := fiber.New()
	app.Get("/courses", handler.ListCourses)
	return app
}

func seedCourses(t *testing.T, db *gorm.DB, author *model.User, n int) {
	t.Helper()

	category := model.Category{Name: "Programming"}
	require.NoError(t, db.Create(&category).Error)

	for i := 0; i < n; i++ {
		course := model.Course{
			AuthorID:   author.ID,
			CategoryID: category.ID,
			Title:      fmt.Sprintf("Course %d", i),
			Level:      model.LevelBeginner,
		}
		require.NoError(t, db.Create(&course).Error)
	}
}

func TestListCourses_ClampsPageAndLimit(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	seedCourses(t, db, author, 3)

	app := setupAppCourses(db)

	// page=0 and limit=0 fall back to the defaults instead of producing a
	// negative offset or an empty page.
	req := httptest.NewRequest(http.MethodGet, "/courses?page=0&limit=0", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data       []model.Course          `json:"data"`
		Pagination response.PaginationMeta `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 3)
	assert.Equal(t, 1, body.Pagination.CurrentPage)
	assert.Equal(t, 10, body.Pagination.PerPage)
	assert.EqualValues(t, 3, body.Pagination.Total)
}

func TestListCourses_SecondPage(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	seedCourses(t, db, author, 3)

	app := setupAppCourses(db)
	req := httptest.NewRequest(http.MethodGet, "/courses?page=2&limit=2", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data       []model.Course          `json:"data"`
		Pagination response.PaginationMeta `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 2, body.Pagination.CurrentPage)
	assert.Equal(t, 2, body.Pagination.TotalPages)
}

func TestListCourses_InvalidLevelRejected(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)
	seedCourses(t, db, author, 1)

	app := setupAppCourses(db)
	req := httptest.NewRequest(http.MethodGet, "/courses?level=expert", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListCourses_LevelFilter(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "author@skillhub.io", model.RoleInstructor)

	category := model.Category{Name: "Programming"}
	require.NoError(t, db.Create(&category).Error)
	for _, level := range []string{model.LevelBeginner, model.LevelAdvanced} {
		require.NoError(t, db.Create(&model.Course{
			AuthorID: author.ID, CategoryID: category.ID, Title: "Course " + level, Level: level,
		}).Error)
	}

	app := setupAppCourses(db)
	req := httptest.NewRequest(http.MethodGet, "/courses?level=advanced", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data []model.Course `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, model.LevelAdvanced, body.Data[0].Level)
}
