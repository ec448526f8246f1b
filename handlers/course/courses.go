package course

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/model"
	"github.com/skillhub/skillhub-api/permission"
	"github.com/skillhub/skillhub-api/utils/middleware"
	"github.com/skillhub/skillhub-api/utils/response"
	"github.com/skillhub/skillhub-api/utils/validation"
)

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	CategoryID  uint   `json:"category_id" validate:"required,min=1"`
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Level       string `json:"level" validate:"required,oneof=beginner intermediate advanced"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	CategoryID  *uint  `json:"category_id" validate:"omitempty,min=1"`
	Title       string `json:"title" validate:"omitempty,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Level       string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
}

// CourseDetailResponse embeds a course with its derived average rating,
// rounded to one decimal and 0 when the course has no reviews.
type CourseDetailResponse struct {
	model.Course
	AvgRating float64 `json:"avg_rating"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	// Clamp once; the query and the pagination metadata must agree.
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	search := c.Query("search", "")
	categoryID := c.Query("category_id", "")
	level := c.Query("level", "")

	query := h.db.Model(&model.Course{})

	if search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	if level != "" {
		if !model.IsValidLevel(level) {
			return response.BadRequest(c, "Invalid level filter")
		}
		query = query.Where("level = ?", level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var courses []model.Course
	if err := query.Preload("Author").Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	if err := h.db.Preload("Author").
		Preload("Category").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Average rating is derived, never stored.
	var avg struct {
		AvgRating float64
	}
	h.db.Model(&model.Review{}).
		Where("course_id = ?", course.ID).
		Select("COALESCE(AVG(rating), 0) AS avg_rating").
		Scan(&avg)

	return response.Success(c, CourseDetailResponse{
		Course:    course,
		AvgRating: math.Round(avg.AvgRating*10) / 10,
	})
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	user, _ := middleware.GetUser(c)
	if permission.RoleCapability(roleOf(user)) == permission.CapabilityReadOnly {
		return response.Forbidden(c, "")
	}

	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)

	var category model.Category
	if err := h.db.First(&category, req.CategoryID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to verify category")
	}

	course := model.Course{
		AuthorID:    user.ID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	h.db.Preload("Author").Preload("Category").First(&course, course.ID)

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.CourseNode(course.ID)) {
		return response.Forbidden(c, "")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if req.CategoryID != nil {
		var category model.Category
		if err := h.db.First(&category, *req.CategoryID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.NotFound(c, "Category not found")
			}
			return response.InternalServerError(c, "Failed to verify category")
		}
		course.CategoryID = *req.CategoryID
	}

	if req.Title != "" {
		course.Title = validation.SanitizeString(req.Title)
	}

	if req.Description != "" {
		course.Description = validation.SanitizeString(req.Description)
	}

	if req.Level != "" {
		course.Level = req.Level
	}

	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	h.db.Preload("Author").Preload("Category").First(&course, course.ID)

	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.CourseNode(course.ID)) {
		return response.Forbidden(c, "")
	}

	if err := h.db.Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}

// parseID parses a numeric route parameter
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// roleOf returns the user's role, or "" for anonymous requesters
func roleOf(user *model.User) string {
	if user == nil {
		return ""
	}
	return user.Role
}
