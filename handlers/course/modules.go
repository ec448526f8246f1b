package course

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/model"
	"github.com/skillhub/skillhub-api/permission"
	"github.com/skillhub/skillhub-api/utils/middleware"
	"github.com/skillhub/skillhub-api/utils/response"
	"github.com/skillhub/skillhub-api/utils/validation"
)

// CreateModuleRequest represents the request body for creating a module
type CreateModuleRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// UpdateModuleRequest represents the request body for updating a module
type UpdateModuleRequest struct {
	Title       string `json:"title" validate:"omitempty,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
}

// ListModules handles GET /api/v1/courses/:courseId/modules
func (h *CourseHandler) ListModules(c *fiber.Ctx) error {
	courseID, err := parseID(c, "courseId")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	var modules []model.CourseModule
	if err := h.db.Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&modules).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch modules")
	}

	return response.Success(c, modules)
}

// GetModule handles GET /api/v1/modules/:id
func (h *CourseHandler) GetModule(c *fiber.Ctx) error {
	id := c.Params("id")

	var courseModule model.CourseModule
	if err := h.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&courseModule, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Module not found")
		}
		return response.InternalServerError(c, "Failed to fetch module")
	}

	return response.Success(c, courseModule)
}

// CreateModule handles POST /api/v1/courses/:courseId/modules. Ownership is
// checked against the parent course.
func (h *CourseHandler) CreateModule(c *fiber.Ctx) error {
	courseID, err := parseID(c, "courseId")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.CourseNode(course.ID)) {
		return response.Forbidden(c, "")
	}

	var req CreateModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	courseModule := model.CourseModule{
		CourseID:    course.ID,
		Title:       validation.SanitizeString(req.Title),
		Description: validation.SanitizeString(req.Description),
	}

	if err := h.db.Create(&courseModule).Error; err != nil {
		return response.InternalServerError(c, "Failed to create module")
	}

	return response.Created(c, courseModule)
}

// UpdateModule handles PUT /api/v1/modules/:id
func (h *CourseHandler) UpdateModule(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid module ID")
	}

	var courseModule model.CourseModule
	if err := h.db.First(&courseModule, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Module not found")
		}
		return response.InternalServerError(c, "Failed to fetch module")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.ModuleNode(courseModule.ID)) {
		return response.Forbidden(c, "")
	}

	var req UpdateModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if req.Title != "" {
		courseModule.Title = validation.SanitizeString(req.Title)
	}

	if req.Description != "" {
		courseModule.Description = validation.SanitizeString(req.Description)
	}

	if err := h.db.Save(&courseModule).Error; err != nil {
		return response.InternalServerError(c, "Failed to update module")
	}

	return response.SuccessWithMessage(c, "Module updated successfully", courseModule)
}

// DeleteModule handles DELETE /api/v1/modules/:id
func (h *CourseHandler) DeleteModule(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid module ID")
	}

	var courseModule model.CourseModule
	if err := h.db.First(&courseModule, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Module not found")
		}
		return response.InternalServerError(c, "Failed to fetch module")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.ModuleNode(courseModule.ID)) {
		return response.Forbidden(c, "")
	}

	if err := h.db.Delete(&courseModule).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete module")
	}

	return response.SuccessWithMessage(c, "Module deleted successfully", nil)
}
