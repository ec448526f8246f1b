// Package category exposes CRUD for course categories. Reads are public,
// writes are admin only.
package category

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/model"
	"github.com/skillhub/skillhub-api/permission"
	"github.com/skillhub/skillhub-api/utils/middleware"
	"github.com/skillhub/skillhub-api/utils/response"
	"github.com/skillhub/skillhub-api/utils/validation"
)

// CategoryHandler handles category requests
type CategoryHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateCategoryRequest represents the request body for creating a category
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// UpdateCategoryRequest represents the request body for updating a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

// ListCategories handles GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	var categories []model.Category
	if err := h.db.Order("name ASC").Find(&categories).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch categories")
	}

	return response.Success(c, categories)
}

// GetCategory handles GET /api/v1/categories/:id
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	id := c.Params("id")

	var category model.Category
	if err := h.db.First(&category, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to fetch category")
	}

	return response.Success(c, category)
}

// CreateCategory handles POST /api/v1/categories
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	user, _ := middleware.GetUser(c)
	if !permission.AdminOrReadOnly(c.Method(), user) {
		return response.Forbidden(c, "")
	}

	var req CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	var existing model.Category
	if err := h.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return response.Conflict(c, "Category with this name already exists")
	}

	category := model.Category{
		Name:        validation.SanitizeString(req.Name),
		Description: validation.SanitizeString(req.Description),
	}

	if err := h.db.Create(&category).Error; err != nil {
		return response.InternalServerError(c, "Failed to create category")
	}

	return response.Created(c, category)
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	user, _ := middleware.GetUser(c)
	if !permission.AdminOrReadOnly(c.Method(), user) {
		return response.Forbidden(c, "")
	}

	id := c.Params("id")

	var category model.Category
	if err := h.db.First(&category, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to fetch category")
	}

	var req UpdateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if req.Name != "" {
		var existing model.Category
		if err := h.db.Where("name = ? AND id != ?", req.Name, id).First(&existing).Error; err == nil {
			return response.Conflict(c, "Category with this name already exists")
		}
		category.Name = validation.SanitizeString(req.Name)
	}

	if req.Description != "" {
		category.Description = validation.SanitizeString(req.Description)
	}

	if err := h.db.Save(&category).Error; err != nil {
		return response.InternalServerError(c, "Failed to update category")
	}

	return response.SuccessWithMessage(c, "Category updated successfully", category)
}

// DeleteCategory handles DELETE /api/v1/categories/:id
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	user, _ := middleware.GetUser(c)
	if !permission.AdminOrReadOnly(c.Method(), user) {
		return response.Forbidden(c, "")
	}

	id := c.Params("id")

	var category model.Category
	if err := h.db.First(&category, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to fetch category")
	}

	var courseCount int64
	if err := h.db.Model(&model.Course{}).Where("category_id = ?", id).Count(&courseCount).Error; err != nil {
		return response.InternalServerError(c, "Failed to check category dependencies")
	}

	if courseCount > 0 {
		return response.BadRequest(c, "Cannot delete category with existing courses")
	}

	if err := h.db.Delete(&category).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete category")
	}

	return response.SuccessWithMessage(c, "Category deleted successfully", nil)
}
