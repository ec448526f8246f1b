package course

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/model"
	"github.com/skillhub/skillhub-api/permission"
	"github.com/skillhub/skillhub-api/utils/middleware"
	"github.com/skillhub/skillhub-api/utils/response"
	"github.com/skillhub/skillhub-api/utils/validation"
)

// CreateLessonRequest represents the request body for creating a lesson
type CreateLessonRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Content  string `json:"content" validate:"omitempty"`
	VideoURL string `json:"video_url" validate:"omitempty,url,max=500"`
}

// UpdateLessonRequest represents the request body for updating a lesson
type UpdateLessonRequest struct {
	Title    string `json:"title" validate:"omitempty,min=3,max=255"`
	Content  string `json:"content" validate:"omitempty"`
	VideoURL string `json:"video_url" validate:"omitempty,url,max=500"`
}

// ListLessons handles GET /api/v1/modules/:moduleId/lessons
func (h *CourseHandler) ListLessons(c *fiber.Ctx) error {
	moduleID, err := parseID(c, "moduleId")
	if err != nil {
		return response.BadRequest(c, "Invalid module ID")
	}

	var courseModule model.CourseModule
	if err := h.db.First(&courseModule, moduleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Module not found")
		}
		return response.InternalServerError(c, "Failed to fetch module")
	}

	var lessons []model.Lesson
	if err := h.db.Where("module_id = ?", moduleID).
		Order("position ASC").
		Find(&lessons).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch lessons")
	}

	return response.Success(c, lessons)
}

// GetLesson handles GET /api/v1/lessons/:id
func (h *CourseHandler) GetLesson(c *fiber.Ctx) error {
	id := c.Params("id")

	var lesson model.Lesson
	if err := h.db.Preload("Quiz").First(&lesson, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to fetch lesson")
	}

	return response.Success(c, lesson)
}

// CreateLesson handles POST /api/v1/modules/:moduleId/lessons. After the
// lesson is committed, every student enrolled in the owning course gets a
// notification queued for email delivery.
func (h *CourseHandler) CreateLesson(c *fiber.Ctx) error {
	moduleID, err := parseID(c, "moduleId")
	if err != nil {
		return response.BadRequest(c, "Invalid module ID")
	}

	var courseModule model.CourseModule
	if err := h.db.First(&courseModule, moduleID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Module not found")
		}
		return response.InternalServerError(c, "Failed to fetch module")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.ModuleNode(courseModule.ID)) {
		return response.Forbidden(c, "")
	}

	var req CreateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	lesson := model.Lesson{
		ModuleID: courseModule.ID,
		Title:    validation.SanitizeString(req.Title),
		Content:  req.Content,
		VideoURL: req.VideoURL,
	}

	if err := h.db.Create(&lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to create lesson")
	}

	// Fan out after commit. A notification failure never fails the create.
	var course model.Course
	if err := h.db.First(&course, courseModule.CourseID).Error; err == nil {
		if _, err := h.notifications.NotifyLessonCreated(c.Context(), &lesson, &course); err != nil {
			log.Printf("CreateLesson: notification fan-out failed for lesson %d: %v", lesson.ID, err)
		}
	}

	return response.Created(c, lesson)
}

// UpdateLesson handles PUT /api/v1/lessons/:id
func (h *CourseHandler) UpdateLesson(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid lesson ID")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to fetch lesson")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.LessonNode(lesson.ID)) {
		return response.Forbidden(c, "")
	}

	var req UpdateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if req.Title != "" {
		lesson.Title = validation.SanitizeString(req.Title)
	}

	if req.Content != "" {
		lesson.Content = req.Content
	}

	if req.VideoURL != "" {
		lesson.VideoURL = req.VideoURL
	}

	if err := h.db.Save(&lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to update lesson")
	}

	return response.SuccessWithMessage(c, "Lesson updated successfully", lesson)
}

// DeleteLesson handles DELETE /api/v1/lessons/:id
func (h *CourseHandler) DeleteLesson(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid lesson ID")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to fetch lesson")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.LessonNode(lesson.ID)) {
		return response.Forbidden(c, "")
	}

	if err := h.db.Delete(&lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete lesson")
	}

	return response.SuccessWithMessage(c, "Lesson deleted successfully", nil)
}
