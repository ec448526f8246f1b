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

// CreateQuizRequest represents the request body for creating a quiz
type CreateQuizRequest struct {
	Title string `json:"title" validate:"required,min=3,max=255"`
}

// UpdateQuizRequest represents the request body for updating a quiz
type UpdateQuizRequest struct {
	Title string `json:"title" validate:"omitempty,min=3,max=255"`
}

// GetQuiz handles GET /api/v1/lessons/:lessonId/quiz
func (h *CourseHandler) GetQuiz(c *fiber.Ctx) error {
	lessonID, err := parseID(c, "lessonId")
	if err != nil {
		return response.BadRequest(c, "Invalid lesson ID")
	}

	var quiz model.Quiz
	if err := h.db.Preload("Questions.Answers").
		Where("lesson_id = ?", lessonID).
		First(&quiz).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Quiz not found")
		}
		return response.InternalServerError(c, "Failed to fetch quiz")
	}

	return response.Success(c, quiz)
}

// CreateQuiz handles POST /api/v1/lessons/:lessonId/quiz. A lesson carries
// at most one quiz.
func (h *CourseHandler) CreateQuiz(c *fiber.Ctx) error {
	lessonID, err := parseID(c, "lessonId")
	if err != nil {
		return response.BadRequest(c, "Invalid lesson ID")
	}

	var lesson model.Lesson
	if err := h.db.First(&lesson, lessonID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to fetch lesson")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.LessonNode(lesson.ID)) {
		return response.Forbidden(c, "")
	}

	var req CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	var existing model.Quiz
	if err := h.db.Where("lesson_id = ?", lesson.ID).First(&existing).Error; err == nil {
		return response.Conflict(c, "Lesson already has a quiz")
	}

	quiz := model.Quiz{
		LessonID: lesson.ID,
		Title:    validation.SanitizeString(req.Title),
	}

	if err := h.db.Create(&quiz).Error; err != nil {
		return response.InternalServerError(c, "Failed to create quiz")
	}

	return response.Created(c, quiz)
}

// UpdateQuiz handles PUT /api/v1/quizzes/:id
func (h *CourseHandler) UpdateQuiz(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid quiz ID")
	}

	var quiz model.Quiz
	if err := h.db.First(&quiz, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Quiz not found")
		}
		return response.InternalServerError(c, "Failed to fetch quiz")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.QuizNode(quiz.ID)) {
		return response.Forbidden(c, "")
	}

	var req UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if req.Title != "" {
		quiz.Title = validation.SanitizeString(req.Title)
	}

	if err := h.db.Save(&quiz).Error; err != nil {
		return response.InternalServerError(c, "Failed to update quiz")
	}

	return response.SuccessWithMessage(c, "Quiz updated successfully", quiz)
}

// DeleteQuiz handles DELETE /api/v1/quizzes/:id
func (h *CourseHandler) DeleteQuiz(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid quiz ID")
	}

	var quiz model.Quiz
	if err := h.db.First(&quiz, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Quiz not found")
		}
		return response.InternalServerError(c, "Failed to fetch quiz")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.QuizNode(quiz.ID)) {
		return response.Forbidden(c, "")
	}

	if err := h.db.Delete(&quiz).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete quiz")
	}

	return response.SuccessWithMessage(c, "Quiz deleted successfully", nil)
}
