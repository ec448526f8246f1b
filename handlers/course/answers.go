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

// CreateAnswerRequest represents the request body for creating an answer
type CreateAnswerRequest struct {
	Text      string `json:"text" validate:"required,min=1,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

// UpdateAnswerRequest represents the request body for updating an answer
type UpdateAnswerRequest struct {
	Text      string `json:"text" validate:"omitempty,min=1,max=500"`
	IsCorrect *bool  `json:"is_correct"`
}

// ListAnswers handles GET /api/v1/questions/:questionId/answers
func (h *CourseHandler) ListAnswers(c *fiber.Ctx) error {
	questionID, err := parseID(c, "questionId")
	if err != nil {
		return response.BadRequest(c, "Invalid question ID")
	}

	var question model.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Question not found")
		}
		return response.InternalServerError(c, "Failed to fetch question")
	}

	var answers []model.Answer
	if err := h.db.Where("question_id = ?", questionID).Find(&answers).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch answers")
	}

	return response.Success(c, answers)
}

// CreateAnswer handles POST /api/v1/questions/:questionId/answers
func (h *CourseHandler) CreateAnswer(c *fiber.Ctx) error {
	questionID, err := parseID(c, "questionId")
	if err != nil {
		return response.BadRequest(c, "Invalid question ID")
	}

	var question model.Question
	if err := h.db.First(&question, questionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Question not found")
		}
		return response.InternalServerError(c, "Failed to fetch question")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.QuestionNode(question.ID)) {
		return response.Forbidden(c, "")
	}

	var req CreateAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	answer := model.Answer{
		QuestionID: question.ID,
		Text:       validation.SanitizeString(req.Text),
		IsCorrect:  req.IsCorrect,
	}

	if err := h.db.Create(&answer).Error; err != nil {
		return response.InternalServerError(c, "Failed to create answer")
	}

	return response.Created(c, answer)
}

// UpdateAnswer handles PUT /api/v1/answers/:id
func (h *CourseHandler) UpdateAnswer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid answer ID")
	}

	var answer model.Answer
	if err := h.db.First(&answer, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Answer not found")
		}
		return response.InternalServerError(c, "Failed to fetch answer")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.AnswerNode(answer.ID)) {
		return response.Forbidden(c, "")
	}

	var req UpdateAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if req.Text != "" {
		answer.Text = validation.SanitizeString(req.Text)
	}

	if req.IsCorrect != nil {
		answer.IsCorrect = *req.IsCorrect
	}

	if err := h.db.Save(&answer).Error; err != nil {
		return response.InternalServerError(c, "Failed to update answer")
	}

	return response.SuccessWithMessage(c, "Answer updated successfully", answer)
}

// DeleteAnswer handles DELETE /api/v1/answers/:id
func (h *CourseHandler) DeleteAnswer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid answer ID")
	}

	var answer model.Answer
	if err := h.db.First(&answer, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Answer not found")
		}
		return response.InternalServerError(c, "Failed to fetch answer")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.AnswerNode(answer.ID)) {
		return response.Forbidden(c, "")
	}

	if err := h.db.Delete(&answer).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete answer")
	}

	return response.SuccessWithMessage(c, "Answer deleted successfully", nil)
}
