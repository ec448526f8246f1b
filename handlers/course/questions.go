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

// CreateQuestionRequest represents the request body for creating a question
type CreateQuestionRequest struct {
	Text string `json:"text" validate:"required,min=3"`
}

// UpdateQuestionRequest represents the request body for updating a question
type UpdateQuestionRequest struct {
	Text string `json:"text" validate:"omitempty,min=3"`
}

// ListQuestions handles GET /api/v1/quizzes/:quizId/questions
func (h *CourseHandler) ListQuestions(c *fiber.Ctx) error {
	quizID, err := parseID(c, "quizId")
	if err != nil {
		return response.BadRequest(c, "Invalid quiz ID")
	}

	var quiz model.Quiz
	if err := h.db.First(&quiz, quizID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Quiz not found")
		}
		return response.InternalServerError(c, "Failed to fetch quiz")
	}

	var questions []model.Question
	if err := h.db.Where("quiz_id = ?", quizID).
		Preload("Answers").
		Find(&questions).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch questions")
	}

	return response.Success(c, questions)
}

// CreateQuestion handles POST /api/v1/quizzes/:quizId/questions
func (h *CourseHandler) CreateQuestion(c *fiber.Ctx) error {
	quizID, err := parseID(c, "quizId")
	if err != nil {
		return response.BadRequest(c, "Invalid quiz ID")
	}

	var quiz model.Quiz
	if err := h.db.First(&quiz, quizID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Quiz not found")
		}
		return response.InternalServerError(c, "Failed to fetch quiz")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.QuizNode(quiz.ID)) {
		return response.Forbidden(c, "")
	}

	var req CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	question := model.Question{
		QuizID: quiz.ID,
		Text:   validation.SanitizeString(req.Text),
	}

	if err := h.db.Create(&question).Error; err != nil {
		return response.InternalServerError(c, "Failed to create question")
	}

	return response.Created(c, question)
}

// UpdateQuestion handles PUT /api/v1/questions/:id
func (h *CourseHandler) UpdateQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid question ID")
	}

	var question model.Question
	if err := h.db.First(&question, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Question not found")
		}
		return response.InternalServerError(c, "Failed to fetch question")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.QuestionNode(question.ID)) {
		return response.Forbidden(c, "")
	}

	var req UpdateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if req.Text != "" {
		question.Text = validation.SanitizeString(req.Text)
	}

	if err := h.db.Save(&question).Error; err != nil {
		return response.InternalServerError(c, "Failed to update question")
	}

	return response.SuccessWithMessage(c, "Question updated successfully", question)
}

// DeleteQuestion handles DELETE /api/v1/questions/:id
func (h *CourseHandler) DeleteQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid question ID")
	}

	var question model.Question
	if err := h.db.First(&question, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Question not found")
		}
		return response.InternalServerError(c, "Failed to fetch question")
	}

	user, _ := middleware.GetUser(c)
	if !h.resolver.CanWrite(c.Context(), c.Method(), user, permission.QuestionNode(question.ID)) {
		return response.Forbidden(c, "")
	}

	if err := h.db.Delete(&question).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete question")
	}

	return response.SuccessWithMessage(c, "Question deleted successfully", nil)
}
