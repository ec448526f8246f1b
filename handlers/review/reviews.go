// Package review exposes course review endpoints. Ratings are integers in
// the inclusive range 1..5; anything else is rejected with a field-scoped
// validation error before any row is written.
package review

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/model"
	"github.com/skillhub/skillhub-api/utils/middleware"
	"github.com/skillhub/skillhub-api/utils/response"
	"github.com/skillhub/skillhub-api/utils/validation"
)

// ReviewHandler handles review requests
type ReviewHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateReviewRequest represents the request body for creating a review
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title   string `json:"title" validate:"required,min=3,max=100"`
	Content string `json:"content" validate:"omitempty,max=5000"`
}

// UpdateReviewRequest represents the request body for updating a review
type UpdateReviewRequest struct {
	Rating  *int   `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Title   string `json:"title" validate:"omitempty,min=3,max=100"`
	Content string `json:"content" validate:"omitempty,max=5000"`
}

// CourseReviewsResponse bundles a course's reviews with its average rating
type CourseReviewsResponse struct {
	Reviews   []model.Review `json:"reviews"`
	AvgRating float64        `json:"avg_rating"`
	Count     int64          `json:"count"`
}

// ListCourseReviews handles GET /api/v1/courses/:courseId/reviews
func (h *ReviewHandler) ListCourseReviews(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("courseId"), 10, 32)
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

	var reviews []model.Review
	if err := h.db.Where("course_id = ?", courseID).
		Preload("User").
		Preload("Course").
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch reviews")
	}

	var avg struct {
		AvgRating float64
		Count     int64
	}
	h.db.Model(&model.Review{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS count").
		Scan(&avg)

	return response.Success(c, CourseReviewsResponse{
		Reviews:   reviews,
		AvgRating: avg.AvgRating,
		Count:     avg.Count,
	})
}

// CreateReview handles POST /api/v1/courses/:courseId/reviews. One review
// per user per course.
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("courseId"), 10, 32)
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

	var req CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	var existing model.Review
	if err := h.db.Where("user_id = ? AND course_id = ?", user.ID, courseID).
		First(&existing).Error; err == nil {
		return response.Conflict(c, "You have already reviewed this course")
	}

	review := model.Review{
		UserID:   user.ID,
		CourseID: uint(courseID),
		Rating:   req.Rating,
		Title:    validation.SanitizeString(req.Title),
		Content:  validation.SanitizeString(req.Content),
	}

	if err := h.db.Create(&review).Error; err != nil {
		return response.InternalServerError(c, "Failed to create review")
	}

	return response.Created(c, review)
}

// UpdateReview handles PUT /api/v1/reviews/:id. Only the review's author
// may update it.
func (h *ReviewHandler) UpdateReview(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id := c.Params("id")

	var review model.Review
	if err := h.db.First(&review, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Review not found")
		}
		return response.InternalServerError(c, "Failed to fetch review")
	}

	if review.UserID != user.ID && user.Role != model.RoleAdmin {
		return response.Forbidden(c, "")
	}

	var req UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}

	if req.Title != "" {
		review.Title = validation.SanitizeString(req.Title)
	}

	if req.Content != "" {
		review.Content = validation.SanitizeString(req.Content)
	}

	if err := h.db.Save(&review).Error; err != nil {
		return response.InternalServerError(c, "Failed to update review")
	}

	return response.SuccessWithMessage(c, "Review updated successfully", review)
}

// DeleteReview handles DELETE /api/v1/reviews/:id
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id := c.Params("id")

	var review model.Review
	if err := h.db.First(&review, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Review not found")
		}
		return response.InternalServerError(c, "Failed to fetch review")
	}

	if review.UserID != user.ID && user.Role != model.RoleAdmin {
		return response.Forbidden(c, "")
	}

	if err := h.db.Delete(&review).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete review")
	}

	return response.SuccessWithMessage(c, "Review deleted successfully", nil)
}
