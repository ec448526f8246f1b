package course

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/model"
	"github.com/skillhub/skillhub-api/utils/middleware"
	"github.com/skillhub/skillhub-api/utils/response"
)

// Enroll handles POST /api/v1/courses/:id/enroll. Any authenticated user
// can enroll, including the course author.
func (h *CourseHandler) Enroll(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := parseID(c, "id")
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

	var existing model.CourseEnrollment
	err = h.db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		First(&existing).Error
	if err == nil {
		return response.Conflict(c, "Already enrolled in this course")
	}
	if err != gorm.ErrRecordNotFound {
		return response.InternalServerError(c, "Failed to check enrollment")
	}

	enrollment := model.CourseEnrollment{
		UserID:   user.ID,
		CourseID: course.ID,
	}

	if err := h.db.Create(&enrollment).Error; err != nil {
		return response.InternalServerError(c, "Failed to enroll")
	}

	return response.Created(c, enrollment)
}

// Unenroll handles DELETE /api/v1/courses/:id/enroll
func (h *CourseHandler) Unenroll(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid course ID")
	}

	result := h.db.Where("user_id = ? AND course_id = ?", user.ID, courseID).
		Delete(&model.CourseEnrollment{})
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to unenroll")
	}

	if result.RowsAffected == 0 {
		return response.NotFound(c, "Not enrolled in this course")
	}

	return response.SuccessWithMessage(c, "Unenrolled successfully", nil)
}

// ListEnrollments handles GET /api/v1/me/enrollments
func (h *CourseHandler) ListEnrollments(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var enrollments []model.CourseEnrollment
	if err := h.db.Where("user_id = ?", user.ID).
		Preload("Course").
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch enrollments")
	}

	return response.Success(c, enrollments)
}
