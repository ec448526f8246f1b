// Package notification exposes the authenticated user's notification feed.
// Users only ever see their own rows; admins may additionally create
// notifications for any user.
package notification

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/skillhub/skillhub-api/model"
	"github.com/skillhub/skillhub-api/permission"
	"github.com/skillhub/skillhub-api/services"
	"github.com/skillhub/skillhub-api/utils/middleware"
	"github.com/skillhub/skillhub-api/utils/response"
	"github.com/skillhub/skillhub-api/utils/validation"
)

// NotificationHandler handles notification-related API endpoints
type NotificationHandler struct {
	notificationService *services.NotificationService
	validator           *validation.Validator
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		validator:           validation.NewValidator(),
	}
}

// CreateNotificationRequest represents an admin-created notification
type CreateNotificationRequest struct {
	UserID  uint   `json:"user_id" validate:"required,min=1"`
	Message string `json:"message" validate:"required,min=1,max=255"`
}

// GetNotifications handles GET /api/v1/notifications.
// Returns the authenticated user's notifications, newest first.
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	if limit > 100 {
		limit = 100
	}

	notifications, total, err := h.notificationService.GetNotificationsByUser(c.Context(), services.ListNotificationsOptions{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch notifications")
	}

	responseData := make([]model.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responseData = append(responseData, n.ToResponse())
	}

	return response.Success(c, fiber.Map{
		"notifications": responseData,
		"total":         total,
		"limit":         limit,
		"offset":        offset,
	})
}

// GetNotification handles GET /api/v1/notifications/:id
func (h *NotificationHandler) GetNotification(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	notificationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	notification, err := h.notificationService.GetNotificationByID(c.Context(), uint(notificationID), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch notification")
	}
	if notification == nil {
		return response.NotFound(c, "Notification not found")
	}

	return response.Success(c, notification.ToResponse())
}

// CreateNotification handles POST /api/v1/notifications. Admin only; the
// row is created unsent and queued for email delivery.
func (h *NotificationHandler) CreateNotification(c *fiber.Ctx) error {
	user, _ := middleware.GetUser(c)
	if !permission.AdminOrReadOnly(c.Method(), user) {
		return response.Forbidden(c, "")
	}

	var req CreateNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	notification, err := h.notificationService.CreateNotification(c.Context(), req.UserID, req.Message, nil)
	if err != nil {
		return response.InternalServerError(c, "Failed to create notification")
	}

	return response.Created(c, notification.ToResponse())
}

// DeleteNotification handles DELETE /api/v1/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	notificationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.notificationService.DeleteNotification(c.Context(), uint(notificationID), userID); err != nil {
		if err.Error() == "notification not found" {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to delete notification")
	}

	return response.SuccessWithMessage(c, "Notification deleted successfully", nil)
}
