package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification represents a message queued for email delivery to a user.
// Sent transitions false -> true exactly once, after the delivery worker has
// confirmed the email went out; it never reverts to false.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Message   string         `gorm:"type:varchar(255);not null" json:"message"`
	Sent      bool           `gorm:"default:false" json:"sent"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"` // Additional context

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// NotificationMetadata carries context about the event that produced a
// notification, serialized into the Metadata JSON column.
type NotificationMetadata struct {
	CourseID    uint   `json:"course_id,omitempty"`
	CourseTitle string `json:"course_title,omitempty"`
	LessonID    uint   `json:"lesson_id,omitempty"`
	LessonTitle string `json:"lesson_title,omitempty"`
}

// NotificationResponse represents the API response format for a notification
type NotificationResponse struct {
	ID        uint           `json:"id"`
	UserID    uint           `json:"user_id"`
	Message   string         `json:"message"`
	Sent      bool           `json:"sent"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ToResponse converts a Notification to NotificationResponse
func (n *Notification) ToResponse() NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Sent:      n.Sent,
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	}
}
