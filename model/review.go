package model

import (
	"time"

	"gorm.io/gorm"
)

// Review represents a student's rating and review of a course.
// Rating is an integer in the inclusive range 1..5, validated at the API
// boundary before persistence.
type Review struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	CourseID  uint           `gorm:"not null;index" json:"course_id"`
	Rating    int            `gorm:"not null" json:"rating"`
	Title     string         `gorm:"type:varchar(100);not null" json:"title"`
	Content   string         `gorm:"type:text" json:"content"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
