package model

import (
	"time"

	"gorm.io/gorm"
)

// Role values assignable to a user. Admins have full access, instructors can
// author courses, students can enroll and review.
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	FullName     string         `gorm:"not null" json:"full_name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // admin, instructor, student
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	IsStaff      bool           `gorm:"default:false" json:"is_staff"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	CreatedCourses []Course            `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Enrollments    []CourseEnrollment  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Reviews        []Review            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications  []Notification      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// CourseEnrollment represents a many-to-many relationship between students and courses
type CourseEnrollment struct {
	UserID     uint  `gorm:"primaryKey" json:"user_id"`
	CourseID   uint  `gorm:"primaryKey" json:"course_id"`
	EnrolledAt int64 `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
