// Package course exposes CRUD endpoints for the content hierarchy: courses,
// modules, lessons, quizzes, questions and answers, plus enrollment.
//
// Reads are open to everyone. Writes go through the permission resolver:
// admins may write anywhere, instructors only within courses they authored,
// students and anonymous users nowhere. Creates are checked against the
// parent node, so an instructor cannot attach content to a course they do
// not own.
package course

import (
	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/permission"
	"github.com/skillhub/skillhub-api/services"
	"github.com/skillhub/skillhub-api/utils/validation"
)

// CourseHandler handles content-hierarchy requests
type CourseHandler struct {
	db            *gorm.DB
	validator     *validation.Validator
	resolver      *permission.Resolver
	notifications *services.NotificationService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, notifications *services.NotificationService) *CourseHandler {
	return &CourseHandler{
		db:            db,
		validator:     validation.NewValidator(),
		resolver:      permission.NewResolver(db),
		notifications: notifications,
	}
}
