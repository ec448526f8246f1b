package model

import (
	"time"

	"gorm.io/gorm"
)

// Course difficulty levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// IsValidLevel reports whether level is one of the known difficulty levels.
func IsValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Category groups courses by topic (e.g., "Programming", "Design")
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`

	// Relationships
	Courses []Course `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

// Course represents a course authored by an instructor. The author is set at
// creation and is the root of the content ownership chain.
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	AuthorID    uint           `gorm:"not null;index" json:"author_id"`
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Level       string         `gorm:"type:varchar(20);not null" json:"level"` // beginner, intermediate, advanced

	// Relationships
	Author   User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Category Category           `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
	Modules  []CourseModule     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	Students []CourseEnrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Reviews  []Review           `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// CourseModule represents an ordered section within a course
type CourseModule struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID    uint           `gorm:"not null;index" json:"course_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Position    uint           `gorm:"not null;default:0" json:"position"`

	// Relationships
	Course  Course   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Lessons []Lesson `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

// TableName specifies the table name for CourseModule
func (CourseModule) TableName() string {
	return "course_modules"
}

// BeforeCreate assigns the position as previous sibling's position + 1 when
// no explicit position was supplied. Positions are never renumbered on update.
func (m *CourseModule) BeforeCreate(tx *gorm.DB) error {
	if m.Position != 0 {
		return nil
	}
	var last CourseModule
	err := tx.Where("course_id = ?", m.CourseID).Order("position DESC").First(&last).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			m.Position = 1
			return nil
		}
		return err
	}
	m.Position = last.Position + 1
	return nil
}

// Lesson represents a unit of content within a module
type Lesson struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	ModuleID  uint           `gorm:"not null;index" json:"module_id"`
	Title     string         `gorm:"not null" json:"title"`
	Content   string         `gorm:"type:text" json:"content"`
	VideoURL  string         `gorm:"type:varchar(500)" json:"video_url"`
	Position  uint           `gorm:"not null;default:0" json:"position"`

	// Relationships
	Module CourseModule `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"module,omitempty"`
	Quiz   *Quiz        `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"quiz,omitempty"`
}

// BeforeCreate assigns the position within the parent module, same rule as
// CourseModule.BeforeCreate.
func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.Position != 0 {
		return nil
	}
	var last Lesson
	err := tx.Where("module_id = ?", l.ModuleID).Order("position DESC").First(&last).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			l.Position = 1
			return nil
		}
		return err
	}
	l.Position = last.Position + 1
	return nil
}

// Quiz represents a quiz attached to a lesson (one-to-one)
type Quiz struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	LessonID  uint           `gorm:"not null;uniqueIndex" json:"lesson_id"`
	Title     string         `gorm:"not null" json:"title"`

	// Relationships
	Lesson    Lesson     `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"lesson,omitempty"`
	Questions []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// Question represents a single question in a quiz
type Question struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	QuizID    uint           `gorm:"not null;index" json:"quiz_id"`
	Text      string         `gorm:"type:text;not null" json:"text"`

	// Relationships
	Quiz    Quiz     `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"quiz,omitempty"`
	Answers []Answer `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

// Answer represents an answer option for a question
type Answer struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	QuestionID uint           `gorm:"not null;index" json:"question_id"`
	Text       string         `gorm:"not null" json:"text"`
	IsCorrect  bool           `gorm:"default:false" json:"is_correct"`

	// Relationships
	Question Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"question,omitempty"`
}
