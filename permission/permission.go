// Package permission decides write access for the course content hierarchy.
//
// Every node in the Course -> CourseModule -> Lesson -> Quiz -> Question ->
// Answer chain is owned, transitively, by the author of its course. Write
// access is resolved by walking the parent chain up to the course and
// comparing its author with the requester. A broken chain (a parent deleted
// out of band, an unset reference) resolves to "no author" and therefore to
// deny, never to an error.
package permission

import (
	"context"

	"github.com/skillhub/skillhub-api/model"
	"gorm.io/gorm"
)

// Capability describes what a role may do to content-hierarchy nodes.
type Capability int

const (
	// CapabilityReadOnly may never mutate content nodes.
	CapabilityReadOnly Capability = iota
	// CapabilityOwnerWrite may mutate nodes whose owning author it is.
	CapabilityOwnerWrite
	// CapabilityFullWrite may mutate any node.
	CapabilityFullWrite
)

// RoleCapability maps a user role onto its content capability. Unknown roles
// fall back to read-only.
func RoleCapability(role string) Capability {
	switch role {
	case model.RoleAdmin:
		return CapabilityFullWrite
	case model.RoleInstructor:
		return CapabilityOwnerWrite
	default:
		// Students are never authors, regardless of object-level state.
		return CapabilityReadOnly
	}
}

// IsSafeMethod reports whether the HTTP method is read-only.
func IsSafeMethod(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}

// NodeKind tags the variant of a content-hierarchy node.
type NodeKind int

const (
	KindCourse NodeKind = iota
	KindModule
	KindLesson
	KindQuiz
	KindQuestion
	KindAnswer
)

// Node is a tagged reference to one node in the content hierarchy. Exactly
// one ID is meaningful, selected by Kind.
type Node struct {
	Kind NodeKind
	ID   uint
}

// CourseNode returns a Node referencing a course.
func CourseNode(id uint) Node { return Node{Kind: KindCourse, ID: id} }

// ModuleNode returns a Node referencing a course module.
func ModuleNode(id uint) Node { return Node{Kind: KindModule, ID: id} }

// LessonNode returns a Node referencing a lesson.
func LessonNode(id uint) Node { return Node{Kind: KindLesson, ID: id} }

// QuizNode returns a Node referencing a quiz.
func QuizNode(id uint) Node { return Node{Kind: KindQuiz, ID: id} }

// QuestionNode returns a Node referencing a question.
func QuestionNode(id uint) Node { return Node{Kind: KindQuestion, ID: id} }

// AnswerNode returns a Node referencing an answer.
func AnswerNode(id uint) Node { return Node{Kind: KindAnswer, ID: id} }

// Resolver walks the ownership chain of content nodes.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a resolver backed by the given database.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// ResolveAuthor walks from node up to its owning course and returns the
// course author's user ID. ok is false when the node kind is unrecognized or
// any link in the chain is missing.
func (r *Resolver) ResolveAuthor(ctx context.Context, node Node) (uint, bool) {
	switch node.Kind {
	case KindCourse:
		return r.courseAuthor(ctx, node.ID)
	case KindModule:
		return r.moduleAuthor(ctx, node.ID)
	case KindLesson:
		return r.lessonAuthor(ctx, node.ID)
	case KindQuiz:
		return r.quizAuthor(ctx, node.ID)
	case KindQuestion:
		var question model.Question
		if err := r.db.WithContext(ctx).Select("quiz_id").First(&question, node.ID).Error; err != nil {
			return 0, false
		}
		return r.quizAuthor(ctx, question.QuizID)
	case KindAnswer:
		var answer model.Answer
		if err := r.db.WithContext(ctx).Select("question_id").First(&answer, node.ID).Error; err != nil {
			return 0, false
		}
		var question model.Question
		if err := r.db.WithContext(ctx).Select("quiz_id").First(&question, answer.QuestionID).Error; err != nil {
			return 0, false
		}
		return r.quizAuthor(ctx, question.QuizID)
	}
	return 0, false
}

func (r *Resolver) courseAuthor(ctx context.Context, courseID uint) (uint, bool) {
	var course model.Course
	if err := r.db.WithContext(ctx).Select("author_id").First(&course, courseID).Error; err != nil {
		return 0, false
	}
	if course.AuthorID == 0 {
		return 0, false
	}
	return course.AuthorID, true
}

func (r *Resolver) moduleAuthor(ctx context.Context, moduleID uint) (uint, bool) {
	var courseModule model.CourseModule
	if err := r.db.WithContext(ctx).Select("course_id").First(&courseModule, moduleID).Error; err != nil {
		return 0, false
	}
	return r.courseAuthor(ctx, courseModule.CourseID)
}

func (r *Resolver) lessonAuthor(ctx context.Context, lessonID uint) (uint, bool) {
	var lesson model.Lesson
	if err := r.db.WithContext(ctx).Select("module_id").First(&lesson, lessonID).Error; err != nil {
		return 0, false
	}
	return r.moduleAuthor(ctx, lesson.ModuleID)
}

func (r *Resolver) quizAuthor(ctx context.Context, quizID uint) (uint, bool) {
	var quiz model.Quiz
	if err := r.db.WithContext(ctx).Select("lesson_id").First(&quiz, quizID).Error; err != nil {
		return 0, false
	}
	return r.lessonAuthor(ctx, quiz.LessonID)
}

// CanWrite decides whether requester may perform method on node.
//
//  1. Safe methods are always allowed, even anonymously.
//  2. Anonymous requesters are denied every unsafe method.
//  3. Students are denied immediately, before any ownership lookup.
//  4. Admins are allowed unconditionally.
//  5. Instructors are allowed iff the resolved owning author is the
//     requester; a failed resolution is a deny.
func (r *Resolver) CanWrite(ctx context.Context, method string, requester *model.User, node Node) bool {
	if IsSafeMethod(method) {
		return true
	}
	if requester == nil {
		return false
	}
	switch RoleCapability(requester.Role) {
	case CapabilityFullWrite:
		return true
	case CapabilityOwnerWrite:
		author, ok := r.ResolveAuthor(ctx, node)
		if !ok {
			return false
		}
		return author == requester.ID
	default:
		return false
	}
}

// AdminOrReadOnly is the coarse policy for non-hierarchical resources
// (categories, notifications): read is open to everyone, write is admin only.
func AdminOrReadOnly(method string, requester *model.User) bool {
	if IsSafeMethod(method) {
		return true
	}
	return requester != nil && requester.Role == model.RoleAdmin
}
