package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skillhub/skillhub-api/model"
	"github.com/skillhub/skillhub-api/queue"
)

// Enqueuer pushes background jobs. Satisfied by *queue.Queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job queue.Job) error
}

// NotificationService creates notifications and delivers them by email.
type NotificationService struct {
	db       *gorm.DB
	mailer   Mailer
	enqueuer Enqueuer
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB, mailer Mailer, enqueuer Enqueuer) *NotificationService {
	return &NotificationService{
		db:       db,
		mailer:   mailer,
		enqueuer: enqueuer,
	}
}

// ListNotificationsOptions represents options for listing notifications
type ListNotificationsOptions struct {
	UserID uint
	Limit  int
	Offset int
}

// NotifyLessonCreated fans out a notification to every student enrolled in
// the course the lesson belongs to. One row and one delivery job per
// student. Called after the lesson row is committed.
func (s *NotificationService) NotifyLessonCreated(ctx context.Context, lesson *model.Lesson, course *model.Course) (int, error) {
	var students []model.User
	err := s.db.WithContext(ctx).
		Joins("JOIN course_enrollments ON course_enrollments.user_id = users.id").
		Where("course_enrollments.course_id = ?", course.ID).
		Find(&students).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load enrolled students: %w", err)
	}

	if len(students) == 0 {
		return 0, nil
	}

	message := fmt.Sprintf("New lesson %s added to course %s", lesson.Title, course.Title)

	metadata, err := json.Marshal(model.NotificationMetadata{
		CourseID:    course.ID,
		CourseTitle: course.Title,
		LessonID:    lesson.ID,
		LessonTitle: lesson.Title,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	created := 0
	for _, student := range students {
		notification := model.Notification{
			UserID:   student.ID,
			Message:  message,
			Sent:     false,
			Metadata: datatypes.JSON(metadata),
		}

		if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
			log.Printf("NotificationService: failed to create notification for user %d: %v", student.ID, err)
			continue
		}
		created++

		if err := s.enqueueDelivery(ctx, notification.ID); err != nil {
			// Row stays unsent; the API still shows it to the student.
			log.Printf("NotificationService: failed to enqueue delivery for notification %d: %v", notification.ID, err)
		}
	}

	log.Printf("NotificationService: lesson %d fan-out created %d notifications", lesson.ID, created)
	return created, nil
}

// CreateNotification creates a single notification and enqueues its delivery.
func (s *NotificationService) CreateNotification(ctx context.Context, userID uint, message string, metadata *model.NotificationMetadata) (*model.Notification, error) {
	notification := &model.Notification{
		UserID:  userID,
		Message: message,
		Sent:    false,
	}

	if metadata != nil {
		metadataJSON, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		notification.Metadata = datatypes.JSON(metadataJSON)
	}

	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if err := s.enqueueDelivery(ctx, notification.ID); err != nil {
		log.Printf("NotificationService: failed to enqueue delivery for notification %d: %v", notification.ID, err)
	}

	return notification, nil
}

// enqueueDelivery hands the notification to the job queue. When no queue is
// configured (Redis unavailable at startup) delivery happens inline instead.
func (s *NotificationService) enqueueDelivery(ctx context.Context, notificationID uint) error {
	if s.enqueuer == nil {
		return s.DeliverNotification(ctx, notificationID)
	}
	return s.enqueuer.Enqueue(ctx, queue.Job{
		Type:           queue.JobTypeNotification,
		NotificationID: notificationID,
	})
}

// DeliverNotification sends the email for a pending notification and marks
// it sent. A missing row is logged and dropped, never retried. Delivery is
// at least once: a re-queued job for an already sent row sends again.
func (s *NotificationService) DeliverNotification(ctx context.Context, notificationID uint) error {
	var notification model.Notification
	err := s.db.WithContext(ctx).First(&notification, notificationID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Printf("NotificationService: notification %d not found, dropping job", notificationID)
			return nil
		}
		return fmt.Errorf("failed to load notification %d: %w", notificationID, err)
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, notification.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Printf("NotificationService: user %d for notification %d not found, dropping job", notification.UserID, notificationID)
			return nil
		}
		return fmt.Errorf("failed to load user %d: %w", notification.UserID, err)
	}

	subject := "SkillHub: new course activity"
	body := buildNotificationEmailBody(user.FullName, notification.Message)

	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to deliver notification %d: %w", notificationID, err)
	}

	if err := s.db.WithContext(ctx).Model(&notification).Update("sent", true).Error; err != nil {
		return fmt.Errorf("failed to mark notification %d sent: %w", notificationID, err)
	}

	return nil
}

// HandleJob adapts DeliverNotification to the queue handler contract.
func (s *NotificationService) HandleJob(ctx context.Context, job queue.Job) error {
	return s.DeliverNotification(ctx, job.NotificationID)
}

// GetNotificationsByUser retrieves a user's notifications, newest first.
func (s *NotificationService) GetNotificationsByUser(ctx context.Context, opts ListNotificationsOptions) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	query := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ?", opts.UserID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	} else {
		query = query.Limit(50)
	}

	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, total, nil
}

// GetNotificationByID retrieves a single notification scoped to its owner
func (s *NotificationService) GetNotificationByID(ctx context.Context, notificationID uint, userID uint) (*model.Notification, error) {
	var notification model.Notification

	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch notification: %w", err)
	}

	return &notification, nil
}

// DeleteNotification deletes a notification owned by the user
func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID uint, userID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&model.Notification{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}

// CleanupSentNotifications removes sent notifications older than the given
// duration. Run periodically by the cron manager.
func (s *NotificationService) CleanupSentNotifications(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	result := s.db.WithContext(ctx).
		Where("created_at < ? AND sent = ?", cutoff, true).
		Delete(&model.Notification{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup sent notifications: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d sent notifications", result.RowsAffected)
	}

	return result.RowsAffected, nil
}

func buildNotificationEmailBody(fullName, message string) string {
	if fullName == "" {
		fullName = "there"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333;">
    <h2 style="color: #1a4b8c;">SkillHub</h2>
    <p>Hi %s,</p>
    <p>%s</p>
    <p>Log in to your account to start learning.</p>
    <p style="font-size: 12px; color: #666; margin-top: 30px;">
        You are receiving this email because you are enrolled in a course on SkillHub.
    </p>
</body>
</html>`, fullName, message)
}
