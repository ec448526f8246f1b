package cron

import (
	"context"
	"fmt"
	"time"
)

const jobTimeout = 5 * time.Minute

// CleanupSentNotifications removes sent notifications older than 30 days.
func (m *CronManager) CleanupSentNotifications() {
	jobName := "cleanup_sent_notifications"

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := m.notifications.CleanupSentNotifications(ctx, 30*24*time.Hour)
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("removed %d sent notifications", removed))
}

// CleanupExpiredTokens purges blacklist entries for tokens that have expired.
func (m *CronManager) CleanupExpiredTokens() {
	jobName := "cleanup_expired_tokens"

	removed, err := m.blacklist.CleanupExpiredTokens()
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("removed %d expired blacklist entries", removed))
}

// ReportQueueDepth records the current background queue depth. A growing
// depth means delivery workers are falling behind.
func (m *CronManager) ReportQueueDepth() {
	jobName := "report_queue_depth"

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	depth, err := m.jobQueue.Depth(ctx)
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("queue depth %d", depth))
}
