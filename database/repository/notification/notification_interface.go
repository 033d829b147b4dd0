package notificationRepo

import (
	"context"
	"errors"
	"time"

	"freelancehub/models"
)

// ErrNotFound is returned when no notification matches the requested id.
var ErrNotFound = errors.New("notification not found")

// NotificationRepository defines methods for notification data access.
// Implementations serialise writes per record; callers do no extra locking.
type NotificationRepository interface {
	// Create inserts a new notification.
	Create(ctx context.Context, n *models.Notification) error
	// GetByID retrieves a notification by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// List returns a user's notifications matching filter, newest first.
	List(ctx context.Context, userID string, filter models.NotificationFilter, skip, limit int64) ([]models.Notification, error)
	// Count returns how many of a user's notifications match filter.
	Count(ctx context.Context, userID string, filter models.NotificationFilter) (int64, error)
	// CountUnread returns how many of a user's notifications are unread.
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead flips an unread notification to read. It reports false when the
	// notification was already read.
	MarkRead(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkAllRead flips every unread notification of a user and returns how many changed.
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	// MarkSent records that a notification reached at least one live session.
	MarkSent(ctx context.Context, id string, at time.Time) error
	// Delete removes a notification, reporting whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteMany removes a user's notifications matching filter.
	DeleteMany(ctx context.Context, userID string, filter models.NotificationFilter) (int64, error)
	// DeleteByRelated removes every notification pointing at ref and returns the owners affected.
	DeleteByRelated(ctx context.Context, ref models.RelatedRef) ([]string, int64, error)
}
