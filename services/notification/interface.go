package notification

import (
	"context"
	"fmt"
	"time"

	notificationRepo "freelancehub/database/repository/notification"
	"freelancehub/models"

	"go.uber.org/zap"
)

// NotificationService is the single entry point other subsystems use to raise
// notifications, and the read-state API used by the client-facing handlers.
type NotificationService interface {
	// Notify persists a notification for userID, then recomputes and pushes the unread count.
	Notify(ctx context.Context, userID string, in models.NotificationInput) (*models.Notification, error)
	// NotifyMany applies Notify to every target independently. Successful
	// notifications are returned even when some targets failed.
	NotifyMany(ctx context.Context, userIDs []string, in models.NotificationInput) ([]*models.Notification, error)

	Get(ctx context.Context, id, requesterID string) (*models.Notification, error)
	List(ctx context.Context, userID string, page, limit int64, filter models.NotificationFilter) (*models.NotificationPage, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// PublishUnreadCount recomputes userID's unread count and pushes it to every live session.
	PublishUnreadCount(ctx context.Context, userID string) (int64, error)

	MarkRead(ctx context.Context, id, requesterID string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)

	Delete(ctx context.Context, id, requesterID string) error
	DeleteAll(ctx context.Context, userID string, filter models.NotificationFilter) (int64, error)
	// DeleteRelated cascades the deletion of a task, application or payment.
	DeleteRelated(ctx context.Context, ref models.RelatedRef) (int64, error)
}

// Pusher delivers events to a user's live sessions. Both calls are best effort:
// they report how many sessions accepted the event and never block on the network.
type Pusher interface {
	PushNotification(ctx context.Context, userID string, n *models.Notification) (int, error)
	PushUnreadCount(ctx context.Context, userID string, count int64) (int, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo   notificationRepo.NotificationRepository
	Pusher Pusher
	Logger *zap.Logger

	// Now is overridable in tests.
	Now func() time.Time

	counts countLocks
}

func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	pusher Pusher,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification service initialization error: repository is nil")
	}
	if pusher == nil {
		pusher = Pushers{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultNotificationService{
		Repo:   repo,
		Pusher: pusher,
		Logger: logger,
		Now:    time.Now,
	}, nil
}

func (s *DefaultNotificationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
