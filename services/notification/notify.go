package notification

import (
	"context"
	"fmt"

	"freelancehub/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func (s *DefaultNotificationService) Notify(ctx context.Context, userID string, in models.NotificationInput) (*models.Notification, error) {
	n, err := newNotification(userID, in, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification for user %s: %w", userID, err)
	}

	// The record is durable from here on; a client hanging up must not stop delivery.
	s.deliver(context.WithoutCancel(ctx), n)
	return n, nil
}

func (s *DefaultNotificationService) NotifyMany(ctx context.Context, userIDs []string, in models.NotificationInput) ([]*models.Notification, error) {
	created := make([]*models.Notification, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	var errs error
	for _, userID := range userIDs {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		n, err := s.Notify(ctx, userID, in)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("user %q: %w", userID, err))
			continue
		}
		created = append(created, n)
	}
	if errs != nil {
		s.Logger.Warn("bulk notify partially failed",
			zap.Int("targets", len(seen)),
			zap.Int("created", len(created)),
			zap.Error(errs))
	}
	return created, errs
}

// deliver pushes a freshly stored notification followed by the owner's
// recomputed unread count. Failures are logged and never returned.
func (s *DefaultNotificationService) deliver(ctx context.Context, n *models.Notification) {
	// pushers may hold on to what they are given; n itself is updated below
	snapshot := *n
	delivered, err := s.Pusher.PushNotification(ctx, n.UserID, &snapshot)
	if err != nil {
		s.Logger.Warn("notification push incomplete",
			zap.String("userId", n.UserID),
			zap.String("notificationId", n.ID),
			zap.Int("delivered", delivered),
			zap.Error(err))
	}
	if delivered > 0 {
		at := s.now()
		if err := s.Repo.MarkSent(ctx, n.ID, at); err != nil {
			s.Logger.Warn("failed to mark notification sent", zap.String("notificationId", n.ID), zap.Error(err))
		} else {
			n.Sent = true
			n.SentAt = &at
		}
	}

	s.publishCount(ctx, n.UserID)
}

// PublishUnreadCount recomputes userID's unread count from the store and
// pushes it. Calls for one user are serialized, so the last count pushed is
// never older than the last one read.
func (s *DefaultNotificationService) PublishUnreadCount(ctx context.Context, userID string) (int64, error) {
	ctx = context.WithoutCancel(ctx)
	unlock := s.counts.lock(userID)
	defer unlock()

	count, err := s.Repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	if _, err := s.Pusher.PushUnreadCount(ctx, userID, count); err != nil {
		s.Logger.Warn("unread count push incomplete",
			zap.String("userId", userID), zap.Int64("unreadCount", count), zap.Error(err))
	}
	return count, nil
}

func (s *DefaultNotificationService) publishCount(ctx context.Context, userID string) {
	if _, err := s.PublishUnreadCount(ctx, userID); err != nil {
		s.Logger.Error("failed to recompute unread count", zap.String("userId", userID), zap.Error(err))
	}
}
