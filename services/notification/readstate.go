package notification

import (
	"context"
	"errors"
	"fmt"
	"math"

	notificationRepo "freelancehub/database/repository/notification"
	"freelancehub/models"

	"go.uber.org/zap"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// owned loads a notification and checks that requesterID is its owner.
func (s *DefaultNotificationService) owned(ctx context.Context, id, requesterID string) (*models.Notification, error) {
	n, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, notificationRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load notification %s: %w", id, err)
	}
	if n.UserID != requesterID {
		return nil, ErrForbidden
	}
	return n, nil
}

func (s *DefaultNotificationService) Get(ctx context.Context, id, requesterID string) (*models.Notification, error) {
	return s.owned(ctx, id, requesterID)
}

// List returns one page of userID's notifications, newest first. Out-of-range
// paging parameters are clamped rather than rejected.
func (s *DefaultNotificationService) List(ctx context.Context, userID string, page, limit int64, filter models.NotificationFilter) (*models.NotificationPage, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	var items []models.Notification
	if skip, ok := pageOffset(page, limit); ok {
		var err error
		items, err = s.Repo.List(ctx, userID, filter, skip, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list notifications: %w", err)
		}
	}
	total, err := s.Repo.Count(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	unread, err := s.Repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	if items == nil {
		items = []models.Notification{}
	}

	return &models.NotificationPage{
		Notifications: items,
		Pagination: models.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
		UnreadCount: unread,
	}, nil
}

func (s *DefaultNotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := s.Repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead is idempotent. The unread count is only pushed when this call
// actually flipped the record.
func (s *DefaultNotificationService) MarkRead(ctx context.Context, id, requesterID string) (*models.Notification, error) {
	n, err := s.owned(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}

	at := s.now()
	changed, err := s.Repo.MarkRead(ctx, id, at)
	if errors.Is(err, notificationRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	if !changed {
		// Lost a race with another reader; return what is stored.
		return s.owned(ctx, id, requesterID)
	}

	n.Read = true
	n.ReadAt = &at
	n.UpdatedAt = at
	s.publishCount(ctx, requesterID)
	return n, nil
}

func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	modified, err := s.Repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	s.Logger.Debug("marked all notifications read", zap.String("userId", userID), zap.Int64("modified", modified))
	s.publishCount(ctx, userID)
	return modified, nil
}

// pageOffset returns the number of records before page. ok is false when the
// offset does not fit in an int64, which no store can reach.
func pageOffset(page, limit int64) (int64, bool) {
	if page-1 > math.MaxInt64/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}
