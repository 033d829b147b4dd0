package notification

import (
	"context"
	"fmt"
	"strings"

	"freelancehub/models"

	"go.uber.org/zap"
)

func (s *DefaultNotificationService) Delete(ctx context.Context, id, requesterID string) error {
	if _, err := s.owned(ctx, id, requesterID); err != nil {
		return err
	}
	existed, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	if !existed {
		return ErrNotFound
	}
	s.publishCount(ctx, requesterID)
	return nil
}

func (s *DefaultNotificationService) DeleteAll(ctx context.Context, userID string, filter models.NotificationFilter) (int64, error) {
	if err := validateFilter(filter); err != nil {
		return 0, err
	}
	deleted, err := s.Repo.DeleteMany(ctx, userID, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	s.publishCount(ctx, userID)
	return deleted, nil
}

func (s *DefaultNotificationService) DeleteRelated(ctx context.Context, ref models.RelatedRef) (int64, error) {
	if ref.Kind.Field() == "" {
		return 0, invalid("kind", "%q is not one of task, application, payment", ref.Kind)
	}
	if strings.TrimSpace(ref.ID) == "" {
		return 0, invalid("id", "is required")
	}

	owners, deleted, err := s.Repo.DeleteByRelated(ctx, ref)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications for %s %s: %w", ref.Kind, ref.ID, err)
	}
	for _, userID := range owners {
		s.publishCount(ctx, userID)
	}
	s.Logger.Info("cascaded notification delete",
		zap.String("kind", string(ref.Kind)),
		zap.String("relatedId", ref.ID),
		zap.Int64("deleted", deleted),
		zap.Int("owners", len(owners)))
	return deleted, nil
}
