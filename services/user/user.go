package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userRepo "freelancehub/database/repository/user"
	"freelancehub/models"
	"freelancehub/utils"

	"go.uber.org/zap"
)

func (s *DefaultUserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, userRepo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return u, nil
}

// UpdateFCMToken stores the device token used for mobile push. An empty token unregisters the device.
func (s *DefaultUserService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	err := s.Repo.UpdateFields(ctx, userID, map[string]any{"fcmToken": strings.TrimSpace(token)})
	if errors.Is(err, userRepo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update FCM token: %w", err)
	}
	return nil
}

// SetActive enables or disables an account. Deactivation takes effect on the
// next request because the cached identity is evicted.
func (s *DefaultUserService) SetActive(ctx context.Context, userID string, active bool) error {
	err := s.Repo.UpdateFields(ctx, userID, map[string]any{"isActive": active})
	if errors.Is(err, userRepo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	s.evictUser(ctx, userID)
	utils.GetLogger().Info("user status changed", zap.String("userId", userID), zap.Bool("active", active))
	return nil
}
