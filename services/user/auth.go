package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	userRepo "freelancehub/database/repository/user"
	"freelancehub/models"
	"freelancehub/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// cachedIdentity is what the auth cache keeps for a verified, active user.
type cachedIdentity struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func authCacheKey(userID string) string {
	return utils.AuthCachePrefix + userID
}

// Authenticate validates the token and confirms the user still exists and is
// active. Verified identities are cached in Redis for CacheTTL when a cache is configured.
func (s *DefaultUserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ParseToken(s.Secret, token)
	if err != nil {
		return nil, err
	}
	userID := claims.Subject

	if u := s.cachedUser(ctx, userID); u != nil {
		return u, nil
	}

	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, userRepo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}

	s.cacheUser(ctx, u)
	return u, nil
}

func (s *DefaultUserService) cachedUser(ctx context.Context, userID string) *models.User {
	if s.Cache == nil {
		return nil
	}
	raw, err := s.Cache.Get(ctx, authCacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.GetLogger().Warn("auth cache read failed", zap.String("userId", userID), zap.Error(err))
		}
		return nil
	}
	var id cachedIdentity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil
	}
	return &models.User{ID: id.ID, Name: id.Name, Email: id.Email, Role: id.Role, IsActive: true}
}

func (s *DefaultUserService) cacheUser(ctx context.Context, u *models.User) {
	if s.Cache == nil || s.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(cachedIdentity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role})
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, authCacheKey(u.ID), raw, s.CacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("auth cache write failed", zap.String("userId", u.ID), zap.Error(err))
	}
}

func (s *DefaultUserService) evictUser(ctx context.Context, userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, authCacheKey(userID)).Err(); err != nil {
		utils.GetLogger().Warn("auth cache evict failed", zap.String("userId", userID), zap.Error(err))
	}
}
