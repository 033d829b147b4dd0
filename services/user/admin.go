package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	userRepo "freelancehub/database/repository/user"
	"freelancehub/models"
	"freelancehub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EnsureAdmin creates the bootstrap admin account if no user owns email yet.
func (s *DefaultUserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password are required")
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			return fmt.Errorf("bootstrap admin email %s belongs to a %s account", email, existing.Role)
		}
		return nil
	}
	if !errors.Is(err, userRepo.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	now := time.Now().UTC()
	admin := &models.User{
		ID:           uuid.New().String(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hashed),
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, admin); err != nil && !errors.Is(err, userRepo.ErrDuplicateEmail) {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	utils.GetLogger().Info("bootstrap admin ensured", zap.String("email", email))
	return nil
}
