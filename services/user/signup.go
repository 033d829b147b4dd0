package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	userRepo "freelancehub/database/repository/user"
	"freelancehub/models"
	"freelancehub/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates an agent or enterprise account and signs the user in.
// Admin accounts cannot be self-registered.
func (s *DefaultUserService) Register(ctx context.Context, req models.UserRegistration) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if req.Role != models.RoleAgent && req.Role != models.RoleEnterprise {
		return nil, ErrInvalidRole
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.GetLogger().Error("Register: failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, userRepo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		utils.GetLogger().Error("Register: failed to create user", zap.Error(err))
		return nil, fmt.Errorf("registration failed, please try again")
	}

	utils.GetLogger().Info("user registered", zap.String("userId", u.ID), zap.String("role", string(u.Role)))
	return s.issue(u)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *DefaultUserService) issue(u *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateToken(s.Secret, u.ID, u.Email, string(u.Role), s.TokenTTL)
	if err != nil {
		utils.GetLogger().Error("failed to generate token", zap.String("userId", u.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to generate token")
	}
	return &AuthResponse{
		ID:    u.ID,
		Token: token,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}, nil
}
