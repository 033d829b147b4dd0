package user

import (
	"context"
	"errors"
	"fmt"

	userRepo "freelancehub/database/repository/user"
	"freelancehub/models"
	"freelancehub/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultUserService) Login(ctx context.Context, req models.UserLogin) (*AuthResponse, error) {
	userRec, err := s.Repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, userRepo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		utils.GetLogger().Error("Login: failed to fetch user", zap.Error(err))
		return nil, fmt.Errorf("authentication failed, please try again")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userRec.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !userRec.IsActive {
		return nil, ErrUserInactive
	}
	return s.issue(userRec)
}
