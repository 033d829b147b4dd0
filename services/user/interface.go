package user

import (
	"context"
	"fmt"
	"time"

	userRepo "freelancehub/database/repository/user"
	"freelancehub/models"

	"github.com/go-redis/redis/v8"
)

type UserService interface {
	// Registration and sign-in
	Register(ctx context.Context, req models.UserRegistration) (*AuthResponse, error)
	Login(ctx context.Context, req models.UserLogin) (*AuthResponse, error)

	// User Management
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, userID, token string) error
	SetActive(ctx context.Context, userID string, active bool) error

	Authenticator
}

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Cache    *redis.Client // optional
	Secret   string
	TokenTTL time.Duration
	CacheTTL time.Duration
}

func NewDefaultUserService(repo userRepo.UserRepository, cache *redis.Client, secret string, tokenTTL, cacheTTL time.Duration) (*DefaultUserService, error) {
	if repo == nil {
		return nil, fmt.Errorf("user service initialization error: repository is nil")
	}
	if secret == "" {
		return nil, fmt.Errorf("user service initialization error: JWT secret is empty")
	}
	return &DefaultUserService{
		Repo:     repo,
		Cache:    cache,
		Secret:   secret,
		TokenTTL: tokenTTL,
		CacheTTL: cacheTTL,
	}, nil
}

// AuthResponse contains the user's ID, token, and role.
type AuthResponse struct {
	ID    string      `json:"id"`
	Token string      `json:"token"`
	Name  string      `json:"name,omitempty"`
	Email string      `json:"email,omitempty"`
	Role  models.Role `json:"role"`
}
