package userRepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"freelancehub/models"
)

// MemoryUserRepo is an in-process UserRepository used for local development and tests.
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]models.User)}
}

func (r *MemoryUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepo) Create(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	if _, ok := r.users[user.ID]; ok {
		return fmt.Errorf("failed to create user: duplicate id %s", user.ID)
	}
	r.users[user.ID] = *user
	return nil
}

// UpdateFields supports the fields the services write: isActive, fcmToken and name.
func (r *MemoryUserRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "isActive":
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("isActive must be a bool, got %T", v)
			}
			u.IsActive = b
		case "fcmToken":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("fcmToken must be a string, got %T", v)
			}
			u.FCMToken = s
		case "name":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("name must be a string, got %T", v)
			}
			u.Name = s
		default:
			return fmt.Errorf("unsupported field %q", k)
		}
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}
