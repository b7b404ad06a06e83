package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/expense-tracker/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user-related database operations.
// Emails are matched case-insensitively.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
