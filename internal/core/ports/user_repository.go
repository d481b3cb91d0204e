package ports

import (
	"context"
	"time"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// UserRepository persists user records.
type UserRepository interface {
	// Create inserts a user. Returns domain.ErrUserExists or
	// domain.ErrAdminExists when a unique index rejects the insert.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	AdminExists(ctx context.Context) (bool, error)
	UpdatePasswordHash(ctx context.Context, username, hash string, at time.Time) error
}
