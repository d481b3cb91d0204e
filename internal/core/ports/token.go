package ports

import (
	"context"
	"time"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// TokenService issues and validates session tokens.
type TokenService interface {
	Issue(user *domain.User) (string, *domain.Claims, error)
	Verify(ctx context.Context, token string) (*domain.Claims, error)
	Revoke(ctx context.Context, claims *domain.Claims) error
	RevokeAllFor(ctx context.Context, subject string) error
}

// RevocationStore remembers revoked tokens until they would expire anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// RevokeBefore invalidates every token of subject issued before cutoff.
	RevokeBefore(ctx context.Context, subject string, cutoff time.Time, ttl time.Duration) error
	// RevokedBefore returns the cutoff for subject, or the zero time.
	RevokedBefore(ctx context.Context, subject string) (time.Time, error)
}
