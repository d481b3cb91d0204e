package ports

import (
	"context"
	"io"
	"time"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// SignUpInput carries the data needed to create an account.
type SignUpInput struct {
	Username   string
	Password   string
	Role       string
	FaceSample []byte
}

// LoginInput carries both authentication factors.
type LoginInput struct {
	Username   string
	Password   string
	FaceSample []byte
}

// LoginResult is returned after both factors pass.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	UpdatePassword(ctx context.Context, actor domain.Actor, oldPassword, newPassword string) error
	Logout(ctx context.Context, claims *domain.Claims) error
	FaceReference(ctx context.Context, actor domain.Actor) (io.ReadCloser, error)
}
