package ports

import (
	"context"
	"time"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// FolderRepository persists the folder tree. Sibling name uniqueness is
// enforced by a unique index; writes that violate it return
// domain.ErrFolderExists.
type FolderRepository interface {
	// EnsureRoot creates the root folder when none exists. The boolean
	// reports whether this call created it.
	EnsureRoot(ctx context.Context, name string, at time.Time) (*domain.Folder, bool, error)
	FindRoot(ctx context.Context) (*domain.Folder, error)
	Create(ctx context.Context, folder *domain.Folder) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Folder, error)
	FindByName(ctx context.Context, name string) ([]*domain.Folder, error)
	FindChild(ctx context.Context, parentID, name string) (*domain.Folder, error)
	ListChildren(ctx context.Context, parentID string) ([]*domain.Folder, error)
	CountChildren(ctx context.Context, parentID string) (int64, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}
