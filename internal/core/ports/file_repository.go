package ports

import (
	"context"
	"time"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// FileRepository persists file metadata. (filename, folder_id) is unique;
// violating writes return domain.ErrFileExists.
type FileRepository interface {
	Create(ctx context.Context, entry *domain.FileEntry) (string, error)
	FindByID(ctx context.Context, id string) (*domain.FileEntry, error)
	FindByName(ctx context.Context, folderID, filename string) (*domain.FileEntry, error)
	// ListByFolder returns the ready entries of a folder.
	ListByFolder(ctx context.Context, folderID string) ([]*domain.FileEntry, error)
	// CountByFolder counts entries in any state.
	CountByFolder(ctx context.Context, folderID string) (int64, error)
	// SetState moves an entry from one state to another. Returns
	// domain.ErrFileNotFound when no entry is in the expected state.
	SetState(ctx context.Context, id string, from, to domain.FileState, at time.Time) error
	Rename(ctx context.Context, id, filename string, at time.Time) error
	Delete(ctx context.Context, id string) error
	// FindStale returns entries in one of states last updated before cutoff.
	FindStale(ctx context.Context, states []domain.FileState, before time.Time, limit int) ([]*domain.FileEntry, error)
}
