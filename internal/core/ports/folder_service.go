package ports

import (
	"context"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// FolderService manages the folder tree.
type FolderService interface {
	EnsureRootExists(ctx context.Context) (*domain.Folder, error)
	Root(ctx context.Context) (*domain.Folder, error)
	CreateFolder(ctx context.Context, name, parentID string, actor domain.Actor) (string, error)
	DeleteFolder(ctx context.Context, folderID string, actor domain.Actor) error
	RenameFolder(ctx context.Context, folderID, newName string, actor domain.Actor) error
	ListContents(ctx context.Context, name string, actor domain.Actor) (*domain.FolderContents, error)
	ListContentsByID(ctx context.Context, folderID string, actor domain.Actor) (*domain.FolderContents, error)
}
