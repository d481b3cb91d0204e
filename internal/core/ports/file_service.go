package ports

import (
	"context"
	"io"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// UploadFileInput carries an upload request.
type UploadFileInput struct {
	Content     []byte
	Filename    string
	FolderID    string
	ContentType string
}

// FileDownload is an open blob stream plus the metadata needed to serve it.
// The caller must close Content.
type FileDownload struct {
	Entry   *domain.FileEntry
	Content io.ReadCloser
}

// FileService manages file entries and their blobs.
type FileService interface {
	UploadFile(ctx context.Context, in UploadFileInput, actor domain.Actor) (string, error)
	DeleteFile(ctx context.Context, fileID string, actor domain.Actor) error
	RenameFile(ctx context.Context, fileID, newName string, actor domain.Actor) error
	DownloadFile(ctx context.Context, fileID string, actor domain.Actor) (*FileDownload, error)
}
