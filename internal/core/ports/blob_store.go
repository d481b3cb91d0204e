package ports

import (
	"context"
	"io"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

// BlobStore stores binary content and hands back an opaque descriptor.
// Get and Delete return domain.ErrBlobNotFound for unknown descriptors.
type BlobStore interface {
	Put(ctx context.Context, content io.Reader, meta domain.BlobMeta) (string, error)
	Get(ctx context.Context, descriptor string) (io.ReadCloser, error)
	Delete(ctx context.Context, descriptor string) error
}
