package blob

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

const (
	BackendGridFS = "gridfs"
	BackendS3     = "s3"
)

// Options select and configure a blob backend.
type Options struct {
	Backend      string
	GridFSBucket string
	S3           S3Config
}

// Open builds the configured backend. GridFS lives in db; S3 ignores it.
func Open(ctx context.Context, opts Options, db *mongo.Database) (ports.BlobStore, error) {
	switch opts.Backend {
	case "", BackendGridFS:
		return NewGridFSStore(db, opts.GridFSBucket), nil
	case BackendS3:
		client, err := NewS3Client(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, opts.S3.Bucket, opts.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", opts.Backend)
	}
}
