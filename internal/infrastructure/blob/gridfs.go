// Package blob holds the content stores behind ports.BlobStore.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

const (
	DefaultGridFSBucket = "fs"

	gridfsTimeout = 30 * time.Second
)

// GridFSStore keeps blobs in a MongoDB GridFS bucket. Descriptors are the
// hex ObjectIDs GridFS assigns.
type GridFSStore struct {
	db     *mongo.Database
	bucket string
}

func NewGridFSStore(db *mongo.Database, bucket string) *GridFSStore {
	if bucket == "" {
		bucket = DefaultGridFSBucket
	}
	return &GridFSStore{db: db, bucket: bucket}
}

// open returns a bucket whose deadlines follow ctx. GridFS in driver v1 has
// no context-aware upload, so each call gets its own bucket.
func (s *GridFSStore) open(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucket))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}

	write, read := deadlines(ctx, time.Now())
	if err := b.SetWriteDeadline(write); err != nil {
		return nil, err
	}
	if err := b.SetReadDeadline(read); err != nil {
		return nil, err
	}
	return b, nil
}

// deadlines derives bucket deadlines from ctx. Without a ctx deadline writes
// are capped at gridfsTimeout, while reads get none: a download stream stays
// open as long as the client keeps reading.
func deadlines(ctx context.Context, now time.Time) (write, read time.Time) {
	if d, ok := ctx.Deadline(); ok {
		return d, d
	}
	return now.Add(gridfsTimeout), time.Time{}
}

func (s *GridFSStore) Put(ctx context.Context, content io.Reader, meta domain.BlobMeta) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := s.open(ctx)
	if err != nil {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{
		"folder_id":    meta.FolderID,
		"content_type": meta.ContentType,
		"owner":        meta.Owner,
	})
	id, err := b.UploadFromStream(meta.Filename, content, opts)
	if err != nil {
		return "", fmt.Errorf("gridfs upload: %w", err)
	}
	return id.Hex(), nil
}

func (s *GridFSStore) Get(ctx context.Context, descriptor string) (io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(descriptor)
	if err != nil {
		return nil, domain.ErrBlobNotFound
	}
	b, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := b.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrBlobNotFound
		}
		return nil, fmt.Errorf("gridfs open: %w", err)
	}
	return stream, nil
}

func (s *GridFSStore) Delete(ctx context.Context, descriptor string) error {
	oid, err := primitive.ObjectIDFromHex(descriptor)
	if err != nil {
		return domain.ErrBlobNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := s.open(ctx)
	if err != nil {
		return err
	}

	if err := b.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return domain.ErrBlobNotFound
		}
		return fmt.Errorf("gridfs delete: %w", err)
	}
	return nil
}
