package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

const (
	collectionFiles = "files"

	indexUniqueFileName = "uniq_file_name_folder"
)

type FileRepository struct {
	col *mongo.Collection
}

func NewFileRepository(db *mongo.Database) *FileRepository {
	return &FileRepository{col: db.Collection(collectionFiles)}
}

type fileDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Filename    string             `bson:"filename"`
	FolderID    primitive.ObjectID `bson:"folder_id"`
	Descriptor  string             `bson:"descriptor"`
	ContentType string             `bson:"content_type"`
	Size        int64              `bson:"size"`
	State       string             `bson:"state"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *fileDoc) toDomain() *domain.FileEntry {
	return &domain.FileEntry{
		ID:          d.ID.Hex(),
		Filename:    d.Filename,
		FolderID:    d.FolderID.Hex(),
		Descriptor:  d.Descriptor,
		ContentType: d.ContentType,
		Size:        d.Size,
		State:       domain.FileState(d.State),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

func (r *FileRepository) Create(ctx context.Context, entry *domain.FileEntry) (string, error) {
	folder, err := objectID(entry.FolderID, domain.ErrFolderNotFound)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fileDoc{
		ID:          primitive.NewObjectID(),
		Filename:    entry.Filename,
		FolderID:    folder,
		Descriptor:  entry.Descriptor,
		ContentType: entry.ContentType,
		Size:        entry.Size,
		State:       string(entry.State),
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrFileExists
		}
		return "", fmt.Errorf("insert file: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *FileRepository) FindByID(ctx context.Context, id string) (*domain.FileEntry, error) {
	oid, err := objectID(id, domain.ErrFileNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByName matches entries in any state, so a pending upload still
// reserves its name.
func (r *FileRepository) FindByName(ctx context.Context, folderID, filename string) (*domain.FileEntry, error) {
	folder, err := objectID(folderID, domain.ErrFileNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"folder_id": folder, "filename": filename})
}

func (r *FileRepository) ListByFolder(ctx context.Context, folderID string) ([]*domain.FileEntry, error) {
	folder, err := objectID(folderID, domain.ErrFolderNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx,
		bson.M{"folder_id": folder, "state": string(domain.FileStateReady)},
		options.Find().SetSort(bson.D{{Key: "filename", Value: 1}}),
	)
}

func (r *FileRepository) CountByFolder(ctx context.Context, folderID string) (int64, error) {
	folder, err := objectID(folderID, domain.ErrFolderNotFound)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"folder_id": folder})
	if err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}

// SetState moves an entry from one state to another. The transition is
// conditional on the current state, so two deleters cannot both win.
func (r *FileRepository) SetState(ctx context.Context, id string, from, to domain.FileState, at time.Time) error {
	oid, err := objectID(id, domain.ErrFileNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "state": string(from)},
		bson.M{"$set": bson.M{"state": string(to), "updated_at": at}},
	)
	if err != nil {
		return fmt.Errorf("set file state: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

func (r *FileRepository) Rename(ctx context.Context, id, filename string, at time.Time) error {
	oid, err := objectID(id, domain.ErrFileNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "state": string(domain.FileStateReady)},
		bson.M{"$set": bson.M{"filename": filename, "updated_at": at}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrFileExists
		}
		return fmt.Errorf("rename file: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrFileNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}

// FindStale returns up to limit entries in one of states whose last update
// is older than before, oldest first.
func (r *FileRepository) FindStale(ctx context.Context, states []domain.FileState, before time.Time, limit int) ([]*domain.FileEntry, error) {
	names := make([]string, 0, len(states))
	for _, s := range states {
		names = append(names, string(s))
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx,
		bson.M{"state": bson.M{"$in": names}, "updated_at": bson.M{"$lt": before}},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}}).SetLimit(int64(limit)),
	)
}

func (r *FileRepository) findOne(ctx context.Context, filter bson.M) (*domain.FileEntry, error) {
	var doc fileDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *FileRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.FileEntry, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer cur.Close(ctx)

	var docs []fileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	out := make([]*domain.FileEntry, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func ensureFileIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionFiles).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "folder_id", Value: 1}, {Key: "filename", Value: 1}},
			Options: options.Index().SetName(indexUniqueFileName).SetUnique(true),
		},
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "updated_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("file indexes: %w", err)
	}
	return nil
}
