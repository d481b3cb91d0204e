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
	collectionFolders = "folders"

	indexUniqueFolderName = "uniq_folder_name_parent"
	indexUniqueRoot       = "uniq_root"
)

type FolderRepository struct {
	col *mongo.Collection
}

func NewFolderRepository(db *mongo.Database) *FolderRepository {
	return &FolderRepository{col: db.Collection(collectionFolders)}
}

// folderDoc stores the root with a null parent_folder_id.
type folderDoc struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Name      string              `bson:"name"`
	ParentID  *primitive.ObjectID `bson:"parent_folder_id"`
	IsRoot    bool                `bson:"is_root,omitempty"`
	CreatedAt time.Time           `bson:"created_at"`
}

func (d *folderDoc) toDomain() *domain.Folder {
	f := &domain.Folder{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.ParentID != nil {
		f.ParentID = d.ParentID.Hex()
	}
	return f
}

func objectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

// EnsureRoot inserts the root folder unless one exists. Concurrent callers
// converge on one document through the upsert and the uniq_root index.
func (r *FolderRepository) EnsureRoot(ctx context.Context, name string, at time.Time) (*domain.Folder, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"parent_folder_id": nil, "is_root": true},
		bson.M{"$setOnInsert": bson.M{"name": name, "created_at": at}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, false, fmt.Errorf("ensure root: %w", err)
	}

	root, err := r.FindRoot(ctx)
	if err != nil {
		return nil, false, err
	}
	return root, res != nil && res.UpsertedCount > 0, nil
}

func (r *FolderRepository) FindRoot(ctx context.Context) (*domain.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"parent_folder_id": nil, "is_root": true})
}

func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	parent, err := objectID(folder.ParentID, domain.ErrParentNotFound)
	if err != nil {
		return "", err
	}
	doc := folderDoc{
		ID:        primitive.NewObjectID(),
		Name:      folder.Name,
		ParentID:  &parent,
		CreatedAt: folder.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.ErrFolderExists
		}
		return "", fmt.Errorf("insert folder: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *FolderRepository) FindByID(ctx context.Context, id string) (*domain.Folder, error) {
	oid, err := objectID(id, domain.ErrFolderNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *FolderRepository) FindByName(ctx context.Context, name string) ([]*domain.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"name": name})
}

func (r *FolderRepository) FindChild(ctx context.Context, parentID, name string) (*domain.Folder, error) {
	parent, err := objectID(parentID, domain.ErrFolderNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"parent_folder_id": parent, "name": name})
}

func (r *FolderRepository) ListChildren(ctx context.Context, parentID string) ([]*domain.Folder, error) {
	parent, err := objectID(parentID, domain.ErrFolderNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, bson.M{"parent_folder_id": parent})
}

func (r *FolderRepository) CountChildren(ctx context.Context, parentID string) (int64, error) {
	parent, err := objectID(parentID, domain.ErrFolderNotFound)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"parent_folder_id": parent})
	if err != nil {
		return 0, fmt.Errorf("count subfolders: %w", err)
	}
	return n, nil
}

func (r *FolderRepository) Rename(ctx context.Context, id, name string) error {
	oid, err := objectID(id, domain.ErrFolderNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrFolderExists
		}
		return fmt.Errorf("rename folder: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrFolderNotFound
	}
	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrFolderNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrFolderNotFound
	}
	return nil
}

func (r *FolderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Folder, error) {
	var doc folderDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrFolderNotFound
		}
		return nil, fmt.Errorf("find folder: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *FolderRepository) find(ctx context.Context, filter bson.M) ([]*domain.Folder, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer cur.Close(ctx)

	var docs []folderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode folders: %w", err)
	}
	out := make([]*domain.Folder, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func ensureFolderIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionFolders).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "parent_folder_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName(indexUniqueFolderName).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "is_root", Value: 1}},
			Options: options.Index().SetName(indexUniqueRoot).SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_root": true}),
		},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("folder indexes: %w", err)
	}
	return nil
}
