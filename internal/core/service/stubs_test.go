package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
)

var discardLogger = zerolog.Nop()

var idSeq struct {
	sync.Mutex
	n int
}

func newID() string {
	idSeq.Lock()
	defer idSeq.Unlock()
	idSeq.n++
	return fmt.Sprintf("%024x", idSeq.n)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.users[user.Username]; ok {
		return nil, domain.ErrUserExists
	}
	if user.Role == domain.RoleAdmin {
		for _, u := range r.users {
			if u.Role == domain.RoleAdmin {
				return nil, domain.ErrAdminExists
			}
		}
	}
	clone := *user
	clone.ID = newID()
	r.users[user.Username] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) AdminExists(_ context.Context) (bool, error) {
	for _, u := range r.users {
		if u.Role == domain.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, username, hash string, at time.Time) error {
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = at
	return nil
}

// ---------------------------------------------------------------------------
// Folders
// ---------------------------------------------------------------------------

type stubFolderRepo struct {
	mu      sync.Mutex
	folders map[string]*domain.Folder
}

func newStubFolderRepo() *stubFolderRepo {
	return &stubFolderRepo{folders: make(map[string]*domain.Folder)}
}

func (r *stubFolderRepo) EnsureRoot(_ context.Context, name string, at time.Time) (*domain.Folder, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.ParentID == "" {
			clone := *f
			return &clone, false, nil
		}
	}
	root := &domain.Folder{ID: newID(), Name: name, CreatedAt: at}
	r.folders[root.ID] = root
	clone := *root
	return &clone, true, nil
}

func (r *stubFolderRepo) FindRoot(_ context.Context) (*domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.ParentID == "" {
			clone := *f
			return &clone, nil
		}
	}
	return nil, domain.ErrFolderNotFound
}

func (r *stubFolderRepo) Create(_ context.Context, folder *domain.Folder) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.ParentID == folder.ParentID && f.Name == folder.Name {
			return "", domain.ErrFolderExists
		}
	}
	clone := *folder
	clone.ID = newID()
	r.folders[clone.ID] = &clone
	return clone.ID, nil
}

func (r *stubFolderRepo) FindByID(_ context.Context, id string) (*domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, domain.ErrFolderNotFound
	}
	clone := *f
	return &clone, nil
}

func (r *stubFolderRepo) FindByName(_ context.Context, name string) ([]*domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Folder
	for _, f := range r.folders {
		if f.Name == name {
			clone := *f
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubFolderRepo) FindChild(_ context.Context, parentID, name string) (*domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.ParentID == parentID && f.Name == name {
			clone := *f
			return &clone, nil
		}
	}
	return nil, domain.ErrFolderNotFound
}

func (r *stubFolderRepo) ListChildren(_ context.Context, parentID string) ([]*domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Folder
	for _, f := range r.folders {
		if f.ParentID == parentID {
			clone := *f
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubFolderRepo) CountChildren(ctx context.Context, parentID string) (int64, error) {
	children, _ := r.ListChildren(ctx, parentID)
	return int64(len(children)), nil
}

func (r *stubFolderRepo) Rename(_ context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return domain.ErrFolderNotFound
	}
	f.Name = name
	return nil
}

func (r *stubFolderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[id]; !ok {
		return domain.ErrFolderNotFound
	}
	delete(r.folders, id)
	return nil
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

type stubFileRepo struct {
	files     map[string]*domain.FileEntry
	createErr error
	// setStateErr is returned by SetState when the target state matches.
	setStateErr map[domain.FileState]error
	deleteErr   error
}

func newStubFileRepo() *stubFileRepo {
	return &stubFileRepo{
		files:       make(map[string]*domain.FileEntry),
		setStateErr: make(map[domain.FileState]error),
	}
}

func (r *stubFileRepo) Create(_ context.Context, entry *domain.FileEntry) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	for _, f := range r.files {
		if f.FolderID == entry.FolderID && f.Filename == entry.Filename {
			return "", domain.ErrFileExists
		}
	}
	clone := *entry
	clone.ID = newID()
	r.files[clone.ID] = &clone
	return clone.ID, nil
}

func (r *stubFileRepo) FindByID(_ context.Context, id string) (*domain.FileEntry, error) {
	f, ok := r.files[id]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	clone := *f
	return &clone, nil
}

func (r *stubFileRepo) FindByName(_ context.Context, folderID, filename string) (*domain.FileEntry, error) {
	for _, f := range r.files {
		if f.FolderID == folderID && f.Filename == filename {
			clone := *f
			return &clone, nil
		}
	}
	return nil, domain.ErrFileNotFound
}

func (r *stubFileRepo) ListByFolder(_ context.Context, folderID string) ([]*domain.FileEntry, error) {
	var out []*domain.FileEntry
	for _, f := range r.files {
		if f.FolderID == folderID && f.State == domain.FileStateReady {
			clone := *f
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubFileRepo) CountByFolder(_ context.Context, folderID string) (int64, error) {
	var n int64
	for _, f := range r.files {
		if f.FolderID == folderID {
			n++
		}
	}
	return n, nil
}

func (r *stubFileRepo) SetState(_ context.Context, id string, from, to domain.FileState, at time.Time) error {
	if err := r.setStateErr[to]; err != nil {
		return err
	}
	f, ok := r.files[id]
	if !ok || f.State != from {
		return domain.ErrFileNotFound
	}
	f.State = to
	f.UpdatedAt = at
	return nil
}

func (r *stubFileRepo) Rename(_ context.Context, id, filename string, at time.Time) error {
	f, ok := r.files[id]
	if !ok {
		return domain.ErrFileNotFound
	}
	f.Filename = filename
	f.UpdatedAt = at
	return nil
}

func (r *stubFileRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.files[id]; !ok {
		return domain.ErrFileNotFound
	}
	delete(r.files, id)
	return nil
}

func (r *stubFileRepo) FindStale(_ context.Context, states []domain.FileState, before time.Time, limit int) ([]*domain.FileEntry, error) {
	var out []*domain.FileEntry
	for _, f := range r.files {
		for _, st := range states {
			if f.State == st && f.UpdatedAt.Before(before) {
				clone := *f
				out = append(out, &clone)
			}
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Blobs
// ---------------------------------------------------------------------------

type stubBlobStore struct {
	blobs     map[string][]byte
	putErr    error
	deleteErr error
	deleted   []string
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{blobs: make(map[string][]byte)}
}

func (b *stubBlobStore) Put(_ context.Context, content io.Reader, _ domain.BlobMeta) (string, error) {
	if b.putErr != nil {
		return "", b.putErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	id := newID()
	b.blobs[id] = data
	return id, nil
}

func (b *stubBlobStore) Get(_ context.Context, descriptor string) (io.ReadCloser, error) {
	data, ok := b.blobs[descriptor]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *stubBlobStore) Delete(_ context.Context, descriptor string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	if _, ok := b.blobs[descriptor]; !ok {
		return domain.ErrBlobNotFound
	}
	delete(b.blobs, descriptor)
	b.deleted = append(b.deleted, descriptor)
	return nil
}

// ---------------------------------------------------------------------------
// Liveness, revocation, events
// ---------------------------------------------------------------------------

// stubEncoder maps image bytes to fixed vectors; unknown images have no face.
type stubEncoder struct {
	vectors map[string][]float64
	err     error
}

func (e *stubEncoder) Encode(_ context.Context, image []byte) ([]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	v, ok := e.vectors[string(image)]
	if !ok {
		return nil, domain.ErrNoFaceDetected
	}
	return v, nil
}

type stubRevocationStore struct {
	revoked map[string]time.Duration
	cutoffs map[string]time.Time
	err     error
}

func newStubRevocationStore() *stubRevocationStore {
	return &stubRevocationStore{
		revoked: make(map[string]time.Duration),
		cutoffs: make(map[string]time.Time),
	}
}

func (s *stubRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.revoked[tokenID] = ttl
	return nil
}

func (s *stubRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[tokenID]
	return ok, nil
}

func (s *stubRevocationStore) RevokeBefore(_ context.Context, subject string, cutoff time.Time, _ time.Duration) error {
	s.cutoffs[subject] = cutoff
	return nil
}

func (s *stubRevocationStore) RevokedBefore(_ context.Context, subject string) (time.Time, error) {
	if s.err != nil {
		return time.Time{}, s.err
	}
	return s.cutoffs[subject], nil
}

type stubPublisher struct {
	events []domain.FileEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, ev domain.FileEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *stubPublisher) ofType(t domain.FileEventType) []domain.FileEvent {
	var out []domain.FileEvent
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

var errStore = errors.New("store unavailable")
