package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

// FileService registers uploaded files inside the folder tree.
//
// Blob and metadata live in different stores, so writes follow a two-phase
// protocol: the blob is stored, the metadata is inserted as pending and then
// confirmed as ready. Deletes mark the entry as deleting before the blob is
// removed. Entries stuck in an intermediate state are cleaned by the
// Reconciler.
type FileService struct {
	files   ports.FileRepository
	folders ports.FolderRepository
	blobs   ports.BlobStore
	events  ports.EventPublisher
	log     zerolog.Logger
	now     func() time.Time
}

func NewFileService(
	files ports.FileRepository,
	folders ports.FolderRepository,
	blobs ports.BlobStore,
	events ports.EventPublisher,
	log zerolog.Logger,
) *FileService {
	return &FileService{
		files:   files,
		folders: folders,
		blobs:   blobs,
		events:  events,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func validateFilename(name string) error {
	if len(strings.TrimSpace(name)) < domain.MinFilenameLen {
		return domain.Invalid("file name must have at least %d characters", domain.MinFilenameLen)
	}
	return nil
}

// resolveContentType sniffs the content when the client did not declare a
// type. Parameters such as charset are dropped before the allow-list check.
func resolveContentType(declared string, content []byte) string {
	ct := strings.TrimSpace(declared)
	if ct == "" || ct == "application/octet-stream" {
		ct = mimetype.Detect(content).String()
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.ToLower(ct)
}

func (s *FileService) UploadFile(ctx context.Context, in ports.UploadFileInput, actor domain.Actor) (string, error) {
	contentType := resolveContentType(in.ContentType, in.Content)
	if !domain.AllowedContentType(contentType) {
		return "", domain.Invalid("invalid file type, only JPEG, PNG, and PDF files are allowed")
	}
	if err := validateID("folder id", in.FolderID); err != nil {
		return "", err
	}
	if err := validateFilename(in.Filename); err != nil {
		return "", err
	}

	if _, err := s.folders.FindByID(ctx, in.FolderID); err != nil {
		return "", err
	}
	if _, err := s.files.FindByName(ctx, in.FolderID, in.Filename); err == nil {
		return "", domain.ErrFileExists
	} else if !errors.Is(err, domain.ErrFileNotFound) {
		return "", err
	}

	descriptor, err := s.blobs.Put(ctx, bytes.NewReader(in.Content), domain.BlobMeta{
		Filename:    in.Filename,
		FolderID:    in.FolderID,
		ContentType: contentType,
		Owner:       actor.Username,
	})
	if err != nil {
		return "", fmt.Errorf("upload: store content: %w", err)
	}

	now := s.now()
	entry := &domain.FileEntry{
		Filename:    in.Filename,
		FolderID:    in.FolderID,
		Descriptor:  descriptor,
		ContentType: contentType,
		Size:        int64(len(in.Content)),
		State:       domain.FileStatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.files.Create(ctx, entry)
	if err != nil {
		s.releaseBlob(ctx, entry, actor, "metadata insert failed")
		return "", err
	}
	entry.ID = id

	if err := s.files.SetState(ctx, id, domain.FileStatePending, domain.FileStateReady, s.now()); err != nil {
		s.log.Error().Err(err).Str("file_id", id).Str("descriptor", descriptor).Str("folder_id", in.FolderID).
			Msg("upload not confirmed, entry left pending for reconciliation")
		return "", fmt.Errorf("upload: confirm: %w", err)
	}

	s.log.Info().Str("file_id", id).Str("folder_id", in.FolderID).Str("content_type", contentType).
		Int64("size", entry.Size).Str("actor", actor.Username).Msg("file uploaded")
	s.publish(ctx, domain.FileEvent{
		Type:       domain.EventFileUploaded,
		FileID:     id,
		FolderID:   in.FolderID,
		Filename:   in.Filename,
		Descriptor: descriptor,
		Actor:      actor.Username,
		OccurredAt: now,
	})
	return id, nil
}

// releaseBlob compensates a failed metadata write. When even that fails the
// blob is reported as orphaned so it can be removed later.
func (s *FileService) releaseBlob(ctx context.Context, entry *domain.FileEntry, actor domain.Actor, reason string) {
	err := s.blobs.Delete(ctx, entry.Descriptor)
	if err == nil || errors.Is(err, domain.ErrBlobNotFound) {
		return
	}

	s.log.Error().Err(err).Str("descriptor", entry.Descriptor).Str("folder_id", entry.FolderID).
		Str("filename", entry.Filename).Str("reason", reason).Msg("orphaned blob")
	s.publish(ctx, domain.FileEvent{
		Type:       domain.EventFileOrphaned,
		FileID:     entry.ID,
		FolderID:   entry.FolderID,
		Filename:   entry.Filename,
		Descriptor: entry.Descriptor,
		Actor:      actor.Username,
		Reason:     reason,
		OccurredAt: s.now(),
	})
}

func (s *FileService) publish(ctx context.Context, ev domain.FileEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event", string(ev.Type)).Str("file_id", ev.FileID).Msg("failed to publish file event")
	}
}

func (s *FileService) DeleteFile(ctx context.Context, fileID string, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.ErrAdminRequired
	}
	if err := validateID("file id", fileID); err != nil {
		return err
	}

	entry, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return err
	}
	if entry.State != domain.FileStateReady {
		return domain.ErrFileNotFound
	}

	if err := s.files.SetState(ctx, fileID, domain.FileStateReady, domain.FileStateDeleting, s.now()); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, entry.Descriptor); err != nil && !errors.Is(err, domain.ErrBlobNotFound) {
		if rbErr := s.files.SetState(ctx, fileID, domain.FileStateDeleting, domain.FileStateReady, s.now()); rbErr != nil {
			s.log.Error().Err(rbErr).Str("file_id", fileID).Msg("could not restore entry after failed blob delete")
		}
		return fmt.Errorf("delete file: remove content: %w", err)
	}

	if err := s.files.Delete(ctx, fileID); err != nil {
		s.log.Error().Err(err).Str("file_id", fileID).Str("descriptor", entry.Descriptor).
			Msg("blob removed but metadata remains, left for reconciliation")
		return fmt.Errorf("delete file: remove metadata: %w", err)
	}

	s.log.Info().Str("file_id", fileID).Str("actor", actor.Username).Msg("file deleted")
	s.publish(ctx, domain.FileEvent{
		Type:       domain.EventFileDeleted,
		FileID:     fileID,
		FolderID:   entry.FolderID,
		Filename:   entry.Filename,
		Descriptor: entry.Descriptor,
		Actor:      actor.Username,
		OccurredAt: s.now(),
	})
	return nil
}

func (s *FileService) RenameFile(ctx context.Context, fileID, newName string, actor domain.Actor) error {
	if err := validateID("file id", fileID); err != nil {
		return err
	}

	entry, err := s.readyEntry(ctx, fileID)
	if err != nil {
		return err
	}
	if entry.Filename == newName {
		return domain.Invalid("the new file name cannot be the same as the current name")
	}
	if err := validateFilename(newName); err != nil {
		return err
	}
	if _, err := s.files.FindByName(ctx, entry.FolderID, newName); err == nil {
		return domain.ErrFileExists
	} else if !errors.Is(err, domain.ErrFileNotFound) {
		return err
	}

	if err := s.files.Rename(ctx, fileID, newName, s.now()); err != nil {
		return err
	}
	s.log.Info().Str("file_id", fileID).Str("filename", newName).Str("actor", actor.Username).Msg("file renamed")
	return nil
}

func (s *FileService) DownloadFile(ctx context.Context, fileID string, actor domain.Actor) (*ports.FileDownload, error) {
	if err := validateID("file id", fileID); err != nil {
		return nil, err
	}

	entry, err := s.readyEntry(ctx, fileID)
	if err != nil {
		return nil, err
	}

	rc, err := s.blobs.Get(ctx, entry.Descriptor)
	if err != nil {
		s.log.Error().Err(err).Str("file_id", fileID).Str("descriptor", entry.Descriptor).Msg("file content unavailable")
		return nil, domain.ErrContentBroken
	}
	return &ports.FileDownload{Entry: entry, Content: rc}, nil
}

func (s *FileService) readyEntry(ctx context.Context, fileID string) (*domain.FileEntry, error) {
	entry, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if entry.State != domain.FileStateReady {
		return nil, domain.ErrFileNotFound
	}
	return entry, nil
}
