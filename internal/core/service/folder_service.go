package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

// FolderService owns the folder tree and its invariants: one root, unique
// names among siblings, and parents that exist.
type FolderService struct {
	folders ports.FolderRepository
	files   ports.FileRepository
	log     zerolog.Logger
}

func NewFolderService(folders ports.FolderRepository, files ports.FileRepository, log zerolog.Logger) *FolderService {
	return &FolderService{folders: folders, files: files, log: log}
}

func validateFolderName(name string) error {
	if name == "" {
		return domain.Invalid("folder name cannot be empty")
	}
	if len(name) < domain.MinFolderNameLen {
		return domain.Invalid("folder name must be at least %d characters long", domain.MinFolderNameLen)
	}
	return nil
}

func validateID(field, id string) error {
	if id == "" {
		return domain.Invalid("%s is required", field)
	}
	if !domain.IsValidID(id) {
		return domain.Invalid("invalid %s", field)
	}
	return nil
}

// EnsureRootExists creates the root folder on first start. Calling it again
// returns the existing root.
func (s *FolderService) EnsureRootExists(ctx context.Context) (*domain.Folder, error) {
	root, created, err := s.folders.EnsureRoot(ctx, domain.RootFolderName, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("ensure root folder: %w", err)
	}
	if created {
		s.log.Info().Str("folder_id", root.ID).Str("name", root.Name).Msg("default root folder created")
	}
	return root, nil
}

func (s *FolderService) Root(ctx context.Context) (*domain.Folder, error) {
	root, err := s.folders.FindRoot(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrFolderNotFound) {
			return nil, domain.ErrRootFolderNotCreated
		}
		return nil, err
	}
	return root, nil
}

func (s *FolderService) CreateFolder(ctx context.Context, name, parentID string, actor domain.Actor) (string, error) {
	if err := validateFolderName(name); err != nil {
		return "", err
	}
	if err := validateID("parent folder id", parentID); err != nil {
		return "", err
	}

	if _, err := s.folders.FindByID(ctx, parentID); err != nil {
		if errors.Is(err, domain.ErrFolderNotFound) {
			return "", domain.ErrParentNotFound
		}
		return "", err
	}

	if _, err := s.folders.FindChild(ctx, parentID, name); err == nil {
		return "", domain.ErrFolderExists
	} else if !errors.Is(err, domain.ErrFolderNotFound) {
		return "", err
	}

	id, err := s.folders.Create(ctx, &domain.Folder{
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}

	s.log.Info().Str("folder_id", id).Str("parent_folder_id", parentID).Str("actor", actor.Username).Msg("folder created")
	return id, nil
}

// DeleteFolder removes an empty, non-root folder. Children are never
// cascaded or orphaned.
func (s *FolderService) DeleteFolder(ctx context.Context, folderID string, actor domain.Actor) error {
	if err := validateID("folder id", folderID); err != nil {
		return err
	}

	folder, err := s.folders.FindByID(ctx, folderID)
	if err != nil {
		return err
	}
	if folder.IsRoot() {
		return domain.ErrRootFolderProtected
	}

	subfolders, err := s.folders.CountChildren(ctx, folderID)
	if err != nil {
		return err
	}
	files, err := s.files.CountByFolder(ctx, folderID)
	if err != nil {
		return err
	}
	if subfolders > 0 || files > 0 {
		return domain.ErrFolderNotEmpty
	}

	if err := s.folders.Delete(ctx, folderID); err != nil {
		return err
	}
	s.log.Info().Str("folder_id", folderID).Str("actor", actor.Username).Msg("folder deleted")
	return nil
}

func (s *FolderService) RenameFolder(ctx context.Context, folderID, newName string, actor domain.Actor) error {
	if err := validateID("folder id", folderID); err != nil {
		return err
	}

	folder, err := s.folders.FindByID(ctx, folderID)
	if err != nil {
		return err
	}
	if folder.Name == newName {
		return domain.Invalid("the new folder name cannot be the same as the current name")
	}
	if err := validateFolderName(newName); err != nil {
		return err
	}

	if !folder.IsRoot() {
		if _, err := s.folders.FindChild(ctx, folder.ParentID, newName); err == nil {
			return domain.ErrFolderExists
		} else if !errors.Is(err, domain.ErrFolderNotFound) {
			return err
		}
	}

	if err := s.folders.Rename(ctx, folderID, newName); err != nil {
		return err
	}
	s.log.Info().Str("folder_id", folderID).Str("name", newName).Str("actor", actor.Username).Msg("folder renamed")
	return nil
}

// ListContents looks a folder up by name. Names are only unique among
// siblings, so a name shared by several folders is rejected as ambiguous.
func (s *FolderService) ListContents(ctx context.Context, name string, actor domain.Actor) (*domain.FolderContents, error) {
	matches, err := s.folders.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, domain.ErrFolderNotFound
	case 1:
		return s.contents(ctx, matches[0])
	default:
		return nil, domain.ErrFolderNameAmbiguous
	}
}

func (s *FolderService) ListContentsByID(ctx context.Context, folderID string, actor domain.Actor) (*domain.FolderContents, error) {
	if err := validateID("folder id", folderID); err != nil {
		return nil, err
	}
	folder, err := s.folders.FindByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return s.contents(ctx, folder)
}

func (s *FolderService) contents(ctx context.Context, folder *domain.Folder) (*domain.FolderContents, error) {
	subfolders, err := s.folders.ListChildren(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.ListByFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	return &domain.FolderContents{Folder: folder, Subfolders: subfolders, Files: files}, nil
}
