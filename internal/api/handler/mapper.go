package handler

import "github.com/Sirpyerre/file-manager/internal/core/domain"

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func toFolderResponse(f *domain.Folder) folderResponse {
	resp := folderResponse{
		ID:        f.ID,
		Name:      f.Name,
		CreatedAt: f.CreatedAt,
	}
	if !f.IsRoot() {
		parent := f.ParentID
		resp.ParentFolderID = &parent
	}
	return resp
}

func toFileResponse(e *domain.FileEntry) fileResponse {
	return fileResponse{
		ID:          e.ID,
		Filename:    e.Filename,
		FolderID:    e.FolderID,
		ContentType: e.ContentType,
		Size:        e.Size,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toFolderContentsResponse(fc *domain.FolderContents) folderContentsResponse {
	resp := folderContentsResponse{
		Folder:     toFolderResponse(fc.Folder),
		Subfolders: make([]folderResponse, 0, len(fc.Subfolders)),
		Files:      make([]fileResponse, 0, len(fc.Files)),
	}
	for _, f := range fc.Subfolders {
		resp.Subfolders = append(resp.Subfolders, toFolderResponse(f))
	}
	for _, e := range fc.Files {
		resp.Files = append(resp.Files, toFileResponse(e))
	}
	return resp
}
