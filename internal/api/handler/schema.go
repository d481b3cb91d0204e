package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type idResponse struct {
	ID string `json:"id"`
}

// --- Auth ---

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// --- Folders ---

type createFolderRequest struct {
	Name           string `json:"name"             validate:"notblank"`
	ParentFolderID string `json:"parent_folder_id" validate:"required,len=24,hexadecimal"`
}

type renameFolderRequest struct {
	Name string `json:"name" validate:"notblank"`
}

type folderResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ParentFolderID *string   `json:"parent_folder_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type folderContentsResponse struct {
	Folder     folderResponse   `json:"folder"`
	Subfolders []folderResponse `json:"subfolders"`
	Files      []fileResponse   `json:"files"`
}

// --- Files ---

type renameFileRequest struct {
	Filename string `json:"filename" validate:"notblank"`
}

type fileResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	FolderID    string    `json:"folder_id"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
