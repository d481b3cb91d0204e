package domain

import "time"

// FileState tracks the two-phase write protocol of a file entry.
type FileState string

const (
	FileStatePending  FileState = "pending"
	FileStateReady    FileState = "ready"
	FileStateDeleting FileState = "deleting"
)

const MinFilenameLen = 3

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypePDF  = "application/pdf"
)

var allowedContentTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypePDF:  {},
}

// AllowedContentType reports whether files of this MIME type may be uploaded.
func AllowedContentType(ct string) bool {
	_, ok := allowedContentTypes[ct]
	return ok
}

// FileEntry is the metadata record of an uploaded file. Descriptor locates
// the bytes in the blob store.
type FileEntry struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	FolderID    string    `json:"folder_id"`
	Descriptor  string    `json:"-"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	State       FileState `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BlobMeta is attached to a blob when it is stored.
type BlobMeta struct {
	Filename    string
	FolderID    string
	ContentType string
	Owner       string
}
