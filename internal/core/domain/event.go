package domain

import "time"

// FileEventType names a file lifecycle event.
type FileEventType string

const (
	EventFileUploaded FileEventType = "file.uploaded"
	EventFileDeleted  FileEventType = "file.deleted"
	EventFileOrphaned FileEventType = "file.orphaned"
)

// FileEvent is published whenever a file changes or a blob is left behind
// by a partially failed write.
type FileEvent struct {
	Type       FileEventType `json:"type"`
	FileID     string        `json:"file_id,omitempty"`
	FolderID   string        `json:"folder_id,omitempty"`
	Filename   string        `json:"filename,omitempty"`
	Descriptor string        `json:"descriptor,omitempty"`
	Actor      string        `json:"actor,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
