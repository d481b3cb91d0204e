package domain

import "time"

const (
	RootFolderName   = "Desktop"
	MinFolderNameLen = 3
)

// Folder is a node of the folder tree. ParentID is empty only for the root.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_folder_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsRoot reports whether the folder is the tree root.
func (f *Folder) IsRoot() bool {
	return f.ParentID == ""
}

// FolderContents lists the immediate children of a folder.
type FolderContents struct {
	Folder     *Folder
	Subfolders []*Folder
	Files      []*FileEntry
}
