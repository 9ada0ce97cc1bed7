package model

import "time"

// Folder is a node in the single-rooted folder tree. ParentID is nil for the
// root. AssignedStandardID, when set, governs every document below this folder
// that is not shadowed by a deeper assignment or a document-level override.
type Folder struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	ParentID           *string   `json:"parent_id,omitempty"`
	AssignedStandardID *string   `json:"assigned_standard_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}
