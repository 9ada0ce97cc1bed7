package model

import "time"

// Document represents an uploaded file tracked by the system.
// ContentKey points into the blob store and is content-addressed
// (blobs/<sha256>), so the same bytes always map to the same key.
// OverrideStandardID, when set, pins the document to a standard and
// short-circuits folder inheritance.
type Document struct {
	ID                 string    `json:"id"`
	FolderID           string    `json:"folder_id"`
	Filename           string    `json:"filename"`
	ContentKey         string    `json:"content_key"`
	Size               int64     `json:"size"`
	ContentType        string    `json:"content_type"`
	OverrideStandardID *string   `json:"override_standard_id,omitempty"`
	Archived           bool      `json:"archived"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
