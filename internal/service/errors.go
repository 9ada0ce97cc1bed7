package service

import "errors"

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("entity not found")
	ErrReaderNil  = errors.New("reader is nil")

	// ErrInvalidSourceDocument rejects promotion from content that fails
	// structural parsing. Parsing is deterministic, so the caller should fix
	// the document, not retry.
	ErrInvalidSourceDocument = errors.New("source document is not structurally valid")

	// ErrCycleRejected rejects a folder re-parent that would make the folder
	// an ancestor of itself. The tree is left unchanged.
	ErrCycleRejected = errors.New("folder move would create a cycle")
)
