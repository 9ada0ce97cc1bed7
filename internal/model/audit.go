package model

import "time"

// EventKind enumerates the auditable actions in the system.
type EventKind string

const (
	EventUpload           EventKind = "upload"
	EventPromote          EventKind = "promote"
	EventAssign           EventKind = "assign"
	EventReassign         EventKind = "reassign"
	EventMove             EventKind = "move"
	EventOverrideSet      EventKind = "override-set"
	EventOverrideClear    EventKind = "override-clear"
	EventValidateStart    EventKind = "validate-start"
	EventValidateComplete EventKind = "validate-complete"
)

// AuditEvent is one entry in the append-only ledger. IDs are assigned by the
// store and are strictly monotonically increasing; events are never mutated
// or deleted after append.
type AuditEvent struct {
	ID         int64             `json:"id"`
	Kind       EventKind         `json:"kind"`
	Actor      string            `json:"actor"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Payload    map[string]string `json:"payload,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}
