package model

import "time"

// Severity classifies how hard a rule or finding is enforced.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// RuleKind identifies the check a rule performs against a document profile.
type RuleKind string

const (
	RuleSchemaVersion RuleKind = "schema-version"
	RuleMacroFree     RuleKind = "macro-free"
	RuleMetadata      RuleKind = "metadata"
	RuleStyle         RuleKind = "style"
	RuleFonts         RuleKind = "fonts"
)

// Rule is one named check inside a standard's rule set. Params carries scalar
// expectations (e.g. key/value for metadata rules), Properties carries style
// property expectations, Values carries list expectations (e.g. font names).
// Rules are evaluated independently of each other; declaration order inside a
// standard is fixed at promotion and determines finding order.
type Rule struct {
	Name       string            `json:"name"`
	Kind       RuleKind          `json:"kind"`
	Severity   Severity          `json:"severity"`
	Params     map[string]string `json:"params,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Values     []string          `json:"values,omitempty"`
}

// Standard is an immutable, versioned rule set promoted from a golden
// document. A re-promotion creates a new Standard carrying PredecessorID and
// an incremented version; predecessors are never mutated or replaced.
type Standard struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Version          int       `json:"version"`
	PredecessorID    *string   `json:"predecessor_id,omitempty"`
	SourceDocumentID string    `json:"source_document_id"`
	PromotedBy       string    `json:"promoted_by"`
	Rules            []Rule    `json:"rules"`
	CreatedAt        time.Time `json:"created_at"`
}
