package odf

import "sort"

// Style captures one named style declaration with its recorded text and
// paragraph properties, keyed as "text:<attr>" / "paragraph:<attr>".
type Style struct {
	Family     string            `json:"family,omitempty"`
	Parent     string            `json:"parent,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Profile is the normalized structural representation of an ODF document.
// It is the single parse output both promotion and compliance evaluation
// operate on, so a standard derived from a document is guaranteed to be
// expressed in the same terms the evaluator sees.
type Profile struct {
	SchemaVersion string            `json:"schema_version"`
	Metadata      map[string]string `json:"metadata"`
	Styles        map[string]Style  `json:"styles"`
	Fonts         []string          `json:"fonts"`
	HasMacros     bool              `json:"has_macros"`
}

// MetadataKeys returns the metadata keys in sorted order for deterministic
// iteration.
func (p *Profile) MetadataKeys() []string {
	keys := make([]string, 0, len(p.Metadata))
	for k := range p.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StyleNames returns the style names in sorted order.
func (p *Profile) StyleNames() []string {
	names := make([]string, 0, len(p.Styles))
	for n := range p.Styles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
