package evaluator

import (
	"fmt"

	"standardsapi/internal/model"
	"standardsapi/internal/odf"
)

// DeriveRules freezes a document profile into an ordered rule set. The order
// is fixed here and persisted with the standard; the evaluator replays rules
// in exactly this order, which keeps findings deterministic across runs.
//
// A standard derived from a profile always self-evaluates compliant against
// the same profile: every expectation recorded below is satisfied by the
// profile it was read from.
func DeriveRules(p *odf.Profile) []model.Rule {
	rules := []model.Rule{
		{
			Name:     "schema-version",
			Kind:     model.RuleSchemaVersion,
			Severity: model.SeverityError,
			Params:   map[string]string{"version": p.SchemaVersion},
		},
		{
			Name:     "macro-free",
			Kind:     model.RuleMacroFree,
			Severity: model.SeverityError,
		},
	}

	for _, key := range p.MetadataKeys() {
		rules = append(rules, model.Rule{
			Name:     fmt.Sprintf("metadata/%s", key),
			Kind:     model.RuleMetadata,
			Severity: model.SeverityError,
			Params:   map[string]string{"key": key, "value": p.Metadata[key]},
		})
	}

	for _, name := range p.StyleNames() {
		st := p.Styles[name]
		rules = append(rules, model.Rule{
			Name:       fmt.Sprintf("style/%s", name),
			Kind:       model.RuleStyle,
			Severity:   model.SeverityWarning,
			Params:     map[string]string{"style": name},
			Properties: copyProperties(st.Properties),
		})
	}

	if len(p.Fonts) > 0 {
		rules = append(rules, model.Rule{
			Name:     "fonts",
			Kind:     model.RuleFonts,
			Severity: model.SeverityWarning,
			Values:   append([]string(nil), p.Fonts...),
		})
	}

	return rules
}

func copyProperties(props map[string]string) map[string]string {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
