// Package evaluator derives rule sets from document profiles and checks
// documents against promoted standards. Evaluation is total: it always
// produces a report, never an error, and identical inputs always produce
// byte-identical findings.
package evaluator

import (
	"fmt"
	"sort"

	"standardsapi/internal/model"
	"standardsapi/internal/odf"
)

// Evaluate parses documentBytes and checks them against the standard's rule
// set. Parse failure short-circuits rule evaluation and yields a single
// malformed-document finding with verdict non-compliant.
//
// Rules are evaluated independently; no rule sees another rule's outcome.
// Findings are ordered by rule declaration order, then by location.
func Evaluate(documentBytes []byte, standard *model.Standard) *model.ComplianceReport {
	report := &model.ComplianceReport{
		StandardID:      standard.ID,
		StandardVersion: standard.Version,
	}

	profile, err := odf.Parse(documentBytes)
	if err != nil {
		report.Findings = []model.Finding{{
			Rule:     model.FindingMalformed,
			Severity: model.SeverityError,
			Location: "container",
			Message:  err.Error(),
		}}
		report.Verdict = model.VerdictNonCompliant
		return report
	}

	findings := make([]model.Finding, 0)
	for _, rule := range standard.Rules {
		rf := evaluateRule(rule, profile)
		sort.Slice(rf, func(i, j int) bool { return rf[i].Location < rf[j].Location })
		findings = append(findings, rf...)
	}

	report.Findings = findings
	report.Verdict = model.VerdictFor(findings)
	return report
}

// evaluateRule applies one rule to the profile. Each rule reads the profile
// only; there is no shared mutable evaluation state.
func evaluateRule(rule model.Rule, p *odf.Profile) []model.Finding {
	switch rule.Kind {
	case model.RuleSchemaVersion:
		return checkSchemaVersion(rule, p)
	case model.RuleMacroFree:
		return checkMacroFree(rule, p)
	case model.RuleMetadata:
		return checkMetadata(rule, p)
	case model.RuleStyle:
		return checkStyle(rule, p)
	case model.RuleFonts:
		return checkFonts(rule, p)
	default:
		// Unknown kinds come from a newer promoter; surface rather than drop.
		return []model.Finding{{
			Rule:     rule.Name,
			Severity: model.SeverityWarning,
			Location: "standard",
			Message:  fmt.Sprintf("unknown rule kind %q, not evaluated", rule.Kind),
		}}
	}
}

func checkSchemaVersion(rule model.Rule, p *odf.Profile) []model.Finding {
	want := rule.Params["version"]
	if p.SchemaVersion == want {
		return nil
	}
	return []model.Finding{{
		Rule:     rule.Name,
		Severity: rule.Severity,
		Location: "content.xml:office:version",
		Message:  fmt.Sprintf("declared version %q, standard requires %q", p.SchemaVersion, want),
	}}
}

func checkMacroFree(rule model.Rule, p *odf.Profile) []model.Finding {
	if !p.HasMacros {
		return nil
	}
	return []model.Finding{{
		Rule:     rule.Name,
		Severity: rule.Severity,
		Location: "container",
		Message:  "document container ships macros",
	}}
}

// checkMetadata requires the recorded key to exist at rule severity; a key
// that exists with a different value is only a warning, mirroring the
// template-matching intent of promoted metadata.
func checkMetadata(rule model.Rule, p *odf.Profile) []model.Finding {
	key := rule.Params["key"]
	want := rule.Params["value"]
	loc := "meta.xml:" + key

	got, ok := p.Metadata[key]
	if !ok {
		return []model.Finding{{
			Rule:     rule.Name,
			Severity: rule.Severity,
			Location: loc,
			Message:  fmt.Sprintf("missing required metadata field %q", key),
		}}
	}
	if got != want {
		return []model.Finding{{
			Rule:     rule.Name,
			Severity: model.SeverityWarning,
			Location: loc,
			Message:  fmt.Sprintf("metadata %q is %q, standard records %q", key, got, want),
		}}
	}
	return nil
}

// checkStyle enforces recorded properties only when the document defines the
// style; absent styles are not required.
func checkStyle(rule model.Rule, p *odf.Profile) []model.Finding {
	name := rule.Params["style"]
	st, ok := p.Styles[name]
	if !ok {
		return nil
	}

	var findings []model.Finding
	for _, prop := range sortedKeys(rule.Properties) {
		want := rule.Properties[prop]
		got, ok := st.Properties[prop]
		if !ok || got == want {
			continue
		}
		findings = append(findings, model.Finding{
			Rule:     rule.Name,
			Severity: rule.Severity,
			Location: fmt.Sprintf("styles.xml:%s/%s", name, prop),
			Message:  fmt.Sprintf("style %q property %s is %q, standard records %q", name, prop, got, want),
		})
	}
	return findings
}

func checkFonts(rule model.Rule, p *odf.Profile) []model.Finding {
	allowed := make(map[string]struct{}, len(rule.Values))
	for _, f := range rule.Values {
		allowed[f] = struct{}{}
	}

	var findings []model.Finding
	for _, font := range p.Fonts {
		if _, ok := allowed[font]; ok {
			continue
		}
		findings = append(findings, model.Finding{
			Rule:     rule.Name,
			Severity: rule.Severity,
			Location: "styles.xml:font-face/" + font,
			Message:  fmt.Sprintf("font %q is not declared by the standard", font),
		})
	}
	return findings
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
