package model

import "time"

// Verdict is the aggregate compliance outcome of a report.
type Verdict string

const (
	VerdictCompliant    Verdict = "compliant"
	VerdictNonCompliant Verdict = "non-compliant"
	VerdictWarnings     Verdict = "compliant-with-warnings"
)

// FindingMalformed is the rule name used for the single finding emitted when
// document bytes fail structural parsing.
const FindingMalformed = "malformed-document"

// Finding is a single rule-evaluation outcome. Location names the part of the
// document the finding refers to (e.g. "meta.xml:creator" or
// "styles.xml:Heading 1/fo:font-size").
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Location string   `json:"location"`
	Message  string   `json:"message"`
}

// ComplianceReport is the immutable result of evaluating one content snapshot
// against one standard. Reports are retained historically; a document's
// current report is the most recent by GeneratedAt.
type ComplianceReport struct {
	ID              string    `json:"id"`
	JobID           string    `json:"job_id"`
	DocumentID      string    `json:"document_id"`
	StandardID      string    `json:"standard_id"`
	StandardVersion int       `json:"standard_version"`
	Verdict         Verdict   `json:"verdict"`
	Findings        []Finding `json:"findings"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// VerdictFor aggregates finding severities into a verdict: any error makes
// the report non-compliant, otherwise any warning downgrades it to
// compliant-with-warnings.
func VerdictFor(findings []Finding) Verdict {
	verdict := VerdictCompliant
	for _, f := range findings {
		if f.Severity == SeverityError {
			return VerdictNonCompliant
		}
		if f.Severity == SeverityWarning {
			verdict = VerdictWarnings
		}
	}
	return verdict
}
