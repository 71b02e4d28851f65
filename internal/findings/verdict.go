package findings

import (
	"encoding/json"
	"strings"
)

// Verdict results.
const (
	TruePositive  = "true_positive"
	FalsePositive = "false_positive"
)

// Verdict severities.
const (
	SeverityBadDesign   = "Bad design"
	SeverityExploitable = "Exploitable"
)

// Verdict is the classify oracle's judgement of a single finding.
type Verdict struct {
	Result                string   `json:"result"`
	Explanation           string   `json:"explanation"`
	Severity              *string  `json:"severity,omitempty"`
	ExploitationScenarios []string `json:"exploitation_scenarios,omitempty"`
}

// Normalize enforces that severity and exploitation scenarios are present exactly when the
// result is a true positive. Severity is matched case-insensitively and stored in its canonical
// spelling; a true positive without a recognised severity is downgraded to "Bad design".
func (v Verdict) Normalize() Verdict {
	if v.Result != TruePositive {
		v.Severity = nil
		v.ExploitationScenarios = nil
		return v
	}

	severity := SeverityBadDesign
	if v.Severity != nil {
		severity = canonicalSeverity(*v.Severity)
	}
	v.Severity = &severity
	if v.ExploitationScenarios == nil {
		v.ExploitationScenarios = []string{}
	}
	return v
}

func canonicalSeverity(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), SeverityExploitable) {
		return SeverityExploitable
	}
	return SeverityBadDesign
}

// MarshalJSON keeps an empty scenario list on true positives while omitting it elsewhere.
func (v Verdict) MarshalJSON() ([]byte, error) {
	type wire struct {
		Result                string    `json:"result"`
		Explanation           string    `json:"explanation"`
		Severity              *string   `json:"severity,omitempty"`
		ExploitationScenarios *[]string `json:"exploitation_scenarios,omitempty"`
	}
	w := wire{Result: v.Result, Explanation: v.Explanation, Severity: v.Severity}
	if v.ExploitationScenarios != nil {
		scenarios := v.ExploitationScenarios
		w.ExploitationScenarios = &scenarios
	}
	return json.Marshal(w)
}

// ClassifiedIssue pairs a finding with its verdict, or with the reason no verdict was obtained.
type ClassifiedIssue struct {
	Issue       Finding  `json:"issue"`
	ValidResult *Verdict `json:"validResult,omitempty"`
	Error       *string  `json:"error,omitempty"`
}

// ClassifyEntry is the value stored per scan key in the classification report.
type ClassifyEntry struct {
	FilePath string            `json:"filePath"`
	Issues   []ClassifiedIssue `json:"issues"`
}

// TriageUnit is one finding submitted to the classify stage.
type TriageUnit struct {
	Key      string
	FilePath string
	Index    int
	Finding  Finding
}
