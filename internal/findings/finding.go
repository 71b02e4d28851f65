package findings

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Placeholder vulnerability kinds recorded when a unit fails instead of dropping it.
const (
	KindTimeout    = "Timeout"
	KindParseError = "ParseError"
)

// WorkUnit is one source file submitted to the scan stage.
type WorkUnit struct {
	Path    string
	Content []byte
}

// Finding is a single issue reported by the scan oracle for a file.
type Finding struct {
	Vulnerability  string `json:"vulnerability"`
	Explanation    string `json:"explanation"`
	Code           string `json:"code"`
	Recommendation string `json:"recommendation"`
	// RawOutput carries the verbatim oracle text on placeholder findings only.
	RawOutput *string `json:"rawOutput,omitempty"`
}

// IsPlaceholder reports whether f was synthesised by the pipeline after a failed unit.
// Placeholders always carry RawOutput, so an oracle finding that merely shares a kind name
// is not one.
func (f Finding) IsPlaceholder() bool {
	if f.RawOutput == nil {
		return false
	}
	return f.Vulnerability == KindTimeout || f.Vulnerability == KindParseError
}

// UnmarshalJSON accepts oracle output loosely: non-string field values are kept as their JSON
// text, and a non-object issue is kept whole in Explanation rather than failing the report.
func (f *Finding) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		*f = Finding{Explanation: strings.TrimSpace(string(data))}
		return nil
	}

	*f = Finding{
		Vulnerability:  looseString(fields["vulnerability"]),
		Explanation:    looseString(fields["explanation"]),
		Code:           looseString(fields["code"]),
		Recommendation: looseString(fields["recommendation"]),
	}
	if raw, ok := fields["rawOutput"]; ok {
		s := looseString(raw)
		f.RawOutput = &s
	}
	return nil
}

func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Metadata describes the file a ScanEntry was produced for.
type Metadata struct {
	FilePath     string `json:"filePath"`
	AnalysisDate string `json:"analysisDate"`
	Fingerprint  string `json:"fingerprint,omitempty"`
}

// ScanEntry is the value stored per key in the scan report.
type ScanEntry struct {
	Issues   []Finding `json:"issues"`
	Metadata Metadata  `json:"metadata"`
}

// TimeoutPlaceholder builds the finding recorded when the oracle call timed out or failed in transport.
func TimeoutPlaceholder(reason string) Finding {
	empty := ""
	explanation := "The request to the LLM timed out or failed unexpectedly."
	if reason != "" {
		explanation += " " + reason
	}
	return Finding{
		Vulnerability:  KindTimeout,
		Explanation:    explanation,
		Recommendation: "Retry later or check API responsiveness.",
		RawOutput:      &empty,
	}
}

// ParseErrorPlaceholder builds the finding recorded when no structured report could be recovered.
func ParseErrorPlaceholder(raw string) Finding {
	return Finding{
		Vulnerability:  KindParseError,
		Explanation:    "Could not parse model response as JSON",
		Recommendation: "Ensure model returns valid JSON only.",
		RawOutput:      &raw,
	}
}
