package extract

import (
	"bytes"
	"encoding/json"

	"github.com/scan-io-git/scanio-ai/internal/findings"
)

// ScanResponse is a scan report recovered from oracle output.
type ScanResponse struct {
	// Key is the wrapper key the oracle nested the report under, empty for the bare form.
	Key   string
	Entry findings.ScanEntry
}

// ScanReport matches an object with an "issues" array and a "metadata" object, either bare or
// nested one level under a single key such as the file fingerprint.
var ScanReport = Shape[ScanResponse]{
	Name:   "scan-report",
	Decode: decodeScanReport,
}

// Verdict matches an object whose "result" is true_positive or false_positive and which carries
// an "explanation".
var Verdict = Shape[findings.Verdict]{
	Name:   "verdict",
	Decode: decodeVerdict,
}

type field struct {
	Key   string
	Value json.RawMessage
}

// objectFields decodes a JSON object into its fields, preserving document order.
func objectFields(raw json.RawMessage) ([]field, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, ok := tok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		fields = append(fields, field{Key: key, Value: value})
	}
	return fields, true
}

func lookup(fields []field, key string) (json.RawMessage, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func kindOf(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func decodeScanReport(raw json.RawMessage) (ScanResponse, bool) {
	fields, ok := objectFields(raw)
	if !ok {
		return ScanResponse{}, false
	}
	if entry, ok := decodeScanEntry(fields); ok {
		return ScanResponse{Entry: entry}, true
	}
	for _, f := range fields {
		inner, ok := objectFields(f.Value)
		if !ok {
			continue
		}
		if entry, ok := decodeScanEntry(inner); ok {
			return ScanResponse{Key: f.Key, Entry: entry}, true
		}
	}
	return ScanResponse{}, false
}

func decodeScanEntry(fields []field) (findings.ScanEntry, bool) {
	issues, ok := lookup(fields, "issues")
	if !ok || kindOf(issues) != '[' {
		return findings.ScanEntry{}, false
	}
	metadata, ok := lookup(fields, "metadata")
	if !ok || kindOf(metadata) != '{' {
		return findings.ScanEntry{}, false
	}

	var entry findings.ScanEntry
	if err := json.Unmarshal(issues, &entry.Issues); err != nil {
		return findings.ScanEntry{}, false
	}
	if entry.Issues == nil {
		entry.Issues = []findings.Finding{}
	}
	// rawOutput marks pipeline placeholders and is never taken from the oracle.
	for i := range entry.Issues {
		entry.Issues[i].RawOutput = nil
	}
	metaFields, _ := objectFields(metadata)
	if v, ok := lookup(metaFields, "filePath"); ok {
		entry.Metadata.FilePath = scalarString(v)
	}
	if v, ok := lookup(metaFields, "analysisDate"); ok {
		entry.Metadata.AnalysisDate = scalarString(v)
	}
	return entry, true
}

func decodeVerdict(raw json.RawMessage) (findings.Verdict, bool) {
	fields, ok := objectFields(raw)
	if !ok {
		return findings.Verdict{}, false
	}

	var v findings.Verdict
	result, ok := lookup(fields, "result")
	if !ok || json.Unmarshal(result, &v.Result) != nil {
		return findings.Verdict{}, false
	}
	if v.Result != findings.TruePositive && v.Result != findings.FalsePositive {
		return findings.Verdict{}, false
	}
	explanation, ok := lookup(fields, "explanation")
	if !ok {
		return findings.Verdict{}, false
	}
	v.Explanation = scalarString(explanation)

	if severity, ok := lookup(fields, "severity"); ok && kindOf(severity) == '"' {
		s := scalarString(severity)
		v.Severity = &s
	}
	if scenarios, ok := lookup(fields, "exploitation_scenarios"); ok && kindOf(scenarios) == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(scenarios, &items); err == nil {
			v.ExploitationScenarios = make([]string, 0, len(items))
			for _, item := range items {
				v.ExploitationScenarios = append(v.ExploitationScenarios, scalarString(item))
			}
		}
	}
	return v, true
}

// scalarString returns a JSON string's value, or the raw JSON text of any other value.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
