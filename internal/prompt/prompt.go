package prompt

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/scan-io-git/scanio-ai/internal/findings"
)

// OutputTag is the delimiter the triage oracle must wrap its final answer in.
const OutputTag = "output"

var (
	scanTemplate   = template.Must(template.New("scan").Funcs(funcs).Parse(scanText))
	triageTemplate = template.Must(template.New("triage").Funcs(funcs).Parse(triageText))
)

var funcs = template.FuncMap{
	"quote": quote,
	"tag":   func() string { return OutputTag },
}

// quote escapes a value so it can be embedded inside a JSON string literal in the prompt.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

type scanData struct {
	Fingerprint  string
	FilePath     string
	AnalysisDate string
	Code         string
}

type triageData struct {
	FilePath string
	Finding  findings.Finding
}

// BuildScanPrompt renders the analysis instructions for one file and returns them together with
// the file's fingerprint.
func BuildScanPrompt(unit findings.WorkUnit, now time.Time) (string, string, error) {
	fingerprint := Fingerprint(unit.Content)

	var b strings.Builder
	err := scanTemplate.Execute(&b, scanData{
		Fingerprint:  fingerprint,
		FilePath:     unit.Path,
		AnalysisDate: now.UTC().Format(time.RFC3339),
		Code:         string(unit.Content),
	})
	if err != nil {
		return "", fingerprint, fmt.Errorf("failed to render scan prompt for %q: %w", unit.Path, err)
	}
	return b.String(), fingerprint, nil
}

// BuildTriagePrompt renders the triage instructions for one finding.
func BuildTriagePrompt(unit findings.TriageUnit) (string, error) {
	var b strings.Builder
	err := triageTemplate.Execute(&b, triageData{FilePath: unit.FilePath, Finding: unit.Finding})
	if err != nil {
		return "", fmt.Errorf("failed to render triage prompt for %q: %w", unit.FilePath, err)
	}
	return b.String(), nil
}
