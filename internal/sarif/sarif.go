package sarif

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/scanio-ai/pkg/shared/files"
)

// Report wraps a SARIF document with the helpers used by the export step.
type Report struct {
	*sarif.Report
	logger hclog.Logger
}

// ReadReport loads a SARIF file.
func ReadReport(inputPath string, logger hclog.Logger) (*Report, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}

	var sarifReport sarif.Report
	if err := json.Unmarshal(data, &sarifReport); err != nil {
		return nil, fmt.Errorf("failed to decode SARIF report %q: %w", inputPath, err)
	}

	return &Report{Report: &sarifReport, logger: logger}, nil
}

// WriteFile writes the report as indented JSON, replacing outputPath atomically.
func (r Report) WriteFile(outputPath string) error {
	var buf bytes.Buffer
	if err := r.PrettyWrite(&buf); err != nil {
		return fmt.Errorf("failed to encode SARIF report: %w", err)
	}
	if err := files.WriteFileAtomic(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	if r.logger != nil {
		r.logger.Debug("SARIF report written", "path", outputPath)
	}
	return nil
}

// CollectSeverityInfo counts results per severity property, plus a total.
func (r Report) CollectSeverityInfo() map[string]int {
	severityInfo := map[string]int{
		SeverityExploitable: 0,
		SeverityBadDesign:   0,
		SeverityUnknown:     0,
		"total":             0,
	}

	for _, run := range r.Runs {
		for _, result := range run.Results {
			severity, _ := result.Properties[PropertySeverity].(string)
			switch severity {
			case SeverityExploitable, SeverityBadDesign:
				severityInfo[severity]++
			default:
				severityInfo[SeverityUnknown]++
			}
			severityInfo["total"]++
		}
	}

	return severityInfo
}

// SortResultsBySeverity orders results so exploitable issues come first. The sort is stable.
func (r Report) SortResultsBySeverity() {
	severityOrder := map[string]int{
		SeverityExploitable: 0,
		SeverityBadDesign:   1,
	}
	rank := func(result *sarif.Result) int {
		severity, _ := result.Properties[PropertySeverity].(string)
		if order, ok := severityOrder[severity]; ok {
			return order
		}
		return len(severityOrder)
	}

	for _, run := range r.Runs {
		sort.SliceStable(run.Results, func(i, j int) bool {
			return rank(run.Results[i]) < rank(run.Results[j])
		})
	}
}
