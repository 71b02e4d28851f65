// Package sarif converts classification reports into SARIF 2.1.0.
package sarif

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/scanio-ai/internal/findings"
)

// Result property names and values.
const (
	PropertySeverity              = "severity"
	PropertyExploitationScenarios = "exploitation_scenarios"

	SeverityExploitable = findings.SeverityExploitable
	SeverityBadDesign   = findings.SeverityBadDesign
	SeverityUnknown     = "unknown"

	// DefaultRuleID is used for findings without a vulnerability name.
	DefaultRuleID = "unknown-issue"
)

// Export builds a SARIF report holding one result per true-positive verdict in entries.
// Keys are visited in sorted order and issues in report order.
func Export(entries map[string]findings.ClassifyEntry, toolName, informationURI string, logger hclog.Logger) (*Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, informationURI)

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := entries[key]
		uri := entry.FilePath
		if uri == "" {
			uri = key
		}

		for _, issue := range entry.Issues {
			verdict := issue.ValidResult
			if verdict == nil || verdict.Result != findings.TruePositive {
				continue
			}

			ruleID := issue.Issue.Vulnerability
			if ruleID == "" {
				ruleID = DefaultRuleID
			}
			severity := SeverityUnknown
			if verdict.Severity != nil && *verdict.Severity != "" {
				severity = *verdict.Severity
			}
			scenarios := verdict.ExploitationScenarios
			if scenarios == nil {
				scenarios = []string{}
			}

			rule := run.AddRule(ruleID).WithDescription(ruleID)

			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri)),
			)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(resultMessage(issue.Issue.Explanation, severity, verdict.Explanation))).
				WithLevel(toSarifLevel(severity)).
				WithLocations([]*sarif.Location{location})
			result.PropertyBag = *sarif.NewPropertyBag()
			result.Add(PropertySeverity, severity)
			result.Add(PropertyExploitationScenarios, scenarios)

			run.AddResult(result)
		}
	}
	report.AddRun(run)

	r := &Report{Report: report, logger: logger}
	r.SortResultsBySeverity()
	return r, nil
}

func resultMessage(findingExplanation, severity, verdictExplanation string) string {
	return fmt.Sprintf("%s\n\nSeverity: %s\n\n%s", findingExplanation, severity, verdictExplanation)
}

func toSarifLevel(severity string) string {
	switch severity {
	case SeverityExploitable:
		return "error"
	case SeverityBadDesign:
		return "warning"
	default:
		return "note"
	}
}
