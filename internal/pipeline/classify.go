package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-ai/internal/extract"
	"github.com/scan-io-git/scanio-ai/internal/findings"
	"github.com/scan-io-git/scanio-ai/internal/oracle"
	"github.com/scan-io-git/scanio-ai/internal/prompt"
	"github.com/scan-io-git/scanio-ai/internal/store"
)

// NoValidResult is the error recorded when the oracle answered without a usable verdict.
const NoValidResult = "No valid result in output"

// ClassifyDriver asks the triage oracle for a verdict on every finding of a scan report.
// Nothing is cached: every run refreshes every verdict.
type ClassifyDriver struct {
	Oracle    oracle.Oracle
	Input     map[string]findings.ScanEntry
	Store     *store.Store[findings.ClassifyEntry]
	Scheduler *Scheduler
	// Timeout bounds a single oracle call. Zero waits for the oracle to finish on its own.
	Timeout time.Duration
	Logger  hclog.Logger
}

// TriageUnits flattens input into one unit per finding, ordered by input key then finding index.
func TriageUnits(input map[string]findings.ScanEntry) []findings.TriageUnit {
	var units []findings.TriageUnit
	for _, key := range sortedKeys(input) {
		entry := input[key]
		filePath := entry.Metadata.FilePath
		if filePath == "" {
			filePath = key
		}
		for idx, f := range entry.Issues {
			units = append(units, findings.TriageUnit{Key: key, FilePath: filePath, Index: idx, Finding: f})
		}
	}
	return units
}

// Run classifies every finding, then stores one entry per input key and flushes the store.
func (d *ClassifyDriver) Run(ctx context.Context) (*Summary, error) {
	logger := d.Logger.Named("classify").With("run_id", uuid.NewString())

	units := TriageUnits(d.Input)
	keys := make([]string, len(units))
	for i, u := range units {
		keys[i] = fmt.Sprintf("%s#%d", u.Key, u.Index)
	}
	results := make([]findings.ClassifiedIssue, len(units))

	sched := *d.Scheduler
	sched.Logger = logger
	summary := sched.Run(ctx, keys, func(ctx context.Context, i int) (State, error) {
		unit := units[i]
		results[i] = findings.ClassifiedIssue{Issue: unit.Finding}

		if unit.Finding.IsPlaceholder() {
			msg := fmt.Sprintf("Skipped: %s placeholder from the scan stage", unit.Finding.Vulnerability)
			results[i].Error = &msg
			logger.Info("skipping placeholder finding", "file", unit.FilePath, "kind", unit.Finding.Vulnerability)
			return Skipped, nil
		}

		verdict, err := d.classifyOne(ctx, logger, unit)
		if err != nil {
			msg := transportMessage(err)
			results[i].Error = &msg
			return Failed, err
		}
		results[i].ValidResult = &verdict
		return Completed, nil
	})

	// A unit cancelled before dispatch never ran its task.
	for i, o := range summary.Outcomes {
		if o.State == Failed && results[i].ValidResult == nil && results[i].Error == nil {
			results[i].Issue = units[i].Finding
			msg := transportMessage(o.Err)
			results[i].Error = &msg
		}
	}

	for _, key := range sortedKeys(d.Input) {
		entry := d.Input[key]
		filePath := entry.Metadata.FilePath
		if filePath == "" {
			filePath = key
		}
		d.Store.Put(key, findings.ClassifyEntry{FilePath: filePath, Issues: []findings.ClassifiedIssue{}})
	}
	for i, u := range units {
		entry, _ := d.Store.Get(u.Key)
		entry.Issues = append(entry.Issues, results[i])
		d.Store.Put(u.Key, entry)
	}

	if err := d.Store.Flush(context.WithoutCancel(ctx)); err != nil {
		logger.Error("failed to write classification report", "path", d.Store.Path(), "error", err)
		return summary, err
	}
	logger.Info("classification finished",
		"findings", summary.Total(),
		"classified", summary.Completed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"entries", d.Store.Len(),
		"report", d.Store.Path(),
	)
	return summary, nil
}

func (d *ClassifyDriver) classifyOne(ctx context.Context, logger hclog.Logger, unit findings.TriageUnit) (findings.Verdict, error) {
	text, err := prompt.BuildTriagePrompt(unit)
	if err != nil {
		return findings.Verdict{}, err
	}

	logger.Info("classifying finding", "file", unit.FilePath, "vulnerability", unit.Finding.Vulnerability)
	raw, err := oracle.Call(ctx, d.Oracle, text, d.Timeout)
	if err != nil {
		return findings.Verdict{}, err
	}

	got := extract.Extract(raw, extract.Verdict, extract.Options{Tag: prompt.OutputTag})
	if !got.Valid {
		logger.Warn("no verdict in oracle output", "file", unit.FilePath, "vulnerability", unit.Finding.Vulnerability)
		return findings.Verdict{}, errors.New(NoValidResult)
	}

	verdict := got.Value.Normalize()
	logger.Info("finding classified", "file", unit.FilePath, "vulnerability", unit.Finding.Vulnerability, "result", verdict.Result)
	return verdict, nil
}

func sortedKeys[E any](m map[string]E) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
