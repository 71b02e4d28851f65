package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-ai/internal/extract"
	"github.com/scan-io-git/scanio-ai/internal/findings"
	"github.com/scan-io-git/scanio-ai/internal/oracle"
	"github.com/scan-io-git/scanio-ai/internal/prompt"
	"github.com/scan-io-git/scanio-ai/internal/store"

	scanerrors "github.com/scan-io-git/scanio-ai/pkg/shared/errors"
)

// ScanDriver sends each source file to the scan oracle and records its findings.
//
// Successful reports are keyed by content fingerprint, so unchanged files are skipped on the
// next run. Failures are recorded as placeholder entries keyed by file path and are retried.
type ScanDriver struct {
	Oracle     oracle.Oracle
	Store      *store.Store[findings.ScanEntry]
	Scheduler  *Scheduler
	Timeout    time.Duration
	Checkpoint int
	Now        func() time.Time
	Logger     hclog.Logger
}

// Run processes units and flushes the store. The returned error reports a failed final flush only;
// per-unit failures are in the Summary.
func (d *ScanDriver) Run(ctx context.Context, units []findings.WorkUnit) (*Summary, error) {
	logger := d.Logger.Named("scan").With("run_id", uuid.NewString())
	now := d.Now
	if now == nil {
		now = time.Now
	}

	keys := make([]string, len(units))
	fingerprints := make([]string, len(units))
	firstSeen := make(map[string]int, len(units))
	for i, u := range units {
		keys[i] = u.Path
		fingerprints[i] = prompt.Fingerprint(u.Content)
		if _, ok := firstSeen[fingerprints[i]]; !ok {
			firstSeen[fingerprints[i]] = i
		}
	}

	sched := *d.Scheduler
	sched.Logger = logger
	sched.OnTerminal = func(ctx context.Context, done int) {
		if d.Checkpoint <= 0 || done%d.Checkpoint != 0 {
			return
		}
		if err := d.Store.Flush(context.WithoutCancel(ctx)); err != nil {
			logger.Error("checkpoint flush failed", "error", err)
			return
		}
		logger.Debug("checkpoint flushed", "done", done)
	}

	summary := sched.Run(ctx, keys, func(ctx context.Context, i int) (State, error) {
		unit, fingerprint := units[i], fingerprints[i]

		if first := firstSeen[fingerprint]; first != i {
			logger.Info("skipping duplicate content", "file", unit.Path, "same_as", units[first].Path)
			return Skipped, nil
		}
		if d.Store.Has(fingerprint) {
			d.dropPlaceholder(unit.Path)
			logger.Info("skipping already analysed file", "file", unit.Path, "fingerprint", fingerprint)
			return Skipped, nil
		}
		return d.scanOne(ctx, logger, unit, fingerprint, now())
	})

	if err := d.Store.Flush(context.WithoutCancel(ctx)); err != nil {
		logger.Error("failed to write scan report", "path", d.Store.Path(), "error", err)
		return summary, err
	}
	logger.Info("scan finished",
		"total", summary.Total(),
		"completed", summary.Completed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"entries", d.Store.Len(),
		"report", d.Store.Path(),
	)
	return summary, nil
}

func (d *ScanDriver) scanOne(ctx context.Context, logger hclog.Logger, unit findings.WorkUnit, fingerprint string, now time.Time) (State, error) {
	analysisDate := now.UTC().Format(time.RFC3339)
	text, _, err := prompt.BuildScanPrompt(unit, now)
	if err != nil {
		return Failed, err
	}

	logger.Info("analysing file", "file", unit.Path)
	raw, err := oracle.Call(ctx, d.Oracle, text, d.Timeout)
	if err != nil {
		d.putPlaceholder(unit.Path, fingerprint, analysisDate, findings.TimeoutPlaceholder(transportMessage(err)))
		return Failed, err
	}

	got := extract.Extract(raw, extract.ScanReport, extract.Options{})
	if raw == "" || !got.Valid {
		d.putPlaceholder(unit.Path, fingerprint, analysisDate, findings.ParseErrorPlaceholder(raw))
		return Failed, fmt.Errorf("scan report for %q: %w", unit.Path, scanerrors.ErrNoValidCandidate)
	}

	entry := got.Value.Entry
	if entry.Metadata.FilePath == "" {
		entry.Metadata.FilePath = unit.Path
	}
	if entry.Metadata.AnalysisDate == "" {
		entry.Metadata.AnalysisDate = analysisDate
	}
	entry.Metadata.Fingerprint = fingerprint

	d.Store.Put(fingerprint, entry)
	d.dropPlaceholder(unit.Path)
	logger.Info("file analysed", "file", unit.Path, "issues", len(entry.Issues))
	return Completed, nil
}

func (d *ScanDriver) putPlaceholder(path, fingerprint, analysisDate string, f findings.Finding) {
	d.Store.Put(path, findings.ScanEntry{
		Issues: []findings.Finding{f},
		Metadata: findings.Metadata{
			FilePath:     path,
			AnalysisDate: analysisDate,
			Fingerprint:  fingerprint,
		},
	})
}

// dropPlaceholder removes a failure entry left for path by an earlier run.
func (d *ScanDriver) dropPlaceholder(path string) {
	if e, ok := d.Store.Get(path); ok && IsPlaceholderEntry(e) {
		d.Store.Delete(path)
	}
}

// IsPlaceholderEntry reports whether every issue in e was synthesised after a failed unit.
func IsPlaceholderEntry(e findings.ScanEntry) bool {
	if len(e.Issues) == 0 {
		return false
	}
	for _, f := range e.Issues {
		if !f.IsPlaceholder() {
			return false
		}
	}
	return true
}

// transportMessage returns the diagnostic carried by a TransportError, or the error text.
func transportMessage(err error) string {
	var transportErr *scanerrors.TransportError
	if errors.As(err, &transportErr) && transportErr.Message != "" {
		return transportErr.Message
	}
	return err.Error()
}
