package artifacts

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-ai/pkg/shared/files"
)

// Launch statuses.
const (
	StatusOK      = "OK"
	StatusSkipped = "SKIPPED"
	StatusFailed  = "FAILED"
)

// LaunchResult is the artifact record of one unit.
type LaunchResult struct {
	Key        string `json:"key"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// LaunchesResult is the artifact record of one stage run.
type LaunchesResult struct {
	Command   string         `json:"command"`
	Report    string         `json:"report"`
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Launches  []LaunchResult `json:"launches"`
}

// GetArtifactName returns the artifact base name.
// Example: scan_2025-09-15T08:28:46Z.scanio-artifact.
func GetArtifactName(command string, t time.Time) string {
	return fmt.Sprintf("%s_%s.scanio-artifact", command, t.UTC().Format(time.RFC3339))
}

// SaveArtifactJSON writes result to <dir>/<base>.json and returns the full path.
func SaveArtifactJSON(dir string, logger hclog.Logger, result LaunchesResult) (string, error) {
	path := filepath.Join(dir, GetArtifactName(result.Command, time.Now())+".json")

	resultData, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return path, fmt.Errorf("error marshaling the result data: %w", err)
	}

	if err := files.WriteFileAtomic(path, resultData, 0o644); err != nil {
		return path, fmt.Errorf("error writing result to artifact file: %w", err)
	}
	logger.Info("artifact saved to file", "path", path)

	return path, nil
}

// Save writes result into dir. It does nothing when dir is empty, and a write failure is only logged.
func Save(dir string, logger hclog.Logger, result LaunchesResult) {
	if dir == "" {
		return
	}
	if _, err := SaveArtifactJSON(dir, logger, result); err != nil {
		logger.Warn("failed to save artifact", "error", err)
	}
}
