package pipeline

import "github.com/scan-io-git/scanio-ai/pkg/shared/artifacts"

// Launches converts the summary into the artifact record of a stage run.
func (s *Summary) Launches(command, report string) artifacts.LaunchesResult {
	result := artifacts.LaunchesResult{
		Command:   command,
		Report:    report,
		Total:     s.Total(),
		Completed: s.Completed,
		Skipped:   s.Skipped,
		Failed:    s.Failed,
		Launches:  make([]artifacts.LaunchResult, 0, len(s.Outcomes)),
	}
	for _, o := range s.Outcomes {
		launch := artifacts.LaunchResult{Key: o.Key, Status: artifacts.StatusOK, DurationMs: o.Duration.Milliseconds()}
		switch o.State {
		case Skipped:
			launch.Status = artifacts.StatusSkipped
		case Failed:
			launch.Status = artifacts.StatusFailed
		}
		if o.Err != nil {
			launch.Message = o.Err.Error()
		}
		result.Launches = append(result.Launches, launch)
	}
	return result
}
