package scan

import (
	"fmt"
	"os"

	"github.com/scan-io-git/scanio-ai/pkg/shared/files"
)

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one target path must be specified")
	}

	targetPath, err := files.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand target path: %w", err)
	}
	if _, err := os.Stat(targetPath); os.IsNotExist(err) {
		return fmt.Errorf("the target path does not exist: %v", targetPath)
	}
	options.TargetPath = targetPath

	if options.Threads < 0 {
		return fmt.Errorf("the 'threads' flag must be a positive integer")
	}

	if options.OutputPath != "" {
		expanded, err := files.ExpandPath(options.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to expand output path: %w", err)
		}
		if s, err := os.Stat(expanded); err == nil && s.IsDir() {
			return fmt.Errorf("the output path is a directory: %v", expanded)
		}
		options.OutputPath = expanded
	}

	return nil
}
