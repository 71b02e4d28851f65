package run

import (
	"fmt"
	"os"

	"github.com/scan-io-git/scanio-ai/pkg/shared/files"
)

// validateRunArgs validates the arguments provided to the run command.
func validateRunArgs(options *RunOptions, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one target path must be specified")
	}

	targetPath, err := files.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand target path: %w", err)
	}
	s, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("the target path does not exist: %v", targetPath)
	}
	if !s.IsDir() {
		return fmt.Errorf("the target path must be a directory: %v", targetPath)
	}
	options.Scan.TargetPath = targetPath

	if options.Scan.Threads < 0 || options.Classify.Threads < 0 {
		return fmt.Errorf("thread counts must be positive integers")
	}

	return nil
}
