package classify

import (
	"fmt"
	"os"
	"strings"

	"github.com/scan-io-git/scanio-ai/pkg/shared/files"
)

// validateClassifyArgs validates the arguments provided to the classify command.
func validateClassifyArgs(options *RunOptionsClassify, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected positional arguments: %s", strings.Join(args, ", "))
	}

	if options.Threads < 0 {
		return fmt.Errorf("the 'threads' flag must be a positive integer")
	}

	if options.InputPath != "" {
		expanded, err := files.ExpandPath(options.InputPath)
		if err != nil {
			return fmt.Errorf("failed to expand input path: %w", err)
		}
		if err := files.ValidatePath(expanded); err != nil {
			return fmt.Errorf("invalid 'input' flag: %w", err)
		}
		options.InputPath = expanded
	}

	if options.SourceFolder != "" {
		expanded, err := files.ExpandPath(options.SourceFolder)
		if err != nil {
			return fmt.Errorf("failed to expand source folder: %w", err)
		}
		s, err := os.Stat(expanded)
		if err != nil || !s.IsDir() {
			return fmt.Errorf("the source folder does not exist: %v", expanded)
		}
		options.SourceFolder = expanded
	}

	return nil
}
