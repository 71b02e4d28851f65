package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scan-io-git/scanio-ai/pkg/shared/config"
	"github.com/scan-io-git/scanio-ai/pkg/shared/files"
)

// validateExportArgs validates the arguments provided to the export command.
func validateExportArgs(options *RunOptionsExport, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected positional arguments: %s", strings.Join(args, ", "))
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

	if options.OutputPath != "" {
		fullPath, _, err := files.DetermineFileFullPath(options.OutputPath, filepath.Base(config.DefaultExportOutput))
		if err != nil {
			return fmt.Errorf("failed to resolve output path: %w", err)
		}
		options.OutputPath = fullPath
	}

	return nil
}
