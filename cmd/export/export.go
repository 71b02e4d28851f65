package export

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-ai/internal/findings"
	"github.com/scan-io-git/scanio-ai/internal/logger"
	"github.com/scan-io-git/scanio-ai/internal/sarif"
	"github.com/scan-io-git/scanio-ai/internal/store"
	"github.com/scan-io-git/scanio-ai/pkg/shared/config"

	cmdutil "github.com/scan-io-git/scanio-ai/internal/cmd"
)

// RunOptionsExport holds the arguments for the export command.
type RunOptionsExport struct {
	InputPath  string
	OutputPath string
}

var (
	AppConfig          *config.Config
	exportOptions      RunOptionsExport
	exampleExportUsage = `  # Convert the default classification report to SARIF
  scanio-ai export

  # Convert a specific report
  scanio-ai export --input /tmp/classified-findings.json --output /tmp/results.sarif`
)

// ExportCmd represents the export command.
var ExportCmd = &cobra.Command{
	Use:                   "export [--input/-i PATH] [--output/-o PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleExportUsage,
	Short:                 "Writes true-positive verdicts as a SARIF 2.1.0 report",
	RunE:                  runExportCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runExportCommand(cmd *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-export")

	if err := validateExportArgs(&exportOptions, args); err != nil {
		logger.Error("invalid export arguments", "error", err)
		return err
	}

	if _, err := Run(cmd.Context(), AppConfig, exportOptions, logger); err != nil {
		logger.Error("export command failed", "error", err)
		return err
	}

	logger.Info("export command completed successfully")
	return nil
}

// Run converts the classification report to SARIF and returns the path of the written file.
func Run(ctx context.Context, cfg *config.Config, opts RunOptionsExport, logger hclog.Logger) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	inputPath := cmdutil.FirstNonEmpty(opts.InputPath, cfg.Classify.Output)
	outputPath := cmdutil.FirstNonEmpty(opts.OutputPath, cfg.Export.Output)

	entries, err := store.ReadFile[findings.ClassifyEntry](inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to read classification report: %w", err)
	}

	report, err := sarif.Export(entries, cfg.Export.ToolName, cfg.Export.InformationURI, logger)
	if err != nil {
		return "", err
	}
	if err := report.WriteFile(outputPath); err != nil {
		return "", err
	}

	written, err := sarif.ReadReport(outputPath, logger)
	if err != nil {
		return "", fmt.Errorf("failed to read back SARIF report: %w", err)
	}
	info := written.CollectSeverityInfo()
	logger.Info("SARIF report written",
		"path", outputPath,
		"results", info["total"],
		"exploitable", info[sarif.SeverityExploitable],
		"bad_design", info[sarif.SeverityBadDesign],
	)
	return outputPath, nil
}

func init() {
	ExportCmd.Flags().BoolP("help", "h", false, "Show help for the export command.")
	ExportCmd.Flags().StringVarP(&exportOptions.InputPath, "input", "i", "", "Path to the classification report. Defaults to classify.output from the config.")
	ExportCmd.Flags().StringVarP(&exportOptions.OutputPath, "output", "o", "", "Path to the SARIF file, or a folder to write classified-findings.sarif into. Defaults to export.output from the config.")
}
