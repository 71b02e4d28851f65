package run

import (
	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-ai/cmd/classify"
	"github.com/scan-io-git/scanio-ai/cmd/export"
	"github.com/scan-io-git/scanio-ai/cmd/scan"
	"github.com/scan-io-git/scanio-ai/internal/logger"
	"github.com/scan-io-git/scanio-ai/pkg/shared/config"

	cmdutil "github.com/scan-io-git/scanio-ai/internal/cmd"
)

// RunOptions holds the arguments for the run command.
type RunOptions struct {
	Scan     scan.RunOptionsScan
	Classify classify.RunOptionsClassify
	Export   export.RunOptionsExport
}

var (
	AppConfig       *config.Config
	runOptions      RunOptions
	exampleRunUsage = `  # Scan, classify and export a project in one go
  scanio-ai run /path/to/my_project

  # Use custom scan concurrency and SARIF output
  scanio-ai run -j 10 --sarif /tmp/results.sarif /path/to/my_project`
)

// RunCmd represents the run command.
var RunCmd = &cobra.Command{
	Use:                   "run [-j THREADS_NUMBER] [--sarif PATH] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleRunUsage,
	Short:                 "Runs scan, classify and export over a project",
	RunE:                  runRunCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runRunCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !cmdutil.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-run")
	ctx := cmd.Context()

	if err := validateRunArgs(&runOptions, args); err != nil {
		logger.Error("invalid run arguments", "error", err)
		return err
	}

	scanReport, err := scan.Run(ctx, AppConfig, runOptions.Scan, logger)
	if err != nil {
		logger.Error("scan stage failed", "error", err)
		return err
	}

	runOptions.Classify.InputPath = scanReport
	runOptions.Classify.SourceFolder = runOptions.Scan.TargetPath
	classifiedReport, err := classify.Run(ctx, AppConfig, runOptions.Classify, logger)
	if err != nil {
		logger.Error("classify stage failed", "error", err)
		return err
	}

	runOptions.Export.InputPath = classifiedReport
	sarifPath, err := export.Run(ctx, AppConfig, runOptions.Export, logger)
	if err != nil {
		logger.Error("export stage failed", "error", err)
		return err
	}

	logger.Info("run command completed successfully", "scan_report", scanReport, "classified_report", classifiedReport, "sarif", sarifPath)
	return nil
}

func init() {
	RunCmd.Flags().BoolP("help", "h", false, "Show help for the run command.")
	RunCmd.Flags().IntVarP(&runOptions.Scan.Threads, "threads", "j", 0, "Number of concurrent scan requests. Defaults to scan.concurrency from the config.")
	RunCmd.Flags().IntVar(&runOptions.Classify.Threads, "classify-threads", 0, "Number of concurrent agent processes. Defaults to classify.concurrency from the config.")
	RunCmd.Flags().StringVar(&runOptions.Scan.OutputPath, "report", "", "Path to the scan report. Defaults to scan.output from the config.")
	RunCmd.Flags().StringVar(&runOptions.Classify.OutputPath, "classified", "", "Path to the classification report. Defaults to classify.output from the config.")
	RunCmd.Flags().StringVar(&runOptions.Export.OutputPath, "sarif", "", "Path to the SARIF file. Defaults to export.output from the config.")
}
