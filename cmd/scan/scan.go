package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-ai/internal/findings"
	"github.com/scan-io-git/scanio-ai/internal/logger"
	"github.com/scan-io-git/scanio-ai/internal/oracle"
	"github.com/scan-io-git/scanio-ai/internal/pipeline"
	"github.com/scan-io-git/scanio-ai/internal/store"
	"github.com/scan-io-git/scanio-ai/pkg/shared/artifacts"
	"github.com/scan-io-git/scanio-ai/pkg/shared/config"
	"github.com/scan-io-git/scanio-ai/pkg/shared/files"
	"github.com/scan-io-git/scanio-ai/pkg/shared/httpclient"

	cmdutil "github.com/scan-io-git/scanio-ai/internal/cmd"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	TargetPath string
	OutputPath string
	Threads    int
}

var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scan every .ts and .js file under a project
  scanio-ai scan /path/to/my_project

  # Scan with 10 concurrent requests and a custom report path
  scanio-ai scan -j 10 --output /tmp/vulnerability-report.json /path/to/my_project

  # Resume an interrupted scan: files already in the report are skipped
  scanio-ai scan /path/to/my_project`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--output/-o PATH] [-j THREADS_NUMBER] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Sends every source file to the completion API and records reported vulnerabilities",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !cmdutil.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-scan")

	if err := validateScanArgs(&scanOptions, args); err != nil {
		logger.Error("invalid scan arguments", "error", err)
		return err
	}

	if _, err := Run(cmd.Context(), AppConfig, scanOptions, logger); err != nil {
		logger.Error("scan command failed", "error", err)
		return err
	}

	logger.Info("scan command completed successfully")
	return nil
}

// Run executes the scan stage over opts.TargetPath and returns the path of the written report.
func Run(ctx context.Context, cfg *config.Config, opts RunOptionsScan, logger hclog.Logger) (string, error) {
	if err := config.RequireAPIKey(&cfg.Completion); err != nil {
		return "", err
	}

	outputPath := cmdutil.FirstNonEmpty(opts.OutputPath, cfg.Scan.Output)
	threads := cmdutil.FirstPositive(opts.Threads, cfg.Scan.Concurrency)

	units, err := collectUnits(opts.TargetPath, cfg.Scan.Extensions, logger)
	if err != nil {
		return "", err
	}
	logger.Info("collected source files", "root", opts.TargetPath, "files", len(units), "extensions", cfg.Scan.Extensions)

	client := httpclient.InitializeRestyClient(logger, &cfg.HTTPClient)
	reportStore := store.New[findings.ScanEntry](outputPath, logger)
	_ = reportStore.Load()

	driver := &pipeline.ScanDriver{
		Oracle:     oracle.NewCompletion(client, cfg.Completion, logger),
		Store:      reportStore,
		Scheduler:  pipeline.NewScheduler(threads, cfg.Completion.RequestsPerSecond, logger),
		Timeout:    cfg.Scan.Timeout,
		Checkpoint: cfg.Scan.CheckpointInterval,
		Logger:     logger,
	}
	summary, err := driver.Run(ctx, units)
	if summary != nil {
		artifacts.Save(cfg.Artifacts.Folder, logger, summary.Launches("scan", outputPath))
	}
	return outputPath, err
}

// collectUnits reads every matching file under root. Unreadable files are logged and left out.
func collectUnits(root string, extensions []string, logger hclog.Logger) ([]findings.WorkUnit, error) {
	paths, err := files.CollectFiles(root, extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to collect files under '%s': %w", root, err)
	}

	units := make([]findings.WorkUnit, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", "file", path, "error", err)
			continue
		}
		units = append(units, findings.WorkUnit{Path: filepath.ToSlash(path), Content: content})
	}
	return units, nil
}

func init() {
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Path to the scan report. Existing entries are reused. Defaults to scan.output from the config.")
	ScanCmd.Flags().IntVarP(&scanOptions.Threads, "threads", "j", 0, "Number of concurrent requests. Defaults to scan.concurrency from the config.")
}
