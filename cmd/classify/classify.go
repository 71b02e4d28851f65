package classify

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-ai/internal/findings"
	"github.com/scan-io-git/scanio-ai/internal/logger"
	"github.com/scan-io-git/scanio-ai/internal/oracle"
	"github.com/scan-io-git/scanio-ai/internal/pipeline"
	"github.com/scan-io-git/scanio-ai/internal/store"
	"github.com/scan-io-git/scanio-ai/pkg/shared/artifacts"
	"github.com/scan-io-git/scanio-ai/pkg/shared/config"

	cmdutil "github.com/scan-io-git/scanio-ai/internal/cmd"
)

// RunOptionsClassify holds the arguments for the classify command.
type RunOptionsClassify struct {
	InputPath    string
	OutputPath   string
	SourceFolder string
	Threads      int
}

var (
	AppConfig            *config.Config
	classifyOptions      RunOptionsClassify
	exampleClassifyUsage = `  # Classify every finding of the default scan report
  scanio-ai classify

  # Classify a specific report, letting the agent browse the scanned project
  scanio-ai classify --input /tmp/vulnerability-report.json --source /path/to/my_project

  # Run three agents at once and write verdicts to a custom path
  scanio-ai classify -j 3 --output /tmp/classified-findings.json`
)

// ClassifyCmd represents the classify command.
var ClassifyCmd = &cobra.Command{
	Use:                   "classify [--input/-i PATH] [--output/-o PATH] [--source/-s PATH] [-j THREADS_NUMBER]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleClassifyUsage,
	Short:                 "Asks the reasoning agent whether each scan finding is a true or a false positive",
	RunE:                  runClassifyCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runClassifyCommand(cmd *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-classify")

	if err := validateClassifyArgs(&classifyOptions, args); err != nil {
		logger.Error("invalid classify arguments", "error", err)
		return err
	}

	if _, err := Run(cmd.Context(), AppConfig, classifyOptions, logger); err != nil {
		logger.Error("classify command failed", "error", err)
		return err
	}

	logger.Info("classify command completed successfully")
	return nil
}

// Run executes the classify stage and returns the path of the written report.
func Run(ctx context.Context, cfg *config.Config, opts RunOptionsClassify, logger hclog.Logger) (string, error) {
	inputPath := cmdutil.FirstNonEmpty(opts.InputPath, cfg.Scan.Output)
	outputPath := cmdutil.FirstNonEmpty(opts.OutputPath, cfg.Classify.Output)
	threads := cmdutil.FirstPositive(opts.Threads, cfg.Classify.Concurrency)

	input, err := store.ReadFile[findings.ScanEntry](inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to read scan report: %w", err)
	}
	logger.Info("loaded scan report", "path", inputPath, "files", len(input))

	driver := &pipeline.ClassifyDriver{
		Oracle:    oracle.NewAgent(cfg.Agent, logger).WithDir(opts.SourceFolder),
		Input:     input,
		Store:     store.New[findings.ClassifyEntry](outputPath, logger),
		Scheduler: pipeline.NewScheduler(threads, 0, logger),
		Timeout:   cfg.Agent.Timeout,
		Logger:    logger,
	}
	summary, err := driver.Run(ctx)
	if summary != nil {
		artifacts.Save(cfg.Artifacts.Folder, logger, summary.Launches("classify", outputPath))
	}
	return outputPath, err
}

func init() {
	ClassifyCmd.Flags().BoolP("help", "h", false, "Show help for the classify command.")
	ClassifyCmd.Flags().StringVarP(&classifyOptions.InputPath, "input", "i", "", "Path to the scan report. Defaults to scan.output from the config.")
	ClassifyCmd.Flags().StringVarP(&classifyOptions.OutputPath, "output", "o", "", "Path to the classification report. Defaults to classify.output from the config.")
	ClassifyCmd.Flags().StringVarP(&classifyOptions.SourceFolder, "source", "s", "", "Working directory for the agent, normally the scanned project.")
	ClassifyCmd.Flags().IntVarP(&classifyOptions.Threads, "threads", "j", 0, "Number of concurrent agent processes. Defaults to classify.concurrency from the config.")
}
