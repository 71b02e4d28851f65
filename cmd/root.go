package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-ai/cmd/classify"
	"github.com/scan-io-git/scanio-ai/cmd/export"
	"github.com/scan-io-git/scanio-ai/cmd/run"
	"github.com/scan-io-git/scanio-ai/cmd/scan"
	"github.com/scan-io-git/scanio-ai/cmd/version"
	"github.com/scan-io-git/scanio-ai/pkg/shared/config"

	cmdutil "github.com/scan-io-git/scanio-ai/internal/cmd"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "scanio-ai [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Scanio AI finds vulnerabilities with language models and triages them with a reasoning agent.",
		Long: `Scanio AI runs a two-stage security review of a source tree.
	The scan stage sends every file to a completion API and records reported issues.
	The classify stage asks a reasoning agent to confirm or reject each issue.
	Confirmed issues can be exported as SARIF.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(classify.ClassifyCmd)
	rootCmd.AddCommand(export.ExportCmd)
	rootCmd.AddCommand(run.RunCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	ctx, stop := cmdutil.SignalContext(context.Background())
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Printf("initializing config file function is crashed - %v \n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	version.Init(AppConfig)
	scan.Init(AppConfig)
	classify.Init(AppConfig)
	export.Init(AppConfig)
	run.Init(AppConfig)
}
