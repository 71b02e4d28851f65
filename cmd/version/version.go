package version

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-ai/pkg/shared/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Versions holds build information for the binary.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application and the configured oracles",
		Run: func(cmd *cobra.Command, args []string) {
			printVersionInfo(os.Stdout, Versions{
				Version:       CoreVersion,
				GolangVersion: GolangVersion,
				BuildTime:     BuildTime,
			}, AppConfig)
		},
	}
}

// printVersionInfo prints build information and, when configured, the oracles in use.
func printVersionInfo(w io.Writer, versions Versions, cfg *config.Config) {
	fmt.Fprintf(w, "Core Version: v%s\n", versions.Version)
	if cfg != nil {
		fmt.Fprintln(w, "Oracles:")
		fmt.Fprintf(w, "  scan: %s (%s)\n", cfg.Completion.Model, cfg.Completion.Endpoint)
		fmt.Fprintf(w, "  classify: %s exec --profile %s\n", cfg.Agent.Binary, cfg.Agent.Profile)
	}
	fmt.Fprintf(w, "Go Version: %s\n", versions.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", versions.BuildTime)
}
