package oracle

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-ai/pkg/shared/config"
)

const opAgent = "agent exec"

// Agent is an Oracle backed by a local reasoning-agent executable.
// Each Invoke spawns one process, feeds the prompt on stdin and returns what it printed.
type Agent struct {
	binary    string
	profile   string
	extraArgs []string
	dir       string
	logger    hclog.Logger
}

// NewAgent creates an Agent oracle from configuration.
func NewAgent(cfg config.Agent, logger hclog.Logger) *Agent {
	return &Agent{
		binary:    cfg.Binary,
		profile:   cfg.Profile,
		extraArgs: cfg.ExtraArgs,
		logger:    logger.Named("agent"),
	}
}

// WithDir sets the working directory the agent runs in, normally the scanned source tree.
func (a *Agent) WithDir(dir string) *Agent {
	a.dir = dir
	return a
}

// Args returns the command line arguments passed to the agent binary.
func (a *Agent) Args() []string {
	args := []string{"exec", "--profile", a.profile, "--full-auto"}
	return append(args, a.extraArgs...)
}

// Invoke runs the agent with prompt on stdin and returns its standard output.
func (a *Agent) Invoke(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, a.binary, a.Args()...)
	cmd.Dir = a.dir
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", timeoutOr(ctx, opAgent, "", err)
		}
		message := strings.TrimSpace(stderr.String())
		if exitErr, ok := err.(*exec.ExitError); ok {
			a.logger.Error("agent exited with an error", "exit_code", exitErr.ExitCode(), "stderr", message)
			if message == "" {
				message = fmt.Sprintf("exit code %d", exitErr.ExitCode())
			}
			return "", timeoutOr(ctx, opAgent, message, nil)
		}
		a.logger.Error("failed to run agent", "binary", a.binary, "error", err)
		return "", timeoutOr(ctx, opAgent, message, err)
	}

	if stderr.Len() > 0 {
		a.logger.Debug("agent wrote to stderr", "stderr", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
