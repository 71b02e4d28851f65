package classify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/scanio-ai/internal/findings"
	"github.com/scan-io-git/scanio-ai/internal/store"
	"github.com/scan-io-git/scanio-ai/pkg/shared/config"
)

func TestValidateClassifyArgs(t *testing.T) {
	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "report.json")
	require.NoError(t, os.WriteFile(input, []byte("{}"), 0o644))

	tests := []struct {
		name    string
		options RunOptionsClassify
		args    []string
		wantErr string
	}{
		{
			name: "Defaults",
		},
		{
			name:    "Valid input and source",
			options: RunOptionsClassify{InputPath: input, SourceFolder: tmpDir, Threads: 2},
		},
		{
			name:    "Positional arguments",
			args:    []string{"extra"},
			wantErr: "unexpected positional arguments: extra",
		},
		{
			name:    "Negative threads",
			options: RunOptionsClassify{Threads: -3},
			wantErr: "the 'threads' flag must be a positive integer",
		},
		{
			name:    "Input is a directory",
			options: RunOptionsClassify{InputPath: tmpDir},
			wantErr: "invalid 'input' flag: path \"" + tmpDir + "\" is a directory, not a file",
		},
		{
			name:    "Source folder is missing",
			options: RunOptionsClassify{SourceFolder: filepath.Join(tmpDir, "nope")},
			wantErr: "the source folder does not exist: " + filepath.Join(tmpDir, "nope"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.options
			err := validateClassifyArgs(&opts, tt.args)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRunWithScriptedAgent(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh is not available")
	}
	dir := t.TempDir()

	agent := filepath.Join(dir, "agent.sh")
	require.NoError(t, os.WriteFile(agent, []byte(`#!/bin/sh
cat > /dev/null
echo 'Reviewed the handler.'
echo '<output>{"result":"true_positive","explanation":"reachable from the public route","severity":null,"exploitation_scenarios":null}</output>'
`), 0o755))

	scanReport := filepath.Join(dir, "vulnerability-report.json")
	s := store.New[findings.ScanEntry](scanReport, hclog.NewNullLogger())
	s.Put("fp", findings.ScanEntry{
		Issues:   []findings.Finding{{Vulnerability: "SSRF", Explanation: "fetch(url) with user input"}},
		Metadata: findings.Metadata{FilePath: "src/proxy.ts"},
	})
	require.NoError(t, s.Flush(context.Background()))

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Agent.Binary = agent

	output := filepath.Join(dir, "classified-findings.json")
	got, err := Run(context.Background(), cfg, RunOptionsClassify{InputPath: scanReport, OutputPath: output}, hclog.NewNullLogger())
	require.NoError(t, err)
	assert.Equal(t, output, got)

	entries, err := store.ReadFile[findings.ClassifyEntry](output)
	require.NoError(t, err)
	require.Len(t, entries["fp"].Issues, 1)

	verdict := entries["fp"].Issues[0].ValidResult
	require.NotNil(t, verdict)
	assert.Equal(t, findings.TruePositive, verdict.Result)
	require.NotNil(t, verdict.Severity)
	assert.Equal(t, findings.SeverityBadDesign, *verdict.Severity)
	assert.Equal(t, []string{}, verdict.ExploitationScenarios)
}

func TestRunMissingScanReport(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	_, err = Run(context.Background(), cfg, RunOptionsClassify{InputPath: filepath.Join(t.TempDir(), "missing.json")}, hclog.NewNullLogger())
	assert.ErrorContains(t, err, "failed to read scan report")
}
