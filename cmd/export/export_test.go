package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/scanio-ai/pkg/shared/config"
)

const classified = `{
  "fp-1": {
    "filePath": "src/api.ts",
    "issues": [
      {
        "issue": {"vulnerability": "Path Traversal", "explanation": "joins user input", "code": "", "recommendation": ""},
        "validResult": {"result": "true_positive", "explanation": "served publicly", "severity": "Exploitable", "exploitation_scenarios": ["GET /files?name=../../etc/passwd"]}
      },
      {
        "issue": {"vulnerability": "XSS", "explanation": "e", "code": "", "recommendation": ""},
        "validResult": {"result": "false_positive", "explanation": "escaped"}
      },
      {
        "issue": {"vulnerability": "ParseError", "explanation": "", "code": "", "recommendation": ""},
        "error": "No valid result in output"
      }
    ]
  }
}`

func TestValidateExportArgs(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		options RunOptionsExport
		args    []string
		wantErr string
		want    string
	}{
		{name: "Defaults"},
		{
			name:    "Positional arguments",
			args:    []string{"a", "b"},
			wantErr: "unexpected positional arguments: a, b",
		},
		{
			name:    "Output folder gets the default file name",
			options: RunOptionsExport{OutputPath: tmpDir},
			want:    filepath.Join(tmpDir, "classified-findings.sarif"),
		},
		{
			name:    "Output file is kept",
			options: RunOptionsExport{OutputPath: filepath.Join(tmpDir, "out.sarif")},
			want:    filepath.Join(tmpDir, "out.sarif"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.options
			err := validateExportArgs(&opts, tt.args)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.OutputPath)
		})
	}
}

func TestRunWritesSarif(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "classified-findings.json")
	require.NoError(t, os.WriteFile(input, []byte(classified), 0o644))

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	output := filepath.Join(dir, "classified-findings.sarif")
	got, err := Run(context.Background(), cfg, RunOptionsExport{InputPath: input, OutputPath: output}, hclog.NewNullLogger())
	require.NoError(t, err)
	assert.Equal(t, output, got)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var doc struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name string `json:"name"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID     string                 `json:"ruleId"`
				Properties map[string]interface{} `json:"properties"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	assert.Equal(t, config.DefaultToolName, doc.Runs[0].Tool.Driver.Name)
	require.Len(t, doc.Runs[0].Results, 1)
	assert.Equal(t, "Path Traversal", doc.Runs[0].Results[0].RuleID)
	assert.Equal(t, "Exploitable", doc.Runs[0].Results[0].Properties["severity"])
}
