package logger

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/scan-io-git/scanio-ai/pkg/shared/config"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		cfgLvl string
		want   hclog.Level
	}{
		{name: "default", want: hclog.Info},
		{name: "from config", cfgLvl: "debug", want: hclog.Debug},
		{name: "env wins", env: "error", cfgLvl: "debug", want: hclog.Error},
		{name: "unknown falls back", cfgLvl: "loud", want: hclog.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.LogLevelEnv, tt.env)
			cfg := &config.Config{Logger: config.Logger{Level: tt.cfgLvl}}
			assert.Equal(t, tt.want, determineLogLevel(cfg))
		})
	}
}

func TestNewLoggerWritesNamedJSON(t *testing.T) {
	t.Setenv(config.LogLevelEnv, "")
	yes := true
	cfg := &config.Config{Logger: config.Logger{JSONFormat: &yes}}

	var buf bytes.Buffer
	l := newLogger(cfg, "scan", &buf)
	l.Info("unit completed", "path", "a.ts")

	out := buf.String()
	assert.Contains(t, out, `"@module":"scan"`)
	assert.Contains(t, out, `"path":"a.ts"`)
}
