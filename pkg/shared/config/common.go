package config

import (
	"crypto/tls"
	"time"
)

const (
	// APIKeyEnv overrides completion.api_key from the config file.
	APIKeyEnv = "SCANIO_AI_API_KEY"
	// LogLevelEnv overrides logger.level from the config file.
	LogLevelEnv = "SCANIO_AI_LOG_LEVEL"
)

// Defaults for the completion-API oracle.
const (
	DefaultCompletionEndpoint = "https://api.fireworks.ai/inference/v1/completions"
	DefaultCompletionModel    = "accounts/fireworks/models/deepseek-r1"
	DefaultMaxTokens          = 4096
	DefaultTemperature        = 0.6
	DefaultTopP               = 1.0
	DefaultTopK               = 40
)

// Defaults for the reasoning-agent oracle.
const (
	DefaultAgentBinary  = "codex"
	DefaultAgentProfile = "test"
)

// Defaults for the pipeline stages.
const (
	DefaultScanConcurrency     = 5
	DefaultScanTimeout         = 60 * time.Second
	DefaultClassifyConcurrency = 3
	DefaultScanOutput          = "vulnerability-report.json"
	DefaultClassifyOutput      = "classified-findings.json"
	DefaultExportOutput        = "classified-findings.sarif"
	DefaultToolName            = "AI Vulnerability Classifier"
	DefaultInformationURI      = "https://github.com/scan-io-git/scanio-ai"
)

// DefaultExtensions lists the source file extensions collected for scanning.
var DefaultExtensions = []string{".ts", ".js"}

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	Timeout         time.Duration // Transport-level timeout for a single request
	TLSClientConfig *tls.Config   // TLS configuration
	Proxy           string        // Proxy address
}

// RestyHTTPClientConfig holds additional configuration settings for the Resty HTTP client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool // Flag to enable Resty debug mode
}

// DefaultHTTPConfig returns a base configuration for HTTP clients with default values.
// The timeout is generous because per-call budgets are enforced with contexts.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		Timeout: 5 * time.Minute,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: false,
		},
		Proxy: "",
	}
}

// DefaultRestyConfig returns a default configuration for the Resty HTTP client, extending the base HTTP configuration.
func DefaultRestyConfig() RestyHTTPClientConfig {
	return RestyHTTPClientConfig{
		BaseHTTPConfig: DefaultHTTPConfig(),
		Debug:          false,
	}
}

// ApplyDefaults fills every unset value with its default.
func ApplyDefaults(cfg *Config) {
	c := &cfg.Completion
	c.Endpoint = SetThen(c.Endpoint, DefaultCompletionEndpoint)
	c.Model = SetThen(c.Model, DefaultCompletionModel)
	c.MaxTokens = SetThen(c.MaxTokens, DefaultMaxTokens)
	c.Temperature = SetThen(c.Temperature, DefaultTemperature)
	c.TopP = SetThen(c.TopP, DefaultTopP)
	c.TopK = SetThen(c.TopK, DefaultTopK)

	a := &cfg.Agent
	a.Binary = SetThen(a.Binary, DefaultAgentBinary)
	a.Profile = SetThen(a.Profile, DefaultAgentProfile)

	s := &cfg.Scan
	s.Concurrency = SetThen(s.Concurrency, DefaultScanConcurrency)
	s.Timeout = SetThen(s.Timeout, DefaultScanTimeout)
	s.Output = SetThen(s.Output, DefaultScanOutput)
	if len(s.Extensions) == 0 {
		s.Extensions = append([]string(nil), DefaultExtensions...)
	}

	cl := &cfg.Classify
	cl.Concurrency = SetThen(cl.Concurrency, DefaultClassifyConcurrency)
	cl.Output = SetThen(cl.Output, DefaultClassifyOutput)

	e := &cfg.Export
	e.Output = SetThen(e.Output, DefaultExportOutput)
	e.ToolName = SetThen(e.ToolName, DefaultToolName)
	e.InformationURI = SetThen(e.InformationURI, DefaultInformationURI)
}
