package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	scanerrors "github.com/scan-io-git/scanio-ai/pkg/shared/errors"
)

// ValidateConfig checks if the global configurations have valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidateCompletionConfig(&cfg.Completion); err != nil {
		return fmt.Errorf("YAML global config: completion directive is invalid: %w", err)
	}
	if err := ValidateAgentConfig(&cfg.Agent); err != nil {
		return fmt.Errorf("YAML global config: agent directive is invalid: %w", err)
	}
	if err := ValidateStageConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: stage directive is invalid: %w", err)
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if err := validateDuration(httpConfig.Timeout, "timeout", 30*time.Minute); err != nil {
		return err
	}
	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}
	return nil
}

// ValidateCompletionConfig checks the completion-API settings. The API key is not required here,
// see RequireAPIKey.
func ValidateCompletionConfig(c *Completion) error {
	if c == nil {
		return fmt.Errorf("completion configuration is nil")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return scanerrors.NewConfigError("completion.endpoint", "invalid URL %q", c.Endpoint)
	}
	if c.MaxTokens < 0 {
		return scanerrors.NewConfigError("completion.max_tokens", "must not be negative, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return scanerrors.NewConfigError("completion.temperature", "must be between 0 and 2, got %v", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return scanerrors.NewConfigError("completion.top_p", "must be between 0 and 1, got %v", c.TopP)
	}
	if c.RequestsPerSecond < 0 {
		return scanerrors.NewConfigError("completion.requests_per_second", "must not be negative, got %v", c.RequestsPerSecond)
	}
	return nil
}

// RequireAPIKey reports a fatal configuration error when no completion credential is available.
func RequireAPIKey(c *Completion) error {
	if strings.TrimSpace(c.APIKey) == "" {
		return scanerrors.NewConfigError("completion.api_key", "credential is missing, set it in the config file or via %s", APIKeyEnv)
	}
	return nil
}

// ValidateAgentConfig checks the reasoning-agent settings.
func ValidateAgentConfig(a *Agent) error {
	if a == nil {
		return fmt.Errorf("agent configuration is nil")
	}
	if strings.TrimSpace(a.Binary) == "" {
		return scanerrors.NewConfigError("agent.binary", "must be set")
	}
	return validateDuration(a.Timeout, "agent.timeout", 24*time.Hour)
}

// ValidateStageConfig checks concurrency, timeouts and outputs for every stage.
func ValidateStageConfig(cfg *Config) error {
	if cfg.Scan.Concurrency < 1 {
		return scanerrors.NewConfigError("scan.concurrency", "must be a positive integer, got %d", cfg.Scan.Concurrency)
	}
	if cfg.Classify.Concurrency < 1 {
		return scanerrors.NewConfigError("classify.concurrency", "must be a positive integer, got %d", cfg.Classify.Concurrency)
	}
	if cfg.Scan.CheckpointInterval < 0 {
		return scanerrors.NewConfigError("scan.checkpoint_interval", "must not be negative, got %d", cfg.Scan.CheckpointInterval)
	}
	if err := validateDuration(cfg.Scan.Timeout, "scan.timeout", 1*time.Hour); err != nil {
		return err
	}
	for _, ext := range cfg.Scan.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return scanerrors.NewConfigError("scan.extensions", "extension %q must start with a dot", ext)
		}
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %s: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%s duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}

	return validatePort(proxy.Port)
}

// validateHost checks if the host part of the proxy configuration is valid.
// It ensures the host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	if _, err := url.Parse(*host); err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}
