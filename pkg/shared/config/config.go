package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the root of the YAML configuration file.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	Completion Completion `yaml:"completion"`
	Agent      Agent      `yaml:"agent"`
	Scan       Scan       `yaml:"scan"`
	Classify   Classify   `yaml:"classify"`
	Export     Export     `yaml:"export"`
	Artifacts  Artifacts  `yaml:"artifacts"`
}

// Logger holds logging settings.
type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// HTTPClient holds settings for the resty client used against the completion API.
type HTTPClient struct {
	Debug           *bool           `yaml:"debug"`
	Timeout         time.Duration   `yaml:"timeout"`
	TLSClientConfig TLSClientConfig `yaml:"tls_client_config"`
	Proxy           Proxy           `yaml:"proxy"`
}

// TLSClientConfig holds TLS verification settings.
type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

// Proxy describes an optional HTTP proxy.
type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Completion configures the completion-API oracle used by the scan stage.
type Completion struct {
	Endpoint          string  `yaml:"endpoint"`
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"api_key"`
	MaxTokens         int     `yaml:"max_tokens"`
	Temperature       float64 `yaml:"temperature"`
	TopP              float64 `yaml:"top_p"`
	TopK              int     `yaml:"top_k"`
	PresencePenalty   float64 `yaml:"presence_penalty"`
	FrequencyPenalty  float64 `yaml:"frequency_penalty"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Agent configures the reasoning-agent process used by the classify stage.
type Agent struct {
	Binary    string        `yaml:"binary"`
	Profile   string        `yaml:"profile"`
	ExtraArgs []string      `yaml:"extra_args"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Scan configures the scan stage.
type Scan struct {
	Concurrency        int           `yaml:"concurrency"`
	Timeout            time.Duration `yaml:"timeout"`
	Extensions         []string      `yaml:"extensions"`
	Output             string        `yaml:"output"`
	CheckpointInterval int           `yaml:"checkpoint_interval"`
}

// Classify configures the classify stage.
type Classify struct {
	Concurrency int    `yaml:"concurrency"`
	Output      string `yaml:"output"`
}

// Export configures the SARIF export step.
type Export struct {
	Output         string `yaml:"output"`
	ToolName       string `yaml:"tool_name"`
	InformationURI string `yaml:"information_uri"`
}

// Artifacts configures per-run summary artifacts. An empty folder disables them.
type Artifacts struct {
	Folder string `yaml:"folder"`
}

// ValidateConfigPath checks that path points to a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return fmt.Errorf("failed to decode %q: %w", configPath, err)
	}

	return nil
}

// LoadConfig reads the configuration file and applies environment overrides and defaults.
// A missing file is not an error: the defaults are used instead.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := LoadYAML(configPath, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file %q: %w", configPath, err)
		}
	}

	if apiKey := os.Getenv(APIKeyEnv); apiKey != "" {
		cfg.Completion.APIKey = apiKey
	}
	ApplyDefaults(cfg)

	return cfg, nil
}
