package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration. Every setting has
// a usable default so the desktop shell starts without a config file; the
// daemon normally loads one.
type Config struct {
	ListenAddress string             `yaml:"listen_address"`
	DatabasePath  string             `yaml:"database_path"`
	APIKey        string             `yaml:"api_key"`
	MaxInflight   int                `yaml:"max_inflight"`
	RateLimit     int                `yaml:"rate_limit_per_second"`
	Guard         GuardConfig        `yaml:"guard"`
	Orchestrator  OrchestratorConfig `yaml:"orchestrator"`
	Ollama        OllamaConfig       `yaml:"ollama"`
	Shell         ShellConfig        `yaml:"shell"`
}

// GuardConfig holds agent guard settings.
type GuardConfig struct {
	EthicsDenyPatterns []string `yaml:"ethics_deny_patterns"`
}

// OrchestratorConfig holds ML orchestrator service settings.
type OrchestratorConfig struct {
	Address string `yaml:"address"`
}

// OllamaConfig holds local inference settings.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// ShellConfig holds desktop shell settings.
type ShellConfig struct {
	AlwaysOnTop bool `yaml:"always_on_top"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	cfg := &Config{
		ListenAddress: "127.0.0.1:8080",
		DatabasePath:  "neuroedge.db",
		MaxInflight:   200,
		RateLimit:     50,
		Orchestrator: OrchestratorConfig{
			Address: "http://localhost:8090",
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
		},
		Shell: ShellConfig{
			AlwaysOnTop: true,
		},
	}
	cfg.applyEnvOverrides()
	return cfg
}

// Load loads and validates the configuration from the given file path.
// Environment variables override file values.
func Load(filePath string) (*Config, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse YAML config file: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("NEUROEDGE_API_KEY")); v != "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("NEUROEDGE_LISTEN_ADDR")); v != "" {
		c.ListenAddress = v
	}
	if v := strings.TrimSpace(os.Getenv("NEUROEDGE_MAX_INFLIGHT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxInflight = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("NEUROEDGE_ORCHESTRATOR_ADDR")); v != "" {
		c.Orchestrator.Address = v
	}
	if v := strings.TrimSpace(os.Getenv("NEUROEDGE_OLLAMA_URL")); v != "" {
		c.Ollama.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("NEUROEDGE_ETHICS_DENY_PATTERNS")); v != "" {
		patterns := []string{}
		for _, p := range strings.Split(v, ",") {
			trimmed := strings.ToLower(strings.TrimSpace(p))
			if trimmed != "" {
				patterns = append(patterns, trimmed)
			}
		}
		if len(patterns) > 0 {
			c.Guard.EthicsDenyPatterns = patterns
		}
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("listen_address is missing")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database_path is missing")
	}
	if c.MaxInflight <= 0 {
		return fmt.Errorf("max_inflight must be positive, got %d", c.MaxInflight)
	}
	return nil
}
