// Package config loads Locobot configuration from .locobot/config.yaml with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user preferences and model settings.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Quota   QuotaConfig   `yaml:"quota"`
	Theme   string        `yaml:"theme"` // "light" or "dark"
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the model provider.
type LLMConfig struct {
	APIKey         string `yaml:"api_key"`
	PrimaryModel   string `yaml:"primary_model"`
	FallbackModel  string `yaml:"fallback_model"`
	ThinkingBudget int32  `yaml:"thinking_budget"`
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per model call
}

// QuotaConfig configures the daily generation budget.
type QuotaConfig struct {
	DailyLimit int `yaml:"daily_limit"`
}

// LoggingConfig controls the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			PrimaryModel:   "gemini-3-pro-preview",
			FallbackModel:  "gemini-3-flash-preview",
			ThinkingBudget: 32768,
			TimeoutSeconds: 300,
		},
		Quota: QuotaConfig{DailyLimit: 1000},
		Theme: "dark",
	}
}

// Dir returns the directory where Locobot state is stored for a workspace.
func Dir(workspace string) string {
	return filepath.Join(workspace, ".locobot")
}

// File returns the full path to the config file.
func File(workspace string) string {
	return filepath.Join(Dir(workspace), "config.yaml")
}

// Load reads the configuration from disk, applies defaults for missing
// fields, then applies environment overrides. A missing file is not an
// error; defaults are returned.
func Load(workspace string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(File(workspace))
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to disk.
func Save(workspace string, cfg Config) error {
	dir := Dir(workspace)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(File(workspace), data, 0644)
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.LLM.PrimaryModel == "" {
		c.LLM.PrimaryModel = def.LLM.PrimaryModel
	}
	if c.LLM.FallbackModel == "" {
		c.LLM.FallbackModel = def.LLM.FallbackModel
	}
	if c.LLM.ThinkingBudget == 0 {
		c.LLM.ThinkingBudget = def.LLM.ThinkingBudget
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = def.LLM.TimeoutSeconds
	}
	if c.Quota.DailyLimit == 0 {
		c.Quota.DailyLimit = def.Quota.DailyLimit
	}
	if c.Theme == "" {
		c.Theme = def.Theme
	}
}

// applyEnvOverrides applies API key overrides from the environment.
// GEMINI_API_KEY takes precedence over the generic API_KEY.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
}
