package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	LogLevel string `yaml:"log_level"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite3" or "postgres"
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	Provider struct {
		BaseURL        string `yaml:"base_url"`
		AccessToken    string `yaml:"access_token"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"provider"`

	Extractor struct {
		Mode      string `yaml:"mode"` // "keyword" or "llm"
		Model     string `yaml:"model"`
		OpenAIKey string `yaml:"openai_key"`
	} `yaml:"extractor"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load reads the YAML configuration file and applies environment overrides
// for secrets so they never have to live in the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.LogLevel = "debug"
	c.Server.Port = 8080
	c.Database.Driver = "sqlite3"
	c.Database.DSN = "kitchensync.db"
	c.Provider.TimeoutSeconds = 30
	c.Extractor.Mode = "keyword"
	c.Extractor.Model = "gpt-4o-mini"
	c.Metrics.Enabled = true
	c.Metrics.Port = 9090
	c.Metrics.Path = "/metrics"
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.Driver = "postgres"
		c.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("POS_ACCESS_TOKEN"); v != "" {
		c.Provider.AccessToken = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Extractor.OpenAIKey = v
	}
}
