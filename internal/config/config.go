package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	LogMode  string         `yaml:"log_mode"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	Advisory AdvisoryConfig `yaml:"advisory"`
	POS      POSConfig      `yaml:"pos"`
	Metrics  struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig selects the gorm dialect ("sqlite3" or "postgres") and its DSN.
type DatabaseConfig struct {
	Dialect string `yaml:"dialect"`
	URL     string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// LLMConfig configures the text-generation provider used for menu advice.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai, github_models, azure_openai or empty to disable
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Deployment  string  `yaml:"deployment"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type AdvisoryConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	MaxStale time.Duration `yaml:"max_stale"`
}

// POSConfig overrides vendor base URLs (sandbox endpoints, test servers).
type POSConfig struct {
	Window   time.Duration     `yaml:"window"`
	Timeout  time.Duration     `yaml:"timeout"`
	BaseURLs map[string]string `yaml:"base_urls"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		LogMode:  "development",
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Dialect: "sqlite3", URL: "menuperf.db"},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			MaxTokens:   2000,
		},
		Advisory: AdvisoryConfig{
			Timeout:  60 * time.Second,
			MaxStale: 7 * 24 * time.Hour,
		},
		POS: POSConfig{
			Window:  7 * 24 * time.Hour,
			Timeout: 60 * time.Second,
		},
	}
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9090
	cfg.Metrics.Path = "/metrics"
	return cfg
}

// Load reads an optional .env file, then the YAML file at path, then applies
// environment overrides. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	setString(&cfg.LogMode, "LOG_MODE")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Dialect, "DATABASE_DIALECT")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.Model, "LLM_MODEL")

	switch cfg.LLM.Provider {
	case "openai":
		setString(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	case "github_models":
		setString(&cfg.LLM.APIKey, "GITHUB_TOKEN")
	case "azure_openai":
		setString(&cfg.LLM.APIKey, "AZURE_OPENAI_API_KEY")
		setString(&cfg.LLM.BaseURL, "AZURE_OPENAI_ENDPOINT")
		setString(&cfg.LLM.Deployment, "AZURE_OPENAI_DEPLOYMENT_NAME")
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database url is required")
	}
	switch c.Database.Dialect {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("unsupported database dialect: %s", c.Database.Dialect)
	}
	if c.Advisory.Timeout <= 0 {
		return errors.New("advisory timeout must be positive")
	}
	if c.POS.Window <= 0 {
		return errors.New("pos window must be positive")
	}
	return nil
}
