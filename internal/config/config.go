package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported application environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Version  string `mapstructure:"app_version"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	// SecretKey must be set when running in production.
	SecretKey string `mapstructure:"secret_key" json:"-"`

	// BaseURL resolves relative endpoints for the apicall CLI.
	BaseURL string `mapstructure:"base_url"`

	HTTPAddr       string   `mapstructure:"http_addr"`
	CORSOriginsRaw string   `mapstructure:"cors_origins"`
	CORSOrigins    []string `mapstructure:"-"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`

	StorageType    string `mapstructure:"storage_type"`
	StoragePath    string `mapstructure:"storage_path"`
	SeedFile       string `mapstructure:"seed_file"`
	PublishersFile string `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "jsonfetch")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", EnvDevelopment)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("http_addr", ":5000")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("max_body_bytes", int64(16*1024*1024))
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("storage_path", "./data/examples.db")
	v.SetDefault("seed_file", "")
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTesting:
	default:
		return fmt.Errorf("invalid app_env %q (expected development, production or testing)", c.Env)
	}

	c.SecretKey = strings.TrimSpace(c.SecretKey)
	if c.Env == EnvProduction && c.SecretKey == "" {
		return fmt.Errorf("secret_key is required in production")
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max_body_bytes (must be positive)")
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("http_addr is required")
	}

	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))
	c.StoragePath = strings.TrimSpace(c.StoragePath)
	c.SeedFile = strings.TrimSpace(c.SeedFile)
	c.PublishersFile = strings.TrimSpace(c.PublishersFile)
	c.CORSOrigins = splitOrigins(c.CORSOriginsRaw)
	return nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
