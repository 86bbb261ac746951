package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Episodate EpisodateConfig `mapstructure:"episodate"`
	Sync      SyncConfig      `mapstructure:"sync"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds the tracked-show registry database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig holds the show cache store configuration.
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "console" or "json"
	Path       string `mapstructure:"path"`   // directory for log files; empty disables file logging
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// AuthConfig holds authentication configuration. The token is compared
// against the Authorization header on mutating and listing routes; the
// calendar feed is public.
type AuthConfig struct {
	Token string `mapstructure:"token"`
}

// EpisodateConfig holds the episode metadata provider configuration.
type EpisodateConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// SyncConfig holds the scheduled episode refresh configuration.
type SyncConfig struct {
	Cron       string `mapstructure:"cron"`
	PageSize   int    `mapstructure:"page_size"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.telecal")
	}

	v.SetEnvPrefix("TELECAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.path", "./data/telecal.db")
	v.SetDefault("cache.path", "./data/showcache.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("auth.token", "")

	v.SetDefault("episodate.base_url", "https://www.episodate.com/api")
	v.SetDefault("episodate.timeout", 30)

	// Hourly refresh keeps the cache within one sweep period of the provider.
	v.SetDefault("sync.cron", "0 * * * *")
	v.SetDefault("sync.page_size", 10)
	v.SetDefault("sync.run_on_start", false)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
