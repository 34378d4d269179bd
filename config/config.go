/*
Package config loads server configuration.

SOURCES (later wins):
  1. Built-in defaults
  2. Optional config file (yaml, toml or json; chosen by extension)
  3. .env file in the working directory, if present
  4. Environment variables prefixed PAYROLL_, with dots as underscores
     (store.driver -> PAYROLL_STORE_DRIVER)

Command-line flags in cmd/server override the loaded values.

KEYS:
  server.port            HTTP port (8080)
  store.driver           memory | sqlite | postgres (sqlite)
  store.sqlite_path      SQLite file, or ":memory:" (payroll.db)
  store.postgres_dsn     pgx connection string
  log.level              debug | info | warn | error (info)
  log.format             json | console (console)
  notify.channel         email | sms | both (email)
  notify.smtp_host, notify.smtp_user, notify.smtp_password
  notify.sms_api_key, notify.sms_api_url
  scheduler.enabled      run payroll periodically (false)
  scheduler.interval     e.g. "720h" (720h)
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type NotifyConfig struct {
	Channel      string `mapstructure:"channel"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMSAPIKey    string `mapstructure:"sms_api_key"`
	SMSAPIURL    string `mapstructure:"sms_api_url"`
}

type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

var defaults = map[string]any{
	"server.port":          8080,
	"store.driver":         DriverSQLite,
	"store.sqlite_path":    "payroll.db",
	"store.postgres_dsn":   "",
	"log.level":            "info",
	"log.format":           "console",
	"notify.channel":       "email",
	"notify.smtp_host":     "smtp.example.com",
	"notify.smtp_user":     "",
	"notify.smtp_password": "",
	"notify.sms_api_key":   "",
	"notify.sms_api_url":   "",
	"scheduler.enabled":    false,
	"scheduler.interval":   "720h",
}

// Load reads configuration from configPath (optional, "" to skip), .env
// and the environment.
func Load(configPath string) (*Config, error) {
	return LoadWithEnvFile(".env", configPath)
}

// LoadWithEnvFile is Load with an explicit .env path. A missing env file
// is not an error.
func LoadWithEnvFile(envFile, configPath string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read file %s: %w", configPath, err)
		}
	}

	v.SetEnvPrefix("PAYROLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and normalizes enum-like fields.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}

	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("config: store.sqlite_path must be set for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("config: store.postgres_dsn must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}

	c.Notify.Channel = strings.ToLower(strings.TrimSpace(c.Notify.Channel))
	switch c.Notify.Channel {
	case "email", "sms", "both":
	default:
		return fmt.Errorf("config: unknown notify.channel %q", c.Notify.Channel)
	}

	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("config: scheduler.interval must be positive when the scheduler is enabled")
	}
	return nil
}
