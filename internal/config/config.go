package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/existflow/ironmeet/internal/billing"
	"gopkg.in/yaml.v3"
)

// DefaultStorageSecret is the placeholder signing key shipped in the defaults
const DefaultStorageSecret = "change-me"

// ErrInsecureSecret is returned when signed download links would use a guessable key
var ErrInsecureSecret = errors.New("storage secret is empty or the default, set storage.secret or IRONMEET_STORAGE_SECRET")

// Config holds user preferences and server settings
type Config struct {
	Editor        string `yaml:"editor" json:"editor"`                 // Default editor command
	ConfirmDelete bool   `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging

	Database DatabaseConfig `yaml:"database" json:"database"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	Billing  BillingConfig  `yaml:"billing" json:"billing"`
	Board    BoardConfig    `yaml:"board" json:"board"`
}

// DatabaseConfig selects the store backend
type DatabaseConfig struct {
	Driver string `yaml:"driver" json:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn" json:"dsn"`       // file path for sqlite, URL for postgres
}

// ServerConfig is used by ironmeet-server and by the CLI in --remote mode
type ServerConfig struct {
	Port       string        `yaml:"port" json:"port"`
	URL        string        `yaml:"url" json:"url"` // where the CLI reaches the server
	SessionTTL time.Duration `yaml:"session_ttl" json:"session_ttl"`
}

// StorageConfig configures report file storage
type StorageConfig struct {
	Root    string        `yaml:"root" json:"root"`
	BaseURL string        `yaml:"base_url" json:"base_url"`
	Secret  string        `yaml:"secret" json:"-"`
	URLTTL  time.Duration `yaml:"url_ttl" json:"url_ttl"`
}

// BillingConfig holds the plan catalog and webhook secret
type BillingConfig struct {
	WebhookSecret string         `yaml:"webhook_secret" json:"-"`
	Plans         []billing.Plan `yaml:"plans" json:"plans"`
}

// BoardConfig controls optimistic task moves
type BoardConfig struct {
	RollbackOnFailure bool `yaml:"rollback_on_failure" json:"rollback_on_failure"`
}

// Dir returns ~/.ironmeet
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".ironmeet"
	}
	return filepath.Join(home, ".ironmeet")
}

// Path returns the config file location
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		Editor:        "vim",
		ConfirmDelete: true,
		LogLevel:      "INFO",
		LogFile:       filepath.Join(dir, "logs", "ironmeet.log"),
		LogConsole:    false,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(dir, "meetings.db"),
		},
		Server: ServerConfig{
			Port:       "8080",
			URL:        "http://localhost:8080",
			SessionTTL: 30 * 24 * time.Hour,
		},
		Storage: StorageConfig{
			Root:    filepath.Join(dir, "files"),
			BaseURL: "http://localhost:8080",
			Secret:  DefaultStorageSecret,
			URLTTL:  time.Hour,
		},
		Billing: BillingConfig{
			Plans: append([]billing.Plan(nil), billing.DefaultPlans...),
		},
		Board: BoardConfig{
			RollbackOnFailure: true,
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// applyEnv lets the environment override file values
func (c *Config) applyEnv() {
	c.LogLevel = getEnv("IRONMEET_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("IRONMEET_LOG_FILE", c.LogFile)
	if v := os.Getenv("IRONMEET_LOG_CONSOLE"); v != "" {
		c.LogConsole = v == "true"
	}

	c.Database.Driver = getEnv("IRONMEET_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("IRONMEET_DB_DSN", c.Database.DSN)
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.Driver = "postgres"
		c.Database.DSN = url
	}

	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.URL = getEnv("IRONMEET_SERVER_URL", c.Server.URL)

	c.Storage.Root = getEnv("IRONMEET_STORAGE_ROOT", c.Storage.Root)
	c.Storage.BaseURL = getEnv("IRONMEET_STORAGE_BASE_URL", c.Storage.BaseURL)
	c.Storage.Secret = getEnv("IRONMEET_STORAGE_SECRET", c.Storage.Secret)

	c.Billing.WebhookSecret = getEnv("IRONMEET_WEBHOOK_SECRET", c.Billing.WebhookSecret)

	if v := os.Getenv("IRONMEET_BOARD_ROLLBACK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Board.RollbackOnFailure = b
		}
	}
}

// CheckServer reports settings the server must not run with
func (c *Config) CheckServer() error {
	if c.Storage.Secret == "" || c.Storage.Secret == DefaultStorageSecret {
		return ErrInsecureSecret
	}
	return nil
}

// Load loads config from ~/.ironmeet/config.yaml
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile loads config from path. A missing file yields the defaults.
// Environment variables override both.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.applyEnv()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Billing.Plans) == 0 {
		cfg.Billing.Plans = append([]billing.Plan(nil), billing.DefaultPlans...)
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save saves config to ~/.ironmeet/config.yaml
func (c *Config) Save() error {
	return c.SaveFile(Path())
}

// SaveFile writes config to path
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
