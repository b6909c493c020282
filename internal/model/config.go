package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Credential verifier kinds accepted by AuthConfig.Verifier.
const (
	VerifierMock   = "mock"
	VerifierBcrypt = "bcrypt"
)

// AuthConfig holds credential verification and token settings.
type AuthConfig struct {
	// Verifier selects the credential verifier ("mock" or "bcrypt").
	Verifier string `mapstructure:"verifier" yaml:"verifier"`

	// MockPassword is the single value the mock verifier accepts.
	MockPassword string `mapstructure:"mock_password" yaml:"mock_password"`

	// TokenSecret signs issued session tokens.
	TokenSecret string `mapstructure:"token_secret" yaml:"token_secret"`

	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`

	// Issuer is stamped into issued tokens.
	Issuer string `mapstructure:"issuer" yaml:"issuer"`
}

// TasksConfig holds task repository settings.
type TasksConfig struct {
	// LoadDelay is the simulated fetch delay before seed tasks appear.
	LoadDelay time.Duration `mapstructure:"load_delay" yaml:"load_delay"`
}

// FixturesConfig points at optional seed data.
type FixturesConfig struct {
	// Path is a YAML fixture file; empty uses the built-in seed.
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`

	// File is a rotated log file; empty logs to stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// SessionConfig controls session snapshot persistence.
type SessionConfig struct {
	// Persist stores the session snapshot in the system keyring.
	Persist bool `mapstructure:"persist" yaml:"persist"`

	// KeyringDir is the directory used by the file keyring backend.
	KeyringDir string `mapstructure:"keyring_dir" yaml:"keyring_dir"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Tasks    TasksConfig    `mapstructure:"tasks" yaml:"tasks"`
	Fixtures FixturesConfig `mapstructure:"fixtures" yaml:"fixtures"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskflow/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskflow", "config.yaml")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Auth: AuthConfig{
			Verifier:     VerifierMock,
			MockPassword: "password",
			TokenSecret:  "taskflow-dev-secret",
			TokenTTL:     24 * time.Hour,
			Issuer:       "taskflow",
		},
		Tasks: TasksConfig{
			LoadDelay: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
		Session: SessionConfig{
			KeyringDir: "~/.config/taskflow/credentials",
		},
	}
}

// setDefaults registers every default on v so missing keys resolve to
// sensible values.
func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("auth.verifier", d.Auth.Verifier)
	v.SetDefault("auth.mock_password", d.Auth.MockPassword)
	v.SetDefault("auth.token_secret", d.Auth.TokenSecret)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)
	v.SetDefault("auth.issuer", d.Auth.Issuer)
	v.SetDefault("tasks.load_delay", d.Tasks.LoadDelay)
	v.SetDefault("fixtures.path", d.Fixtures.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("session.persist", d.Session.Persist)
	v.SetDefault("session.keyring_dir", d.Session.KeyringDir)
}

// NewConfigViper returns a viper instance bound to path with all defaults
// registered. Callers may bind flags onto it before calling DecodeConfig.
func NewConfigViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)
	return v
}

// DecodeConfig reads v's config file, if present, and decodes the merged
// result of defaults, file and any bound flags. A missing file yields the
// defaults.
func DecodeConfig(v *viper.Viper) (*AppConfig, error) {
	path := v.ConfigFileUsed()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Auth.Verifier != VerifierMock && cfg.Auth.Verifier != VerifierBcrypt {
		return nil, fmt.Errorf("parsing config %s: unknown auth.verifier %q", path, cfg.Auth.Verifier)
	}
	if cfg.Tasks.LoadDelay < 0 {
		cfg.Tasks.LoadDelay = 0
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("auth.verifier", cfg.Auth.Verifier)
	v.Set("auth.mock_password", cfg.Auth.MockPassword)
	v.Set("auth.token_secret", cfg.Auth.TokenSecret)
	v.Set("auth.token_ttl", cfg.Auth.TokenTTL.String())
	v.Set("auth.issuer", cfg.Auth.Issuer)
	v.Set("tasks.load_delay", cfg.Tasks.LoadDelay.String())
	v.Set("fixtures.path", cfg.Fixtures.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("session.persist", cfg.Session.Persist)
	v.Set("session.keyring_dir", cfg.Session.KeyringDir)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
