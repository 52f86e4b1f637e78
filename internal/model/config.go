package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds connection settings for the planter service.
type ServerConfig struct {
	// BaseURL is the root URL of the API, e.g. https://planter.example.com/api.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the per-request timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// PollConfig holds the dashboard refresh cadence.
type PollConfig struct {
	// HomeIntervalSec is how often (in seconds) the home snapshot is fetched.
	HomeIntervalSec int `mapstructure:"home_interval_sec" yaml:"home_interval_sec"`

	// NotifIntervalSec is how often (in seconds) the notification feed is fetched.
	NotifIntervalSec int `mapstructure:"notif_interval_sec" yaml:"notif_interval_sec"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig `mapstructure:"server" yaml:"server"`
	Poll    PollConfig   `mapstructure:"poll" yaml:"poll"`
	Log     LogConfig    `mapstructure:"log" yaml:"log"`
	Theme   string       `mapstructure:"theme" yaml:"theme"`
	DataDir string       `mapstructure:"data_dir" yaml:"data_dir"`
}

// ConfigDir returns the application's configuration directory,
// ~/.config/planterm.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "planterm")
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:    "https://i14a103.p.ssafy.io/api",
			TimeoutSec: 30,
		},
		Poll: PollConfig{
			HomeIntervalSec:  10,
			NotifIntervalSec: 30,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "planterm.log"),
		},
		Theme:   "default",
		DataDir: ConfigDir(),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := defaultAppConfig()
	v.SetDefault("server.base_url", defaults.Server.BaseURL)
	v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	v.SetDefault("poll.home_interval_sec", defaults.Poll.HomeIntervalSec)
	v.SetDefault("poll.notif_interval_sec", defaults.Poll.NotifIntervalSec)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)
	v.SetDefault("theme", defaults.Theme)
	v.SetDefault("data_dir", defaults.DataDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
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

	v.Set("server", cfg.Server)
	v.Set("poll", cfg.Poll)
	v.Set("log", cfg.Log)
	v.Set("theme", cfg.Theme)
	v.Set("data_dir", cfg.DataDir)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
