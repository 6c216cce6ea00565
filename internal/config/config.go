// Package config handles loading and managing crmdeck configuration.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// RemoteConfig holds the backend connection the TUI talks to. When URL is
// empty the TUI opens the local database directly.
type RemoteConfig struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	AllowInsecure  bool   `toml:"allow_insecure"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	BindAddr        string   `toml:"bind_addr"` // default 127.0.0.1
	APIPort         int      `toml:"api_port"`  // default 8080
	APIKey          string   `toml:"api_key"`
	AllowInsecure   bool     `toml:"allow_insecure"` // permit non-loopback bind without a key
	CORSOrigins     []string `toml:"cors_origins"`
	CORSCredentials bool     `toml:"cors_credentials"`
	CORSMaxAge      int      `toml:"cors_max_age"`
}

// ValidateSecure rejects a non-loopback bind without an API key unless the
// operator opted in with allow_insecure.
func (s ServerConfig) ValidateSecure() error {
	if s.APIKey != "" || s.AllowInsecure {
		return nil
	}
	addr := s.BindAddr
	if addr == "" || addr == "localhost" {
		return nil
	}
	if ip := net.ParseIP(addr); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("refusing to bind %q without authentication\n\n"+
		"Options:\n"+
		"  1. Set [server] api_key in config.toml\n"+
		"  2. Bind to loopback: bind_addr = \"127.0.0.1\"\n"+
		"  3. For trusted networks: allow_insecure = true", addr)
}

// RemindersConfig holds the scheduled activity-digest configuration.
type RemindersConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron expression, e.g. "0 8 * * *"
	Limit    int    `toml:"limit"`    // max activities per digest
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// Config represents the crmdeck configuration.
type Config struct {
	Data      DataConfig      `toml:"data"`
	Remote    RemoteConfig    `toml:"remote"`
	Server    ServerConfig    `toml:"server"`
	Reminders RemindersConfig `toml:"reminders"`

	// Computed paths (not from config file)
	HomeDir string `toml:"-"`
}

// DefaultHome returns the default crmdeck home directory.
// Respects the CRMDECK_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("CRMDECK_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crmdeck"
	}
	return filepath.Join(home, ".crmdeck")
}

// Load reads the configuration from the specified file.
// If path is empty, uses the default location (~/.crmdeck/config.toml).
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		Data: DataConfig{
			DataDir: homeDir,
		},
		Remote: RemoteConfig{
			TimeoutSeconds: 30,
		},
		Server: ServerConfig{
			BindAddr: "127.0.0.1",
			APIPort:  8080,
		},
		Reminders: RemindersConfig{
			Schedule: "0 8 * * *",
			Limit:    25,
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Data.DataDir = expandPath(cfg.Data.DataDir)

	return cfg, nil
}

// DatabasePath returns the path to the SQLite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.DataDir, "crmdeck.db")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
