/*
Package config loads server configuration from an optional YAML file.

PURPOSE:
  Keeps deployment knobs (listen address, database path, policy tuning) out
  of the binary. Command-line flags in cmd/server override whatever the file
  says, and everything has a sensible default, so running with no config at
  all works.

FILE FORMAT:
  server:
    addr: ":8080"
    read_timeout: "15s"
    write_timeout: "15s"
  database:
    path: "./attendance.db"
  policy:
    remote_weekly_cap: 2
    correction_window_days: 30
    work_hours: 8.0
*/
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Policy   PolicyConfig   `yaml:"policy"`
}

// ServerConfig holds HTTP server settings. yaml.v3 cannot decode duration
// strings, so the timeouts travel as raw strings and are parsed in Load.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	IdleTimeout     time.Duration `yaml:"-"`
	ReadTimeoutRaw  string        `yaml:"read_timeout"`
	WriteTimeoutRaw string        `yaml:"write_timeout"`
	IdleTimeoutRaw  string        `yaml:"idle_timeout"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// PolicyConfig tunes the request engine's policy knobs.
type PolicyConfig struct {
	RemoteWeeklyCap      int     `yaml:"remote_weekly_cap"`
	CorrectionWindowDays int     `yaml:"correction_window_days"`
	WorkHours            float64 `yaml:"work_hours"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{Path: "./attendance.db"},
		Policy: PolicyConfig{
			RemoteWeeklyCap:      2,
			CorrectionWindowDays: 30,
			WorkHours:            8.0,
		},
	}
}

// Load reads a YAML file and overlays it on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.Server.Addr == "" {
		return cfg, fmt.Errorf("config: server.addr must not be empty")
	}
	if cfg.Database.Path == "" {
		return cfg, fmt.Errorf("config: database.path must not be empty")
	}

	for _, tm := range []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{cfg.Server.ReadTimeoutRaw, "server.read_timeout", &cfg.Server.ReadTimeout},
		{cfg.Server.WriteTimeoutRaw, "server.write_timeout", &cfg.Server.WriteTimeout},
		{cfg.Server.IdleTimeoutRaw, "server.idle_timeout", &cfg.Server.IdleTimeout},
	} {
		if tm.raw == "" {
			continue
		}
		d, err := time.ParseDuration(tm.raw)
		if err != nil {
			return cfg, fmt.Errorf("config: %s: %w", tm.name, err)
		}
		*tm.dst = d
	}
	return cfg, nil
}
