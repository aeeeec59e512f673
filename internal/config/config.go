// Package config loads runtime settings from a YAML file with
// environment overrides. Missing file means defaults; a malformed file
// is an error rather than a silent fallback.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	Addr         string        `yaml:"addr"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Seed         int64         `yaml:"seed"`

	DBPath      string        `yaml:"db_path"`
	SnapshotDir string        `yaml:"snapshot_dir"`
	SaveEvery   time.Duration `yaml:"save_every"`

	PushInterval time.Duration `yaml:"push_interval"`
	CORSOrigins  []string      `yaml:"cors_origins"`

	AdminToken string `yaml:"admin_token"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Addr:         ":8080",
		TickInterval: 2 * time.Second,
		Seed:         0, // 0 = derive from wall clock
		DBPath:       "aicity.db",
		SnapshotDir:  "snapshots",
		SaveEvery:    5 * time.Minute,
		PushInterval: 2 * time.Second,
		CORSOrigins:  []string{"*"},
	}
}

// Load reads the YAML file at path, layering it over defaults and then
// applying environment overrides. A missing file is fine.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults only
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.TickInterval <= 0 {
		return cfg, fmt.Errorf("tick_interval must be positive, got %v", cfg.TickInterval)
	}
	return cfg, nil
}

// applyEnv layers AICITY_* variables on top of the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("AICITY_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("AICITY_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
	if v := os.Getenv("AICITY_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("AICITY_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TickInterval = d
		}
	}
	if v := os.Getenv("AICITY_ADMIN_TOKEN"); v != "" {
		c.AdminToken = v
	}
}
