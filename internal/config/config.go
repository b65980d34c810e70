// Package config provides YAML-based configuration loading for the eatery
// webhook service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level eatery configuration, loaded from eatery.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Session  SessionConfig  `yaml:"session"`
	Menu     []MenuEntry    `yaml:"menu"`
}

// DatabaseConfig holds connection settings for the MySQL server.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// ServerConfig holds settings for the inbound webhook listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// SessionConfig controls how long an abandoned in-progress order survives
// before the reaper drops it.
type SessionConfig struct {
	TTL           Duration `yaml:"ttl"`
	SweepInterval Duration `yaml:"sweep_interval"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "90m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"1h\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MenuEntry is one priced item on the menu, seeded into the database by
// `eatery db init`.
type MenuEntry struct {
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config. The EATERY_DB_PASSWORD
// environment variable overrides the password from the file so it never has
// to live on disk.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if pw := os.Getenv("EATERY_DB_PASSWORD"); pw != "" {
		cfg.Database.Password = pw
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Database == "" {
		c.Database.Database = "eatery"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = Duration(time.Hour)
	}
	if c.Session.SweepInterval == 0 {
		c.Session.SweepInterval = Duration(10 * time.Minute)
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	for i, m := range c.Menu {
		if m.Name == "" {
			errs = append(errs, fmt.Sprintf("menu[%d].name is required", i))
		}
		if m.Price < 0 {
			errs = append(errs, fmt.Sprintf("menu[%d].price must not be negative", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
