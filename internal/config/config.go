package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "10s" or "15m" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	td, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(td)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Game      GameConfig      `yaml:"game"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Admin     AdminConfig     `yaml:"admin"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	RequestTimeout Duration `yaml:"request_timeout"`
	ClientOrigin   string   `yaml:"client_origin"`
}

// StoreConfig holds score-store configuration
type StoreConfig struct {
	Path             string `yaml:"path"`
	MaxRows          int    `yaml:"max_rows"`
	TopLimit         int    `yaml:"top_limit"`
	MaxPerOriginHour int    `yaml:"max_per_origin_hour"`
}

// GameConfig holds puzzle configuration
type GameConfig struct {
	Disks int `yaml:"disks"`
}

// RateLimitConfig holds the per-IP request limiter configuration.
// Requests per Window, enforced as a token bucket.
type RateLimitConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Requests int      `yaml:"requests"`
	Window   Duration `yaml:"window"`
}

// AdminConfig gates the bulk-delete endpoint. PasswordHash is a bcrypt hash;
// an empty hash disables the admin surface entirely.
type AdminConfig struct {
	PasswordHash string   `yaml:"password_hash"`
	JWTSecret    string   `yaml:"jwt_secret"`
	TokenTTL     Duration `yaml:"token_ttl"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5175
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = Duration(10 * time.Second)
	}
	if c.Server.ClientOrigin == "" {
		c.Server.ClientOrigin = "http://localhost:5173"
	}

	if c.Store.Path == "" {
		c.Store.Path = "./data/scores.db"
	}
	if c.Store.MaxRows == 0 {
		c.Store.MaxRows = 100
	}
	if c.Store.TopLimit == 0 {
		c.Store.TopLimit = 10
	}
	if c.Store.MaxPerOriginHour == 0 {
		c.Store.MaxPerOriginHour = 5
	}

	if c.Game.Disks == 0 {
		c.Game.Disks = 6
	}

	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = Duration(15 * time.Minute)
	}

	if c.Admin.JWTSecret == "" {
		c.Admin.JWTSecret = "dev_secret_change_me"
	}
	if c.Admin.TokenTTL == 0 {
		c.Admin.TokenTTL = Duration(time.Hour)
	}
}

// DefaultConfig returns a configuration with all defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.RateLimit.Enabled = true
	return cfg
}
