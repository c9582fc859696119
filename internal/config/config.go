package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig controls the optional tsnet listener. When enabled the
// server joins the tailnet as Hostname and identifies callers with WhoIs.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

const defaultTailscaleHostname = "overload"

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix OVERLOAD_ and underscore-separated paths:
//
//	OVERLOAD_SERVER_HOST, OVERLOAD_SERVER_PORT,
//	OVERLOAD_DB_HOST, OVERLOAD_DB_PORT, OVERLOAD_DB_NAME,
//	OVERLOAD_DB_USER, OVERLOAD_DB_PASSWORD, OVERLOAD_DB_SSLMODE,
//	OVERLOAD_AUTH_API_KEY,
//	OVERLOAD_TAILSCALE_ENABLED, OVERLOAD_TAILSCALE_HOSTNAME, OVERLOAD_TAILSCALE_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.Tailscale.Enabled && cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = defaultTailscaleHostname
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envString and envInt bind one variable to a field. Unparseable integers
// and booleans are ignored so a typo never zeroes a value from the file.
func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	envString("OVERLOAD_SERVER_HOST", &cfg.Server.Host)
	envInt("OVERLOAD_SERVER_PORT", &cfg.Server.Port)

	envString("OVERLOAD_DB_HOST", &cfg.Database.Host)
	envInt("OVERLOAD_DB_PORT", &cfg.Database.Port)
	envString("OVERLOAD_DB_NAME", &cfg.Database.Name)
	envString("OVERLOAD_DB_USER", &cfg.Database.User)
	envString("OVERLOAD_DB_PASSWORD", &cfg.Database.Password)
	envString("OVERLOAD_DB_SSLMODE", &cfg.Database.SSLMode)

	envString("OVERLOAD_AUTH_API_KEY", &cfg.Auth.APIKey)

	envBool("OVERLOAD_TAILSCALE_ENABLED", &cfg.Tailscale.Enabled)
	envString("OVERLOAD_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	envString("OVERLOAD_TAILSCALE_STATE_DIR", &cfg.Tailscale.StateDir)
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return nil
}
