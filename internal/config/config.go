// Package config wraps viper behind a nil-safe accessor and loads the
// tradeboard configuration from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g.
// TRADEBOARD_SERVER_PORT for server.port.
const EnvPrefix = "TRADEBOARD"

// Defaults applied before any file or environment value.
var Defaults = map[string]any{
	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.rate_limit.rps":   20.0,
	"server.rate_limit.burst": 40,
	"server.seed_on_start":    false,
	"log.development":         false,
	"database.path":           "tradeboard.db",
	"list.default_page_size":  10,
	"list.max_page_size":      100,
	"client.base_url":         "http://localhost:8080",
	"client.rps":              10.0,
	"client.timeout":          "10s",
}

// Config is a read-only view over a viper instance. The zero value and a
// Config built from a nil viper return zero values for every key.
type Config struct {
	v *viper.Viper
}

// New wraps v.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

// Load reads configuration. path may be empty, in which case
// ./tradeboard.yaml is used when present.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range Defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tradeboard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return New(v), nil
}

func (c *Config) GetString(key string) string {
	if c == nil || c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

func (c *Config) GetInt(key string) int {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

func (c *Config) GetFloat64(key string) float64 {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetFloat64(key)
}

func (c *Config) GetBool(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

func (c *Config) IsSet(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

func (c *Config) Unmarshal(target any) error {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}

// RateLimit configures a per-client token bucket.
type RateLimit struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// ServerSettings is the server section.
type ServerSettings struct {
	Host        string    `mapstructure:"host"`
	Port        int       `mapstructure:"port"`
	RateLimit   RateLimit `mapstructure:"rate_limit"`
	SeedOnStart bool      `mapstructure:"seed_on_start"`
}

// Addr is the host:port the server listens on.
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ListSettings bounds the page sizes clients may request.
type ListSettings struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// ServeSettings is everything the serve command reads.
type ServeSettings struct {
	Server ServerSettings `mapstructure:"server"`
	List   ListSettings   `mapstructure:"list"`
}

// Serve decodes the server and list sections with defaults and environment
// overrides applied.
func (c *Config) Serve() (ServeSettings, error) {
	var s ServeSettings
	if err := c.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decode serve settings: %w", err)
	}
	return s, nil
}
