// Package config loads site settings from an optional TOML file and the
// environment. Environment variables (including those from .env) win.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/Zachkp/netfield/internal/field"
)

// Config is the full site configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Backdrop BackdropConfig `toml:"backdrop"`
	Log      LogConfig      `toml:"log"`
	Content  ContentConfig  `toml:"content"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port           string   `toml:"port"`
	Mode           string   `toml:"mode"` // gin mode: debug, release, test
	AllowedOrigins []string `toml:"allowed_origins"`
}

// BackdropConfig holds the particle field settings.
type BackdropConfig struct {
	NodeCount        int     `toml:"node_count"`
	ConnectionRadius float64 `toml:"connection_radius"`
	GlowRadius       float64 `toml:"glow_radius"`
	MaxSpeed         float64 `toml:"max_speed"`
	FPS              int     `toml:"fps"`
	// MaxSessions caps concurrently streamed backdrops. Zero means no cap.
	MaxSessions int `toml:"max_sessions"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	JSON  bool   `toml:"json"`
	Level string `toml:"level"`
}

// ContentConfig points at the portfolio content database.
type ContentConfig struct {
	DSN string `toml:"dsn"`
}

// Default returns the built-in configuration.
func Default() *Config {
	fc := field.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Mode:           "release",
			AllowedOrigins: []string{"http://localhost", "https://localhost"},
		},
		Backdrop: BackdropConfig{
			NodeCount:        fc.NodeCount,
			ConnectionRadius: fc.ConnectionRadius,
			GlowRadius:       fc.GlowRadius,
			MaxSpeed:         fc.MaxSpeed,
			FPS:              30,
			MaxSessions:      64,
		},
		Log:     LogConfig{Level: "info"},
		Content: ContentConfig{DSN: ":memory:"},
	}
}

// FieldConfig converts the backdrop section to simulator options.
func (b BackdropConfig) FieldConfig() field.Config {
	return field.Config{
		NodeCount:        b.NodeCount,
		ConnectionRadius: b.ConnectionRadius,
		GlowRadius:       b.GlowRadius,
		MaxSpeed:         b.MaxSpeed,
	}
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "load env file %s", path)
	}
	return nil
}

// Load reads the TOML file at path (skipped when empty), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("NETFIELD_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "read config %s", path),
				"check the TOML syntax or unset NETFIELD_CONFIG")
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return errors.WithHint(
			errors.Newf("server mode %q", c.Server.Mode),
			"mode must be debug, release or test")
	}
	if c.Server.Port == "" {
		return errors.New("server port is empty")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return errors.Wrapf(err, "server port %q", c.Server.Port)
	}
	if err := c.Backdrop.FieldConfig().Validate(); err != nil {
		return errors.Wrap(err, "backdrop")
	}
	if c.Backdrop.FPS <= 0 || c.Backdrop.FPS > 120 {
		return errors.WithHint(
			errors.Newf("backdrop fps %d out of range", c.Backdrop.FPS),
			"fps must be between 1 and 120")
	}
	if c.Backdrop.MaxSessions < 0 {
		return errors.Newf("backdrop max_sessions %d is negative", c.Backdrop.MaxSessions)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.Mode = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("CONTENT_DSN"); v != "" {
		c.Content.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	var err error
	if c.Log.JSON, err = envBool("LOG_JSON", c.Log.JSON); err != nil {
		return err
	}
	if c.Backdrop.NodeCount, err = envInt("BACKDROP_NODES", c.Backdrop.NodeCount); err != nil {
		return err
	}
	if c.Backdrop.FPS, err = envInt("BACKDROP_FPS", c.Backdrop.FPS); err != nil {
		return err
	}
	if c.Backdrop.MaxSessions, err = envInt("BACKDROP_MAX_SESSIONS", c.Backdrop.MaxSessions); err != nil {
		return err
	}
	if c.Backdrop.ConnectionRadius, err = envFloat("BACKDROP_RADIUS", c.Backdrop.ConnectionRadius); err != nil {
		return err
	}
	if c.Backdrop.GlowRadius, err = envFloat("BACKDROP_GLOW_RADIUS", c.Backdrop.GlowRadius); err != nil {
		return err
	}
	if c.Backdrop.MaxSpeed, err = envFloat("BACKDROP_MAX_SPEED", c.Backdrop.MaxSpeed); err != nil {
		return err
	}
	return nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(err, "%s", key)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
