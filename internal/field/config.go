package field

import (
	"github.com/cockroachdb/errors"
)

// Default field parameters.
const (
	DefaultNodeCount        = 80
	DefaultConnectionRadius = 150.0
	DefaultGlowRadius       = 80.0
	DefaultMaxSpeed         = 0.25
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid field config")

// Config holds the construction-time knobs of a particle field.
type Config struct {
	NodeCount        int     `toml:"node_count" json:"nodeCount"`
	ConnectionRadius float64 `toml:"connection_radius" json:"connectionRadius"`
	GlowRadius       float64 `toml:"glow_radius" json:"glowRadius"`
	// MaxSpeed bounds each velocity component, in units per frame.
	MaxSpeed float64 `toml:"max_speed" json:"maxSpeed"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		NodeCount:        DefaultNodeCount,
		ConnectionRadius: DefaultConnectionRadius,
		GlowRadius:       DefaultGlowRadius,
		MaxSpeed:         DefaultMaxSpeed,
	}
}

// Validate checks the option ranges.
func (c Config) Validate() error {
	switch {
	case c.NodeCount <= 0:
		return errors.WithHint(
			errors.Wrapf(ErrInvalidConfig, "node count %d", c.NodeCount),
			"node_count must be greater than zero")
	case !(c.ConnectionRadius > 0):
		return errors.WithHint(
			errors.Wrapf(ErrInvalidConfig, "connection radius %g", c.ConnectionRadius),
			"connection_radius must be greater than zero")
	case !(c.GlowRadius > 0) || c.GlowRadius > c.ConnectionRadius:
		return errors.WithHintf(
			errors.Wrapf(ErrInvalidConfig, "glow radius %g", c.GlowRadius),
			"glow_radius must be in (0, %g]", c.ConnectionRadius)
	case !(c.MaxSpeed >= 0):
		return errors.WithHint(
			errors.Wrapf(ErrInvalidConfig, "max speed %g", c.MaxSpeed),
			"max_speed must not be negative")
	}
	return nil
}
