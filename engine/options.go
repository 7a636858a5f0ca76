package engine

import "log"

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute() and DeriveDomains()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Margin    float64 // fractional padding applied to both ends of the value range
	ClampZero bool    // clamp the padded lower bound at zero
	Logger    *log.Logger
}

// WithMargin sets the fractional value-range padding (default 0.10).
// Negative margins are treated as zero.
func WithMargin(margin float64) Option {
	return func(c *config) {
		if margin < 0 {
			margin = 0
		}
		c.Margin = margin
	}
}

// WithClampZero controls whether the padded lower bound may go below zero.
// Diversity indices are non-negative, so clamping is on by default.
func WithClampZero(clamp bool) Option {
	return func(c *config) {
		c.ClampZero = clamp
	}
}

// WithLogger routes pipeline logging to l. A nil logger keeps the default.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Margin:    0.10,
		ClampZero: true,
		Logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
