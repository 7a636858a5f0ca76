package figure

import (
	"log"

	"github.com/spektr-org/fusion/engine"
	"github.com/spektr-org/fusion/helpers"
)

// Option configures a Controller.
type Option func(*config)

type config struct {
	Logger     *log.Logger
	Format     helpers.Format
	EngineOpts []engine.Option
}

// WithLogger routes controller and pipeline logging to l.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithFormat forces the fixture format instead of detecting it.
func WithFormat(f helpers.Format) Option {
	return func(c *config) {
		c.Format = f
	}
}

// WithEngineOptions passes options through to engine.Execute.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(c *config) {
		c.EngineOpts = append(c.EngineOpts, opts...)
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{Logger: log.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	// logger last so the pipeline shares it
	cfg.EngineOpts = append(cfg.EngineOpts, engine.WithLogger(cfg.Logger))
	return cfg
}
