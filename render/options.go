package render

// ============================================================================
// RENDER OPTIONS — Functional options for SVG()
// ============================================================================

// Option configures the chart layout.
type Option func(*config)

// Margins are the gutters around the plot area, in pixels.
type Margins struct {
	Top, Right, Bottom, Left int
}

type config struct {
	Width, Height int
	Margins       Margins
	YearStep      int // x tick spacing in years
	MaxYTicks     int
	FontFamily    string
}

// WithSize sets the outer canvas size (default 650×450).
func WithSize(width, height int) Option {
	return func(c *config) {
		c.Width, c.Height = width, height
	}
}

// WithMargins sets the plot gutters (default top 20, right 120, bottom 30, left 60).
func WithMargins(m Margins) Option {
	return func(c *config) {
		c.Margins = m
	}
}

// WithYearStep sets the x tick spacing. Values below 1 are ignored.
func WithYearStep(years int) Option {
	return func(c *config) {
		if years >= 1 {
			c.YearStep = years
		}
	}
}

// WithMaxYTicks caps the number of major y ticks (default 5).
func WithMaxYTicks(n int) Option {
	return func(c *config) {
		if n >= 1 {
			c.MaxYTicks = n
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		Width:      650,
		Height:     450,
		Margins:    Margins{Top: 20, Right: 120, Bottom: 30, Left: 60},
		YearStep:   3,
		MaxYTicks:  5,
		FontFamily: "Helvetica,Arial,sans-serif",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
