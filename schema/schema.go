package schema

import (
	"errors"
	"fmt"

	"github.com/spektr-org/fusion/engine"
)

// ============================================================================
// SCHEMA — Describes the topic catalog behind a fusion figure
// ============================================================================
// The catalog names the fixed code set, the presets offered as one-click
// partitions, the regions and their colors, and the prose shown beside the
// chart. The engine only needs the code set; UI and render layers use the
// rest.
// ============================================================================

// ErrInvalidCatalog is wrapped by every validation failure.
var ErrInvalidCatalog = errors.New("schema: invalid catalog")

// Catalog describes one fusion figure.
type Catalog struct {
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Topics        []Topic  `json:"topics" yaml:"topics"`
	Presets       []Preset `json:"presets,omitempty" yaml:"presets,omitempty"`
	InitialPreset string   `json:"initialPreset,omitempty" yaml:"initialPreset,omitempty"`
	Regions       []Region `json:"regions,omitempty" yaml:"regions,omitempty"`
	GroupColors   []string `json:"groupColors,omitempty" yaml:"groupColors,omitempty"`
	Metric        Metric   `json:"metric" yaml:"metric"`
	Abstract      string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Set when the catalog was inferred from data rather than authored.
	DiscoveredFrom string `json:"discoveredFrom,omitempty" yaml:"discoveredFrom,omitempty"`
}

// Topic is one code with its display name.
type Topic struct {
	Code engine.Code `json:"code" yaml:"code"`
	Name string      `json:"name" yaml:"name"`
}

// Preset is a named partition offered as a shortcut.
type Preset struct {
	ID     string         `json:"id" yaml:"id"`
	Label  string         `json:"label" yaml:"label"`
	Groups []engine.Group `json:"groups" yaml:"groups"`
	Text   string         `json:"text,omitempty" yaml:"text,omitempty"`
}

// Region is a series key with its legend label and line color.
type Region struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Metric names the plotted value.
type Metric struct {
	Key    string `json:"key" yaml:"key"`
	Label  string `json:"label" yaml:"label"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // printf verb for axis ticks
}

// Fallback colors for committed groups when the catalog defines none.
var defaultGroupColors = []string{"#8da0cb", "#e78ac3", "#ffd92f", "#a6d854", "#e5c494", "#b3b3b3"}

// Codes returns the full code set in catalog order.
func (c *Catalog) Codes() []engine.Code {
	codes := make([]engine.Code, len(c.Topics))
	for i, t := range c.Topics {
		codes[i] = t.Code
	}
	return codes
}

// HasCode reports whether code belongs to the catalog.
func (c *Catalog) HasCode(code engine.Code) bool {
	for _, t := range c.Topics {
		if t.Code == code {
			return true
		}
	}
	return false
}

// TopicName returns the display name for code, or the code itself.
func (c *Catalog) TopicName(code engine.Code) string {
	for _, t := range c.Topics {
		if t.Code == code {
			return t.Name
		}
	}
	return string(code)
}

// Preset looks up a preset by id.
func (c *Catalog) Preset(id string) (Preset, bool) {
	for _, p := range c.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetIDs returns preset ids in catalog order.
func (c *Catalog) PresetIDs() []string {
	ids := make([]string, len(c.Presets))
	for i, p := range c.Presets {
		ids[i] = p.ID
	}
	return ids
}

// PresetToken canonicalizes a preset's groups over the catalog codes.
func (c *Catalog) PresetToken(id string) (engine.Token, error) {
	p, ok := c.Preset(id)
	if !ok {
		return nil, fmt.Errorf("preset %q: %w", id, ErrInvalidCatalog)
	}
	return engine.Canonicalize(p.Groups, c.Codes())
}

// RegionColors maps region keys to their line colors.
func (c *Catalog) RegionColors() map[string]string {
	colors := make(map[string]string, len(c.Regions))
	for _, r := range c.Regions {
		if r.Color != "" {
			colors[r.Key] = r.Color
		}
	}
	return colors
}

// RegionLabel returns the legend label for a region key.
func (c *Catalog) RegionLabel(key string) string {
	for _, r := range c.Regions {
		if r.Key == key && r.Label != "" {
			return r.Label
		}
	}
	return key
}

// GroupColor returns the color for the i-th committed group, cycling.
func (c *Catalog) GroupColor(i int) string {
	palette := c.GroupColors
	if len(palette) == 0 {
		palette = defaultGroupColors
	}
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// MetricLabel returns the value axis title.
func (c *Catalog) MetricLabel() string {
	if c.Metric.Label != "" {
		return c.Metric.Label
	}
	return "Value"
}

// StoryText is the abstract followed by the active preset's text, if any.
func (c *Catalog) StoryText(presetID string) []string {
	var paragraphs []string
	if c.Abstract != "" {
		paragraphs = append(paragraphs, c.Abstract)
	}
	if p, ok := c.Preset(presetID); ok && p.Text != "" {
		paragraphs = append(paragraphs, p.Text)
	}
	return paragraphs
}

// ============================================================================
// VALIDATION
// ============================================================================

// Validate checks the catalog's internal consistency: unique non-empty
// codes, well-formed presets whose groups form valid partitions, and an
// initial preset that exists.
func (c *Catalog) Validate() error {
	if len(c.Topics) == 0 {
		return fmt.Errorf("%w: no topics", ErrInvalidCatalog)
	}
	seen := make(map[engine.Code]bool, len(c.Topics))
	for i, t := range c.Topics {
		if t.Code == "" {
			return fmt.Errorf("%w: topic %d has no code", ErrInvalidCatalog, i)
		}
		if seen[t.Code] {
			return fmt.Errorf("%w: duplicate code %q", ErrInvalidCatalog, t.Code)
		}
		seen[t.Code] = true
	}

	ids := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		if p.ID == "" {
			return fmt.Errorf("%w: preset without id", ErrInvalidCatalog)
		}
		if ids[p.ID] {
			return fmt.Errorf("%w: duplicate preset %q", ErrInvalidCatalog, p.ID)
		}
		ids[p.ID] = true
		if _, err := engine.Canonicalize(p.Groups, c.Codes()); err != nil {
			return fmt.Errorf("%w: preset %q: %w", ErrInvalidCatalog, p.ID, err)
		}
	}

	if c.InitialPreset != "" && !ids[c.InitialPreset] {
		return fmt.Errorf("%w: initial preset %q not defined", ErrInvalidCatalog, c.InitialPreset)
	}

	regions := make(map[string]bool, len(c.Regions))
	for _, r := range c.Regions {
		if r.Key == "" {
			return fmt.Errorf("%w: region without key", ErrInvalidCatalog)
		}
		if regions[r.Key] {
			return fmt.Errorf("%w: duplicate region %q", ErrInvalidCatalog, r.Key)
		}
		regions[r.Key] = true
	}
	return nil
}
