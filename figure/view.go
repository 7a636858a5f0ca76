package figure

import (
	"github.com/spektr-org/fusion/engine"
	"github.com/spektr-org/fusion/selection"
)

// ============================================================================
// VIEW — Everything a surface needs to draw the figure once
// ============================================================================

// View is an immutable description of the figure after a transition.
type View struct {
	Selection selection.Snapshot `json:"selection"`
	Token     engine.Token       `json:"token"`
	Result    *engine.Result     `json:"result"`
	Story     []string           `json:"story"`
	Topics    []TopicButton      `json:"topics"`
	Presets   []PresetButton     `json:"presets"`
	CanCommit bool               `json:"canCommit"`
	Hidden    []string           `json:"hidden,omitempty"`
}

// TopicButton is the state of one topic toggle.
type TopicButton struct {
	Code    engine.Code `json:"code"`
	Name    string      `json:"name"`
	Pending bool        `json:"pending"`
	Group   int         `json:"group"` // committed group index, -1 when ungrouped
	Color   string      `json:"color,omitempty"`
}

// Grouped reports whether the topic sits in a committed group.
func (b TopicButton) Grouped() bool { return b.Group >= 0 }

// PresetButton is the state of one preset toggle.
type PresetButton struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}
