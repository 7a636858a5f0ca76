// Package selection tracks how the user is fusing topic codes: codes staged
// for a new group, the groups committed so far, and the active preset.
//
// Every transition is total. Clicks that make no sense in the current state
// (toggling a code that is already grouped, committing with nothing staged)
// are no-ops reported through the boolean return, never errors.
package selection

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spektr-org/fusion/engine"
	"github.com/spektr-org/fusion/schema"
)

// ErrUnknownPreset is returned by SelectPreset for ids not in the catalog.
var ErrUnknownPreset = errors.New("selection: unknown preset")

// Phase is the grouping progress. PresetActive is tracked separately.
type Phase int

const (
	Idle    Phase = iota // nothing staged, nothing committed
	Pending              // codes staged, no committed group
	Grouped              // at least one committed group
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Grouped:
		return "grouped"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// State is the selection state for one chart. It is not safe for concurrent
// use; the owning controller serializes access.
type State struct {
	catalog   *schema.Catalog
	pending   map[engine.Code]bool
	committed []engine.Group
	preset    string
}

// New returns an Idle state over the catalog's codes.
func New(cat *schema.Catalog) *State {
	return &State{
		catalog: cat,
		pending: make(map[engine.Code]bool),
	}
}

// ToggleCode stages or unstages code. Codes inside a committed group and
// codes outside the catalog are rejected. Any accepted toggle clears the
// active preset.
func (s *State) ToggleCode(code engine.Code) bool {
	if !s.catalog.HasCode(code) || s.isCommitted(code) {
		return false
	}
	if s.pending[code] {
		delete(s.pending, code)
	} else {
		s.pending[code] = true
	}
	s.preset = ""
	return true
}

// CommitPending turns all staged codes into one new sorted group.
func (s *State) CommitPending() bool {
	if len(s.pending) == 0 {
		return false
	}
	group := make(engine.Group, 0, len(s.pending))
	for c := range s.pending {
		group = append(group, c)
	}
	slices.Sort(group)

	s.committed = append(s.committed, group)
	clear(s.pending)
	s.preset = ""
	return true
}

// ClearAll drops every group and staged code and deactivates the preset.
func (s *State) ClearAll() {
	s.committed = nil
	clear(s.pending)
	s.preset = ""
}

// SelectPreset activates a preset, replacing the committed groups with the
// preset's groups. Selecting the active preset again deactivates it and
// reverts to the all-singletons partition. activated reports the new flag.
func (s *State) SelectPreset(id string) (activated bool, err error) {
	p, ok := s.catalog.Preset(id)
	if !ok {
		return false, fmt.Errorf("%q: %w", id, ErrUnknownPreset)
	}

	clear(s.pending)
	if s.preset == id {
		s.preset = ""
		s.committed = nil
		return false, nil
	}

	s.preset = id
	s.committed = make([]engine.Group, len(p.Groups))
	for i, g := range p.Groups {
		s.committed[i] = slices.Clone(g)
		slices.Sort(s.committed[i])
	}
	return true, nil
}

// ============================================================================
// QUERIES
// ============================================================================

// Phase reports the grouping progress.
func (s *State) Phase() Phase {
	switch {
	case len(s.committed) > 0:
		return Grouped
	case len(s.pending) > 0:
		return Pending
	}
	return Idle
}

// PresetActive reports whether a preset is active.
func (s *State) PresetActive() bool { return s.preset != "" }

// ActivePreset returns the active preset id, or "".
func (s *State) ActivePreset() string { return s.preset }

// Groups returns a copy of the committed groups in commit order.
func (s *State) Groups() []engine.Group {
	out := make([]engine.Group, len(s.committed))
	for i, g := range s.committed {
		out[i] = slices.Clone(g)
	}
	return out
}

// Pending returns the staged codes in catalog order.
func (s *State) Pending() []engine.Code {
	var out []engine.Code
	for _, c := range s.catalog.Codes() {
		if s.pending[c] {
			out = append(out, c)
		}
	}
	return out
}

// IsPending reports whether code is staged.
func (s *State) IsPending(code engine.Code) bool { return s.pending[code] }

// GroupIndex returns the index of the committed group holding code.
func (s *State) GroupIndex(code engine.Code) (int, bool) {
	for i, g := range s.committed {
		if slices.Contains(g, code) {
			return i, true
		}
	}
	return -1, false
}

// Token is the canonical partition of the committed groups; ungrouped codes
// (including staged ones) are singletons.
func (s *State) Token() (engine.Token, error) {
	return engine.Canonicalize(s.committed, s.catalog.Codes())
}

func (s *State) isCommitted(code engine.Code) bool {
	_, ok := s.GroupIndex(code)
	return ok
}

// ============================================================================
// SNAPSHOT
// ============================================================================

// Snapshot is an immutable copy of the state for rendering.
type Snapshot struct {
	Phase   string         `json:"phase"`
	Pending []engine.Code  `json:"pending"`
	Groups  []engine.Group `json:"groups"`
	Preset  string         `json:"preset,omitempty"`
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Phase:   s.Phase().String(),
		Pending: s.Pending(),
		Groups:  s.Groups(),
		Preset:  s.preset,
	}
}
