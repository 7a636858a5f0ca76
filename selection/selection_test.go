package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/fusion/engine"
	"github.com/spektr-org/fusion/schema"
)

func newState(t *testing.T) *State {
	t.Helper()
	return New(schema.Default())
}

func token(t *testing.T, s *State) engine.Token {
	t.Helper()
	tok, err := s.Token()
	require.NoError(t, err)
	return tok
}

func TestInitialStateIsIdle(t *testing.T) {
	s := newState(t)
	assert.Equal(t, Idle, s.Phase())
	assert.False(t, s.PresetActive())
	assert.Equal(t, engine.Singletons(schema.Default().Codes()), token(t, s))
}

func TestToggleAndCommit(t *testing.T) {
	s := newState(t)

	require.True(t, s.ToggleCode("SA3"))
	require.True(t, s.ToggleCode("SA1"))
	assert.Equal(t, Pending, s.Phase())
	assert.Equal(t, []engine.Code{"SA1", "SA3"}, s.Pending())
	assert.Equal(t, engine.Singletons(schema.Default().Codes()), token(t, s), "staged codes stay singletons")

	require.True(t, s.CommitPending())
	assert.Equal(t, Grouped, s.Phase())
	assert.Empty(t, s.Pending())
	assert.Equal(t, []engine.Group{{"SA1", "SA3"}}, s.Groups())

	idx, ok := s.GroupIndex("SA3")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	assert.Equal(t, engine.Token{{"SA2"}, {"SA4"}, {"SA5"}, {"SA6"}, {"SA1", "SA3"}}, token(t, s))
}

func TestToggleTwiceUnstages(t *testing.T) {
	s := newState(t)
	require.True(t, s.ToggleCode("SA2"))
	require.True(t, s.ToggleCode("SA2"))
	assert.Equal(t, Idle, s.Phase())
	assert.False(t, s.IsPending("SA2"))
}

func TestToggleRejectsGroupedAndUnknown(t *testing.T) {
	s := newState(t)
	s.ToggleCode("SA1")
	s.CommitPending()

	assert.False(t, s.ToggleCode("SA1"), "grouped code cannot be toggled")
	assert.False(t, s.IsPending("SA1"))
	assert.False(t, s.ToggleCode("SA9"))
	assert.Equal(t, []engine.Group{{"SA1"}}, s.Groups())
}

func TestCommitEmptyIsNoop(t *testing.T) {
	s := newState(t)
	assert.False(t, s.CommitPending())
	assert.Equal(t, Idle, s.Phase())
}

func TestManualActionsClearPreset(t *testing.T) {
	s := newState(t)
	_, err := s.SelectPreset("neighbor")
	require.NoError(t, err)
	require.True(t, s.PresetActive())

	require.True(t, s.ToggleCode("SA5"))
	assert.False(t, s.PresetActive(), "toggle clears preset")
	assert.Equal(t, []engine.Group{{"SA1", "SA2", "SA3", "SA4"}}, s.Groups(), "groups kept")

	_, err = s.SelectPreset("neighbor")
	require.NoError(t, err)
	require.True(t, s.ToggleCode("SA6"))
	require.True(t, s.CommitPending())
	assert.False(t, s.PresetActive(), "commit clears preset")
}

func TestClearAll(t *testing.T) {
	s := newState(t)
	s.ToggleCode("SA1")
	s.ToggleCode("SA2")
	s.CommitPending()
	s.ToggleCode("SA4")
	_, err := s.SelectPreset("distant")
	require.NoError(t, err)

	s.ClearAll()
	assert.Equal(t, Idle, s.Phase())
	assert.False(t, s.PresetActive())
	assert.Empty(t, s.Groups())
	assert.Empty(t, s.Pending())
}

func TestSelectPresetRoundTrip(t *testing.T) {
	cat := schema.Default()
	for _, id := range cat.PresetIDs() {
		t.Run(id, func(t *testing.T) {
			s := New(cat)
			s.ToggleCode("SA2")

			activated, err := s.SelectPreset(id)
			require.NoError(t, err)
			assert.True(t, activated)
			assert.Equal(t, id, s.ActivePreset())
			assert.Empty(t, s.Pending(), "preset empties pending")

			want, err := cat.PresetToken(id)
			require.NoError(t, err)
			assert.True(t, want.Equal(token(t, s)))
		})
	}
}

func TestSelectSamePresetTogglesOff(t *testing.T) {
	s := newState(t)
	_, err := s.SelectPreset("distant")
	require.NoError(t, err)

	activated, err := s.SelectPreset("distant")
	require.NoError(t, err)
	assert.False(t, activated)
	assert.False(t, s.PresetActive())
	assert.Equal(t, Idle, s.Phase())
	assert.Equal(t, engine.Singletons(schema.Default().Codes()), token(t, s))
}

func TestSwitchPreset(t *testing.T) {
	s := newState(t)
	_, err := s.SelectPreset("distant")
	require.NoError(t, err)
	activated, err := s.SelectPreset("neighbor")
	require.NoError(t, err)
	assert.True(t, activated)
	assert.Equal(t, "neighbor", s.ActivePreset())
	assert.Equal(t, []engine.Group{{"SA1", "SA2", "SA3", "SA4"}}, s.Groups())
}

func TestSelectUnknownPreset(t *testing.T) {
	s := newState(t)
	_, err := s.SelectPreset("wide")
	require.ErrorIs(t, err, ErrUnknownPreset)
}

func TestPresetGroupsAreCopied(t *testing.T) {
	cat := schema.Default()
	s := New(cat)
	_, err := s.SelectPreset("distant")
	require.NoError(t, err)

	groups := s.Groups()
	groups[0][0] = "XX"
	p, _ := cat.Preset("distant")
	assert.Equal(t, engine.Code("SA1"), p.Groups[0][0])
	assert.Equal(t, engine.Code("SA1"), s.Groups()[0][0])
}

func TestSnapshot(t *testing.T) {
	s := newState(t)
	s.ToggleCode("SA6")
	snap := s.Snapshot()
	assert.Equal(t, "pending", snap.Phase)
	assert.Equal(t, []engine.Code{"SA6"}, snap.Pending)
	assert.Empty(t, snap.Groups)
	assert.Equal(t, "phase(9)", Phase(9).String())
}
