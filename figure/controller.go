// Package figure owns the state of one interactive fusion figure: the
// catalog, the loaded dataset, the selection and the legend visibility.
//
// Every transition takes the controller lock, applies the change and
// recomputes the View before releasing it, so two clicks can never
// interleave with each other or with a half-built view.
package figure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/spektr-org/fusion/engine"
	"github.com/spektr-org/fusion/helpers"
	"github.com/spektr-org/fusion/render"
	"github.com/spektr-org/fusion/schema"
	"github.com/spektr-org/fusion/selection"
)

// ErrNotLoaded is returned by transitions attempted before a successful Load.
var ErrNotLoaded = errors.New("figure: data not loaded")

// Controller drives one figure. The zero value is not usable; call New.
type Controller struct {
	catalog *schema.Catalog
	source  helpers.Source
	cfg     *config

	once sync.Once

	mu      sync.Mutex
	status  engine.Status // StatusLoading, StatusLoadFailed or StatusOK
	loadErr error
	records []engine.Record
	state   *selection.State
	hidden  map[string]bool
}

// New returns a controller that will read its dataset from src.
func New(cat *schema.Catalog, src helpers.Source, opts ...Option) *Controller {
	return &Controller{
		catalog: cat,
		source:  src,
		cfg:     applyOptions(opts),
		status:  engine.StatusLoading,
		state:   selection.New(cat),
		hidden:  make(map[string]bool),
	}
}

// Load fetches and decodes the dataset. Only the first call does any work;
// later calls return its outcome. A failed load is final.
func (c *Controller) Load(ctx context.Context) error {
	c.once.Do(func() { c.load(ctx) })

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

func (c *Controller) load(ctx context.Context) {
	records, err := helpers.LoadRecords(ctx, c.source, c.cfg.Format)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.status = engine.StatusLoadFailed
		c.loadErr = err
		c.cfg.Logger.Printf("❌ Fusion: failed to load data: %v", err)
		return
	}

	c.records = records
	c.status = engine.StatusOK
	c.cfg.Logger.Printf("📂 Fusion: loaded %d records (%d groupings) from %s",
		len(records), len(engine.MatchCount(records)), c.source)

	if id := c.catalog.InitialPreset; id != "" {
		if _, err := c.state.SelectPreset(id); err != nil {
			c.cfg.Logger.Printf("⚠️ Fusion: initial preset: %v", err)
		}
	}
}

// Loaded reports whether a Load has succeeded.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == engine.StatusOK
}

// Catalog returns the catalog the controller was built with.
func (c *Controller) Catalog() *schema.Catalog { return c.catalog }

// Records returns the loaded dataset. The slice must not be modified.
func (c *Controller) Records() []engine.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records
}

// ============================================================================
// TRANSITIONS
// ============================================================================

// ToggleCode stages or unstages a topic. Grouped codes are left alone.
func (c *Controller) ToggleCode(code engine.Code) (View, error) {
	return c.apply("toggle "+string(code), func(s *selection.State) error {
		s.ToggleCode(code)
		return nil
	})
}

// CommitPending turns the staged topics into a group.
func (c *Controller) CommitPending() (View, error) {
	return c.apply("commit", func(s *selection.State) error {
		s.CommitPending()
		return nil
	})
}

// ClearAll drops every group, staged topic and the active preset.
func (c *Controller) ClearAll() (View, error) {
	return c.apply("clear", func(s *selection.State) error {
		s.ClearAll()
		return nil
	})
}

// SelectPreset activates a preset, or deactivates it when already active.
func (c *Controller) SelectPreset(id string) (View, error) {
	return c.apply("preset "+id, func(s *selection.State) error {
		_, err := s.SelectPreset(id)
		return err
	})
}

// ToggleRegion hides or shows one region's line. Visibility survives
// regrouping.
func (c *Controller) ToggleRegion(region string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != engine.StatusOK {
		return c.view(), fmt.Errorf("toggle region %s: %w", region, ErrNotLoaded)
	}
	if c.hidden[region] {
		delete(c.hidden, region)
	} else {
		c.hidden[region] = true
	}
	return c.view(), nil
}

func (c *Controller) apply(action string, fn func(*selection.State) error) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != engine.StatusOK {
		return c.view(), fmt.Errorf("%s: %w", action, ErrNotLoaded)
	}
	if err := fn(c.state); err != nil {
		return c.view(), err
	}

	v := c.view()
	c.cfg.Logger.Printf("🔀 Fusion: %s → %s (%s)", action, v.Token, v.Result.Status)
	return v, nil
}

// ============================================================================
// VIEWS
// ============================================================================

// View returns the current view without changing anything.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

// Frame returns the render input for the current view.
func (c *Controller) Frame() render.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.view()
	f := render.NewFrame(c.catalog, v.Result, c.state.Groups())
	f.Hidden = maps.Clone(c.hidden)
	return f
}

// Render draws the current view as SVG.
func (c *Controller) Render(w io.Writer, opts ...render.Option) error {
	return render.SVG(w, c.Frame(), opts...)
}

// view must be called with c.mu held.
func (c *Controller) view() View {
	snap := c.state.Snapshot()
	v := View{
		Selection: snap,
		Story:     c.catalog.StoryText(snap.Preset),
		Topics:    c.topicButtons(),
		Presets:   c.presetButtons(snap.Preset),
		CanCommit: len(snap.Pending) > 0,
		Hidden:    slices.Sorted(maps.Keys(c.hidden)),
	}

	if c.status != engine.StatusOK {
		v.Result = engine.NewStatusResult(c.status, nil)
		return v
	}

	token, err := c.state.Token()
	if err != nil {
		c.cfg.Logger.Printf("❌ Fusion: invalid grouping %v: %v", snap.Groups, err)
		v.Result = engine.NewStatusResult(engine.StatusNoMatch, nil)
		return v
	}
	v.Token = token
	v.Result = engine.Execute(c.records, token, c.cfg.EngineOpts...)
	return v
}

func (c *Controller) topicButtons() []TopicButton {
	buttons := make([]TopicButton, len(c.catalog.Topics))
	for i, t := range c.catalog.Topics {
		b := TopicButton{
			Code:    t.Code,
			Name:    t.Name,
			Pending: c.state.IsPending(t.Code),
			Group:   -1,
		}
		if idx, ok := c.state.GroupIndex(t.Code); ok {
			b.Group = idx
			b.Color = c.catalog.GroupColor(idx)
		}
		buttons[i] = b
	}
	return buttons
}

func (c *Controller) presetButtons(active string) []PresetButton {
	buttons := make([]PresetButton, len(c.catalog.Presets))
	for i, p := range c.catalog.Presets {
		buttons[i] = PresetButton{ID: p.ID, Label: p.Label, Active: p.ID == active}
	}
	return buttons
}
