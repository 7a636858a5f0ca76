package main

import (
	"fmt"
	"strings"

	"github.com/spektr-org/fusion/engine"
	"github.com/spektr-org/fusion/figure"
)

// ============================================================================
// CLICK REPLAY — Drives the controller the way the figure's buttons would
// ============================================================================
//
//	toggle:SA1     topic button
//	commit         "Create Combination"
//	clear          "Clear"
//	preset:broad   preset button (clicking the active one turns it off)
//	region:Europe  legend entry
// ============================================================================

// click is one parsed UI action.
type click struct {
	Action string
	Arg    string
}

func (c click) String() string {
	if c.Arg == "" {
		return c.Action
	}
	return c.Action + ":" + c.Arg
}

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// parseClicks reads "toggle:SA1,commit" style entries. Each flag value may
// hold several comma-separated clicks.
func parseClicks(values []string) ([]click, error) {
	var clicks []click
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			action, arg, _ := strings.Cut(part, ":")
			c := click{Action: strings.ToLower(strings.TrimSpace(action)), Arg: strings.TrimSpace(arg)}

			switch c.Action {
			case "toggle", "preset", "region":
				if c.Arg == "" {
					return nil, fmt.Errorf("click %q needs an argument", part)
				}
			case "commit", "clear":
				if c.Arg != "" {
					return nil, fmt.Errorf("click %q takes no argument", part)
				}
			default:
				return nil, fmt.Errorf("unknown click %q", part)
			}
			clicks = append(clicks, c)
		}
	}
	return clicks, nil
}

// groupClicks expands --group values ("SA1+SA2") into a clear followed by
// toggle/commit runs.
func groupClicks(groups []string) ([]click, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	clicks := []click{{Action: "clear"}}
	for _, s := range groups {
		g, err := engine.ParseGroup(s)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", s, err)
		}
		for _, code := range g {
			clicks = append(clicks, click{Action: "toggle", Arg: string(code)})
		}
		clicks = append(clicks, click{Action: "commit"})
	}
	return clicks, nil
}

// replay applies clicks in order and returns the final view.
func replay(c *figure.Controller, clicks []click) (figure.View, error) {
	v := c.View()
	for _, k := range clicks {
		var err error
		switch k.Action {
		case "toggle":
			v, err = c.ToggleCode(engine.Code(k.Arg))
		case "commit":
			v, err = c.CommitPending()
		case "clear":
			v, err = c.ClearAll()
		case "preset":
			v, err = c.SelectPreset(k.Arg)
		case "region":
			v, err = c.ToggleRegion(k.Arg)
		}
		if err != nil {
			return v, fmt.Errorf("%s: %w", k, err)
		}
	}
	return v, nil
}
