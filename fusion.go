// Package fusion renders the topic-fusion diversity figure: six topic codes
// combined into arbitrary groups, with a precomputed dataset re-filtered by
// the resulting partition and reshaped into per-region time series.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/fusion/figure"
//	    "github.com/spektr-org/fusion/helpers"
//	    "github.com/spektr-org/fusion/schema"
//	)
//
//	src, _ := helpers.OpenSource(ctx, "data/fig4_structured.json")
//	ctrl := figure.New(schema.Default(), src)
//	if err := ctrl.Load(ctx); err != nil { ... }
//
//	view, _ := ctrl.SelectPreset("neighbor")
//	_ = ctrl.Render(w)
//
// The engine package holds the pure pipeline (canonicalize → match →
// series → domains) and never performs I/O; fixture loading lives in
// helpers and drawing in render.
package fusion
