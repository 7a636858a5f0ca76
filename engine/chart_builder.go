package engine

import (
	"math"
	"time"
)

// ============================================================================
// CHART BUILDER — Axis Domains and Series Colors
// ============================================================================
// Domains are only derived when at least one point exists; otherwise the
// caller gets ok=false and shows the insufficient-data state instead of an
// axis with NaN bounds.
// ============================================================================

// Fallback palette for regions the catalog has no color for.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// DeriveDomains computes the time extent and padded value range of series.
func DeriveDomains(series []Series, opts ...Option) (Domains, bool) {
	cfg := applyOptions(opts)
	return deriveDomains(series, cfg)
}

func deriveDomains(series []Series, cfg *config) (Domains, bool) {
	if PointCount(series) == 0 {
		return Domains{}, false
	}

	minYear, maxYear := math.MaxInt, math.MinInt
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Points {
			minYear = min(minYear, p.Year)
			maxYear = max(maxYear, p.Year)
			minVal = math.Min(minVal, p.Value)
			maxVal = math.Max(maxVal, p.Value)
		}
	}

	buffer := (maxVal - minVal) * cfg.Margin
	lo, hi := minVal-buffer, maxVal+buffer
	if cfg.ClampZero && lo < 0 {
		lo = 0
	}

	return Domains{
		Time:  [2]time.Time{YearTime(minYear), YearTime(maxYear)},
		Years: [2]int{minYear, maxYear},
		Value: [2]float64{lo, hi},
	}, true
}

// SeriesColor picks a color for the i-th series: the palette entry for its
// region when present, otherwise the fallback palette by position.
func SeriesColor(palette map[string]string, region string, i int) string {
	if c, ok := palette[region]; ok && c != "" {
		return c
	}
	return defaultColors[i%len(defaultColors)]
}
