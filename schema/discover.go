package schema

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/spektr-org/fusion/engine"
)

// ============================================================================
// AUTO-DISCOVERY — Catalog inferred from fixture records
// ============================================================================
// Used when a fixture comes without an authored catalog.
//
//   1. Codes   → union of every code in every stored partition tag (sorted)
//   2. Regions → first-seen order, colors from the engine fallback palette
//   3. Presets → a single all-singletons "broad" preset, made initial
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	Name        string // Catalog name override
	MetricLabel string // Value axis title (default "Diversity")
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		Name:        "Discovered catalog",
		MetricLabel: "Diversity",
	}
}

// DiscoverFromRecords builds a catalog from the codes and regions present in
// records.
func DiscoverFromRecords(records []engine.Record, opts ...DiscoverOptions) (*Catalog, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		if opts[0].Name != "" {
			opt.Name = opts[0].Name
		}
		if opts[0].MetricLabel != "" {
			opt.MetricLabel = opts[0].MetricLabel
		}
	}

	codeSet := make(map[engine.Code]bool)
	for _, r := range records {
		for _, g := range r.Partition {
			for _, c := range g {
				if c != "" {
					codeSet[c] = true
				}
			}
		}
	}
	if len(codeSet) == 0 {
		return nil, fmt.Errorf("%w: no codes found in %d records", ErrInvalidCatalog, len(records))
	}

	codes := make([]engine.Code, 0, len(codeSet))
	for c := range codeSet {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	cat := &Catalog{
		Name:           opt.Name,
		Metric:         Metric{Key: "Diversity", Label: opt.MetricLabel, Format: "%.2f"},
		DiscoveredFrom: fmt.Sprintf("%d records", len(records)),
	}

	singles := make([]engine.Group, 0, len(codes))
	for _, c := range codes {
		cat.Topics = append(cat.Topics, Topic{Code: c, Name: string(c)})
		singles = append(singles, engine.Group{c})
	}
	cat.Presets = []Preset{{ID: "broad", Label: "Broad Fusion", Groups: singles}}
	cat.InitialPreset = "broad"

	palette := map[string]string{}
	for i, region := range engine.UniqueRegions(records) {
		if region == "" {
			continue
		}
		cat.Regions = append(cat.Regions, Region{
			Key:   region,
			Label: toDisplayName(region),
			Color: engine.SeriesColor(palette, region, i),
		})
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toDisplayName splits a key for human display.
// "NorthAmerica" → "North America", "south_asia" → "South Asia"
func toDisplayName(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	out := strings.NewReplacer("_", " ", "-", " ").Replace(b.String())
	words := strings.Fields(out)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
