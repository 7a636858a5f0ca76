package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// TEXT BUILDER — Tooltip and summary text
// ============================================================================

// NearestPoint returns the point of s closest to year. Ties go to the
// earlier point. ok is false when s has no points.
func NearestPoint(s Series, year float64) (Point, bool) {
	n := len(s.Points)
	if n == 0 {
		return Point{}, false
	}
	idx := sort.Search(n, func(i int) bool { return float64(s.Points[i].Year) >= year })
	switch {
	case idx == 0:
		return s.Points[0], true
	case idx == n:
		return s.Points[n-1], true
	}
	before, after := s.Points[idx-1], s.Points[idx]
	if year-float64(before.Year) > float64(after.Year)-year {
		return after, true
	}
	return before, true
}

// TopicCombo renders groups as "SA1 + SA2, SA3".
func TopicCombo(groups []Group) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		codes := make([]string, len(g))
		for j, c := range g {
			codes[j] = string(c)
		}
		parts[i] = strings.Join(codes, " + ")
	}
	return strings.Join(parts, ", ")
}

// Tooltip is the content shown when hovering a point.
type Tooltip struct {
	Title string      `json:"title"`
	Rows  [][2]string `json:"rows"`
}

// String renders the tooltip as plain lines.
func (t Tooltip) String() string {
	lines := []string{t.Title}
	for _, r := range t.Rows {
		lines = append(lines, fmt.Sprintf("%s: %s", r[0], r[1]))
	}
	return strings.Join(lines, "\n")
}

// BuildTooltip describes point p of region under the given groups.
func BuildTooltip(region string, p Point, groups []Group) Tooltip {
	return Tooltip{
		Title: region,
		Rows: [][2]string{
			{"Year", fmt.Sprintf("%d", p.Year)},
			{"Diversity", FormatValue(p.Value)},
			{"Topics", TopicCombo(groups)},
		},
	}
}

// Summary is a one-line description of a result.
func Summary(res *Result) string {
	if res == nil {
		return ""
	}
	if !res.HasChart() {
		return res.Message
	}
	d := res.Domains
	return fmt.Sprintf("%d regions, %d points, %d–%d, diversity %s–%s (grouping %s)",
		len(res.Series), PointCount(res.Series), d.Years[0], d.Years[1],
		FormatValue(d.Value[0]), FormatValue(d.Value[1]), res.Token)
}
