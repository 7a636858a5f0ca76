package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// SERIES BUILDER — Grouping by Region, Parsing, Sorting
// ============================================================================
// Regions come from the data in first-seen order. Each record contributes at
// most one point; a record whose year or value does not parse is skipped
// without affecting the rest of its region.
// ============================================================================

// BuildSeries groups records by region and returns one ordered series per
// region with at least one valid point.
func BuildSeries(records []Record) []Series {
	if len(records) == 0 {
		return nil
	}

	grouped, order := groupByRegion(records)

	series := make([]Series, 0, len(order))
	for _, region := range order {
		points := buildPoints(grouped[region])
		if len(points) == 0 {
			continue
		}
		series = append(series, Series{Region: region, Points: points})
	}
	return series
}

// ============================================================================
// GROUPING
// ============================================================================

func groupByRegion(records []Record) (map[string][]Record, []string) {
	grouped := make(map[string][]Record)
	order := make([]string, 0)

	for _, r := range records {
		if _, exists := grouped[r.Region]; !exists {
			order = append(order, r.Region)
		}
		grouped[r.Region] = append(grouped[r.Region], r)
	}
	return grouped, order
}

// UniqueRegions returns distinct regions across records in first-seen order.
func UniqueRegions(records []Record) []string {
	_, order := groupByRegion(records)
	return order
}

// ============================================================================
// POINTS
// ============================================================================

func buildPoints(records []Record) []Point {
	points := make([]Point, 0, len(records))
	for _, r := range records {
		year, ok := ParseYear(r.Year)
		if !ok {
			continue
		}
		value, ok := ParseValue(r.Value)
		if !ok {
			continue
		}
		points = append(points, Point{Year: year, Time: YearTime(year), Value: value})
	}

	// Stable so that among duplicate years the first in source order wins.
	sort.SliceStable(points, func(i, j int) bool { return points[i].Year < points[j].Year })

	out := points[:0]
	for i, p := range points {
		if i > 0 && p.Year == points[i-1].Year {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Years outside this range are treated as malformed.
const (
	earliestYear = 1
	latestYear   = 9999
)

// ParseYear reads an integer calendar year in [1, 9999]. Integral floats
// ("1990.0") are accepted.
func ParseYear(f Field) (int, bool) {
	s := strings.TrimSpace(string(f))
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, y >= earliestYear && y <= latestYear
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v != math.Trunc(v) || v < earliestYear || v > latestYear {
		return 0, false
	}
	return int(v), true
}

// ParseValue reads a finite float. NaN, infinities and blanks are rejected.
func ParseValue(f Field) (float64, bool) {
	s := strings.TrimSpace(string(f))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// YearTime is the temporal value of a year: January 1st, UTC.
func YearTime(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// PointCount returns the number of points across all series.
func PointCount(series []Series) int {
	n := 0
	for _, s := range series {
		n += len(s.Points)
	}
	return n
}
