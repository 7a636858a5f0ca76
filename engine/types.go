package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ============================================================================
// FUSION ENGINE TYPES
// ============================================================================
// Codes, groups and tokens describe how the topic codes are fused.
// Records are the precomputed fixture rows; Series and Domains are the
// render-ready output of the pipeline.
// ============================================================================

// Code is one topic identifier from a fixed catalog (e.g. "SA1").
type Code string

// Group is a set of codes treated as fused for filtering.
type Group []Code

// Token is the canonical form of a partition: every group sorted, groups
// sorted by size then by first code. Compare tokens with Equal.
type Token []Group

// ============================================================================
// FIELD — raw scalar value from a fixture
// ============================================================================

// Field holds the lexical form of a fixture scalar. An empty Field means the
// value was null or absent. Parsing is deferred to the series builder so a
// bad value only costs its own point.
type Field string

// UnmarshalJSON accepts numbers, strings and null.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}
	*f = Field(data)
	return nil
}

// MarshalJSON writes numeric fields as numbers, everything else as strings.
func (f Field) MarshalJSON() ([]byte, error) {
	if f == "" {
		return []byte("null"), nil
	}
	if v, err := strconv.ParseFloat(string(f), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return []byte(f), nil
	}
	return json.Marshal(string(f))
}

// IntField formats an integer as a Field.
func IntField(v int) Field { return Field(strconv.Itoa(v)) }

// FloatField formats a float as a Field.
func FloatField(v float64) Field { return Field(strconv.FormatFloat(v, 'g', -1, 64)) }

// ============================================================================
// RECORD — precomputed fixture row
// ============================================================================

// Record is one row of the precomputed diversity dataset.
// Partition is the stored group tag; it is not guaranteed to be canonical.
type Record struct {
	Partition Tag    `json:"PartGroups"`
	Region    string `json:"Region"`
	Year      Field  `json:"Year"`
	Value     Field  `json:"Diversity"`
}

// ============================================================================
// SERIES — per-region output
// ============================================================================

// Point is one valid (year, value) observation.
type Point struct {
	Year  int       `json:"year"`
	Time  time.Time `json:"-"`
	Value float64   `json:"value"`
}

// Series is one region's points in strictly increasing year order.
type Series struct {
	Region string  `json:"region"`
	Points []Point `json:"points"`
}

// Domains are the axis extents derived from a series set.
type Domains struct {
	Time  [2]time.Time `json:"-"`
	Years [2]int       `json:"years"`
	Value [2]float64   `json:"value"`
}

// ============================================================================
// RESULT — pipeline output
// ============================================================================

// Status classifies a pipeline outcome. Everything other than StatusOK is a
// displayable "no chart" state, not an error.
type Status string

const (
	StatusOK            Status = "ok"
	StatusNoMatch       Status = "no_match"
	StatusNoValidPoints Status = "no_valid_points"
	StatusInsufficient  Status = "insufficient_data"
	StatusLoading       Status = "loading"
	StatusLoadFailed    Status = "load_failed"
)

// Messages shown in place of the chart for each non-OK status.
var statusMessages = map[Status]string{
	StatusNoMatch:       "No data available for this grouping combination.",
	StatusNoValidPoints: "No valid data points available for this grouping combination.",
	StatusInsufficient:  "No valid data points for axis domains.",
	StatusLoading:       "Loading data...",
	StatusLoadFailed:    "Failed to load data.",
}

// Message returns the user-facing text for a status ("" for StatusOK).
func (s Status) Message() string { return statusMessages[s] }

// Result is the render-ready output of Execute.
type Result struct {
	Status  Status   `json:"status"`
	Message string   `json:"message,omitempty"`
	Token   Token    `json:"token"`
	Matched int      `json:"matched"`
	Series  []Series `json:"series,omitempty"`
	Domains *Domains `json:"domains,omitempty"`
}

// HasChart reports whether the result carries drawable series.
func (r *Result) HasChart() bool {
	return r != nil && r.Status == StatusOK && len(r.Series) > 0 && r.Domains != nil
}

// NewStatusResult builds a chartless result carrying the status message.
func NewStatusResult(status Status, token Token) *Result {
	return &Result{Status: status, Message: status.Message(), Token: token}
}

func (r *Result) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s token=%s matched=%d series=%d", r.Status, r.Token, r.Matched, len(r.Series))
}
