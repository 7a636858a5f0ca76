package render

import (
	"bytes"
	"errors"
	"io"
	"log"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/fusion/engine"
	"github.com/spektr-org/fusion/schema"
)

var quiet = engine.WithLogger(log.New(io.Discard, "", 0))

func rec(region string, year int, value float64) engine.Record {
	return engine.Record{
		Partition: engine.Tag{{"SA1"}, {"SA2"}, {"SA3"}, {"SA4"}, {"SA5"}, {"SA6"}},
		Region:    region,
		Year:      engine.IntField(year),
		Value:     engine.FloatField(value),
	}
}

func okResult(t *testing.T) *engine.Result {
	t.Helper()
	records := []engine.Record{
		rec("NorthAmerica", 1990, 0.30),
		rec("NorthAmerica", 1995, 0.45),
		rec("NorthAmerica", 1999, 0.50),
		rec("Europe", 1990, 0.35),
		rec("Europe", 1999, 0.40),
	}
	res := engine.Execute(records, engine.Singletons(schema.Default().Codes()), quiet)
	require.Equal(t, engine.StatusOK, res.Status)
	return res
}

func draw(t *testing.T, f Frame, opts ...Option) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, f, opts...))
	return buf.String()
}

var (
	yTickLabel = regexp.MustCompile(`class="y-tick"[^>]*>([^<]*)</text>`)
	xTickLabel = regexp.MustCompile(`class="x-tick"[^>]*>([^<]*)</text>`)
)

func matches(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		out = append(out, m[1])
	}
	return out
}

func TestSVGDrawsChart(t *testing.T) {
	cat := schema.Default()
	out := draw(t, NewFrame(cat, okResult(t), nil))

	assert.Contains(t, out, `width="650"`)
	assert.Contains(t, out, `height="450"`)
	assert.Contains(t, out, `translate(60,20)`)
	assert.Equal(t, 2, strings.Count(out, "<polyline"))
	assert.Equal(t, 5, strings.Count(out, "<circle"))
	assert.Contains(t, out, "North America")
	assert.Contains(t, out, "#1f77b4")
	assert.Contains(t, out, "#ff7f0e")
	assert.Contains(t, out, ">Year</text>")
	assert.Contains(t, out, ">Diversity</text>")
	assert.NotContains(t, out, `class="no-data"`)
}

func TestSVGTicks(t *testing.T) {
	out := draw(t, NewFrame(schema.Default(), okResult(t), nil))

	assert.Equal(t, []string{"1992", "1995", "1998"}, matches(xTickLabel, out))

	labels := matches(yTickLabel, out)
	require.NotEmpty(t, labels)
	assert.LessOrEqual(t, len(labels), 5)
	for _, l := range labels {
		assert.Regexp(t, `^\d+\.\d{2}$`, l)
	}
}

func TestSVGTooltips(t *testing.T) {
	groups := []engine.Group{{"SA1", "SA2"}}
	out := draw(t, NewFrame(schema.Default(), okResult(t), groups))
	assert.Contains(t, out, "<title>Europe")
	assert.Contains(t, out, "Diversity: 0.400")
	assert.Contains(t, out, "Topics: SA1 + SA2</title>")
}

func TestSVGHiddenRegion(t *testing.T) {
	f := NewFrame(schema.Default(), okResult(t), nil)
	f.Hidden = map[string]bool{"Europe": true}
	out := draw(t, f)

	assert.Equal(t, 1, strings.Count(out, "<polyline"))
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Contains(t, out, `opacity="0.4"`, "legend keeps hidden regions, faded")
}

func TestSVGStatusMessages(t *testing.T) {
	cases := []struct {
		name string
		res  *engine.Result
		want string
	}{
		{"NoMatch", engine.NewStatusResult(engine.StatusNoMatch, nil), "No data available for this grouping combination."},
		{"NoValidPoints", engine.NewStatusResult(engine.StatusNoValidPoints, nil), "No valid data points available for this grouping combination."},
		{"Insufficient", engine.NewStatusResult(engine.StatusInsufficient, nil), "No valid data points for axis domains."},
		{"LoadFailed", engine.NewStatusResult(engine.StatusLoadFailed, nil), "Failed to load data."},
		{"Nil", nil, "Loading data..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := draw(t, Frame{Result: tc.res})
			assert.Contains(t, out, tc.want)
			assert.Contains(t, out, `class="no-data"`)
			assert.NotContains(t, out, "<polyline")
			assert.NotContains(t, out, "x-axis")
		})
	}
}

func TestSVGSinglePoint(t *testing.T) {
	res := engine.Execute([]engine.Record{rec("Europe", 2000, 0.4)},
		engine.Singletons(schema.Default().Codes()), quiet)
	require.Equal(t, engine.StatusOK, res.Status)

	out := draw(t, NewFrame(schema.Default(), res, nil))
	assert.Equal(t, 1, strings.Count(out, "<circle"))
	assert.NotContains(t, out, "NaN")
}

func TestSVGIsDeterministic(t *testing.T) {
	f := NewFrame(schema.Default(), okResult(t), nil)
	assert.Equal(t, draw(t, f), draw(t, f))
}

func TestSVGOptions(t *testing.T) {
	out := draw(t, NewFrame(schema.Default(), okResult(t), nil),
		WithSize(800, 500), WithMargins(Margins{Top: 10, Right: 10, Bottom: 40, Left: 50}), WithYearStep(5))
	assert.Contains(t, out, `width="800"`)
	assert.Contains(t, out, `translate(50,10)`)
	assert.Equal(t, []string{"1990", "1995"}, matches(xTickLabel, out))

	var buf bytes.Buffer
	err := SVG(&buf, Frame{}, WithSize(100, 100))
	require.ErrorIs(t, err, ErrLayout)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSVGReportsWriteErrors(t *testing.T) {
	err := SVG(failingWriter{}, NewFrame(schema.Default(), okResult(t), nil))
	require.EqualError(t, err, "disk full")
}

func TestYearTicks(t *testing.T) {
	assert.Equal(t, []int{1992, 1995, 1998}, yearTicks(1990, 1999, 3))
	assert.Equal(t, []int{1980, 1983}, yearTicks(1980, 1984, 3))
	assert.Equal(t, []int{2000}, yearTicks(2000, 2000, 7))
	assert.Equal(t, []int{2001, 2002}, yearTicks(2001, 2002, 5))
}
