// Package render draws a pipeline result as a static SVG line chart.
//
// The output is a pure function of the Frame: the same frame and options
// always produce the same bytes. Non-OK results draw only their message,
// centred in the plot area.
package render

import (
	"errors"
	"fmt"
	"html"
	"io"
	"math"

	"github.com/aclements/go-moremath/scale"
	svg "github.com/ajstarks/svgo"

	"github.com/spektr-org/fusion/engine"
	"github.com/spektr-org/fusion/schema"
)

// ErrLayout is returned when the margins leave no room for the plot.
var ErrLayout = errors.New("render: plot area is empty")

// Frame is everything the chart needs to draw one result.
type Frame struct {
	Result *engine.Result
	Colors map[string]string // region → stroke colour
	Labels map[string]string // region → legend label
	Groups []engine.Group    // committed groups, for point tooltips
	Hidden map[string]bool   // regions toggled off in the legend
	XLabel string
	YLabel string
}

// NewFrame fills colours and labels from the catalog.
func NewFrame(cat *schema.Catalog, res *engine.Result, groups []engine.Group) Frame {
	labels := make(map[string]string, len(cat.Regions))
	for _, r := range cat.Regions {
		labels[r.Key] = cat.RegionLabel(r.Key)
	}
	return Frame{
		Result: res,
		Colors: cat.RegionColors(),
		Labels: labels,
		Groups: groups,
		XLabel: "Year",
		YLabel: cat.MetricLabel(),
	}
}

func (f Frame) label(region string) string {
	if l, ok := f.Labels[region]; ok && l != "" {
		return l
	}
	return region
}

// SVG writes the chart for f to w.
func SVG(w io.Writer, f Frame, opts ...Option) error {
	cfg := applyOptions(opts)
	m := cfg.Margins
	plot := plotArea{
		width:  cfg.Width - m.Left - m.Right,
		height: cfg.Height - m.Top - m.Bottom,
	}
	if plot.width <= 0 || plot.height <= 0 {
		return fmt.Errorf("%dx%d with margins %+v: %w", cfg.Width, cfg.Height, m, ErrLayout)
	}

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(cfg.Width, cfg.Height, fmt.Sprintf(`font-family="%s" font-size="10px"`, cfg.FontFamily))
	canvas.Group(fmt.Sprintf(`transform="translate(%d,%d)"`, m.Left, m.Top))

	if res := f.Result; !res.HasChart() {
		canvas.Text(plot.width/2, plot.height/2, statusText(res), `class="no-data" text-anchor="middle" font-size="14px"`)
	} else {
		plot.x = domainScale(float64(res.Domains.Years[0]), float64(res.Domains.Years[1]), 1)
		plot.y = domainScale(res.Domains.Value[0], res.Domains.Value[1], math.Abs(res.Domains.Value[0])*0.1)

		drawXAxis(canvas, plot, res.Domains.Years, cfg.YearStep)
		drawYAxis(canvas, plot, cfg.MaxYTicks)
		drawAxisTitles(canvas, plot, m, f.XLabel, f.YLabel)
		drawSeries(canvas, plot, f)
		drawLegend(canvas, f)
	}

	canvas.Gend()
	canvas.End()
	return ew.err
}

func statusText(res *engine.Result) string {
	switch {
	case res == nil:
		return engine.StatusLoading.Message()
	case res.Message != "":
		return res.Message
	case res.Status == engine.StatusOK:
		return engine.StatusInsufficient.Message()
	}
	return res.Status.Message()
}

// ============================================================================
// SCALES
// ============================================================================

type plotArea struct {
	width, height int
	x, y          scale.Linear
}

// domainScale widens a degenerate [lo, lo] domain by pad on each side so a
// single point lands in the middle of the plot.
func domainScale(lo, hi, pad float64) scale.Linear {
	if lo == hi {
		if pad == 0 {
			pad = 1
		}
		lo, hi = lo-pad, hi+pad
	}
	return scale.Linear{Min: lo, Max: hi}
}

func (p plotArea) px(year int) int {
	return int(math.Round(p.x.Map(float64(year)) * float64(p.width)))
}

func (p plotArea) py(v float64) int {
	return p.height - int(math.Round(p.y.Map(v)*float64(p.height)))
}

// yearTicks returns the years in [lo, hi] divisible by step, falling back to
// the endpoints when the range holds none.
func yearTicks(lo, hi, step int) []int {
	var ticks []int
	first := lo + (step-lo%step)%step
	for y := first; y <= hi; y += step {
		ticks = append(ticks, y)
	}
	if len(ticks) == 0 {
		ticks = append(ticks, lo)
		if hi != lo {
			ticks = append(ticks, hi)
		}
	}
	return ticks
}

// valueTicks returns at most limit major ticks inside the y domain.
func valueTicks(ls scale.Linear, limit int) []float64 {
	major, _ := ls.Ticks(scale.TickOptions{Max: limit})
	out := major[:0]
	for _, t := range major {
		if t >= ls.Min-1e-9 && t <= ls.Max+1e-9 {
			out = append(out, t)
		}
	}
	return out
}

// ============================================================================
// AXES
// ============================================================================

const tickLen = 6

func drawXAxis(canvas *svg.SVG, p plotArea, years [2]int, step int) {
	canvas.Group(`class="x-axis"`)
	canvas.Line(0, p.height, p.width, p.height, "stroke:#000")
	for _, y := range yearTicks(years[0], years[1], step) {
		x := p.px(y)
		canvas.Line(x, p.height, x, p.height+tickLen, "stroke:#000")
		canvas.Text(x, p.height+tickLen+3, fmt.Sprintf("%d", y), `class="x-tick" text-anchor="middle" dy=".71em"`)
	}
	canvas.Gend()
}

func drawYAxis(canvas *svg.SVG, p plotArea, limit int) {
	canvas.Group(`class="y-axis"`)
	canvas.Line(0, 0, 0, p.height, "stroke:#000")
	for _, t := range valueTicks(p.y, limit) {
		y := p.py(t)
		canvas.Line(-tickLen, y, 0, y, "stroke:#000")
		canvas.Text(-tickLen-3, y, fmt.Sprintf("%.2f", t), `class="y-tick" text-anchor="end" dy=".32em"`)
	}
	canvas.Gend()
}

func drawAxisTitles(canvas *svg.SVG, p plotArea, m Margins, xLabel, yLabel string) {
	canvas.Text(p.width/2, p.height+m.Bottom-2, xLabel, `class="x-axis-label" text-anchor="middle" font-size="12px"`)
	canvas.Text(-p.height/2, -m.Left+15, yLabel, `class="y-axis-title" text-anchor="middle" transform="rotate(-90)" font-size="12px"`)
}

// ============================================================================
// SERIES + LEGEND
// ============================================================================

func drawSeries(canvas *svg.SVG, p plotArea, f Frame) {
	for i, s := range f.Result.Series {
		if f.Hidden[s.Region] || len(s.Points) == 0 {
			continue
		}
		color := engine.SeriesColor(f.Colors, s.Region, i)

		canvas.Group(fmt.Sprintf(`class="region-group" data-region="%s"`, html.EscapeString(s.Region)))
		xs := make([]int, len(s.Points))
		ys := make([]int, len(s.Points))
		for j, pt := range s.Points {
			xs[j], ys[j] = p.px(pt.Year), p.py(pt.Value)
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2.5;opacity:0.8", color))

		for j, pt := range s.Points {
			canvas.Group(`class="data-point"`)
			canvas.Title(engine.BuildTooltip(f.label(s.Region), pt, f.Groups).String())
			canvas.Circle(xs[j], ys[j], 4, fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:1.5", color))
			canvas.Gend()
		}
		canvas.Gend()
	}
}

func drawLegend(canvas *svg.SVG, f Frame) {
	series := f.Result.Series
	widest := 0
	for _, s := range series {
		widest = max(widest, len([]rune(f.label(s.Region))))
	}

	canvas.Group(`class="legend" transform="translate(20,0)"`)
	canvas.Rect(-5, -5, 25+widest*7+10, len(series)*20+5, `rx="5" ry="5" fill="white" opacity="0.9" stroke="#ccc" stroke-width="0.5"`)
	for i, s := range series {
		attrs := fmt.Sprintf(`class="legend-item" data-region="%s" transform="translate(0,%d)"`, html.EscapeString(s.Region), i*20)
		if f.Hidden[s.Region] {
			attrs += ` opacity="0.4"`
		}
		canvas.Group(attrs)
		canvas.Rect(0, 0, 10, 10, "fill:"+engine.SeriesColor(f.Colors, s.Region, i))
		canvas.Text(25, 5, f.label(s.Region), `dy="0.32em" font-size="12px" fill="#333"`)
		canvas.Gend()
	}
	canvas.Gend()
}

// errWriter keeps the first write error; svgo drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
