package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spektr-org/fusion/engine"
	"github.com/spektr-org/fusion/figure"
	"github.com/spektr-org/fusion/helpers"
	"github.com/spektr-org/fusion/render"
	"github.com/spektr-org/fusion/schema"
)

// ============================================================================
// FUSION CLI — Topic-fusion diversity figure from the command line
// ============================================================================

const version = "0.3.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	fixture := flag.String("fixture", "", "Fixture path or URI: file, http(s)://, s3://bucket/key (required)")
	fixtureFormat := flag.String("fixture-format", "", "Fixture format: json or csv (default: by extension, then content)")
	schemaPath := flag.String("schema", "", "Catalog JSON/YAML (default: built-in brain-science catalog)")
	discover := flag.Bool("discover", false, "Print a catalog inferred from the fixture and exit")
	preset := flag.String("preset", "", "Preset to activate after load (kept if already active)")
	var groups, clicks listFlag
	flag.Var(&groups, "group", "Committed group such as SA1+SA2 (repeatable; starts from a cleared selection)")
	flag.Var(&clicks, "click", "Clicks to replay: toggle:SA1, commit, clear, preset:ID, region:NAME (repeatable)")
	hoverYear := flag.Float64("year", 0, "With --format text, show each region's tooltip nearest this year")
	format := flag.String("format", "json", "Output format: json, pretty, text, csv, svg, records")
	outFile := flag.String("out", "", "Write output to file instead of stdout")
	width := flag.Int("width", 650, "SVG width in pixels")
	height := flag.Int("height", 450, "SVG height in pixels")
	timeout := flag.Duration("timeout", 30*time.Second, "Fixture load timeout")
	verbose := flag.Bool("v", false, "Log pipeline steps to stderr")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Fusion — topic-fusion diversity figure

Usage:
  fusion --fixture data/fig4_structured.json
  fusion --fixture data/fig4_structured.json --preset neighbor --format text
  fusion --fixture data/fig4_structured.json --format text --year 2013
  fusion --fixture fig4.csv --group SA1+SA2 --group SA5+SA6 --format csv
  fusion --fixture s3://figures/fig4.json --click clear,toggle:SA3,toggle:SA4,commit --format svg --out fig4.svg
  fusion --fixture fig4.json --discover --format pretty

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  FUSION_S3_REGION, FUSION_S3_ENDPOINT, FUSION_S3_PATH_STYLE
                    S3 client settings for s3:// fixtures
  AWS_*             Standard AWS credential chain

Formats:
  json      Full view as JSON (default)
  pretty    Pretty-printed JSON
  text      Human-readable summary
  csv       Year × region table
  svg       Rendered chart
  records   Fixture re-encoded as CSV
  yaml      Catalog as YAML (with --discover)
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("fusion %s\n", version)
		os.Exit(0)
	}

	if *fixture == "" {
		fmt.Fprintln(os.Stderr, "Error: --fixture is required")
		flag.Usage()
		os.Exit(1)
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// ── Output writer ─────────────────────────────────────────────────────
	writer := io.Writer(os.Stdout)
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	// ── Fixture ───────────────────────────────────────────────────────────
	src, err := helpers.OpenSource(ctx, *fixture)
	if err != nil {
		fatalf("Failed to open fixture: %v", err)
	}
	// Fetch once here so --discover and the controller share the bytes.
	data, err := src.Fetch(ctx)
	if err != nil {
		fatalf("Failed to read fixture: %v", err)
	}
	cached := helpers.BytesSource{Name: src.String(), Data: data}
	fmtOpt := helpers.Format(strings.ToLower(*fixtureFormat))

	// ── Catalog ───────────────────────────────────────────────────────────
	var cat *schema.Catalog
	switch {
	case *discover:
		records, err := helpers.LoadRecords(ctx, cached, fmtOpt)
		if err != nil {
			fatalf("Failed to parse fixture: %v", err)
		}
		cat, err = schema.DiscoverFromRecords(records, schema.DiscoverOptions{Name: src.String()})
		if err != nil {
			fatalf("Discovery failed: %v", err)
		}
		log.Printf("🔍 Discovered: %d topics, %d regions from %d records", len(cat.Topics), len(cat.Regions), len(records))
		writeCatalog(writer, cat, *format)
		return
	case *schemaPath != "":
		cat, err = schema.LoadFile(*schemaPath)
		if err != nil {
			fatalf("Failed to load catalog: %v", err)
		}
		log.Printf("📋 Loaded catalog: %s (%d topics, %d presets)", cat.Name, len(cat.Topics), len(cat.Presets))
	default:
		cat = schema.Default()
	}

	// ── Controller ────────────────────────────────────────────────────────
	ctrl := figure.New(cat, cached, figure.WithLogger(logger), figure.WithFormat(fmtOpt))
	if err := ctrl.Load(ctx); err != nil {
		fatalf("%s (%v)", engine.StatusLoadFailed.Message(), err)
	}

	plan, err := buildPlan(ctrl.View(), *preset, groups, clicks)
	if err != nil {
		fatalf("%v", err)
	}
	view, err := replay(ctrl, plan)
	if err != nil {
		fatalf("Replay failed: %v", err)
	}

	// ── Render output ─────────────────────────────────────────────────────
	switch *format {
	case "svg":
		if err := ctrl.Render(writer, render.WithSize(*width, *height)); err != nil {
			fatalf("Failed to render SVG: %v", err)
		}
	case "csv":
		writeCSV(writer, view.Result)
	case "records":
		if err := helpers.WriteCSV(writer, ctrl.Records()); err != nil {
			fatalf("Failed to write records: %v", err)
		}
	case "text":
		fmt.Fprintln(writer, textSummary(cat, view))
		if *hoverYear != 0 {
			fmt.Fprintln(writer, hoverText(cat, view, *hoverYear))
		}
	default:
		writeJSON(writer, view, *format)
	}
	if *outFile != "" {
		log.Printf("📄 %s written to %s", *format, *outFile)
	}
}

// buildPlan turns --preset, --group and --click into one click sequence.
func buildPlan(initial figure.View, preset string, groups, clicks []string) ([]click, error) {
	var plan []click
	if preset != "" && initial.Selection.Preset != preset {
		plan = append(plan, click{Action: "preset", Arg: preset})
	}
	g, err := groupClicks(groups)
	if err != nil {
		return nil, err
	}
	plan = append(plan, g...)
	c, err := parseClicks(clicks)
	if err != nil {
		return nil, err
	}
	return append(plan, c...), nil
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

func textSummary(cat *schema.Catalog, v figure.View) string {
	lines := []string{}
	if v.Selection.Preset != "" {
		if p, ok := cat.Preset(v.Selection.Preset); ok {
			lines = append(lines, "Preset:   "+p.Label)
		}
	}
	if len(v.Token) > 0 {
		lines = append(lines, "Grouping: "+v.Token.String())
		if fused := v.Token.Fused(); len(fused) > 0 {
			lines = append(lines, "Fused:    "+engine.TopicCombo(fused))
		}
	}
	lines = append(lines, engine.Summary(v.Result))

	if v.Result.HasChart() {
		for _, s := range v.Result.Series {
			first, last := s.Points[0], s.Points[len(s.Points)-1]
			lines = append(lines, fmt.Sprintf("  %-14s %d points, %d %s → %d %s",
				cat.RegionLabel(s.Region), len(s.Points),
				first.Year, engine.FormatValue(first.Value), last.Year, engine.FormatValue(last.Value)))
		}
	}
	return strings.Join(lines, "\n")
}

// hoverText lists, per visible region, the tooltip of the point nearest year.
func hoverText(cat *schema.Catalog, v figure.View, year float64) string {
	if !v.Result.HasChart() {
		return ""
	}
	hidden := make(map[string]bool, len(v.Hidden))
	for _, r := range v.Hidden {
		hidden[r] = true
	}

	var blocks []string
	for _, s := range v.Result.Series {
		if hidden[s.Region] {
			continue
		}
		p, ok := engine.NearestPoint(s, year)
		if !ok {
			continue
		}
		blocks = append(blocks, engine.BuildTooltip(cat.RegionLabel(s.Region), p, v.Selection.Groups).String())
	}
	return strings.Join(blocks, "\n\n")
}

// ============================================================================
// CSV OUTPUT
// ============================================================================

func writeCSV(w io.Writer, result *engine.Result) {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if !result.HasChart() {
		cw.Write([]string{"Result"})
		cw.Write([]string{result.Message})
		return
	}

	table := engine.BuildTable(result.Series)
	cw.Write(table.Headers())
	for _, row := range table.Rows {
		cw.Write(row)
	}
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}

	if err != nil {
		fatalf("Failed to marshal output: %v", err)
	}
	fmt.Fprintln(w, string(out))
}

// writeCatalog prints a catalog as JSON (json, pretty) or YAML (yaml).
func writeCatalog(w io.Writer, cat *schema.Catalog, format string) {
	if format == "yaml" || format == "yml" {
		out, err := schema.Marshal(cat, "yaml")
		if err != nil {
			fatalf("Failed to marshal catalog: %v", err)
		}
		w.Write(out)
		return
	}
	writeJSON(w, cat, format)
}

// ============================================================================
// HELPERS
// ============================================================================

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
