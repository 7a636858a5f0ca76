package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/spektr-org/fusion/engine"
)

// ============================================================================
// FIXTURE HELPER — Static dataset decoding
// ============================================================================
// The fixture is a JSON array of records:
//
//	[{"PartGroups": [["SA1","SA2"],["SA3"]], "Region": "Europe",
//	  "Year": 1990, "Diversity": 0.41}, ...]
//
// Exporters sometimes write bare NaN, which is not JSON; it is read as null.
// ============================================================================

// Format names a fixture encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFixture decodes a JSON fixture.
func ParseFixture(data []byte) ([]engine.Record, error) {
	safe := sanitizeNonFinite(data)

	var records []engine.Record
	if err := json.Unmarshal(safe, &records); err != nil {
		return nil, fmt.Errorf("failed to parse fixture JSON: %w", err)
	}
	return records, nil
}

// nonFiniteTokens are the bare literals some exporters emit for non-finite
// floats. Longest first so "-Infinity" wins over "Infinity".
var nonFiniteTokens = [][]byte{[]byte("-Infinity"), []byte("Infinity"), []byte("NaN")}

// sanitizeNonFinite rewrites bare NaN/Infinity values to null. String
// contents are copied untouched.
func sanitizeNonFinite(data []byte) []byte {
	if !bytes.Contains(data, []byte("NaN")) && !bytes.Contains(data, []byte("Infinity")) {
		return data
	}

	out := make([]byte, 0, len(data))
	inString, escaped := false, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			out = append(out, c)
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		if tok := nonFiniteAt(data[i:]); tok > 0 {
			out = append(out, "null"...)
			i += tok - 1
			continue
		}
		out = append(out, c)
	}
	return out
}

// nonFiniteAt returns the length of the non-finite literal at the start of
// b, or 0.
func nonFiniteAt(b []byte) int {
	for _, tok := range nonFiniteTokens {
		if bytes.HasPrefix(b, tok) {
			return len(tok)
		}
	}
	return 0
}

// Decode dispatches on format. FormatAuto treats data starting with '[' as
// JSON and anything else as CSV.
func Decode(data []byte, format Format) ([]engine.Record, error) {
	if format == FormatAuto {
		format = sniff(data)
	}
	switch format {
	case FormatJSON:
		return ParseFixture(data)
	case FormatCSV:
		return ParseCSV(data)
	default:
		return nil, fmt.Errorf("unknown fixture format %q", format)
	}
}

// FormatFromName picks a format from a file name or URI extension.
func FormatFromName(name string) Format {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	}
	return FormatAuto
}

// LoadRecords fetches from src and decodes the result.
func LoadRecords(ctx context.Context, src Source, format Format) ([]engine.Record, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	if format == FormatAuto {
		format = FormatFromName(src.String())
	}
	records, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	return records, nil
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return FormatJSON
	}
	return FormatCSV
}
