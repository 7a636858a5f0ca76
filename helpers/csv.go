package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/spektr-org/fusion/engine"
)

// ============================================================================
// CSV HELPER — Parses CSV fixtures into []engine.Record
// ============================================================================
// Expected columns (any order, header names case-insensitive):
//   PartGroups  "SA1+SA2|SA3|..."  (engine.ParseToken form)
//   Region      string
//   Year        integer
//   Diversity   number, blank for missing
// ============================================================================

var csvColumns = map[string]string{
	"partgroups": "partition",
	"partition":  "partition",
	"region":     "region",
	"year":       "year",
	"diversity":  "value",
	"value":      "value",
}

// ParseCSV parses CSV bytes into Records. Rows with a malformed partition
// cell are skipped; year and value stay raw for the series builder.
func ParseCSV(data []byte) ([]engine.Record, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	index := make(map[string]int)
	for i, h := range headers {
		key := normalizeHeader(strings.TrimSpace(h))
		if field, ok := csvColumns[key]; ok {
			if _, dup := index[field]; !dup {
				index[field] = i
			}
		}
	}
	for _, required := range []string{"partition", "region", "year", "value"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("CSV missing %s column (headers: %v)", required, headers)
		}
	}

	cell := func(row []string, field string) string {
		i := index[field]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []engine.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		token, err := engine.ParseToken(cell(row, "partition"))
		if err != nil || len(token) == 0 {
			continue
		}
		tag := make(engine.Tag, len(token))
		for i, g := range token {
			tag[i] = g
		}

		records = append(records, engine.Record{
			Partition: tag,
			Region:    cell(row, "region"),
			Year:      engine.Field(cell(row, "year")),
			Value:     engine.Field(cell(row, "value")),
		})
	}

	return records, nil
}

// WriteCSV writes records in the layout ParseCSV reads.
func WriteCSV(w io.Writer, records []engine.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"PartGroups", "Region", "Year", "Diversity"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{engine.Normalize(r.Partition).String(), r.Region, string(r.Year), string(r.Value)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// normalizeHeader lowercases and drops separators so "Part Groups",
// "part_groups" and "PartGroups" agree.
func normalizeHeader(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
}
