package engine

import (
	"sort"
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Year × Region grid from Series
// ============================================================================
// One row per year seen in any series, one column per region. Missing points
// are empty cells. Used for CSV export and text output.
// ============================================================================

// TableData is a rendered grid with a header row.
type TableData struct {
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// Headers returns the column labels.
func (t *TableData) Headers() []string {
	h := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		h[i] = c.Label
	}
	return h
}

// BuildTable lays series out as a year × region grid.
func BuildTable(series []Series) *TableData {
	columns := make([]Column, 0, len(series)+1)
	columns = append(columns, Column{Key: "year", Label: "Year", Type: "text", Align: "left"})
	for _, s := range series {
		columns = append(columns, Column{Key: s.Region, Label: s.Region, Type: "number", Align: "right"})
	}

	yearSet := make(map[int]bool)
	lookup := make([]map[int]float64, len(series))
	for i, s := range series {
		lookup[i] = make(map[int]float64, len(s.Points))
		for _, p := range s.Points {
			yearSet[p.Year] = true
			lookup[i][p.Year] = p.Value
		}
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	rows := make([][]string, 0, len(years))
	for _, y := range years {
		row := make([]string, 0, len(columns))
		row = append(row, strconv.Itoa(y))
		for i := range series {
			if v, ok := lookup[i][y]; ok {
				row = append(row, FormatValue(v))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	return &TableData{Columns: columns, Rows: rows}
}

// FormatValue renders a diversity value with three decimals.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
