package table

import (
	"fmt"
	"strings"
)

// missingTokens are the literal cell values read as missing.
var missingTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissingToken reports whether a raw cell should be read as missing.
func IsMissingToken(s string) bool {
	_, ok := missingTokens[strings.TrimSpace(s)]
	return ok
}

// NormalizeNames trims header names, fills blanks with "Unnamed: i" and
// suffixes repeats as name.1, name.2, ...
func NormalizeNames(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, n := range names {
		n = strings.TrimSpace(strings.TrimPrefix(n, "\ufeff"))
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		base := n
		for {
			if _, dup := seen[n]; !dup {
				break
			}
			seen[base]++
			n = fmt.Sprintf("%s.%d", base, seen[base])
		}
		seen[n] = 0
		out[i] = n
	}
	return out
}

// InferColumn builds a column from raw text cells. The column is numeric
// when every non-missing cell parses as a number.
func InferColumn(name string, raw []string) *Column {
	null := make([]bool, len(raw))
	numeric := true
	present := 0
	for i, s := range raw {
		if IsMissingToken(s) {
			null[i] = true
			continue
		}
		present++
		if numeric {
			if _, ok := ParseFloat(s); !ok {
				numeric = false
			}
		}
	}
	if numeric && present > 0 {
		vals := make([]float64, len(raw))
		for i, s := range raw {
			if !null[i] {
				vals[i], _ = ParseFloat(s)
			}
		}
		return NumericColumn(name, vals, null)
	}
	vals := make([]string, len(raw))
	for i, s := range raw {
		if !null[i] {
			vals[i] = s
		}
	}
	return StringColumn(name, vals, null)
}

// FromRecords builds a table from a header and row-major records. Short rows
// are padded with missing cells; extra cells are ignored.
func FromRecords(header []string, rows [][]string) *Table {
	names := NormalizeNames(header)
	cols := make([]*Column, len(names))
	for j, name := range names {
		raw := make([]string, len(rows))
		for i, r := range rows {
			if j < len(r) {
				raw[i] = r[j]
			}
		}
		cols[j] = InferColumn(name, raw)
	}
	return MustNew(cols...)
}

// Cell is a typed value from a self-describing source (JSON, Parquet).
type Cell struct {
	Null  bool
	IsNum bool
	Num   float64
	Str   string
}

// NumCell, StrCell and NullCell construct cells.
func NumCell(v float64) Cell { return Cell{IsNum: true, Num: v} }
func StrCell(s string) Cell  { return Cell{Str: s} }
func NullCell() Cell         { return Cell{Null: true} }

// FromCells builds a column from typed cells. Mixed columns fall back to
// string storage with numbers rendered as text.
func FromCells(name string, cells []Cell) *Column {
	numeric := true
	present := 0
	for _, c := range cells {
		if c.Null {
			continue
		}
		present++
		if !c.IsNum {
			numeric = false
		}
	}
	null := make([]bool, len(cells))
	if numeric && present > 0 {
		vals := make([]float64, len(cells))
		for i, c := range cells {
			null[i] = c.Null
			vals[i] = c.Num
		}
		return NumericColumn(name, vals, null)
	}
	vals := make([]string, len(cells))
	for i, c := range cells {
		switch {
		case c.Null:
			null[i] = true
		case c.IsNum:
			vals[i] = FormatFloat(c.Num)
		default:
			vals[i] = c.Str
		}
	}
	return StringColumn(name, vals, null)
}

// FromColumnCells builds a table from named cell columns, normalising names.
func FromColumnCells(names []string, cols [][]Cell) (*Table, error) {
	norm := NormalizeNames(names)
	out := make([]*Column, len(norm))
	for i, n := range norm {
		out[i] = FromCells(n, cols[i])
	}
	return New(out...)
}
