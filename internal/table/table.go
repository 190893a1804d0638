// Package table holds the in-memory column store shared by the loader,
// the profiler and the feature transformer. Tables are never mutated in
// place; every operation that changes shape returns a new Table.
package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the storage kind of a column.
type Kind int

const (
	KindString Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	if k == KindNumeric {
		return "number"
	}
	return "string"
}

// Column is a named, homogeneous sequence of cells. Exactly one of Num or Str
// is populated depending on Kind; Null marks missing cells.
type Column struct {
	Name string
	Kind Kind
	Num  []float64
	Str  []string
	Null []bool
}

// NumericColumn builds a numeric column. A nil null slice means no missing cells.
// NaN values are treated as missing.
func NumericColumn(name string, vals []float64, null []bool) *Column {
	if null == nil {
		null = make([]bool, len(vals))
	}
	for i, v := range vals {
		if math.IsNaN(v) {
			null[i] = true
		}
	}
	return &Column{Name: name, Kind: KindNumeric, Num: vals, Null: null}
}

// StringColumn builds a string column. A nil null slice means no missing cells.
func StringColumn(name string, vals []string, null []bool) *Column {
	if null == nil {
		null = make([]bool, len(vals))
	}
	return &Column{Name: name, Kind: KindString, Str: vals, Null: null}
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.Null) }

// IsNull reports whether cell i is missing.
func (c *Column) IsNull(i int) bool { return c.Null[i] }

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, b := range c.Null {
		if b {
			n++
		}
	}
	return n
}

// Float returns the numeric value of cell i. String cells are parsed.
func (c *Column) Float(i int) (float64, bool) {
	if c.Null[i] {
		return 0, false
	}
	if c.Kind == KindNumeric {
		return c.Num[i], true
	}
	return ParseFloat(c.Str[i])
}

// Value returns cell i rendered as text; missing cells render as "".
func (c *Column) Value(i int) string {
	if c.Null[i] {
		return ""
	}
	if c.Kind == KindNumeric {
		return FormatFloat(c.Num[i])
	}
	return c.Str[i]
}

// Present returns the rendered non-missing values in row order.
func (c *Column) Present() []string {
	out := make([]string, 0, c.Len())
	for i := range c.Null {
		if !c.Null[i] {
			out = append(out, c.Value(i))
		}
	}
	return out
}

// Floats returns the non-missing numeric values in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, c.Len())
	for i := range c.Null {
		if v, ok := c.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// Distinct counts distinct non-missing values.
func (c *Column) Distinct() int {
	seen := make(map[string]struct{})
	for i := range c.Null {
		if !c.Null[i] {
			seen[c.Value(i)] = struct{}{}
		}
	}
	return len(seen)
}

// Clone returns a deep copy under the given name (empty keeps the name).
func (c *Column) Clone(name string) *Column {
	if name == "" {
		name = c.Name
	}
	out := &Column{Name: name, Kind: c.Kind, Null: append([]bool(nil), c.Null...)}
	if c.Kind == KindNumeric {
		out.Num = append([]float64(nil), c.Num...)
	} else {
		out.Str = append([]string(nil), c.Str...)
	}
	return out
}

// Table is an ordered set of uniquely named columns of equal length.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles columns into a table. Names must be unique and lengths equal.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		t.index[c.Name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is New for callers that built the columns themselves.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// Rows returns the row count.
func (t *Table) Rows() int { return t.rows }

// Width returns the column count.
func (t *Table) Width() int { return len(t.cols) }

// Cells returns rows × columns.
func (t *Table) Cells() int { return t.rows * len(t.cols) }

// Columns returns the columns in order. Callers must not modify them.
func (t *Table) Columns() []*Column { return t.cols }

// Col returns the i-th column.
func (t *Table) Col(i int) *Column { return t.cols[i] }

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Names returns column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Missing returns the total number of missing cells.
func (t *Table) Missing() int {
	n := 0
	for _, c := range t.cols {
		n += c.NullCount()
	}
	return n
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	var keep []*Column
	for _, c := range t.cols {
		if !skip[c.Name] {
			keep = append(keep, c)
		}
	}
	return t.with(keep)
}

// WithColumn returns a table where c replaces the column of the same name,
// or is appended when no such column exists.
func (t *Table) WithColumn(c *Column) *Table {
	cols := append([]*Column(nil), t.cols...)
	if i, ok := t.index[c.Name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return t.with(cols)
}

// Replace swaps the named column for zero or more new columns at the same position.
func (t *Table) Replace(name string, with ...*Column) *Table {
	i, ok := t.index[name]
	if !ok {
		return t.with(append(append([]*Column(nil), t.cols...), with...))
	}
	cols := make([]*Column, 0, len(t.cols)+len(with))
	cols = append(cols, t.cols[:i]...)
	cols = append(cols, with...)
	cols = append(cols, t.cols[i+1:]...)
	return t.with(cols)
}

// FilterRows keeps rows where keep[i] is true.
func (t *Table) FilterRows(keep []bool) *Table {
	cols := make([]*Column, len(t.cols))
	for j, c := range t.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind}
		for i, k := range keep {
			if !k {
				continue
			}
			nc.Null = append(nc.Null, c.Null[i])
			if c.Kind == KindNumeric {
				nc.Num = append(nc.Num, c.Num[i])
			} else {
				nc.Str = append(nc.Str, c.Str[i])
			}
		}
		if nc.Null == nil {
			nc.Null = []bool{}
		}
		cols[j] = nc
	}
	return t.with(cols)
}

// Head returns the first n rows rendered as text, missing cells as "".
func (t *Table) Head(n int) [][]string {
	if n > t.rows {
		n = t.rows
	}
	out := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.cols))
		for j, c := range t.cols {
			row[j] = c.Value(i)
		}
		out = append(out, row)
	}
	return out
}

// Records renders the whole table, header first.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, t.rows+1)
	out = append(out, t.Names())
	return append(out, t.Head(t.rows)...)
}

// with rebuilds the index over cols. Names are assumed unique.
func (t *Table) with(cols []*Column) *Table {
	nt := &Table{cols: cols, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		nt.index[c.Name] = i
		if i == 0 {
			nt.rows = c.Len()
		}
	}
	if len(cols) == 0 {
		nt.rows = 0
	}
	return nt
}

// ParseFloat parses a decimal literal. Hex floats and underscores are rejected.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatFloat renders v without trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
