package features

import (
	"sort"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// classes returns the distinct rendered values of c, in numeric order for
// numeric storage and lexical order otherwise.
func classes(c *table.Column) []string {
	seen := map[string]bool{}
	var out []string
	for i := 0; i < c.Len(); i++ {
		v := c.Value(i)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	if c.Kind == table.KindNumeric {
		sort.SliceStable(out, func(i, j int) bool {
			a, okA := table.ParseFloat(out[i])
			b, okB := table.ParseFloat(out[j])
			if okA != okB {
				return !okA
			}
			return a < b
		})
		return out
	}
	sort.Strings(out)
	return out
}

// labelEncode maps each value to the index of its class.
func labelEncode(c *table.Column) *table.Column {
	idx := map[string]int{}
	for i, v := range classes(c) {
		idx[v] = i
	}
	codes := make([]float64, c.Len())
	for i := range codes {
		codes[i] = float64(idx[c.Value(i)])
	}
	return table.NumericColumn(c.Name, codes, nil)
}

// oneHot returns one 0/1 indicator per class except the first.
func oneHot(c *table.Column, names nameSet) []*table.Column {
	cls := classes(c)
	if len(cls) < 2 {
		return nil
	}
	out := make([]*table.Column, 0, len(cls)-1)
	for _, v := range cls[1:] {
		ind := make([]float64, c.Len())
		for i := range ind {
			if c.Value(i) == v {
				ind[i] = 1
			}
		}
		out = append(out, table.NumericColumn(names.claim(c.Name+"_"+v), ind, nil))
	}
	return out
}

// encode replaces categorical columns with label codes in place, or with
// one-hot indicators appended after the remaining columns.
func (tr *transformer) encode(t *table.Table, names []string) *table.Table {
	method := tr.cfg.CategoricalEncoding.Method
	if method != config.EncodeOneHot {
		for _, n := range names {
			if c, ok := t.Column(n); ok {
				t = t.WithColumn(labelEncode(c))
			}
		}
		return t
	}
	var added []*table.Column
	var encoded []string
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			continue
		}
		taken := namesOf(t)
		for _, a := range added {
			taken[a.Name] = true
		}
		added = append(added, oneHot(c, taken)...)
		encoded = append(encoded, n)
	}
	t = t.Drop(encoded...)
	for _, c := range added {
		t = t.WithColumn(c)
	}
	return t
}

// temporalParts are the numeric features derived from a datetime column.
var temporalParts = []string{"year", "month", "day", "dayofweek"}

// expandDates replaces a datetime column with year, month, day and
// day-of-week (Monday = 0) columns. Unparseable cells become 0.
func expandDates(t *table.Table, c *table.Column) *table.Table {
	parts := make([][]float64, len(temporalParts))
	for k := range parts {
		parts[k] = make([]float64, c.Len())
	}
	for i := 0; i < c.Len(); i++ {
		ts, ok := analysis.ParseDate(c.Value(i))
		if !ok {
			continue
		}
		parts[0][i] = float64(ts.Year())
		parts[1][i] = float64(ts.Month())
		parts[2][i] = float64(ts.Day())
		parts[3][i] = float64((int(ts.Weekday()) + 6) % 7)
	}
	taken := namesOf(t)
	cols := make([]*table.Column, len(temporalParts))
	for k, p := range temporalParts {
		cols[k] = table.NumericColumn(taken.claim(c.Name+"_"+p), parts[k], nil)
	}
	return t.Replace(c.Name, cols...)
}
