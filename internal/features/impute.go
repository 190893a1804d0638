package features

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// MissingPlaceholder fills missing non-numeric cells.
const MissingPlaceholder = "Unknown"

// impute returns a table without missing cells. Numeric columns follow the
// configured method; string columns take the mode under "mode", "0" under
// "zero" and MissingPlaceholder otherwise.
func impute(t *table.Table, method string) *table.Table {
	if method == config.FillDrop {
		keep := make([]bool, t.Rows())
		for i := range keep {
			keep[i] = true
			for _, c := range t.Columns() {
				if c.IsNull(i) {
					keep[i] = false
					break
				}
			}
		}
		return t.FilterRows(keep)
	}

	out := t
	for _, c := range t.Columns() {
		if c.NullCount() == 0 {
			continue
		}
		if c.Kind == table.KindNumeric {
			out = out.WithColumn(fillNumeric(c, numericFill(c, method)))
			continue
		}
		fill := MissingPlaceholder
		switch method {
		case config.FillMode:
			if m, ok := stringMode(c); ok {
				fill = m
			}
		case config.FillZero:
			fill = "0"
		}
		out = out.WithColumn(fillString(c, fill))
	}
	return out
}

func numericFill(c *table.Column, method string) float64 {
	vals := c.Floats()
	if len(vals) == 0 || method == config.FillZero {
		return 0
	}
	switch method {
	case config.FillMedian:
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 1 {
			return sorted[mid]
		}
		return (sorted[mid-1] + sorted[mid]) / 2
	case config.FillMode:
		return numericMode(vals)
	default:
		return stat.Mean(vals, nil)
	}
}

// numericMode returns the most frequent value, the smallest on ties.
func numericMode(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	best, bestN := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestN {
			best, bestN = sorted[i], j-i
		}
		i = j
	}
	return best
}

// stringMode returns the most frequent present value, the smallest on ties.
func stringMode(c *table.Column) (string, bool) {
	counts := map[string]int{}
	for _, v := range c.Present() {
		counts[v]++
	}
	best, bestN := "", 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, bestN > 0
}

func fillNumeric(c *table.Column, v float64) *table.Column {
	vals := make([]float64, c.Len())
	for i := range vals {
		if c.IsNull(i) {
			vals[i] = v
		} else {
			vals[i] = c.Num[i]
		}
	}
	return table.NumericColumn(c.Name, vals, nil)
}

func fillString(c *table.Column, v string) *table.Column {
	vals := make([]string, c.Len())
	for i := range vals {
		if c.IsNull(i) {
			vals[i] = v
		} else {
			vals[i] = c.Str[i]
		}
	}
	return table.StringColumn(c.Name, vals, nil)
}

// maskNonFinite marks ±Inf numeric cells as missing so imputation treats
// them like NaN.
func maskNonFinite(t *table.Table) *table.Table {
	out := t
	for _, c := range t.Columns() {
		if c.Kind != table.KindNumeric {
			continue
		}
		var null []bool
		for i, v := range c.Num {
			if c.Null[i] || !math.IsInf(v, 0) {
				continue
			}
			if null == nil {
				null = append([]bool(nil), c.Null...)
			}
			null[i] = true
		}
		if null != nil {
			out = out.WithColumn(table.NumericColumn(c.Name, append([]float64(nil), c.Num...), null))
		}
	}
	return out
}

// fillRemaining replaces any missing or non-finite cell left by the later
// stages (0 for numbers, MissingPlaceholder for strings) and warns per column.
func (tr *transformer) fillRemaining(t *table.Table) *table.Table {
	out := t
	for _, c := range t.Columns() {
		bad := 0
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) || (c.Kind == table.KindNumeric && !isFinite(c.Num[i])) {
				bad++
			}
		}
		if bad == 0 {
			continue
		}
		tr.warn(c.Name, "transform", fmt.Errorf("%d missing or non-finite cells filled", bad))
		if c.Kind != table.KindNumeric {
			out = out.WithColumn(fillString(c, MissingPlaceholder))
			continue
		}
		vals := make([]float64, c.Len())
		for i := range vals {
			if !c.IsNull(i) && isFinite(c.Num[i]) {
				vals[i] = c.Num[i]
			}
		}
		out = out.WithColumn(table.NumericColumn(c.Name, vals, nil))
	}
	return out
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
