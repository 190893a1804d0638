package analysis

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// NumericStats summarises a numeric column.
type NumericStats struct {
	Count    int    `json:"count"`
	Mean     Number `json:"mean"`
	Std      Number `json:"std"`
	Min      Number `json:"min"`
	Max      Number `json:"max"`
	Median   Number `json:"median"`
	Q25      Number `json:"q25"`
	Q75      Number `json:"q75"`
	Skewness Number `json:"skewness"`
}

// CategoryCount is a value and its frequency.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TextStats summarises a free-text column.
type TextStats struct {
	AvgLength    Number          `json:"avgLength"`
	MaxLength    int             `json:"maxLength"`
	MinLength    int             `json:"minLength"`
	AvgWordCount Number          `json:"avgWordCount"`
	UniqueValues int             `json:"uniqueValues"`
	MostCommon   []CategoryCount `json:"mostCommon"`
	TopWords     []CategoryCount `json:"topWords,omitempty"`
}

// DatetimeStats summarises a datetime column.
type DatetimeStats struct {
	Min              string `json:"min"`
	Max              string `json:"max"`
	RangeDays        int    `json:"range_days"`
	MostFrequentYear int    `json:"most_frequent_year"`
}

// CorrMatrix is a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string   `json:"columns"`
	Values  [][]Number `json:"values"` // row-major, Values[i][j]
}

// Statistics groups the per-type statistics of a table, keyed by column.
// Columns whose statistics could not be computed are absent.
type Statistics struct {
	Numeric      map[string]NumericStats  `json:"numeric"`
	Text         map[string]TextStats     `json:"text"`
	Datetime     map[string]DatetimeStats `json:"datetime"`
	Correlations *CorrMatrix              `json:"correlations,omitempty"`
}

const (
	topValues      = 5
	corrPlaces     = 3
	timeLayout     = "2006-01-02 15:04:05"
	hoursPerDay    = 24
	topWordsPerCol = 10
)

// ComputeStatistics derives numeric, text and datetime statistics for the
// grouped columns. It never fails; a column that cannot be summarised is
// omitted from its group.
func ComputeStatistics(t *table.Table, g Groups) Statistics {
	st := Statistics{
		Numeric:  map[string]NumericStats{},
		Text:     map[string]TextStats{},
		Datetime: map[string]DatetimeStats{},
	}
	for _, name := range g.Numeric {
		if c, ok := t.Column(name); ok {
			if ns, ok := numericStats(c); ok {
				st.Numeric[name] = ns
			}
		}
	}
	for _, name := range g.Text {
		if c, ok := t.Column(name); ok {
			if ts, ok := textStats(c); ok {
				st.Text[name] = ts
			}
		}
	}
	for _, name := range g.Datetime {
		if c, ok := t.Column(name); ok {
			if ds, ok := datetimeStats(c); ok {
				st.Datetime[name] = ds
			}
		}
	}
	if len(g.Numeric) >= 2 {
		st.Correlations = correlations(t, g.Numeric)
	}
	return st
}

func numericStats(c *table.Column) (NumericStats, bool) {
	vals := c.Floats()
	if len(vals) == 0 {
		return NumericStats{}, false
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	ns := NumericStats{
		Count:  len(vals),
		Mean:   Number(stat.Mean(vals, nil)),
		Std:    NaN,
		Min:    Number(sorted[0]),
		Max:    Number(sorted[len(sorted)-1]),
		Median: Number(quantile(sorted, 0.5)),
		Q25:    Number(quantile(sorted, 0.25)),
		Q75:    Number(quantile(sorted, 0.75)),
	}
	if len(vals) > 1 {
		ns.Std = Number(stat.StdDev(vals, nil))
	}
	skew := 0.0
	if len(vals) > 2 {
		skew = stat.Skew(vals, nil)
	}
	if math.IsNaN(skew) || math.IsInf(skew, 0) {
		skew = 0
	}
	ns.Skewness = Number(skew)
	return ns, true
}

func textStats(c *table.Column) (TextStats, bool) {
	vals := c.Present()
	if len(vals) == 0 {
		return TextStats{}, false
	}
	ts := TextStats{MinLength: math.MaxInt, UniqueValues: c.Distinct()}
	var sumLen, sumWords float64
	for _, v := range vals {
		n := utf8.RuneCountInString(v)
		sumLen += float64(n)
		sumWords += float64(len(strings.Fields(v)))
		if n > ts.MaxLength {
			ts.MaxLength = n
		}
		if n < ts.MinLength {
			ts.MinLength = n
		}
	}
	ts.AvgLength = Number(sumLen / float64(len(vals)))
	ts.AvgWordCount = Number(sumWords / float64(len(vals)))
	ts.MostCommon = ValueCounts(vals, topValues)
	return ts, true
}

func datetimeStats(c *table.Column) (DatetimeStats, bool) {
	var (
		ds         DatetimeStats
		found      bool
		minT, maxT time.Time
		years      = map[int]int{}
	)
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		tm, ok := ParseDate(c.Value(i))
		if !ok {
			continue
		}
		if !found || tm.Before(minT) {
			minT = tm
		}
		if !found || tm.After(maxT) {
			maxT = tm
		}
		found = true
		years[tm.Year()]++
	}
	if !found {
		return ds, false
	}
	ds.Min = minT.Format(timeLayout)
	ds.Max = maxT.Format(timeLayout)
	ds.RangeDays = int(math.Floor(maxT.Sub(minT).Hours() / hoursPerDay))
	best, bestN := 0, -1
	for y, n := range years {
		if n > bestN || (n == bestN && y < best) {
			best, bestN = y, n
		}
	}
	ds.MostFrequentYear = best
	return ds, true
}

// correlations computes pairwise Pearson correlation over rows where both
// columns are present, rounded to three decimals.
func correlations(t *table.Table, names []string) *CorrMatrix {
	cols := make([]*table.Column, len(names))
	for i, n := range names {
		cols[i], _ = t.Column(n)
	}
	m := &CorrMatrix{Columns: append([]string(nil), names...), Values: make([][]Number, len(names))}
	for i := range m.Values {
		m.Values[i] = make([]Number, len(names))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := Number(Round(pearson(cols[i], cols[j]), corrPlaces))
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pearson(a, b *table.Column) float64 {
	var xs, ys []float64
	for i := 0; i < a.Len(); i++ {
		x, okx := a.Float(i)
		y, oky := b.Float(i)
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// QualityScore is 100 minus the percentage of missing cells, floored at 0
// and rounded to two decimals. A table without cells scores 0.
func QualityScore(t *table.Table) float64 {
	cells := t.Cells()
	if cells == 0 {
		return 0
	}
	score := 100 - float64(t.Missing())/float64(cells)*100
	return Round(math.Max(0, score), 2)
}

// ValueCounts returns the n most frequent values, ties broken by value.
func ValueCounts(vals []string, n int) []CategoryCount {
	counts := map[string]int{}
	for _, v := range vals {
		counts[v]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// quantile interpolates linearly between closest ranks of sorted data.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
