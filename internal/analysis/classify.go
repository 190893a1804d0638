package analysis

import (
	"regexp"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// SemanticType is the inferred meaning of a column's values.
type SemanticType string

const (
	Numeric     SemanticType = "numeric"
	Categorical SemanticType = "categorical"
	Text        SemanticType = "text"
	Datetime    SemanticType = "datetime"
	Empty       SemanticType = "empty"
)

// Cardinality cutoffs used by Classify.
const (
	// NumericCategoricalDistinct: numeric columns with fewer distinct values are categorical.
	NumericCategoricalDistinct = 20
	// NumericCategoricalCeiling and NumericCategoricalRatio: numeric columns with
	// fewer than Ceiling distinct values and a distinct/rows ratio under Ratio
	// are categorical.
	NumericCategoricalCeiling = 100
	NumericCategoricalRatio   = 0.05
	// StringCategoricalDistinct and StringCategoricalRatio: string columns under
	// either cutoff are categorical, otherwise free text.
	StringCategoricalDistinct = 50
	StringCategoricalRatio    = 0.1
	// DateSampleSize is how many leading non-missing values are checked for dates.
	DateSampleSize = 10
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),
	regexp.MustCompile(`\d{4}/\d{2}/\d{2}`),
}

// Classify assigns a semantic type to a column. It is pure and total.
func Classify(col *table.Column) SemanticType {
	rows := col.Len()
	if rows == 0 || col.NullCount() == rows {
		return Empty
	}
	distinct := col.Distinct()
	ratio := float64(distinct) / float64(rows)

	if col.Kind == table.KindNumeric {
		if distinct < NumericCategoricalDistinct ||
			(distinct < NumericCategoricalCeiling && ratio < NumericCategoricalRatio) {
			return Categorical
		}
		return Numeric
	}

	if looksLikeDates(col) {
		return Datetime
	}
	if distinct < StringCategoricalDistinct || ratio < StringCategoricalRatio {
		return Categorical
	}
	return Text
}

// looksLikeDates reports whether any of the sampled values matches a date
// pattern and every sampled value parses as a date.
func looksLikeDates(col *table.Column) bool {
	var sample []string
	for i := 0; i < col.Len() && len(sample) < DateSampleSize; i++ {
		if !col.IsNull(i) {
			sample = append(sample, col.Value(i))
		}
	}
	matched := false
	for _, s := range sample {
		for _, re := range datePatterns {
			if re.MatchString(s) {
				matched = true
				break
			}
		}
		if matched {
			break
		}
	}
	if !matched {
		return false
	}
	for _, s := range sample {
		if _, ok := ParseDate(s); !ok {
			return false
		}
	}
	return true
}

// Groups lists column names by semantic type, in table order.
type Groups struct {
	All         []string `json:"allColumns"`
	Numeric     []string `json:"numericColumns"`
	Text        []string `json:"textColumns"`
	Categorical []string `json:"categoricalColumns"`
	Datetime    []string `json:"datetimeColumns"`
	Empty       []string `json:"emptyColumns"`
	types       map[string]SemanticType
}

// ClassifyTable classifies every column of t.
func ClassifyTable(t *table.Table) Groups {
	g := Groups{
		All:         t.Names(),
		Numeric:     []string{},
		Text:        []string{},
		Categorical: []string{},
		Datetime:    []string{},
		Empty:       []string{},
		types:       make(map[string]SemanticType, t.Width()),
	}
	for _, c := range t.Columns() {
		st := Classify(c)
		g.types[c.Name] = st
		switch st {
		case Numeric:
			g.Numeric = append(g.Numeric, c.Name)
		case Text:
			g.Text = append(g.Text, c.Name)
		case Categorical:
			g.Categorical = append(g.Categorical, c.Name)
		case Datetime:
			g.Datetime = append(g.Datetime, c.Name)
		case Empty:
			g.Empty = append(g.Empty, c.Name)
		}
	}
	return g
}

// TypeOf returns the semantic type recorded for a column.
func (g Groups) TypeOf(name string) SemanticType { return g.types[name] }
