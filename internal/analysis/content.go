package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Dataset content labels.
const (
	ContentEmpty      = "Empty"
	ContentTimeSeries = "Time Series / Temporal"
	ContentTextual    = "Textual / NLP"
	ContentNumerical  = "Tabular / Numerical"
	ContentMixed      = "Mixed / Tabular"
)

const (
	// TimeSeriesMaxColumns: temporal datasets are narrower than this.
	TimeSeriesMaxColumns = 10
	// TextColumnShare: above this share of text columns a dataset is textual.
	TextColumnShare = 0.3
	// LongTextLength: a text column averaging more characters makes a dataset textual.
	LongTextLength = 50
	// NumericColumnShare: above this share of numeric columns a dataset is numerical.
	NumericColumnShare = 0.5
	// TargetMinClasses and TargetMaxClasses bound a categorical target's cardinality.
	TargetMinClasses = 2
	TargetMaxClasses = 20
)

var commonTargetNames = map[string]bool{
	"target": true, "label": true, "class": true, "y": true, "output": true,
	"prediction": true, "survived": true, "price": true, "category": true,
	"target_variable": true, "quality": true, "type": true,
}

var ignoredTargetNames = map[string]bool{
	"id": true, "uuid": true, "index": true, "unnamed": true, "date": true,
	"timestamp": true, "time": true, "user_id": true, "created_at": true, "updated_at": true,
}

// DetectContentType labels the dominant nature of a dataset.
func DetectContentType(t *table.Table, g Groups) string {
	total := t.Width()
	if total == 0 || t.Rows() == 0 {
		return ContentEmpty
	}
	if len(g.Datetime) > 0 && len(g.Numeric) > 0 && total < TimeSeriesMaxColumns {
		return ContentTimeSeries
	}
	if float64(len(g.Text))/float64(total) > TextColumnShare {
		return ContentTextual
	}
	for _, name := range g.Text {
		if c, ok := t.Column(name); ok && averageLength(c) > LongTextLength {
			return ContentTextual
		}
	}
	if float64(len(g.Numeric))/float64(total) > NumericColumnShare {
		return ContentNumerical
	}
	return ContentMixed
}

func averageLength(c *table.Column) float64 {
	vals := c.Present()
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += utf8.RuneCountInString(v)
	}
	return float64(sum) / float64(len(vals))
}

// SuggestTarget picks the most plausible supervised-learning target. It
// returns "" only for a table without columns.
func SuggestTarget(t *table.Table, g Groups) string {
	names := t.Names()
	if len(names) == 0 {
		return ""
	}
	for _, n := range names {
		if commonTargetNames[strings.ToLower(n)] {
			return n
		}
	}
	for i := len(names) - 1; i >= 0; i-- {
		n := names[i]
		if ignoredTargetNames[strings.ToLower(n)] || g.TypeOf(n) != Categorical {
			continue
		}
		c, _ := t.Column(n)
		if d := c.Distinct(); d >= TargetMinClasses && d <= TargetMaxClasses {
			return n
		}
	}
	for i := len(names) - 1; i >= 0; i-- {
		n := names[i]
		if !ignoredTargetNames[strings.ToLower(n)] && g.TypeOf(n) == Numeric {
			return n
		}
	}
	for i := len(names) - 1; i >= 0; i-- {
		if !ignoredTargetNames[strings.ToLower(names[i])] {
			return names[i]
		}
	}
	return names[len(names)-1]
}
