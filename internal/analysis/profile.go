// Package analysis profiles tables: it infers semantic column types,
// computes descriptive statistics and guesses the dataset's content type
// and supervised-learning target.
package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/textnorm"
)

// Options controls profiling.
type Options struct {
	// Name labels the profile, usually the file's base name.
	Name string
	// SampleRows is how many leading rows to include; negative disables samples.
	SampleRows int
	// TopWords adds the most frequent words to text column statistics.
	TopWords bool
}

// DefaultOptions returns the profiling defaults.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopWords: true}
}

// ColumnProfile describes one column.
type ColumnProfile struct {
	Name              string       `json:"columnName"`
	Type              SemanticType `json:"dataType"`
	UniqueCount       int          `json:"uniqueValues"`
	MissingCount      int          `json:"missingValues"`
	MissingPercentage Number       `json:"missingPercentage"`
	// SampleValue is the first non-missing value: a Number for numeric
	// storage, a string otherwise, nil when the column is all missing.
	SampleValue any `json:"sampleValue"`
}

// DatasetProfile is the read-only result of profiling a table.
type DatasetProfile struct {
	Name string `json:"fileName,omitempty"`
	Groups
	SuggestedTarget *string         `json:"suggestedTargetColumn"`
	ContentType     string          `json:"contentType"`
	QualityScore    Number          `json:"qualityScore"`
	Rows            int             `json:"numRows"`
	Columns         int             `json:"numColumns"`
	ColumnProfiles  []ColumnProfile `json:"columnMetadata"`
	Statistics      Statistics      `json:"statistics"`
	SampleRows      []Record        `json:"sampleData"`
}

// Target returns the suggested target column or "".
func (p *DatasetProfile) Target() string {
	if p.SuggestedTarget == nil {
		return ""
	}
	return *p.SuggestedTarget
}

// Column returns the profile of a named column.
func (p *DatasetProfile) Column(name string) (ColumnProfile, bool) {
	for _, c := range p.ColumnProfiles {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// Record is one sample row; it serialises as a JSON object in column order.
type Record struct {
	Keys   []string
	Values []string
}

func (r Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.Values[i])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Profile builds the dataset profile of t.
func Profile(t *table.Table, opt Options) *DatasetProfile {
	g := ClassifyTable(t)
	p := &DatasetProfile{
		Name:         opt.Name,
		Groups:       g,
		ContentType:  DetectContentType(t, g),
		QualityScore: Number(QualityScore(t)),
		Rows:         t.Rows(),
		Columns:      t.Width(),
		Statistics:   ComputeStatistics(t, g),
		SampleRows:   []Record{},
	}
	if target := SuggestTarget(t, g); target != "" {
		p.SuggestedTarget = &target
	}
	for _, c := range t.Columns() {
		p.ColumnProfiles = append(p.ColumnProfiles, columnProfile(c, g.TypeOf(c.Name), t.Rows()))
	}
	if opt.TopWords {
		for name, ts := range p.Statistics.Text {
			c, _ := t.Column(name)
			for _, term := range textnorm.TopNgrams(c.Present(), topWordsPerCol, 1) {
				ts.TopWords = append(ts.TopWords, CategoryCount{Value: term.Term, Count: term.Count})
			}
			p.Statistics.Text[name] = ts
		}
	}
	if opt.SampleRows > 0 {
		for _, row := range t.Head(opt.SampleRows) {
			p.SampleRows = append(p.SampleRows, Record{Keys: g.All, Values: row})
		}
	}
	return p
}

func columnProfile(c *table.Column, st SemanticType, rows int) ColumnProfile {
	cp := ColumnProfile{
		Name:              c.Name,
		Type:              st,
		UniqueCount:       c.Distinct(),
		MissingCount:      c.NullCount(),
		MissingPercentage: 0,
	}
	if rows > 0 {
		cp.MissingPercentage = Number(float64(cp.MissingCount) / float64(rows) * 100)
	}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		if c.Kind == table.KindNumeric {
			cp.SampleValue = Number(c.Num[i])
		} else {
			cp.SampleValue = c.Str[i]
		}
		break
	}
	return cp
}

// Markdown renders a compact report suitable for prompts or standalone docs.
func (p *DatasetProfile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", p.Columns))
	b.WriteString(fmt.Sprintf("Content type: %s\n", p.ContentType))
	if t := p.Target(); t != "" {
		b.WriteString(fmt.Sprintf("Suggested target: %s\n", t))
	}
	b.WriteString(fmt.Sprintf("Quality score: %.2f\n\n", float64(p.QualityScore)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.ColumnProfiles {
		b.WriteString(fmt.Sprintf("- %s: %s (unique %d, missing %.1f%%)", safeName(c.Name), c.Type, c.UniqueCount, float64(c.MissingPercentage)))
		switch c.Type {
		case Numeric:
			if ns, ok := p.Statistics.Numeric[c.Name]; ok {
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, median %.4g", float64(ns.Min), float64(ns.Max), float64(ns.Mean), float64(ns.Median)))
				if ns.Std.Valid() {
					b.WriteString(fmt.Sprintf(", std %.4g", float64(ns.Std)))
				}
				b.WriteString(fmt.Sprintf(", skew %.2f", float64(ns.Skewness)))
			}
		case Text:
			if ts, ok := p.Statistics.Text[c.Name]; ok {
				b.WriteString(fmt.Sprintf(" — avg length %.1f, avg words %.1f", float64(ts.AvgLength), float64(ts.AvgWordCount)))
				if len(ts.TopWords) > 0 {
					b.WriteString("; top words: ")
					for i, w := range ts.TopWords {
						if i > 0 {
							b.WriteString(", ")
						}
						b.WriteString(fmt.Sprintf("%s(%d)", safeVal(w.Value), w.Count))
					}
				}
			}
		case Datetime:
			if ds, ok := p.Statistics.Datetime[c.Name]; ok {
				b.WriteString(fmt.Sprintf(" — %s to %s (%d days)", ds.Min, ds.Max, ds.RangeDays))
			}
		case Categorical:
			if c.SampleValue != nil {
				b.WriteString(fmt.Sprintf(" — e.g., %s", safeVal(fmt.Sprint(c.SampleValue))))
			}
		}
		b.WriteString("\n")
	}

	if m := p.Statistics.Correlations; m != nil && len(m.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		type pair struct {
			A, B string
			R    float64
		}
		var pairs []pair
		for i := 0; i < len(m.Columns); i++ {
			for j := i + 1; j < len(m.Columns); j++ {
				if r := m.Values[i][j]; r.Valid() {
					pairs = append(pairs, pair{A: m.Columns[i], B: m.Columns[j], R: float64(r)})
				}
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		if len(pairs) > 10 {
			pairs = pairs[:10]
		}
		for _, pr := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pr.A, pr.B, pr.R))
		}
	}

	if len(p.SampleRows) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n| ")
		for i, n := range p.All {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(n))
		}
		b.WriteString(" |\n|")
		for range p.All {
			b.WriteString(" --- |")
		}
		b.WriteString("\n")
		for _, row := range p.SampleRows {
			b.WriteString("| ")
			for i, v := range row.Values {
				if i > 0 {
					b.WriteString(" | ")
				}
				if r := []rune(v); len(r) > 80 {
					v = string(r[:77]) + "..."
				}
				b.WriteString(safeVal(v))
			}
			b.WriteString(" |\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
