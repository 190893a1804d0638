// Package features turns a profiled table into a model-ready feature matrix:
// drop, impute, clean text, vectorize, encode, scale and sanitise names, in
// that order.
package features

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// Options carries runtime collaborators for Transform.
type Options struct {
	Logger *zerolog.Logger
}

// Result is the output of Transform.
type Result struct {
	Table *table.Table
	// Groups is the column classification the stages acted on.
	Groups   analysis.Groups
	Warnings []*ColumnOperationWarning
	// OriginalShape is [rows, columns] of the input table.
	OriginalShape [2]int
}

// Shape returns [rows, columns] of the feature matrix.
func (r *Result) Shape() [2]int {
	return [2]int{r.Table.Rows(), r.Table.Width()}
}

type transformer struct {
	cfg      config.Preprocessing
	log      zerolog.Logger
	warnings []*ColumnOperationWarning
}

func (tr *transformer) warn(column, stage string, err error) {
	w := &ColumnOperationWarning{Column: column, Stage: stage, Err: err}
	tr.warnings = append(tr.warnings, w)
	tr.log.Warn().Str("column", column).Str("stage", stage).Err(err).Msg("column skipped")
}

func (tr *transformer) warned(column string) bool {
	for _, w := range tr.warnings {
		if w.Column == column {
			return true
		}
	}
	return false
}

// Transform applies the preprocessing stages to t and returns a new table;
// t itself is never modified. It fails with *EmptyResultError when no rows
// or columns survive and with *config.ConfigError for an invalid cfg.
func Transform(t *table.Table, cfg config.Preprocessing, opt Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tr := &transformer{cfg: cfg, log: zerolog.Nop()}
	if opt.Logger != nil {
		tr.log = *opt.Logger
	}
	res := &Result{OriginalShape: [2]int{t.Rows(), t.Width()}}

	out := t.Drop(cfg.DropColumns...)
	if err := nonEmpty(out, "drop"); err != nil {
		return nil, err
	}
	out = maskNonFinite(out)

	g := analysis.ClassifyTable(out)
	res.Groups = g
	for _, n := range g.Empty {
		tr.warn(n, "classify", fmt.Errorf("all values missing"))
	}
	out = out.Drop(g.Empty...)
	if err := nonEmpty(out, "classify"); err != nil {
		return nil, err
	}

	out = impute(out, cfg.Fillna.Method)
	if err := nonEmpty(out, "impute"); err != nil {
		return nil, err
	}
	tr.log.Debug().Int("rows", out.Rows()).Int("columns", out.Width()).Msg("imputed")

	if len(g.Text) > 0 {
		out = tr.normalizeText(out, g.Text)
		if cfg.TextVectorization.Enabled {
			out = tr.vectorize(out, g.Text)
		}
		for _, n := range g.Text {
			if c, ok := out.Column(n); ok && c.Kind == table.KindString && !tr.warned(n) {
				tr.warn(n, "vectorize", ErrKeptAsText)
			}
		}
	}

	out = tr.encode(out, g.Categorical)
	for _, n := range g.Datetime {
		if c, ok := out.Column(n); ok {
			out = expandDates(out, c)
		}
	}

	if cfg.Scaling.Enabled {
		for _, n := range g.Numeric {
			if c, ok := out.Column(n); ok && c.Kind == table.KindNumeric {
				out = out.WithColumn(scale(c, cfg.Scaling.Method))
			}
		}
	}

	out = tr.fillRemaining(out)

	out, err := sanitize(out)
	if err != nil {
		return nil, fmt.Errorf("sanitize column names: %w", err)
	}
	if err := nonEmpty(out, "transform"); err != nil {
		return nil, err
	}
	res.Table = out
	res.Warnings = tr.warnings
	return res, nil
}

func nonEmpty(t *table.Table, stage string) error {
	if t.Width() == 0 || t.Rows() == 0 {
		return &EmptyResultError{Stage: stage, Rows: t.Rows(), Columns: t.Width()}
	}
	return nil
}
