// Package pipeline sequences loading, profiling and feature transformation
// for one file per run and reports fatal problems as a *Failure.
package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/tabloom-cli/internal/analysis"
	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/features"
	"github.com/KaramelBytes/tabloom-cli/internal/loader"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
	"github.com/KaramelBytes/tabloom-cli/internal/utils"
)

// Options configures a Pipeline. The zero value profiles with defaults and
// transforms with config.DefaultPreprocessing.
type Options struct {
	Loader  loader.Options
	Profile analysis.Options
	// Preprocessing is used by Transform; nil means the defaults.
	Preprocessing *config.Preprocessing
	// Importances are optional feature-importance scores for the metrics summary.
	Importances []float64
	Logger      *zerolog.Logger
}

// Pipeline runs files through the stages. It holds no per-run state and is
// safe for concurrent use.
type Pipeline struct {
	opt Options
	log zerolog.Logger
}

// New returns a Pipeline.
func New(opt Options) *Pipeline {
	p := &Pipeline{opt: opt, log: zerolog.Nop()}
	if opt.Logger != nil {
		p.log = *opt.Logger
	}
	if p.opt.Profile.SampleRows == 0 && !p.opt.Profile.TopWords {
		p.opt.Profile = analysis.DefaultOptions()
	}
	return p
}

// Run tracks one file through the stages.
type Run struct {
	ID      string
	Path    string
	History []State
	state   State
	log     zerolog.Logger
}

// State returns the current stage.
func (r *Run) State() State { return r.state }

func (p *Pipeline) newRun(path string) *Run {
	id := uuid.NewString()
	return &Run{
		ID:      id,
		Path:    path,
		History: []State{Pending},
		state:   Pending,
		log:     p.log.With().Str("run_id", id).Str("file", filepath.Base(path)).Logger(),
	}
}

// fail moves r to Failed and builds the Failure for err.
func (r *Run) fail(err error) error {
	f := failure(r.ID, r.state, err)
	r.state = Failed
	r.History = append(r.History, Failed)
	r.log.Error().Str("stage", string(f.Stage)).Str("kind", f.Kind).Msg(f.Message)
	return f
}

// ProfileResult is the outcome of a profiling run.
type ProfileResult struct {
	RunID   string                      `json:"runId"`
	Profile *analysis.DatasetProfile    `json:"profile"`
	Metrics analysis.RecommenderMetrics `json:"metrics"`
	Run     *Run                        `json:"-"`
}

// Status is the outcome of a transform run.
type Status struct {
	Status         string   `json:"status"`
	File           string   `json:"file"`
	OriginalShape  [2]int   `json:"original_shape"`
	ProcessedShape [2]int   `json:"processed_shape"`
	Columns        []string `json:"columns"`
	RunID          string   `json:"run_id"`
	Warnings       []string `json:"warnings,omitempty"`
	Run            *Run     `json:"-"`
}

func (p *Pipeline) load(r *Run) (*table.Table, error) {
	opt := p.opt.Loader
	opt.Logger = &r.log
	t, err := loader.Load(r.Path, opt)
	if err != nil {
		return nil, err
	}
	if err := r.advance(Loaded); err != nil {
		return nil, err
	}
	r.log.Info().Int("rows", t.Rows()).Int("columns", t.Width()).Msg("loaded")
	return t, nil
}

func (p *Pipeline) profile(r *Run, t *table.Table) (*analysis.DatasetProfile, error) {
	opt := p.opt.Profile
	if opt.Name == "" {
		opt.Name = filepath.Base(r.Path)
	}
	prof := analysis.Profile(t, opt)
	if err := r.advance(Profiled); err != nil {
		return nil, err
	}
	r.log.Info().Str("content_type", prof.ContentType).Str("target", prof.Target()).Msg("profiled")
	return prof, nil
}

// Profile loads path and profiles it. A non-nil error is always a *Failure.
func (p *Pipeline) Profile(path string) (res *ProfileResult, err error) {
	r := p.newRun(path)
	defer func() {
		if v := recover(); v != nil {
			res, err = nil, r.fail(panicError(v))
		}
	}()

	t, err := p.load(r)
	if err != nil {
		return nil, r.fail(err)
	}
	prof, err := p.profile(r, t)
	if err != nil {
		return nil, r.fail(err)
	}
	if err := r.advance(Done); err != nil {
		return nil, r.fail(err)
	}
	return &ProfileResult{
		RunID:   r.ID,
		Profile: prof,
		Metrics: analysis.Summarize(prof, p.opt.Importances),
		Run:     r,
	}, nil
}

// Transform loads path, applies the preprocessing configuration and writes
// the feature matrix to output as CSV. A non-nil error is always a *Failure.
func (p *Pipeline) Transform(path, output string) (st *Status, err error) {
	r := p.newRun(path)
	defer func() {
		if v := recover(); v != nil {
			st, err = nil, r.fail(panicError(v))
		}
	}()

	cfg := config.DefaultPreprocessing()
	if p.opt.Preprocessing != nil {
		cfg = *p.opt.Preprocessing
	}
	if err := cfg.Validate(); err != nil {
		return nil, r.fail(err)
	}

	t, err := p.load(r)
	if err != nil {
		return nil, r.fail(err)
	}
	if _, err := p.profile(r, t); err != nil {
		return nil, r.fail(err)
	}
	res, err := features.Transform(t, cfg, features.Options{Logger: &r.log})
	if err != nil {
		return nil, r.fail(err)
	}
	if err := r.advance(Transformed); err != nil {
		return nil, r.fail(err)
	}
	if err := WriteCSV(res.Table, output); err != nil {
		return nil, r.fail(err)
	}
	if err := r.advance(Done); err != nil {
		return nil, r.fail(err)
	}

	st = &Status{
		Status:         "success",
		File:           output,
		OriginalShape:  res.OriginalShape,
		ProcessedShape: res.Shape(),
		Columns:        res.Table.Names(),
		RunID:          r.ID,
		Run:            r,
	}
	for _, w := range res.Warnings {
		st.Warnings = append(st.Warnings, w.Error())
	}
	r.log.Info().Ints("shape", st.ProcessedShape[:]).Int("warnings", len(st.Warnings)).Msg("transformed")
	return st, nil
}

// WriteCSV writes t as comma-separated text with a header row, creating the
// parent directory when needed.
func WriteCSV(t *table.Table, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	df := dataframe.LoadRecords(t.Records(),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return fmt.Errorf("build output frame: %w", df.Err)
	}
	var buf bytes.Buffer
	if err := df.WriteCSV(&buf); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
