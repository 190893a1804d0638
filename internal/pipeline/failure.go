package pipeline

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/features"
	"github.com/KaramelBytes/tabloom-cli/internal/loader"
)

// Failure kinds, used by boundaries to pick exit codes or HTTP statuses.
const (
	KindUnreadable = "unreadable"
	KindEmpty      = "empty"
	KindConfig     = "config"
	KindInternal   = "internal"
)

// Failure is the structured result of a failed run. It serialises as
// {"error": "<message>"}.
type Failure struct {
	RunID   string `json:"-"`
	// Stage is the last state the run reached before failing.
	Stage   State  `json:"-"`
	Kind    string `json:"-"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// failure classifies err raised while the run was in stage.
func failure(runID string, stage State, err error) *Failure {
	f := &Failure{RunID: runID, Stage: stage, Kind: KindInternal, Message: err.Error(), Err: err}
	var (
		ue *loader.UnreadableFileError
		ee *features.EmptyResultError
		ce *config.ConfigError
	)
	switch {
	case errors.As(err, &ue):
		f.Kind = KindUnreadable
	case errors.As(err, &ee):
		f.Kind = KindEmpty
	case errors.As(err, &ce):
		f.Kind = KindConfig
	}
	return f
}

// AsFailure extracts the *Failure from an error returned by this package.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := errors.As(err, &f)
	return f, ok
}

func panicError(v any) error { return fmt.Errorf("internal error: %v", v) }
