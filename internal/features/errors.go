package features

import (
	"errors"
	"fmt"
)

// ErrKeptAsText marks a text column that reaches the output as cleaned text
// rather than numeric features.
var ErrKeptAsText = errors.New("left as text, feature matrix is not purely numeric")

// EmptyResultError reports a transformation that left no usable columns or rows.
type EmptyResultError struct {
	Stage   string
	Rows    int
	Columns int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no data left after %s: %d rows, %d columns", e.Stage, e.Rows, e.Columns)
}

// ColumnOperationWarning records a stage that failed for one column. The
// column is skipped for that stage and processing continues.
type ColumnOperationWarning struct {
	Column string
	Stage  string
	Err    error
}

func (w *ColumnOperationWarning) Error() string {
	return fmt.Sprintf("%s: column %q skipped: %v", w.Stage, w.Column, w.Err)
}

func (w *ColumnOperationWarning) Unwrap() error { return w.Err }
