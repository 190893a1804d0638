package loader

import "fmt"

// UnreadableFileError reports that no format, encoding or delimiter produced
// a usable table.
type UnreadableFileError struct {
	Path   string
	Reason string
	Err    error
}

func (e *UnreadableFileError) Error() string {
	msg := fmt.Sprintf("unreadable file %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

func unreadable(path, reason string, err error) error {
	return &UnreadableFileError{Path: path, Reason: reason, Err: err}
}
