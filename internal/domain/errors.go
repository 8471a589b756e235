package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyResultAfterFilter signals that the pre-filters removed every row.
// It is a terminal state that asks the user to relax the filters, not a failure
// of the input itself.
var ErrEmptyResultAfterFilter = errors.New("no transactions left after applying filters")

// IngestionError reports a file that could not be read or parsed into a table.
type IngestionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("ingest %s: %s", e.Path, e.Reason)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// MissingColumnError reports a required column absent after header normalization.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}
