package store

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned when a record id is already present.
	ErrDuplicateID = errors.New("store: duplicate id")

	// ErrNotFound is returned when a record id is absent.
	ErrNotFound = errors.New("store: record not found")
)

// RecordError ties a failure to the record that caused it. Index is the
// position of the record within a BulkInsert batch and -1 otherwise. Err is
// one of ErrDuplicateID, ErrNotFound, *vector.DimensionError or
// *vector.InvalidVectorError.
type RecordError struct {
	Op    string
	ID    string
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("store: %s: record %d (id %q): %v", e.Op, e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("store: %s: id %q: %v", e.Op, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

func recordError(op, id string, index int, err error) error {
	return &RecordError{Op: op, ID: id, Index: index, Err: err}
}
