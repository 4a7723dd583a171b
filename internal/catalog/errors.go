package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPercentage rejects a recalculation before any record changes.
	ErrInvalidPercentage = errors.New("invalid percentage")
	ErrInvalidScope      = errors.New("invalid recalculation scope")
	ErrInvalidFilter     = errors.New("invalid filter")
	// ErrEmptyExport is returned when the view has no entries to export.
	ErrEmptyExport = errors.New("no products to export")
	// ErrMissingHeader means the sheet ends before the header row.
	ErrMissingHeader        = errors.New("header row not found")
	ErrNoValues             = errors.New("no numeric values")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrUnknownField         = errors.New("unknown field")
)

// DecodeError reports a file of an upload batch that could not be read as a
// price list. It aborts the whole batch.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error processing %s: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
