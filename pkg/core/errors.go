package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingReference is returned when a worksheet has no reference sequence.
	ErrMissingReference = errors.New("no reference sequence")

	// ErrEmptyGroupSet is returned when no fragment carries a left cleavage residue.
	ErrEmptyGroupSet = errors.New("no cleavage groups")
)

// SheetError reports a failure confined to a single worksheet.
type SheetError struct {
	Sheet string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// ValidationError represents an error found while validating input layout or options.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}
