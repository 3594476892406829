package compression

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when there is nothing to compress. No output
	// file is written.
	ErrEmptyInput = errors.New("input is empty")

	// ErrMissingCode means the encoder met a byte without a code. The table is
	// always derived from the same data, so this is a bug.
	ErrMissingCode = errors.New("missing code for symbol")

	ErrTruncatedFile   = errors.New("truncated file")
	ErrMalformedTable  = errors.New("malformed code table")
	ErrMalformedStream = errors.New("malformed bit stream")

	ErrNotHzip = errors.New("not an " + Extension + " file")
)

// IOError wraps a failed read or write of the file at Path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
