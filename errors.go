package btre

import (
	"errors"
	"fmt"
	"regexp/syntax"
)

// ErrNoMatch is returned by Find/FindRunes when the search completes
// without error but finds nothing — an ordinary outcome, not a fault.
var ErrNoMatch = errors.New("btre: no match")

// ErrTimeout is returned when a search exceeds the timeout passed to
// Find/FindRunes/NextMatch.
var ErrTimeout = errors.New("btre: match timed out")

// ParseError wraps a failure to parse a pattern. Unwrap exposes
// the underlying *syntax.Error, the same errors.Unwrap convention the
// teacher's CompileError uses for its wrapped parser errors.
type ParseError struct {
	Pattern string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("btre: parse %q: %v", e.Pattern, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// asParseError wraps err, unwrapping it to the *syntax.Error the stdlib
// parser produced when one is present so callers can inspect syntax.ErrorCode.
func asParseError(pattern string, err error) error {
	var se *syntax.Error
	if errors.As(err, &se) {
		return &ParseError{Pattern: pattern, Err: se}
	}
	return &ParseError{Pattern: pattern, Err: err}
}

// InternalError reports a writer or runner invariant violation — always a
// bug in this module, never a consequence of the input pattern or text.
type InternalError struct {
	Op     string
	Detail string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("btre: internal error in %s: %s", e.Op, e.Detail)
}
