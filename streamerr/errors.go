// Package streamerr defines the error taxonomy shared by all stream stages.
//
// Every error a stage returns is an *Error carrying the stage name, the
// operation that failed and one of three kinds:
//
//   - ResourceExhausted: a count or memory bound was reached
//   - Structural: a unit (line, JSON candidate) is larger than allowed
//   - Malformed: the input could not be parsed
//
// Stage errors are terminal: a stage that returned one keeps returning it and
// must be discarded.  Use errors.Is with the sentinel values below to test for
// a specific condition, or KindOf to classify.
package streamerr

import (
	"errors"
	"fmt"
)

// Kind classifies stage errors.
type Kind int

const (
	Unknown Kind = iota
	ResourceExhausted
	Structural
	Malformed
)

func (k Kind) String() string {
	switch k {
	case ResourceExhausted:
		return "resource exhausted"
	case Structural:
		return "structural"
	case Malformed:
		return "malformed input"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per failure condition.
var (
	ErrMaxChunks       = errors.New("maximum number of chunks reached")
	ErrMemoryBound     = errors.New("pending batch exceeds memory bound")
	ErrFileMemoryLimit = errors.New("memory limit exceeded")
	ErrLineTooLong     = errors.New("line too long")
	ErrObjectTooLarge  = errors.New("object too large")
	ErrInvalidJSON     = errors.New("invalid JSON")
	ErrTooManyObjects  = errors.New("too many objects")
	ErrTruncated       = errors.New("unexpected end of input")

	// ErrInvalidConfig is returned by stage constructors, it is not a stage
	// failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

var sentinelKinds = map[error]Kind{
	ErrMaxChunks:       ResourceExhausted,
	ErrMemoryBound:     ResourceExhausted,
	ErrFileMemoryLimit: ResourceExhausted,
	ErrLineTooLong:     Structural,
	ErrObjectTooLarge:  Structural,
	ErrInvalidJSON:     Malformed,
	ErrTooManyObjects:  Malformed,
	ErrTruncated:       Malformed,
}

// An Error is a terminal stage failure.
type Error struct {
	Stage  string
	Op     string
	Kind   Kind
	Err    error
	Detail string
}

// New builds an *Error for the given sentinel.  The kind is derived from the
// sentinel.  Detail is formatted from format and args when format is not empty.
func New(stage, op string, sentinel error, format string, args ...any) *Error {
	e := &Error{
		Stage: stage,
		Op:    op,
		Kind:  sentinelKinds[sentinel],
		Err:   sentinel,
	}
	if format != "" {
		e.Detail = fmt.Sprintf(format, args...)
	}
	return e
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = msg + ": " + e.Detail
	}
	return fmt.Sprintf("%s.%s: %s: %s", e.Stage, e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidConfig reports a configuration field that failed validation.
func InvalidConfig(stage, field string, value int) error {
	return fmt.Errorf("%s: %w: %s must be positive, got %d", stage, ErrInvalidConfig, field, value)
}

// KindOf returns the kind of the first *Error found in err's chain, or
// Unknown.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return Unknown
}

func IsResourceExhausted(err error) bool {
	return KindOf(err) == ResourceExhausted
}

func IsStructural(err error) bool {
	return KindOf(err) == Structural
}

func IsMalformed(err error) bool {
	return KindOf(err) == Malformed
}
