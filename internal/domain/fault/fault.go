// Package fault defines the error taxonomy surfaced by the pipeline.
//
// Every fatal failure carries one Kind and the offending datum so the
// process can print a single diagnostic line. Degenerate rounds are
// reported with the same type but are never returned as errors; they are
// logged and counted.
package fault

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Use errors.Is against these.
var (
	ErrConfig          = errors.New("ConfigError")
	ErrIngest          = errors.New("IngestError")
	ErrEmptyInput      = errors.New("EmptyInputError")
	ErrWrite           = errors.New("WriteError")
	ErrDegenerateRound = errors.New("DegenerateRoundWarning")
)

// Error ties a kind to the datum that triggered it.
type Error struct {
	Kind  error
	Datum string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Datum != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Datum, e.Err)
	case e.Datum != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Datum)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

// Unwrap exposes the cause.
func (e *Error) Unwrap() error { return e.Err }

// Config reports an unknown vocabulary value or invalid setting.
func Config(datum string, err error) error { return &Error{Kind: ErrConfig, Datum: datum, Err: err} }

// Ingest reports a missing column or unparseable cell.
func Ingest(datum string, err error) error { return &Error{Kind: ErrIngest, Datum: datum, Err: err} }

// EmptyInput reports that no rows survived filtering.
func EmptyInput(datum string) error { return &Error{Kind: ErrEmptyInput, Datum: datum} }

// Write reports an unwritable output sink.
func Write(datum string, err error) error { return &Error{Kind: ErrWrite, Datum: datum, Err: err} }

// Degenerate describes a round that collapsed to one bucket.
func Degenerate(datum string) error { return &Error{Kind: ErrDegenerateRound, Datum: datum} }

// KindOf returns the kind name of err, or "Error" when err carries no kind.
func KindOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind.Error()
	}
	return "Error"
}
