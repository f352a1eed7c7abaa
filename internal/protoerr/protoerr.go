// Package protoerr defines the error kinds surfaced by the crypto core, so
// callers can discriminate failure handling with errors.As instead of
// string matching.
package protoerr

import (
	"errors"
	"fmt"
)

// Kind names one of the core's error categories.
type Kind int

const (
	FormatError Kind = iota
	SignatureInvalid
	DecryptionFailed
	UnknownHandle
	CeremonyMismatch
	GapDetected
	ChainAdvanceRefused
	TimeoutExpired
	PrimitiveFailure
)

func (k Kind) String() string {
	switch k {
	case FormatError:
		return "FormatError"
	case SignatureInvalid:
		return "SignatureInvalid"
	case DecryptionFailed:
		return "DecryptionFailed"
	case UnknownHandle:
		return "UnknownHandle"
	case CeremonyMismatch:
		return "CeremonyMismatch"
	case GapDetected:
		return "GapDetected"
	case ChainAdvanceRefused:
		return "ChainAdvanceRefused"
	case TimeoutExpired:
		return "TimeoutExpired"
	case PrimitiveFailure:
		return "PrimitiveFailure"
	default:
		return "UnknownErrorKind"
	}
}

// Error wraps a Kind and an optional cause. Callers discriminate with
// Is(err, kind), or with errors.As into a *protoerr.Error variable and then
// inspect Kind.
type Error struct {
	Kind  Kind
	Cause error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Cause: fmt.Errorf("%s", msg)}
}

func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}
