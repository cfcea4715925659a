package errs

import (
	"errors"
	"fmt"

	"docnav/internal/models"
)

// Kind classifies an error for the wire payload.
type Kind string

const (
	KindValidation       Kind = "validation_error"
	KindProvider         Kind = "provider_error"
	KindIndexUnavailable Kind = "index_unavailable"
	KindBuildAborted     Kind = "build_aborted"
	KindInternal         Kind = "internal_error"
)

var (
	ErrEmptyQuestion     = errors.New("question is empty")
	ErrIndexNotFound     = errors.New("index artifact not found")
	ErrIndexCorrupt      = errors.New("index artifact is corrupt")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Error wraps a failure with its kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

func Provider(op string, err error) *Error {
	return &Error{Kind: KindProvider, Op: op, Err: err}
}

func IndexUnavailable(op string, err error) *Error {
	return &Error{Kind: KindIndexUnavailable, Op: op, Err: err}
}

func BuildAborted(op string, err error) *Error {
	return &Error{Kind: KindBuildAborted, Op: op, Err: err}
}

// KindOf extracts the kind from anywhere in the chain, defaulting to internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Response maps an error to the user-visible payload. Provider internals
// stay out of the message; only the kind and a generic description leak.
func Response(err error) models.ErrorResponse {
	switch KindOf(err) {
	case KindValidation:
		var e *Error
		errors.As(err, &e)
		return models.ErrorResponse{Error: string(KindValidation), Message: e.Msg}
	case KindProvider:
		return models.ErrorResponse{Error: string(KindProvider), Message: "A model provider call failed. Please try again later."}
	case KindIndexUnavailable:
		return models.ErrorResponse{Error: string(KindIndexUnavailable), Message: "The document index could not be loaded."}
	case KindBuildAborted:
		return models.ErrorResponse{Error: string(KindBuildAborted), Message: "Index build aborted; no partial index was published."}
	default:
		return models.ErrorResponse{Error: string(KindInternal), Message: "An error occurred processing your request."}
	}
}
