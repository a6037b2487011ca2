package store

import (
	"errors"
	"os"
)

// Reason classifies a failed operation.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonInvalidInput Reason = "invalid-input"
	ReasonUnknownKind  Reason = "unknown-kind"
	ReasonNotFound     Reason = "not-found"
	ReasonIO           Reason = "io"
)

var (
	ErrInvalidDescriptor = errors.New("invalid descriptor")
	ErrUnknownKind       = errors.New("kind must be one of: image, circle, box, polygon")
	ErrFileNotFound      = errors.New("file not found")
)

// Result is returned by every mutating operation of the store.
type Result struct {
	Reason Reason
	Err    error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

func success() Result {
	return Result{}
}

func failure(err error) Result {
	reason := ReasonIO
	switch {
	case errors.Is(err, ErrInvalidDescriptor):
		reason = ReasonInvalidInput
	case errors.Is(err, ErrUnknownKind):
		reason = ReasonUnknownKind
	case errors.Is(err, ErrFileNotFound), errors.Is(err, os.ErrNotExist):
		reason = ReasonNotFound
	}
	return Result{Reason: reason, Err: err}
}
