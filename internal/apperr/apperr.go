package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so the HTTP boundary can pick a status code
// without inspecting message text.
type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	Forbidden
	NotFound
	Validation
	Conflict
	InsufficientStock
)

// Error is a classified domain error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error with a fixed message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf returns a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// StockError reports a failed stock-sufficiency check, naming the offending
// product and batch together with what is actually available.
type StockError struct {
	ProductID string
	BatchID   int64
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s, batch %d (available %d, requested %d)",
		e.ProductID, e.BatchID, e.Available, e.Requested)
}

// KindOf reports the Kind of err, defaulting to Internal for unclassified errors.
func KindOf(err error) Kind {
	var se *StockError
	if errors.As(err, &se) {
		return InsufficientStock
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}
