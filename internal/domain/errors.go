package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already exists")
	// ErrSuperseded marks a response that arrived after a newer request was issued.
	ErrSuperseded = errors.New("superseded by a newer request")
)

const (
	genericFailure = "operation failed"
	retryLater     = "please try again later"
)

// ValidationError is raised before any network call is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// TransitionError is an attempt to move a listing along an edge the workflow does not have.
type TransitionError struct {
	HotelID  int64
	From, To HotelStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("hotel %d: illegal transition %s -> %s", e.HotelID, e.From, e.To)
}

// AppError is a well-formed response with success=false.
type AppError struct {
	Msg string
}

func (e *AppError) Error() string {
	if e.Msg == "" {
		return genericFailure
	}
	return e.Msg
}

// TransportError covers timeouts, connection failures and non-2xx responses
// without a readable envelope.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: remote %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage converts err into the text shown to the operator.
func UserMessage(err error) string {
	var (
		ve *ValidationError
		te *TransitionError
		ae *AppError
		tr *TransportError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Msg
	case errors.As(err, &te):
		return fmt.Sprintf("cannot move a %s hotel to %s", te.From.Label(), te.To.Label())
	case errors.As(err, &ae):
		return ae.Error()
	case errors.Is(err, ErrUnauthorized):
		return "session expired, please log in again"
	case errors.Is(err, ErrForbidden):
		return "you do not have access to this page"
	case errors.Is(err, ErrNotFound):
		return "hotel not found"
	case errors.Is(err, ErrConflict):
		return "this email is already registered"
	case errors.As(err, &tr):
		return "network error, " + retryLater
	}
	return retryLater
}
