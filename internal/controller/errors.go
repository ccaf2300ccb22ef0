package controller

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery       = errors.New("empty query")
	ErrNoSourceSelected = errors.New("no source selected")
	ErrSearchInFlight   = errors.New("search already in flight")
)

// RequestFailedError covers network failures, non-success statuses and
// undecodable replies.
type RequestFailedError struct {
	Reason string
	Err    error
}

func (e *RequestFailedError) Error() string { return "search request failed: " + e.Reason }

func (e *RequestFailedError) Unwrap() error { return e.Err }

// Message returns the text shown to the user for err.
func Message(err error) string {
	var rf *RequestFailedError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return "Please enter a search query"
	case errors.Is(err, ErrNoSourceSelected):
		return "Please select at least one source"
	case errors.Is(err, ErrSearchInFlight):
		return "A search is already in progress"
	case errors.As(err, &rf):
		return fmt.Sprintf("Error: %s. Please check the API endpoint and try again.", rf.Reason)
	default:
		return "Error: " + err.Error()
	}
}
