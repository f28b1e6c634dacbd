package models

import (
	"errors"
	"fmt"
)

var (
	// ErrDataLoad reports a source that could not be opened or read.
	ErrDataLoad = errors.New("data load error")
	// ErrDataFormat reports a missing required column or an unparseable value.
	ErrDataFormat = errors.New("data format error")
	// ErrEmptyView is returned by scalar aggregates asked about zero listings.
	ErrEmptyView = errors.New("empty view")
)

// FormatError describes a single value that failed to parse.
type FormatError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s: row %d column %q: cannot parse %q", ErrDataFormat, e.Row, e.Column, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match both ErrDataFormat and the parse cause.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDataFormat}
	}
	return []error{ErrDataFormat, e.Err}
}
