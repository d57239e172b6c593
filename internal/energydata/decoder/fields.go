package decoder

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Field types for emsRow. Each one parses with the invariant culture the
// file is written in and reports failures as *valueError.

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

type valueError struct {
	value string
	err   error
}

func (e *valueError) Error() string {
	return strconv.Quote(e.value) + ": " + e.err.Error()
}

func (e *valueError) Unwrap() error { return e.err }

var (
	errNotBoolean = errors.New("not a boolean")
	errNotDate    = errors.New("unrecognized date format")
)

// optionalInt is an integer column where blank means unknown.
type optionalInt struct {
	value *int
}

func (f *optionalInt) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		f.value = nil
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return &valueError{value: s, err: err}
	}
	f.value = &n
	return nil
}

// number is a required decimal with a '.' separator.
type number float64

func (f *number) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return &valueError{value: s, err: err}
	}
	*f = number(v)
	return nil
}

// flag is a required boolean written as True/False or 1/0.
type flag bool

func (f *flag) UnmarshalCSV(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		*f = true
	case "false", "0":
		*f = false
	default:
		return &valueError{value: s, err: errNotBoolean}
	}
	return nil
}

// optionalDate is a date column where blank means unknown.
type optionalDate struct {
	value *time.Time
}

func (f *optionalDate) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		f.value = nil
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			f.value = &ts
			return nil
		}
	}
	return &valueError{value: s, err: errNotDate}
}
