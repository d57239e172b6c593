// Package apperr defines the typed errors services return. The HTTP layer
// turns them into a status code and the numeric evidence error code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindUnauthorized
	KindBadRequest
	// KindUpstreamUnavailable means the upstream could not be reached or
	// failed on its side. Retrying may help.
	KindUpstreamUnavailable
	// KindUnableToParseResponse means the upstream answered with a payload
	// of the wrong shape. Retrying will not help.
	KindUnableToParseResponse
)

// Evidence error codes reported to the harvesting caller.
const (
	CodeUpstreamUnavailable   = 1001
	CodeInvalidInput          = 1002
	CodeNotFound              = 1003
	CodeUnableToParseResponse = 1004
)

var kindInfo = map[Kind]struct {
	status int
	code   int
}{
	KindNotFound:              {http.StatusNotFound, CodeNotFound},
	KindValidation:            {http.StatusBadRequest, CodeInvalidInput},
	KindBadRequest:            {http.StatusBadRequest, CodeInvalidInput},
	KindUnauthorized:          {http.StatusUnauthorized, 0},
	KindUpstreamUnavailable:   {http.StatusServiceUnavailable, CodeUpstreamUnavailable},
	KindUnableToParseResponse: {http.StatusBadGateway, CodeUnableToParseResponse},
}

// Error is a domain error.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Op      string
	Err     error
	Details any
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to a response status. Unknown kinds are a 500.
func (e *Error) HTTPStatus() int {
	if info, ok := kindInfo[e.Kind]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// WithOp sets the failing operation and returns e.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails attaches response details and returns e.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// New creates an error of kind carrying that kind's evidence code.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Code: kindInfo[kind].code, Message: message, Err: cause}
}

func NotFound(message string) *Error     { return New(KindNotFound, message, nil) }
func Validation(message string) *Error   { return New(KindValidation, message, nil) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message, nil) }
func BadRequest(message string) *Error   { return New(KindBadRequest, message, nil) }

// UpstreamUnavailable creates a transient upstream error.
func UpstreamUnavailable(message string, cause error) *Error {
	return New(KindUpstreamUnavailable, message, cause)
}

// UnableToParseResponse creates a permanent upstream payload error.
func UnableToParseResponse(message string, cause error) *Error {
	return New(KindUnableToParseResponse, message, cause)
}

// As extracts the *Error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetKind returns the kind of the *Error in err's chain, or KindUnknown.
func GetKind(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries an *Error of kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// IsTransient reports whether err is worth retrying. A joined error is
// transient when any of its parts is.
func IsTransient(err error) bool {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Kind == KindUpstreamUnavailable
		case interface{ Unwrap() []error }:
			for _, part := range e.Unwrap() {
				if IsTransient(part) {
					return true
				}
			}
			return false
		}
		err = errors.Unwrap(err)
	}
	return false
}
