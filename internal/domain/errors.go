package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the matrix build and route resolution.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindProvider   ErrorKind = "provider"
	KindNoRoute    ErrorKind = "no_route"
	KindTimeout    ErrorKind = "timeout"
	KindNetwork    ErrorKind = "network"
	KindInternal   ErrorKind = "internal"
	KindBuildAbort ErrorKind = "build_abort"
)

// Error is a classified failure. Status and Body are set when an upstream
// provider answered with a non-success status.
type Error struct {
	Kind   ErrorKind
	Op     string
	Msg    string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	s := string(e.Kind)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Status != 0 {
		s += fmt.Sprintf(" (status=%d body=%q)", e.Status, e.Body)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool { return KindOf(err) == kind }

func ValidationError(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

func ProviderError(op string, status int, body string) *Error {
	return &Error{Kind: KindProvider, Op: op, Msg: "upstream returned non-success status", Status: status, Body: body}
}

func NoRouteFound(op string) *Error {
	return &Error{Kind: KindNoRoute, Op: op, Msg: "no route found"}
}

func TimeoutError(op string, err error) *Error {
	return &Error{Kind: KindTimeout, Op: op, Msg: "request timed out", Err: err}
}

func NetworkError(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

func InternalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// BuildAbort wraps cause as a fatal matrix-build failure, keeping any
// upstream status and body so the operator sees what the provider said.
func BuildAbort(op, msg string, cause error) *Error {
	e := &Error{Kind: KindBuildAbort, Op: op, Msg: msg, Err: cause}
	var de *Error
	if errors.As(cause, &de) {
		e.Status = de.Status
		e.Body = de.Body
	}
	return e
}
