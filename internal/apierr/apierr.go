// Package apierr carries errors that must surface as a specific HTTP
// status. Services wrap slip and user lookups in these; handlers unwrap
// them with errors.As and fall back to 400 for everything else.
package apierr

import (
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// NotFound marks a lookup miss. Ownership checks reuse it so a foreign
// resource is indistinguishable from a missing one.
func NotFound(err error) *Error {
	return New(http.StatusNotFound, "not_found", err)
}
