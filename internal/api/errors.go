package api

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrSessionExpired is returned for a 401 on an authenticated request.
	// The unauthorized hook has already run when a caller sees it.
	ErrSessionExpired = errors.New("session expired")
	// ErrRequestFailed matches every *RequestError via errors.Is
	ErrRequestFailed = errors.New("request failed")
)

// RequestError is a failed request other than session expiry. Message is
// meant to be shown to the user verbatim.
type RequestError struct {
	Method  string
	Path    string
	Status  int // 0 when the request never got a response
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s %s failed with status %d", e.Method, e.Path, e.Status)
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
