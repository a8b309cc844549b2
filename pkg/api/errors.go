package api

import (
	"errors"
	"fmt"
)

// ConnectivityError reports that the daemon could not be reached at all.
type ConnectivityError struct {
	Method string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("api: %s: daemon unreachable: %v", e.Method, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// ProtocolError reports that the daemon answered but the request failed at
// the HTTP level, or the answer could not be understood.
type ProtocolError struct {
	Method     string
	StatusCode int
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api: %s: status %d: %v", e.Method, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api: %s: status %d", e.Method, e.StatusCode)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// DomainError is a logical failure reported inside a successful response,
// for example a rejected add_folder.
type DomainError struct {
	Method  string
	Code    int
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// IsFatal reports whether err is a connectivity or protocol failure. Such
// failures end the polling session when they happen during a tick.
func IsFatal(err error) bool {
	var ce *ConnectivityError
	var pe *ProtocolError
	return errors.As(err, &ce) || errors.As(err, &pe)
}

// AsDomain extracts a DomainError from err.
func AsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
