package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches an AuthError carrying HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when the remote API reports 404.
	ErrNotFound = errors.New("not found")
)

// AuthError is an error reported by the remote API, such as bad
// credentials or an expired token.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// NetworkError wraps a transport failure. Its message is deliberately
// generic; the cause stays reachable through errors.Unwrap.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: could not reach the server", e.Op)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
