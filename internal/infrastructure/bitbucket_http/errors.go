package bitbucket_http

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed - check username and app password")
	ErrRateLimited          = errors.New("rate limited - please wait before retrying")
)

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return "resource not found: " + e.Resource }

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string { return fmt.Sprintf("api error: status %d: %s", e.Status, e.Body) }

// TransportError wraps failures below HTTP: dial, TLS, timeouts, broken bodies.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "http error: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }
