// ABOUTME: Typed failures returned by the backend API client.
// ABOUTME: NetworkError for transport failures, ServerError for non-2xx responses.

package client

import (
	"fmt"
	"net/http"

	"github.com/2389/provadmin/internal/provider"
)

// NetworkError wraps a transport failure (connection refused, timeout, bad body).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Outcome labels the failure for metrics.
func (e *NetworkError) Outcome() string { return "network" }

// ServerError is a non-success HTTP response from the backend.
type ServerError struct {
	Op      string
	Status  int
	Message string

	// notFound is the sentinel a 404 maps to for this operation.
	notFound error
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
}

// Outcome labels the failure for metrics.
func (e *ServerError) Outcome() string { return "server" }

// Is maps HTTP statuses onto the provider error taxonomy.
func (e *ServerError) Is(target error) bool {
	switch e.Status {
	case http.StatusNotFound:
		nf := e.notFound
		if nf == nil {
			nf = provider.ErrNotFound
		}
		return target == nf
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return target == provider.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return target == provider.ErrUnauthorized
	}
	return false
}
