// ABOUTME: Error taxonomy for provider and restaurant operations.
// ABOUTME: Sentinels are matched with errors.Is by the page and the form.

package provider

import "errors"

var (
	// ErrNotFound indicates the requested provider does not exist.
	ErrNotFound = errors.New("provider not found")

	// ErrRestaurantNotFound indicates the restaurant identity is unknown.
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// ErrValidation indicates the backend rejected the submitted fields.
	ErrValidation = errors.New("provider fields rejected")

	// ErrUnauthorized indicates the session token was missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")
)
