// Package apperr holds the error kinds shared across the service. Callers wrap
// them with fmt.Errorf("...: %w", ...) and match with errors.Is.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput marks malformed caller input, such as a polyline with
	// fewer than two points or a non-finite coordinate.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable marks a failed call to the routing or geocoding
	// provider. It is surfaced to the caller and never retried here.
	ErrProviderUnavailable = errors.New("provider unavailable")

	ErrNotFound = errors.New("not found")
)

// HTTPStatus maps err onto the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
