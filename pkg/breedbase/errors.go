package breedbase

import (
	"github.com/LavishGent/breedbase/internal/types"
)

// Error is the service error carrying a Kind sentinel and the failing operation.
type Error = types.Error

var (
	// ErrValidation marks rejected input. It never triggers a fallback.
	ErrValidation = types.ErrValidation
	// ErrUpstream marks a failed call to an external API.
	ErrUpstream = types.ErrUpstream
	// ErrTimeout marks an upstream call that ran out of time.
	ErrTimeout = types.ErrTimeout
	// ErrNotFound marks an upstream 404 or an empty result.
	ErrNotFound = types.ErrNotFound
	// ErrParse marks an upstream payload that could not be decoded.
	ErrParse = types.ErrParse
	// ErrNoCatalog is returned when the catalog cannot be refreshed and nothing is cached.
	ErrNoCatalog = types.ErrNoCatalog
	// ErrClosed is returned by every operation after Close.
	ErrClosed = types.ErrClosed
)

// Error predicates, matching wrapped errors with errors.Is.
func IsValidation(err error) bool { return types.IsValidation(err) }
func IsNotFound(err error) bool   { return types.IsNotFound(err) }
func IsTimeout(err error) bool    { return types.IsTimeout(err) }
func IsUpstream(err error) bool   { return types.IsUpstream(err) }
func IsParse(err error) bool      { return types.IsParse(err) }

// HTTPStatus maps err to the status code the HTTP surface answers with.
func HTTPStatus(err error) int {
	return types.HTTPStatus(err)
}
