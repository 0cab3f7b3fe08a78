package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Cache layer errors.
var (
	ErrCacheMiss           = errors.New("cache: key not found")
	ErrBackendUnavailable  = errors.New("cache: backend unavailable")
	ErrCircuitOpen         = errors.New("cache: circuit breaker open")
	ErrClosed              = errors.New("cache: backend closed")
	ErrBulkheadFull        = errors.New("cache: bulkhead at capacity")
	ErrBulkheadTimeout     = errors.New("cache: bulkhead timeout")
	ErrSerializationFailed = errors.New("cache: serialization failed")
	ErrShutdownTimeout     = errors.New("cache: shutdown timeout waiting for background operations")
)

// Service error kinds. Every *Error carries exactly one of these as its Kind.
var (
	ErrValidation = errors.New("validation failed")
	ErrUpstream   = errors.New("upstream request failed")
	ErrTimeout    = errors.New("upstream request timed out")
	ErrNotFound   = errors.New("not found")
	ErrParse      = errors.New("malformed upstream response")
	ErrNoCatalog  = errors.New("catalog: no data available")
)

// CacheError records a failed backend operation on a key.
type CacheError struct {
	Op      string
	Key     string
	Backend string
	Err     error
}

func (e *CacheError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cache %s on %s [%s]: %v", e.Op, e.Backend, e.Key, e.Err)
	}
	return fmt.Sprintf("cache %s on %s: %v", e.Op, e.Backend, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// NewCacheError wraps err with the operation, key and backend.
func NewCacheError(op, key, backend string, err error) *CacheError {
	return &CacheError{
		Op:      op,
		Key:     key,
		Backend: backend,
		Err:     err,
	}
}

// Error is a classified failure from the catalog, lookup, narrative or upstream layers.
// errors.Is matches both the Kind sentinel and the wrapped cause.
type Error struct {
	Kind error
	// Op names the failing operation, e.g. "wiki.summary".
	Op string
	// Status is the upstream HTTP status, zero when not applicable.
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	prefix := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Status != 0 {
		prefix = fmt.Sprintf("%s (HTTP %d)", prefix, e.Status)
	}
	if msg == "" {
		return prefix
	}
	return prefix + ": " + msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewValidationError reports bad caller input.
func NewValidationError(op, msg string) *Error {
	return &Error{Kind: ErrValidation, Op: op, Msg: msg}
}

// NewUpstreamError reports a failed upstream exchange. Status is zero for transport failures.
func NewUpstreamError(op string, status int, err error) *Error {
	return &Error{Kind: ErrUpstream, Op: op, Status: status, Err: err}
}

// NewNotFoundError reports that an upstream has nothing for the request.
func NewNotFoundError(op, msg string) *Error {
	return &Error{Kind: ErrNotFound, Op: op, Status: http.StatusNotFound, Msg: msg}
}

// NewTimeoutError reports an expired bound on an upstream call.
func NewTimeoutError(op string, err error) *Error {
	return &Error{Kind: ErrTimeout, Op: op, Err: err}
}

// NewParseError reports an upstream reply that could not be decoded.
func NewParseError(op string, err error) *Error {
	return &Error{Kind: ErrParse, Op: op, Err: err}
}

func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

func IsBackendUnavailable(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsFallbackEligible reports whether a lookup may move on to the next locale after err.
// Validation and parse failures surface directly.
func IsFallbackEligible(err error) bool {
	if err == nil {
		return false
	}
	if IsValidation(err) || IsParse(err) {
		return false
	}
	return IsNotFound(err) || IsUpstream(err)
}

// HTTPStatus maps an error to the status code exposed by the HTTP surface.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNoCatalog):
		return http.StatusServiceUnavailable
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case IsParse(err), IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
