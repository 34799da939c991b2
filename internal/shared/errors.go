package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrNetwork            = fmt.Errorf("network error")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrBookNotFound       = fmt.Errorf("book not found")

	// Storage errors
	ErrStorage = fmt.Errorf("storage error")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrCancelled       = fmt.Errorf("cancelled by user")
)

// DefaultAPIErrorMessage is used when a failed response carries no error field.
const DefaultAPIErrorMessage = "Something went wrong"

// APIError is returned for responses with a non-2xx status (or a failed envelope).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return DefaultAPIErrorMessage
	}
	return e.Message
}

// Is reports [ErrAPIRequest] as a match.
func (e *APIError) Is(target error) bool { return target == ErrAPIRequest }

// NetworkError is returned when no response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is reports [ErrNetwork] as a match.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ValidationError carries field-level messages from local form validation. It never reaches the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(parts, "; "))
}

// Is reports [ErrValidation] as a match.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ErrorMessage returns the user-facing message for err: the API message for [APIError], err.Error() otherwise.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}
