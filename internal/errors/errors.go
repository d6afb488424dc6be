package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/portfolio-tracker/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryUserInput represents user input errors (4xx)
	CategoryUserInput ErrorCategory = "user_input"
	// CategorySystem represents system errors (5xx)
	CategorySystem ErrorCategory = "system"
	// CategoryProvider represents upstream RPC and price feed errors
	CategoryProvider ErrorCategory = "provider"
	// CategoryConfiguration represents missing or invalid configuration
	CategoryConfiguration ErrorCategory = "configuration"
	// CategoryRateLimit represents rate limit errors
	CategoryRateLimit ErrorCategory = "rate_limit"
)

// Error codes shared with API clients and ChainFailure records
const (
	CodeInvalidAddress      = "INVALID_ADDRESS"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeConfigurationError  = "CONFIGURATION_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to a ServiceError
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// NewInvalidAddressError creates an invalid address error
func NewInvalidAddressError(address string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUserInput,
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidAddress,
		Message:    "Invalid Ethereum address",
		Details: map[string]interface{}{
			"address": address,
		},
		Cause: types.ErrInvalidAddress,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(retryAfter int) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryRateLimit,
		StatusCode: http.StatusTooManyRequests,
		Code:       CodeRateLimitExceeded,
		Message:    "rate limit exceeded",
		Details: map[string]interface{}{
			"retryAfter": retryAfter,
		},
	}
}

// NewUpstreamUnavailableError creates an error for an unreachable RPC node or price feed
func NewUpstreamUnavailableError(upstream string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryProvider,
		StatusCode: http.StatusBadGateway,
		Code:       CodeUpstreamUnavailable,
		Message:    fmt.Sprintf("upstream unavailable: %s", upstream),
		Cause:      cause,
		Details: map[string]interface{}{
			"upstream": upstream,
		},
	}
}

// NewConfigurationError creates an error for a chain or component that is not configured
func NewConfigurationError(component string, reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryConfiguration,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeConfigurationError,
		Message:    fmt.Sprintf("%s: %s", component, reason),
		Details: map[string]interface{}{
			"component": component,
		},
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    message,
		Cause:      cause,
	}
}

// Categorize categorizes an existing error
func Categorize(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	var catErr *CategorizedError
	if stderrors.As(err, &catErr) {
		return catErr
	}

	var svcErr *types.ServiceError
	if stderrors.As(err, &svcErr) {
		return categorizeServiceError(svcErr)
	}

	if stderrors.Is(err, types.ErrInvalidAddress) {
		return NewInvalidAddressError("")
	}

	return NewInternalError("unexpected error", err)
}

// categorizeServiceError categorizes a ServiceError
func categorizeServiceError(err *types.ServiceError) *CategorizedError {
	catErr := &CategorizedError{
		Code:    err.Code,
		Message: err.Message,
		Details: err.Details,
	}

	switch err.Code {
	case CodeInvalidAddress:
		catErr.Category = CategoryUserInput
		catErr.StatusCode = http.StatusBadRequest
	case CodeUpstreamUnavailable:
		catErr.Category = CategoryProvider
		catErr.StatusCode = http.StatusBadGateway
	case CodeConfigurationError:
		catErr.Category = CategoryConfiguration
		catErr.StatusCode = http.StatusInternalServerError
	default:
		catErr.Category = CategorySystem
		catErr.StatusCode = http.StatusInternalServerError
	}
	return catErr
}

// GetHTTPStatusCode returns the HTTP status code for an error
func GetHTTPStatusCode(err error) int {
	if catErr := Categorize(err); catErr != nil {
		return catErr.StatusCode
	}
	return http.StatusInternalServerError
}

// IsUserError determines if an error is a user error (4xx)
func IsUserError(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	return catErr.StatusCode >= 400 && catErr.StatusCode < 500
}

// IsDegradable reports whether the error only removes one chain or one
// price set from a response instead of failing the request.
func IsDegradable(err error) bool {
	catErr := Categorize(err)
	if catErr == nil {
		return false
	}

	return catErr.Category == CategoryProvider || catErr.Category == CategoryConfiguration
}
