package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-tracker/internal/types"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *CategorizedError
		category ErrorCategory
		status   int
		code     string
	}{
		{"invalid address", NewInvalidAddressError("0x1"), CategoryUserInput, http.StatusBadRequest, CodeInvalidAddress},
		{"upstream", NewUpstreamUnavailableError("ethereum", stderrors.New("dial tcp")), CategoryProvider, http.StatusBadGateway, CodeUpstreamUnavailable},
		{"configuration", NewConfigurationError("arbitrum", "no RPC endpoint configured"), CategoryConfiguration, http.StatusInternalServerError, CodeConfigurationError},
		{"internal", NewInternalError("boom", nil), CategorySystem, http.StatusInternalServerError, CodeInternalError},
		{"rate limit", NewRateLimitError(1), CategoryRateLimit, http.StatusTooManyRequests, CodeRateLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Contains(t, tt.err.Error(), tt.code)
		})
	}
}

func TestInvalidAddressMessage(t *testing.T) {
	err := NewInvalidAddressError("nope")
	assert.Equal(t, "Invalid Ethereum address", err.Message)
	assert.True(t, stderrors.Is(err, types.ErrInvalidAddress))
}

func TestCategorize(t *testing.T) {
	assert.Nil(t, Categorize(nil))

	upstream := NewUpstreamUnavailableError("polygon", nil)
	wrapped := fmt.Errorf("fetch: %w", upstream)
	assert.Same(t, upstream, Categorize(wrapped))

	catErr := Categorize(types.ErrInvalidAddress)
	require.NotNil(t, catErr)
	assert.Equal(t, http.StatusBadRequest, catErr.StatusCode)

	catErr = Categorize(&types.ServiceError{Code: CodeConfigurationError, Message: "missing"})
	assert.Equal(t, CategoryConfiguration, catErr.Category)

	plain := stderrors.New("plain")
	catErr = Categorize(plain)
	assert.Equal(t, CodeInternalError, catErr.Code)
	assert.ErrorIs(t, catErr, plain)
}

func TestClassification(t *testing.T) {
	assert.True(t, IsUserError(NewInvalidAddressError("x")))
	assert.False(t, IsUserError(NewInternalError("x", nil)))

	assert.True(t, IsDegradable(NewUpstreamUnavailableError("bsc", nil)))
	assert.True(t, IsDegradable(NewConfigurationError("bsc", "x")))
	assert.False(t, IsDegradable(NewInternalError("x", nil)))
	assert.False(t, IsDegradable(nil))

	assert.Equal(t, http.StatusBadGateway, GetHTTPStatusCode(NewUpstreamUnavailableError("bsc", nil)))
}
