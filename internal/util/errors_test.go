package util

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		field          string
		message        string
		cause          error
		expectedString string
	}{
		{
			name:           "with field",
			field:          "services[0].path",
			message:        "invalid regular expression",
			expectedString: "config error at services[0].path: invalid regular expression",
		},
		{
			name:           "without field",
			message:        "empty document",
			expectedString: "config error: empty document",
		},
		{
			name:           "with cause",
			field:          "services[1].target_port",
			message:        "must be numeric",
			cause:          errors.New("strconv.Atoi: parsing \"http\": invalid syntax"),
			expectedString: "config error at services[1].target_port: must be numeric: strconv.Atoi: parsing \"http\": invalid syntax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var err *ConfigError
			if tt.cause != nil {
				err = NewConfigErrorWithCause(tt.field, tt.message, tt.cause)
			} else {
				err = NewConfigError(tt.field, tt.message)
			}

			assert.Equal(t, tt.expectedString, err.Error())
			assert.Equal(t, tt.cause, err.Unwrap())
			assert.ErrorIs(t, err, ErrConfigInvalid)
		})
	}
}

func TestConfigError_IsMatchesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := fmt.Errorf("load: %w", NewConfigErrorWithCause("", "read failed", cause))

	assert.ErrorIs(t, err, cause)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestRouteNotFoundError(t *testing.T) {
	t.Parallel()

	err := NewRouteNotFoundError("/missing")

	assert.Equal(t, `no route found for path "/missing"`, err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, errors.Is(err, &RouteNotFoundError{}))
	assert.False(t, errors.Is(err, ErrBackendUnavail))
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()

	err := NewTimeoutError("authorize", 2*time.Second, nil)

	assert.Equal(t, "authorize timed out after 2s", err.Error())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Nil(t, err.Unwrap())
	assert.False(t, errors.Is(err, ErrBackendUnavail))
}

func TestRouteNotFoundError_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("resolve: %w", NewRouteNotFoundError("/api%2Fsecret"))

	var notFound *RouteNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, "/api%2Fsecret", notFound.Path)
	assert.ErrorIs(t, err, ErrNotFound)
}
