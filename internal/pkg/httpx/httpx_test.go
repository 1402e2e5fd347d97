package httpx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.False(t, IsRetryableError(context.Canceled))
	assert.True(t, IsRetryableError(context.DeadlineExceeded))
	assert.True(t, IsRetryableError(&StatusError{Service: "x", StatusCode: 503}))
	assert.True(t, IsRetryableError(fmt.Errorf("wrapped: %w", &StatusError{StatusCode: 429})))
	assert.False(t, IsRetryableError(&StatusError{StatusCode: 404}))
	assert.False(t, IsRetryableError(errors.New("boom")))
}

func TestRetryOptionsStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := retry.Do(func() error {
		calls++
		return &StatusError{Service: "cep", StatusCode: 404}
	}, RetryOptions(context.Background(), 4, nil)...)
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.HTTPStatusCode())
}

func TestRetryOptionsRetriesTransientError(t *testing.T) {
	calls := 0
	err := retry.Do(func() error {
		calls++
		if calls < 3 {
			return &StatusError{Service: "cep", StatusCode: 502, RetryAfter: 1}
		}
		return nil
	}, RetryOptions(context.Background(), 4, nil)...)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
