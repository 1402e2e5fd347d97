package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e == nil {
		return "<nil status error>"
	}
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("%s http %d: %s", e.Service, e.StatusCode, msg)
}

func (e *StatusError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// NewStatusError reads (and closes) resp.Body into a StatusError.
func NewStatusError(service string, resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
	return &StatusError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Body:       string(raw),
		RetryAfter: RetryAfterDuration(resp, 0, 10*time.Second),
	}
}

func IsRetryableHTTPStatus(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	return false
}

func RetryAfterDuration(resp *http.Response, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

// RetryOptions are the shared retry-go settings for outbound REST calls:
// exponential backoff with jitter, honouring Retry-After on StatusError.
func RetryOptions(ctx context.Context, attempts uint, onRetry func(n uint, err error)) []retry.Option {
	if attempts == 0 {
		attempts = 1
	}
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.LastErrorOnly(true),
		retry.Delay(250 * time.Millisecond),
		retry.MaxDelay(10 * time.Second),
		retry.RetryIf(IsRetryableError),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			var se *StatusError
			if errors.As(err, &se) && se.RetryAfter > 0 {
				return se.RetryAfter
			}
			return retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)(n, err, config)
		}),
	}
	if onRetry != nil {
		opts = append(opts, retry.OnRetry(onRetry))
	}
	return opts
}
