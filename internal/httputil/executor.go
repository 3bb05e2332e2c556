// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the request executor shared by every harvest
// source: per-kind pacing, proactive quota pauses, backoff on rate limits and
// transient errors, and classification of failures.
package httputil

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/rhino-harvest/pkg/types"
)

// ChannelKind groups calls that share a pacing policy.
type ChannelKind string

const (
	// KindSearch is a discovery search call (the most quota-restricted).
	KindSearch ChannelKind = "search"

	// KindListing is a discovery listing call (category pages, repository trees).
	KindListing ChannelKind = "listing"

	// KindContent fetches a single document.
	KindContent ChannelKind = "content"
)

// Rate-limit headers consulted on 403 and 429 responses.
const (
	HeaderRateReset  = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

const (
	defaultMaxAttempts = 5
	maxDetailBytes     = 200
)

// Call performs one outbound HTTP exchange. Implementations that decode the
// body do so inside the call and return the decoding error together with
// the 2xx response; Execute reports that as a malformed payload.
type Call func(ctx context.Context) (*http.Response, error)

// Executor issues calls with pacing and backoff. Call counters and limiters
// are owned by the instance, so executors for different providers do not
// interfere.
type Executor struct {
	// Sleep waits for d or until ctx is done. Tests replace it to avoid
	// real waits.
	Sleep func(ctx context.Context, d time.Duration) error

	// Now returns the current time. Tests replace it together with Sleep.
	Now func() time.Time

	retry  types.RetryConfig
	pacing map[ChannelKind]types.PacingConfig
	logger *slog.Logger

	mu       sync.Mutex
	calls    map[ChannelKind]int
	limiters map[ChannelKind]*rate.Limiter
}

// NewExecutor returns an executor using the given retry policy and per-kind
// pacing. Kinds missing from pacing are not delayed.
func NewExecutor(retry types.RetryConfig, pacing map[ChannelKind]types.PacingConfig, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = defaultMaxAttempts
	}
	if retry.BackoffBase <= 1 {
		retry.BackoffBase = 2
	}
	if retry.BackoffUnit <= 0 {
		retry.BackoffUnit = time.Second
	}
	return &Executor{
		Sleep:    sleepContext,
		Now:      time.Now,
		retry:    retry,
		pacing:   pacing,
		logger:   logger,
		calls:    make(map[ChannelKind]int),
		limiters: make(map[ChannelKind]*rate.Limiter),
	}
}

// Calls returns the number of attempts made so far on kind.
func (e *Executor) Calls(kind ChannelKind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[kind]
}

// Execute runs call until it succeeds, fails permanently, or the attempt
// budget is spent. On success the response is returned; its body may
// already have been consumed by the call. On failure the error is a
// *Failure, or the context error if ctx was cancelled.
func (e *Executor) Execute(ctx context.Context, kind ChannelKind, call Call) (*http.Response, error) {
	var last *Failure
	for attempt := 1; attempt <= e.retry.MaxAttempts; attempt++ {
		if err := e.pace(ctx, kind); err != nil {
			return nil, err
		}

		resp, err := call(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			closeBody(resp)
			return nil, ctxErr
		}

		fail, wait, retry := e.classify(resp, err, attempt)
		if fail == nil {
			return resp, nil
		}
		fail.Attempts = attempt
		if !retry {
			if fail.Reason == ReasonRejected {
				e.logger.Warn("request rejected", "kind", kind, "status", fail.StatusCode, "detail", fail.Detail)
			}
			return nil, fail
		}

		last = fail
		if attempt == e.retry.MaxAttempts {
			break
		}
		e.logger.Warn("retrying request",
			"kind", kind, "reason", fail.Reason, "status", fail.StatusCode,
			"attempt", attempt, "max_attempts", e.retry.MaxAttempts, "wait", wait)
		if err := e.Sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	// Exhausted: rate limits, 5xx and transport errors stay retryable for a
	// later run; anything else is permanent.
	switch last.Reason {
	case ReasonRateLimited, ReasonServerError, ReasonTransport:
		last.Outcome = RetryableFailure
	default:
		last.Outcome = PermanentFailure
	}
	return nil, last
}

// classify maps one attempt to a failure (nil on success), the wait before
// the next attempt, and whether another attempt is allowed.
func (e *Executor) classify(resp *http.Response, err error, attempt int) (*Failure, time.Duration, bool) {
	if resp == nil {
		if err == nil {
			return nil, 0, false
		}
		return &Failure{Outcome: RetryableFailure, Reason: ReasonTransport, Err: err}, e.Backoff(attempt), true
	}

	code := resp.StatusCode
	if code >= 200 && code < 300 {
		if err != nil {
			closeBody(resp)
			return &Failure{Outcome: PermanentFailure, Reason: ReasonMalformed, StatusCode: code, Err: err}, 0, false
		}
		return nil, 0, false
	}

	fail := &Failure{StatusCode: code, Detail: readDetail(resp), Err: err}
	switch {
	case code == http.StatusTooManyRequests:
		fail.Outcome, fail.Reason = RetryableFailure, ReasonRateLimited
		if hint, ok := e.retryAfter(resp); ok {
			return fail, e.capWait(hint), true
		}
		return fail, e.Backoff(attempt), true

	case code == http.StatusForbidden && hasResetHint(resp):
		fail.Outcome, fail.Reason = RetryableFailure, ReasonRateLimited
		return fail, e.resetWait(resp), true

	case code == http.StatusNotFound:
		fail.Outcome, fail.Reason = PermanentFailure, ReasonNotFound
		return fail, 0, false

	case code == http.StatusUnprocessableEntity:
		fail.Outcome, fail.Reason = PermanentFailure, ReasonRejected
		return fail, 0, false

	case code >= 500:
		fail.Outcome, fail.Reason = RetryableFailure, ReasonServerError
		return fail, e.Backoff(attempt), true

	default:
		fail.Outcome, fail.Reason = PermanentFailure, ReasonHTTPError
		return fail, e.Backoff(attempt), true
	}
}

// Backoff returns the exponential wait before the retry following attempt
// (1-based): BackoffUnit * BackoffBase^attempt.
func (e *Executor) Backoff(attempt int) time.Duration {
	return time.Duration(float64(e.retry.BackoffUnit) * math.Pow(e.retry.BackoffBase, float64(attempt)))
}

// pace counts the attempt, takes the proactive quota pause when due, then
// waits for the kind's limiter.
func (e *Executor) pace(ctx context.Context, kind ChannelKind) error {
	p := e.pacing[kind]

	e.mu.Lock()
	n := e.calls[kind]
	e.calls[kind] = n + 1
	lim, ok := e.limiters[kind]
	if !ok {
		lim = rate.NewLimiter(rate.Every(p.Delay), 1)
		e.limiters[kind] = lim
	}
	e.mu.Unlock()

	if p.QuotaEvery > 0 && n > 0 && n%p.QuotaEvery == 0 {
		e.logger.Info("quota pause", "kind", kind, "calls", n, "pause", p.QuotaPause)
		if err := e.Sleep(ctx, p.QuotaPause); err != nil {
			return err
		}
	}

	now := e.Now()
	if d := lim.ReserveN(now, 1).DelayFrom(now); d > 0 {
		return e.Sleep(ctx, d)
	}
	return nil
}

// resetWait computes min(max(reset-now, floor), ceiling) from the reset
// timestamp or the Retry-After hint.
func (e *Executor) resetWait(resp *http.Response) time.Duration {
	if v := resp.Header.Get(HeaderRateReset); v != "" {
		if sec, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return e.clampReset(time.Unix(sec, 0).Sub(e.Now()))
		}
	}
	if hint, ok := e.retryAfter(resp); ok {
		return e.clampReset(hint)
	}
	return e.clampReset(0)
}

func (e *Executor) clampReset(d time.Duration) time.Duration {
	if d < e.retry.ResetFloor {
		d = e.retry.ResetFloor
	}
	return e.capWait(d)
}

func (e *Executor) capWait(d time.Duration) time.Duration {
	if d < 0 {
		d = 0
	}
	if e.retry.ResetCeiling > 0 && d > e.retry.ResetCeiling {
		d = e.retry.ResetCeiling
	}
	return d
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func (e *Executor) retryAfter(resp *http.Response) (time.Duration, bool) {
	v := strings.TrimSpace(resp.Header.Get(HeaderRetryAfter))
	if v == "" {
		return 0, false
	}
	if sec, err := strconv.Atoi(v); err == nil {
		return time.Duration(sec) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		return t.Sub(e.Now()), true
	}
	return 0, false
}

func hasResetHint(resp *http.Response) bool {
	return resp.Header.Get(HeaderRateReset) != "" || resp.Header.Get(HeaderRetryAfter) != ""
}

// readDetail returns the first bytes of the body, then drains and closes it.
func readDetail(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}
	defer closeBody(resp)
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxDetailBytes))
	return strings.TrimSpace(string(b))
}

func closeBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
