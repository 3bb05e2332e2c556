// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
)

// Outcome classifies the result of an executed call.
type Outcome int

const (
	// Ok means the call succeeded.
	Ok Outcome = iota

	// RetryableFailure means the call may succeed on a later run. The item
	// is skipped for this run and not marked done.
	RetryableFailure

	// PermanentFailure means retrying cannot help.
	PermanentFailure
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case RetryableFailure:
		return "retryable"
	case PermanentFailure:
		return "permanent"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Failure reasons reported in Failure.Reason and the run summary.
const (
	ReasonRateLimited = "rate_limited"
	ReasonServerError = "server_error"
	ReasonTransport   = "transport"
	ReasonNotFound    = "not_found"
	ReasonRejected    = "rejected"
	ReasonHTTPError   = "http_error"
	ReasonMalformed   = "malformed"
	ReasonCancelled   = "cancelled"
	ReasonUnexpected  = "unexpected"
)

// Failure is the error returned by Executor.Execute when a call does not
// succeed. Inspect it with errors.As or the helpers below.
type Failure struct {
	Outcome    Outcome
	Reason     string
	StatusCode int

	// Detail holds the start of the provider's response body, when any.
	Detail string

	// Attempts is the number of attempts made, including the last one.
	Attempts int

	Err error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s failure (%s)", f.Outcome, f.Reason)
	if f.StatusCode != 0 {
		msg += fmt.Sprintf(" HTTP %d", f.StatusCode)
	}
	if f.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", f.Attempts)
	}
	if f.Detail != "" {
		msg += ": " + f.Detail
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

// OutcomeOf returns the outcome carried by err. A nil error is Ok, a context
// error is Retryable, and any error that is not a *Failure is Permanent.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return Ok
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Outcome
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return RetryableFailure
	}
	return PermanentFailure
}

// ReasonOf returns the failure reason carried by err, or "" for nil.
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonCancelled
	}
	return ReasonUnexpected
}

// IsNotFound reports whether err is a 404 failure.
func IsNotFound(err error) bool { return ReasonOf(err) == ReasonNotFound }

// IsRejected reports whether err is a 422 failure.
func IsRejected(err error) bool { return ReasonOf(err) == ReasonRejected }

// Malformed wraps a payload decoding error as a permanent failure.
func Malformed(err error) error {
	return &Failure{Outcome: PermanentFailure, Reason: ReasonMalformed, Err: err}
}
