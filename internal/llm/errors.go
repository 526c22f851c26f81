package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a provider failure for retry decisions.
type ErrorKind string

const (
	// KindInvalidRequest is a malformed request the vendor rejected; retrying cannot help.
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindAuth is a missing or rejected credential.
	KindAuth ErrorKind = "auth"
	// KindRateLimited is a vendor rate-limit rejection, usually carrying a retry-after hint.
	KindRateLimited ErrorKind = "rate_limited"
	// KindOverloaded is a vendor capacity rejection.
	KindOverloaded ErrorKind = "overloaded"
	// KindServer is a vendor-side 5xx failure.
	KindServer ErrorKind = "server"
	// KindTimeout is a request deadline hit while waiting on the vendor.
	KindTimeout ErrorKind = "timeout"
	// KindCanceled is caller-initiated cancellation.
	KindCanceled ErrorKind = "canceled"
	// KindNetwork is a transport failure before any vendor response.
	KindNetwork ErrorKind = "network"
	// KindBadResponse is a 2xx response whose body could not be used.
	KindBadResponse ErrorKind = "bad_response"
	// KindUnknown covers everything else.
	KindUnknown ErrorKind = "unknown"
)

// ProviderError reports a failed vendor call. Adapters return it for every
// failure path; they never return an empty success.
type ProviderError struct {
	Provider   string
	Model      string
	StatusCode int
	Kind       ErrorKind
	Message    string
	// RetryAfter is the vendor-suggested backoff, zero when absent.
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, msg)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient and, if the vendor
// suggested a delay, how long to wait before the next attempt.
func (e *ProviderError) Retryable() (bool, time.Duration) {
	switch e.Kind {
	case KindRateLimited, KindOverloaded, KindServer, KindTimeout, KindNetwork:
		return true, e.RetryAfter
	default:
		return false, 0
	}
}

// KindFromStatus maps an HTTP status code onto an error kind.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == 400 || status == 404 || status == 422:
		return KindInvalidRequest
	case status == 401 || status == 403:
		return KindAuth
	case status == 408:
		return KindTimeout
	case status == 429:
		return KindRateLimited
	case status == 529:
		return KindOverloaded
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// WrapTransportError classifies a transport-level failure (no vendor
// response) as a ProviderError, preserving context cancellation kinds.
func WrapTransportError(provider, model string, err error) *ProviderError {
	kind := KindNetwork
	switch {
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Model: model, Kind: kind, Err: err}
}
