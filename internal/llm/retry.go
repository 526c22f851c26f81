package llm

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/gridiron-ai/gridiron/internal/logging"
)

// RetryConfig bounds the retry wrapper around provider calls.
type RetryConfig struct {
	MaxAttempts        uint
	InitialDelay       time.Duration
	MaxDelay           time.Duration
	BackoffMultiplier  float64
	UseProviderBackoff bool
}

// DefaultRetryConfig returns the policy used when the caller supplies none.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:        3,
		InitialDelay:       500 * time.Millisecond,
		MaxDelay:           8 * time.Second,
		BackoffMultiplier:  2.0,
		UseProviderBackoff: true,
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	def := DefaultRetryConfig()
	if c.MaxAttempts == 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = def.InitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.BackoffMultiplier <= 1 {
		c.BackoffMultiplier = def.BackoffMultiplier
	}
	return c
}

// Retryer wraps a Provider with bounded retry for transient failures.
// It implements Provider, so callers cannot tell it from a bare adapter.
type Retryer struct {
	provider Provider
	cfg      RetryConfig
}

// NewRetryer wraps provider with the given retry policy.
func NewRetryer(provider Provider, cfg RetryConfig) *Retryer {
	return &Retryer{provider: provider, cfg: cfg.withDefaults()}
}

// Name reports the wrapped provider's name.
func (r *Retryer) Name() string { return r.provider.Name() }

// Models reports the wrapped provider's model list.
func (r *Retryer) Models() []string { return r.provider.Models() }

// Pricing reports the wrapped provider's pricing.
func (r *Retryer) Pricing(model string) Pricing { return r.provider.Pricing(model) }

// SupportsTools reports the wrapped provider's tool capability.
func (r *Retryer) SupportsTools() bool { return r.provider.SupportsTools() }

// Chat calls the wrapped provider, retrying transient failures with
// exponential backoff. Client errors are returned immediately since a
// retry cannot change the outcome. After exhausting attempts the last
// error is surfaced, never swallowed.
func (r *Retryer) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return retry.DoWithData(
		func() (*ChatResponse, error) {
			return r.provider.Chat(ctx, req)
		},
		retry.Attempts(r.cfg.MaxAttempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.MaxDelay(r.cfg.MaxDelay),
		retry.DelayType(r.nextDelay),
		retry.OnRetry(func(attempt uint, err error) {
			logging.Logger().Warn(
				"provider call failed, retrying",
				"provider", r.provider.Name(),
				"attempt", attempt+1,
				"max_attempts", r.cfg.MaxAttempts,
				"err", err,
			)
		}),
	)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		ok, _ := pe.Retryable()
		return ok
	}
	// Errors outside the taxonomy are transport-level surprises; one more
	// attempt is cheaper than failing the whole conversation.
	return true
}

// nextDelay prefers the vendor-suggested backoff when present, otherwise
// exponential backoff with jitter. Always capped at MaxDelay.
func (r *Retryer) nextDelay(attempt uint, err error, _ *retry.Config) time.Duration {
	var pe *ProviderError
	if r.cfg.UseProviderBackoff && errors.As(err, &pe) && pe.RetryAfter > 0 {
		jitter := time.Duration(rand.Float64() * 100 * float64(time.Millisecond))
		return capDelay(pe.RetryAfter+jitter, r.cfg.MaxDelay)
	}
	return r.backoff(attempt)
}

func (r *Retryer) backoff(attempt uint) time.Duration {
	delay := float64(r.cfg.InitialDelay)
	for i := uint(0); i < attempt; i++ {
		delay *= r.cfg.BackoffMultiplier
	}
	jitter := (rand.Float64() - 0.5) * 0.2 * delay
	return capDelay(time.Duration(delay+jitter), r.cfg.MaxDelay)
}

func capDelay(d, max time.Duration) time.Duration {
	if d > max {
		return max
	}
	return d
}
