package transport

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Per-tick retry budget. MaxElapsedTime bounds the total time spent inside
// one call so the next poll is never indefinitely delayed.
const (
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 8 * time.Second
	defaultMaxElapsedTime  = 30 * time.Second
	defaultMaxRetries      = 4
)

// Policy is the shared resilience wrapper for all outbound vendor calls.
// The zero value is not usable; construct with DefaultPolicy.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
	MaxRetries      uint64
}

// DefaultPolicy returns the retry budget used by both vendor clients.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: defaultInitialInterval,
		MaxInterval:     defaultMaxInterval,
		MaxElapsedTime:  defaultMaxElapsedTime,
		MaxRetries:      defaultMaxRetries,
	}
}

// Do runs fn, retrying transient failures with exponential backoff until the
// budget is exhausted or ctx is canceled. Permanent errors (anything that is
// not a TransportError) surface immediately; exhausting the budget surfaces
// the last transient error unchanged.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval
	bo.MaxElapsedTime = p.MaxElapsedTime

	var b backoff.BackOff = backoff.WithContext(bo, ctx)
	if p.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, p.MaxRetries)
	}

	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, b)
}
