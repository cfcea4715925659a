package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Policy is a bounded exponential backoff shared by the provider adapters.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy mirrors the provider adapters' defaults.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}
}

// Do runs op until it succeeds, attempts are exhausted, or ctx is done.
// The last error is returned unmodified so callers can classify it.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.delay(attempt - 1)
			log.Debug().Str("op", op).Int("attempt", attempt+1).Dur("backoff", delay).Msg("Retrying after failure")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

func (p Policy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	d := base << uint(attempt)
	max := p.MaxDelay
	if max <= 0 {
		max = 5 * time.Second
	}
	if d > max || d <= 0 {
		d = max
	}
	return d
}
