// Package ratelimit wraps fetchers with request budgets. A wait cut short by
// cancellation reports context.Canceled, so the aggregator treats it like an
// aborted request.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"btcquotes/internal/provider"
	"golang.org/x/time/rate"
)

// PerMinute builds a limiter allowing rpm requests per minute with the given
// burst. A burst below one is raised to one.
func PerMinute(rpm, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

// TokenBucketFetcher gates calls to F through Limiter.
type TokenBucketFetcher struct {
	F       provider.Fetcher
	Limiter *rate.Limiter
}

func (t *TokenBucketFetcher) ID() provider.ID { return t.F.ID() }

func (t *TokenBucketFetcher) Fetch(ctx context.Context, amount int, currency string) (string, error) {
	if t.Limiter != nil {
		if err := wait(ctx, t.Limiter); err != nil {
			return "", fmt.Errorf("%s: %w", t.F.ID(), err)
		}
	}
	return t.F.Fetch(ctx, amount, currency)
}

// MinInterval lets at most one call through to F per Interval.
type MinInterval struct {
	F        provider.Fetcher
	Interval time.Duration

	once sync.Once
	lim  *rate.Limiter
}

func (m *MinInterval) ID() provider.ID { return m.F.ID() }

func (m *MinInterval) Fetch(ctx context.Context, amount int, currency string) (string, error) {
	if m.Interval > 0 {
		m.once.Do(func() { m.lim = rate.NewLimiter(rate.Every(m.Interval), 1) })
		if err := wait(ctx, m.lim); err != nil {
			return "", fmt.Errorf("%s: %w", m.F.ID(), err)
		}
	}
	return m.F.Fetch(ctx, amount, currency)
}

// wait reports the context's own error when the limiter gives up early
// because the next token lies past the deadline.
func wait(ctx context.Context, lim *rate.Limiter) error {
	err := lim.Wait(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}
