package cache

import (
	"context"
	"sync"
	"time"

	"btcquotes/internal/provider"
)

// key identifies a cached quote request.
type key struct {
	amount   int
	currency string
}

// entry stores one cached crypto amount with expiry.
type entry struct {
	expiresAt time.Time
	amount    string
}

// Fetcher caches successful quotes per (amount, currency) for a TTL so that
// returning to a recently typed amount does not hit the provider again.
// Failures and cancellations are never cached.
type Fetcher struct {
	F        provider.Fetcher
	TTL      time.Duration
	MaxItems int

	// now is overridden in tests.
	now func() time.Time

	mu    sync.RWMutex
	items map[key]entry
}

func (c *Fetcher) ID() provider.ID { return c.F.ID() }

func (c *Fetcher) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// Fetch returns the cached amount when still valid, otherwise asks the
// wrapped fetcher and stores a successful answer.
func (c *Fetcher) Fetch(ctx context.Context, amount int, currency string) (string, error) {
	if c.TTL <= 0 {
		return c.F.Fetch(ctx, amount, currency)
	}

	k := key{amount: amount, currency: currency}
	now := c.clock()

	c.mu.RLock()
	e, ok := c.items[k]
	c.mu.RUnlock()
	if ok && now.Before(e.expiresAt) {
		return e.amount, nil
	}

	fresh, err := c.F.Fetch(ctx, amount, currency)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if c.items == nil {
		c.items = make(map[key]entry)
	}
	c.items[k] = entry{expiresAt: now.Add(c.TTL), amount: fresh}
	// best-effort cap cache size: expired first, then arbitrary
	if c.MaxItems > 0 && len(c.items) > c.MaxItems {
		for k, v := range c.items {
			if now.After(v.expiresAt) {
				delete(c.items, k)
			}
		}
		for k := range c.items {
			if len(c.items) <= c.MaxItems {
				break
			}
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
	return fresh, nil
}

// Len reports how many entries are held, expired ones included.
func (c *Fetcher) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
