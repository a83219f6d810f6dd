package providertest

import (
	"context"
	"sync"

	"btcquotes/internal/provider"
)

// Call records one Fetch invocation.
type Call struct {
	Provider provider.ID
	Amount   int
	Currency string
}

// Stub is a scripted Fetcher for pipeline tests.
type Stub struct {
	Provider provider.ID
	// Amounts maps a fiat amount to the crypto amount returned for it.
	// Missing amounts fall back to Default.
	Amounts map[int]string
	Default string
	Err     error
	Panic   any

	// Gates, when set for an amount, block Fetch until the gate is closed.
	Gates map[int]chan struct{}
	// IgnoreCancel makes a gated Fetch keep waiting after ctx is cancelled,
	// modelling a transport that delivers a late response.
	IgnoreCancel bool
	// Started, when non-nil, receives every call as it begins.
	Started chan<- Call

	mu    sync.Mutex
	calls []Call
}

func (s *Stub) ID() provider.ID { return s.Provider }

func (s *Stub) Fetch(ctx context.Context, amount int, currency string) (string, error) {
	c := Call{Provider: s.Provider, Amount: amount, Currency: currency}
	s.mu.Lock()
	s.calls = append(s.calls, c)
	gate := s.Gates[amount]
	s.mu.Unlock()
	if s.Started != nil {
		s.Started <- c
	}

	if s.Panic != nil {
		panic(s.Panic)
	}
	if gate != nil {
		if s.IgnoreCancel {
			<-gate
		} else {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-gate:
			}
		}
	}
	if s.Err != nil {
		return "", s.Err
	}
	if v, ok := s.Amounts[amount]; ok {
		return v, nil
	}
	return s.Default, nil
}

// Calls returns a copy of the recorded calls.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Stubs builds one Stub per provider in display order, all answering def.
func Stubs(def string) []*Stub {
	out := make([]*Stub, 0, len(provider.All))
	for _, id := range provider.All {
		out = append(out, &Stub{Provider: id, Default: def})
	}
	return out
}

// Fetchers converts stubs to the Fetcher interface.
func Fetchers(stubs []*Stub) []provider.Fetcher {
	out := make([]provider.Fetcher, len(stubs))
	for i, s := range stubs {
		out[i] = s
	}
	return out
}
