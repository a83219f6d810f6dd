package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"btcquotes/internal/metrics"
	"btcquotes/internal/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State is what the presentation layer observes.
type State struct {
	// Epoch identifies the fetch cycle the state belongs to.
	Epoch  uint64 `json:"epoch"`
	Amount int    `json:"amount,omitempty"`
	// Loading stays true until every fetcher of the epoch has settled.
	Loading bool `json:"loading"`
	// Result is published once the epoch settles; nil while loading and
	// after invalid input.
	Result Result `json:"result,omitempty"`
	// Partial accumulates quotes of the running epoch as they arrive.
	Partial Result `json:"-"`
	// Err is the most recent user-facing error message.
	Err  string      `json:"error,omitempty"`
	Best provider.ID `json:"best,omitempty"`
}

func (s State) clone() State {
	s.Result = s.Result.Clone()
	s.Partial = s.Partial.Clone()
	return s
}

// Option configures an Aggregator.
type Option func(*Aggregator)

func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

func WithMetrics(m *metrics.QuoteMetrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// WithFetchTimeout bounds each provider call. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		a.timeout = d
	}
}

// Aggregator runs every fetcher for one amount at a time. Starting a new
// epoch cancels the previous one, and only the current epoch may change the
// state.
type Aggregator struct {
	fetchers []provider.Fetcher
	currency string
	log      *zap.Logger
	metrics  *metrics.QuoteMetrics
	timeout  time.Duration

	wg sync.WaitGroup

	mu      sync.Mutex
	epoch   uint64
	cancel  context.CancelFunc
	state   State
	subs    map[int]chan State
	nextSub int
	closed  bool
	closing chan struct{}
}

func New(fetchers []provider.Fetcher, currency string, options ...Option) *Aggregator {
	a := &Aggregator{
		fetchers: fetchers,
		currency: currency,
		log:      zap.NewNop(),
		subs:     make(map[int]chan State),
		closing:  make(chan struct{}),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Start cancels any running epoch and begins fetching quotes for amount.
// It returns immediately with the new epoch id.
func (a *Aggregator) Start(ctx context.Context, amount int) uint64 {
	id, _ := a.start(ctx, amount)
	return id
}

// Run starts an epoch and blocks until it settles, returning the state at
// that point.
func (a *Aggregator) Run(ctx context.Context, amount int) State {
	_, done := a.start(ctx, amount)
	<-done
	return a.Snapshot()
}

func (a *Aggregator) start(parent context.Context, amount int) (uint64, <-chan struct{}) {
	done := make(chan struct{})

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		close(done)
		return 0, done
	}
	a.supersedeLocked()
	a.epoch++
	id := a.epoch
	ctx, cancel := context.WithCancel(parent)
	a.cancel = cancel
	a.state = State{Epoch: id, Amount: amount, Loading: true, Partial: NewResult()}
	a.publishLocked()
	a.wg.Add(1)
	a.mu.Unlock()

	a.metrics.EpochStarted()
	a.log.Debug("epoch started", zap.Uint64("epoch", id), zap.Int("amount", amount))

	go func() {
		defer a.wg.Done()
		defer close(done)
		defer cancel()
		a.run(ctx, id, amount)
	}()
	return id, done
}

func (a *Aggregator) run(ctx context.Context, id uint64, amount int) {
	// Fetch errors are settled per provider and never fail the group, so one
	// provider's failure cannot cancel the others. gctx is done only when the
	// epoch is cancelled.
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range a.fetchers {
		g.Go(func() error {
			a.fetchOne(gctx, id, amount, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.log.Error("fetch group failed", zap.Uint64("epoch", id), zap.Error(err))
	}
	a.finish(id)
}

func (a *Aggregator) fetchOne(ctx context.Context, id uint64, amount int, f provider.Fetcher) {
	p := f.ID()
	fctx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	began := time.Now()
	got, err := a.safeFetch(fctx, f, amount)
	a.settle(ctx, id, p, got, err, time.Since(began))
}

// safeFetch turns a panicking fetcher into an error.
func (a *Aggregator) safeFetch(ctx context.Context, f provider.Fetcher, amount int) (got string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure fetching %s data: %v", f.ID(), r)
		}
	}()
	return f.Fetch(ctx, amount, a.currency)
}

// settle merges one fetcher outcome if its epoch is still current.
func (a *Aggregator) settle(ctx context.Context, id uint64, p provider.ID, got string, err error, took time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	fields := []zap.Field{zap.Uint64("epoch", id), zap.String("provider", string(p))}
	if id != a.epoch || ctx.Err() != nil {
		o := metrics.OutcomeStale
		if provider.IsCanceled(err) {
			o = metrics.OutcomeCanceled
		}
		a.metrics.ObserveFetch(string(p), o, took)
		a.log.Debug("discarding quote from superseded epoch", fields...)
		return
	}

	switch {
	case err == nil:
		a.state.Partial[p] = Quote{Provider: p, Amount: got}
	case provider.IsCanceled(err):
		// not user-visible
	default:
		a.state.Err = err.Error()
		a.log.Warn("quote fetch failed", append(fields, zap.Error(err))...)
	}
	a.metrics.ObserveFetch(string(p), outcome(err), took)
	a.publishLocked()
}

func (a *Aggregator) finish(id uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id != a.epoch {
		return
	}
	a.state.Loading = false
	a.state.Result = a.state.Partial.Clone()
	a.state.Best, _ = SelectBest(a.state.Result)
	a.publishLocked()
	a.log.Info("epoch settled",
		zap.Uint64("epoch", id),
		zap.Int("amount", a.state.Amount),
		zap.Int("quotes", a.state.Result.Present()),
		zap.String("best", string(a.state.Best)),
	)
}

// Reset cancels any running epoch and publishes msg with no result. It is
// used when the input fails validation.
func (a *Aggregator) Reset(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.supersedeLocked()
	a.epoch++
	a.state = State{Epoch: a.epoch, Err: msg}
	a.publishLocked()
}

func (a *Aggregator) supersedeLocked() {
	if a.cancel == nil {
		return
	}
	if a.state.Loading {
		a.metrics.EpochSuperseded()
		a.log.Debug("epoch superseded", zap.Uint64("epoch", a.epoch))
	}
	a.cancel()
	a.cancel = nil
}

// Snapshot returns a copy of the current state.
func (a *Aggregator) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.clone()
}

// Subscribe returns a channel carrying the latest state on every change,
// starting with the current one. A slow reader only sees the newest state.
// The channel is closed when ctx is done or the Aggregator is closed.
func (a *Aggregator) Subscribe(ctx context.Context) <-chan State {
	ch := make(chan State, 1)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		close(ch)
		return ch
	}
	key := a.nextSub
	a.nextSub++
	a.subs[key] = ch
	ch <- a.state.clone()
	a.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-a.closing:
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		if c, ok := a.subs[key]; ok {
			delete(a.subs, key)
			close(c)
		}
	}()
	return ch
}

func (a *Aggregator) publishLocked() {
	if len(a.subs) == 0 {
		return
	}
	s := a.state.clone()
	for _, ch := range a.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Close cancels the running epoch, waits for its fetchers to return and
// closes every subscription.
func (a *Aggregator) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.closing)
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.mu.Unlock()

	a.wg.Wait()

	a.mu.Lock()
	for key, ch := range a.subs {
		delete(a.subs, key)
		close(ch)
	}
	a.mu.Unlock()
}

func outcome(err error) string {
	var httpErr *provider.ProviderHTTPError
	var formatErr *provider.UnexpectedFormatError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case provider.IsCanceled(err):
		return metrics.OutcomeCanceled
	case errors.As(err, &httpErr):
		return metrics.OutcomeHTTPError
	case errors.As(err, &formatErr):
		return metrics.OutcomeFormatError
	default:
		return metrics.OutcomeError
	}
}
