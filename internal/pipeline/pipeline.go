// Package pipeline wires raw input text through debouncing and validation
// into the quote aggregator.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"btcquotes/internal/aggregate"
	"btcquotes/internal/debounce"
	"btcquotes/internal/validate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithInitialAmount processes text right away, without waiting for the
// quiet period.
func WithInitialAmount(text string) Option {
	return func(s *Session) {
		s.initial = &text
	}
}

// Session is one user's input box. Every settled input is validated; valid
// amounts start a new aggregator epoch and invalid ones clear the result.
type Session struct {
	id        string
	log       *zap.Logger
	validator validate.Validator
	agg       *aggregate.Aggregator
	deb       *debounce.Debouncer[string]
	initial   *string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	last    string
	hasLast bool
	// pushed is the newest Input text; pending is true until it has been
	// handed to the aggregator or skipped.
	pushed  string
	pending bool
	changed chan struct{}
}

// New starts a session feeding agg. The session owns agg and closes it on
// Close.
func New(ctx context.Context, agg *aggregate.Aggregator, v validate.Validator, delay time.Duration, options ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		log:       zap.NewNop(),
		validator: v,
		agg:       agg,
		deb:       debounce.New[string](delay),
		done:      make(chan struct{}),
		changed:   make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	s.log = s.log.With(zap.String("session_id", s.id))
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.initial != nil {
		s.process(*s.initial)
	}
	go s.loop()
	return s
}

func (s *Session) ID() string { return s.id }

// Input records the current raw text. It is processed once no newer text
// arrives for the debounce delay.
func (s *Session) Input(text string) {
	s.mu.Lock()
	s.pushed, s.pending = text, true
	s.mu.Unlock()
	s.deb.Push(text)
}

// ErrClosed is returned by Wait when the session shuts down first.
var ErrClosed = errors.New("session closed")

// Wait blocks until the newest Input has been processed and the resulting
// epoch, if any, has settled.
func (s *Session) Wait(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sub := s.agg.Subscribe(ctx)
	for {
		s.mu.Lock()
		pending, changed := s.pending, s.changed
		s.mu.Unlock()
		if !pending && !s.agg.Snapshot().Loading {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return ErrClosed
		case <-changed:
		case _, ok := <-sub:
			if !ok {
				return ErrClosed
			}
		}
	}
}

// State returns the latest aggregator state.
func (s *Session) State() aggregate.State {
	return s.agg.Snapshot()
}

// Subscribe streams state changes; see aggregate.Aggregator.Subscribe.
func (s *Session) Subscribe(ctx context.Context) <-chan aggregate.State {
	return s.agg.Subscribe(ctx)
}

// Close stops processing input and shuts the aggregator down.
func (s *Session) Close() {
	s.deb.Stop()
	s.cancel()
	<-s.done
	s.agg.Close()
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case text, ok := <-s.deb.C():
			if !ok {
				return
			}
			s.process(text)
		}
	}
}

func (s *Session) process(text string) {
	defer s.processed(text)

	s.mu.Lock()
	if s.hasLast && text == s.last {
		s.mu.Unlock()
		return
	}
	s.last, s.hasLast = text, true
	s.mu.Unlock()

	st := s.validator.Validate(text)
	if !st.OK() {
		s.log.Debug("input rejected", zap.String("input", text), zap.Stringer("kind", st.Kind))
		s.agg.Reset(st.Message())
		return
	}
	epoch := s.agg.Start(s.ctx, st.Amount)
	s.log.Debug("input accepted", zap.Int("amount", st.Amount), zap.Uint64("epoch", epoch))
}

// processed clears pending once the aggregator has seen text, and wakes
// Wait callers.
func (s *Session) processed(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending && s.pushed == text {
		s.pending = false
	}
	close(s.changed)
	s.changed = make(chan struct{})
}
