package oracle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// Guard owns the single engine and grants exclusive access to it.
// It behaves as a pool of size one: Do blocks until the engine is free.
// A Guard is safe for concurrent use by multiple goroutines.
type Guard struct {
	slot   chan struct{}
	engine Engine
	eval   *Evaluator
	cause  error
	logger *zap.Logger
	closed atomic.Bool
}

// NewGuard wraps a running engine.
func NewGuard(engine Engine, opts ...Option) *Guard {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	g := &Guard{
		slot:   make(chan struct{}, 1),
		engine: engine,
		eval: &Evaluator{
			engine: engine,
			stats:  cfg.stats,
			logger: cfg.logger,
		},
		logger: cfg.logger,
	}
	g.slot <- struct{}{}
	return g
}

// Failed returns a Guard for an engine that could not be started.
// Every Do call fails with ErrUnavailable wrapping cause.
func Failed(cause error) *Guard {
	if cause == nil {
		cause = errors.New("no engine configured")
	}
	return &Guard{cause: cause, logger: zap.NewNop()}
}

// Err returns nil when the engine is available, or ErrUnavailable wrapping
// the recorded start-up failure.
func (g *Guard) Err() error {
	if g.engine == nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, g.cause)
	}
	if g.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Do runs fn with exclusive access to the engine. The engine stays locked
// for the whole call, so fn may issue any number of queries as one unit.
func (g *Guard) Do(ctx context.Context, fn func(*Evaluator) error) error {
	if err := g.Err(); err != nil {
		return err
	}

	select {
	case <-g.slot:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { g.slot <- struct{}{} }()

	if g.closed.Load() {
		return ErrClosed
	}
	return fn(g.eval)
}

// Close waits for the engine to be released and terminates it.
func (g *Guard) Close() error {
	if g.engine == nil {
		return nil
	}
	if !g.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	<-g.slot
	defer func() { g.slot <- struct{}{} }()

	if err := g.engine.Close(); err != nil {
		return fmt.Errorf("closing engine: %w", err)
	}
	g.logger.Debug("engine closed")
	return nil
}
