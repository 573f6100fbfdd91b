// Package coach scores chess moves and profiles players from their game
// history.
//
// A Client owns a single evaluation engine, a profile store and, optionally,
// a feedback generator and an analysis history. Engine access is serialized:
// a profile build holds the engine for its whole walk, and live analyses
// wait their turn.
//
// Example usage:
//
//	engine, err := uci.Start("stockfish")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dataDir, err := coach.WithDataDir("/path/to/data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := coach.New(dataDir, coach.WithEngine(engine))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	res, err := client.AnalyzeMove(ctx, coach.MoveRequest{
//	    Username: "alice",
//	    FEN:      "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
//	    Move:     "e2e4",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s (%d cpl)\n", res.Label, res.CPL)
package coach

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/discochess/coach/internal/feedback"
	"github.com/discochess/coach/internal/livecache"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/profile"
	"github.com/discochess/coach/internal/rules"
	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/store"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrInvalidFEN indicates the position could not be parsed.
	ErrInvalidFEN = rules.ErrInvalidFEN

	// ErrInvalidMove indicates the move is not in UCI notation.
	ErrInvalidMove = rules.ErrInvalidMove

	// ErrIllegalMove indicates the move is not legal in the position.
	ErrIllegalMove = rules.ErrIllegalMove

	// ErrInvalidUsername indicates the username is empty or unusable.
	ErrInvalidUsername = store.ErrInvalidUsername

	// ErrInvalidPGN indicates the PGN holds no playable game.
	ErrInvalidPGN = errors.New("coach: no game in PGN")

	// ErrUnavailable indicates the engine could not be started.
	ErrUnavailable = oracle.ErrUnavailable

	// ErrNoScore indicates the engine returned no usable score.
	ErrNoScore = oracle.ErrNoScore

	// ErrProfileNotFound indicates no profile is stored for the player.
	ErrProfileNotFound = errors.New("coach: profile not found")

	// ErrNoGames indicates no game archive exists for the player.
	ErrNoGames = errors.New("coach: no games found for player")

	// ErrNoProofs indicates the profile has no proof positions.
	ErrNoProofs = errors.New("coach: no proof positions found")

	// ErrNoHistory indicates no analysis history is configured.
	ErrNoHistory = errors.New("coach: no history configured")

	// ErrNoStore indicates no store was provided.
	ErrNoStore = errors.New("coach: no store provided")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("coach: client closed")
)

// IsInputError reports whether err was caused by a malformed request.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidFEN) ||
		errors.Is(err, ErrInvalidMove) ||
		errors.Is(err, ErrIllegalMove) ||
		errors.Is(err, ErrInvalidUsername) ||
		errors.Is(err, ErrInvalidPGN)
}

// IsDataError reports whether err was caused by missing player data.
func IsDataError(err error) bool {
	return errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrNoGames) ||
		errors.Is(err, ErrNoProofs)
}

// Client scores moves and serves player profiles.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	guard    *oracle.Guard
	store    store.Store
	history  History
	coach    *feedback.Coach
	builder  *profile.Builder
	deep     *livecache.Cache[DeepAnalysis]
	explains *livecache.Cache[Explanation]
	builds   singleflight.Group
	stats    stats.Collector
	logger   *zap.Logger
	closed   atomic.Bool
}

// New creates a new Client with the given options.
// A store is required. Without an engine, every engine-backed operation
// fails with ErrUnavailable.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	if cfg.store == nil {
		return nil, ErrNoStore
	}

	guard := cfg.guard
	if guard == nil {
		if cfg.engine != nil {
			guard = oracle.NewGuard(cfg.engine,
				oracle.WithStats(cfg.stats),
				oracle.WithLogger(cfg.logger.Named("oracle")),
			)
		} else {
			guard = oracle.Failed(cfg.engineErr)
		}
	}

	builder := cfg.builder
	if builder == nil {
		builder = profile.NewBuilder(
			profile.WithStats(cfg.stats),
			profile.WithLogger(cfg.logger),
		)
	}

	deep, err := livecache.NewLRU[DeepAnalysis](cfg.cacheCapacity, cfg.stats)
	if err != nil {
		return nil, fmt.Errorf("creating deep analysis cache: %w", err)
	}
	explains, err := livecache.NewLRU[Explanation](cfg.cacheCapacity, cfg.stats)
	if err != nil {
		return nil, fmt.Errorf("creating explanation cache: %w", err)
	}

	c := &Client{
		guard:    guard,
		store:    cfg.store,
		history:  cfg.history,
		coach:    feedback.New(cfg.generator, cfg.logger),
		builder:  builder,
		deep:     deep,
		explains: explains,
		stats:    cfg.stats,
		logger:   cfg.logger,
	}

	c.logger.Debug("client initialized",
		zap.Bool("engine", guard.Err() == nil),
		zap.Bool("feedback", c.coach.Available()),
		zap.Bool("history", c.history != nil),
		zap.Int("cacheCapacity", cfg.cacheCapacity),
	)

	return c, nil
}

// EngineErr returns nil when the engine is available, or the error every
// engine-backed operation will fail with.
func (c *Client) EngineErr() error {
	return c.guard.Err()
}

// FeedbackAvailable reports whether a feedback generator is configured.
func (c *Client) FeedbackAvailable() bool {
	return c.coach.Available()
}

// Store returns the storage backend used by this client.
func (c *Client) Store() store.Store {
	return c.store
}

// Close releases all resources associated with the client.
// After Close, the client should not be used.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	var errs []error
	if err := c.guard.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing engine: %w", err))
	}
	if err := c.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing store: %w", err))
	}
	if c.history != nil {
		if err := c.history.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing history: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c *Client) checkOpen() error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}
