package coach

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/discochess/coach/internal/codec/codecs"
	"github.com/discochess/coach/internal/feedback"
	"github.com/discochess/coach/internal/history"
	"github.com/discochess/coach/internal/livecache"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/profile"
	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/store"
	"github.com/discochess/coach/internal/store/diskstore"
)

// HistoryFile is the analysis database created by WithDataDir.
const HistoryFile = "history.db"

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	store         store.Store
	engine        oracle.Engine
	engineErr     error
	guard         *oracle.Guard
	generator     feedback.Generator
	history       History
	builder       *profile.Builder
	cacheCapacity int
	stats         stats.Collector
	logger        *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		cacheCapacity: livecache.DefaultCapacity,
		stats:         stats.NewNoop(),
		logger:        zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the profile store to use.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithEngine sets the evaluation engine. The client takes ownership and
// closes it on Close.
func WithEngine(e oracle.Engine) Option {
	return optionFunc(func(o *options) {
		o.engine = e
	})
}

// WithEngineError records why the engine could not be started. Engine-backed
// operations fail with ErrUnavailable wrapping err.
func WithEngineError(err error) Option {
	return optionFunc(func(o *options) {
		o.engineErr = err
	})
}

// WithGuard sets a ready-made engine guard, overriding WithEngine.
func WithGuard(g *oracle.Guard) Option {
	return optionFunc(func(o *options) {
		o.guard = g
	})
}

// WithFeedback sets the text generator used for coaching feedback.
// If not set, feedback answers with a fixed "not available" message.
func WithFeedback(g feedback.Generator) Option {
	return optionFunc(func(o *options) {
		o.generator = g
	})
}

// WithHistory sets the store for whole-game analyses.
func WithHistory(h History) Option {
	return optionFunc(func(o *options) {
		o.history = h
	})
}

// WithProfileBuilder sets the builder used for profiles.
// If not set, a builder with default limits is used.
func WithProfileBuilder(b *profile.Builder) Option {
	return optionFunc(func(o *options) {
		o.builder = b
	})
}

// WithCacheCapacity sets the number of deep analyses and explanations kept
// in memory. Default is 1024.
func WithCacheCapacity(n int) Option {
	return optionFunc(func(o *options) {
		o.cacheCapacity = n
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithDataDir configures the client from a data directory: a disk store with
// zstd-compressed profiles and an analysis history in history.db.
// This is the recommended way to create a client for local data.
func WithDataDir(dir string) (Option, error) {
	st, err := diskstore.New(dir, codecs.Zstd())
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	h, err := history.Open(filepath.Join(dir, HistoryFile))
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}

	return optionFunc(func(o *options) {
		o.store = st
		o.history = h
	}), nil
}
