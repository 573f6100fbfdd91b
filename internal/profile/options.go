package profile

import (
	"time"

	"go.uber.org/zap"

	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/style"
)

// Option configures a Builder.
type Option interface {
	apply(*options)
}

type options struct {
	maxGames   int
	maxPlies   int
	depth      int
	thresholds style.Thresholds
	progress   ProgressFunc
	stats      stats.Collector
	logger     *zap.Logger
	now        func() time.Time
}

func defaultOptions() options {
	return options{
		maxGames:   DefaultMaxGames,
		maxPlies:   DefaultMaxPlies,
		depth:      DefaultDepth,
		thresholds: style.DefaultThresholds(),
		stats:      stats.NewNoop(),
		logger:     zap.NewNop(),
		now:        time.Now,
	}
}

type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithMaxGames limits the number of games analysed.
// Default is 200.
func WithMaxGames(n int) Option {
	return optionFunc(func(o *options) {
		o.maxGames = n
	})
}

// WithMaxPlies limits the plies walked per game.
// Default is 120.
func WithMaxPlies(n int) Option {
	return optionFunc(func(o *options) {
		o.maxPlies = n
	})
}

// WithDepth sets the engine search depth.
// Default is 12.
func WithDepth(n int) Option {
	return optionFunc(func(o *options) {
		o.depth = n
	})
}

// WithStyleThresholds overrides the style flag thresholds.
func WithStyleThresholds(t style.Thresholds) Option {
	return optionFunc(func(o *options) {
		o.thresholds = t
	})
}

// WithProgress sets a callback for build progress.
func WithProgress(fn ProgressFunc) Option {
	return optionFunc(func(o *options) {
		o.progress = fn
	})
}

// WithStats sets the stats collector.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithClock sets the time source used for BuiltAt.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(o *options) {
		o.now = now
	})
}
