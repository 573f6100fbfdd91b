package uci

import (
	"strconv"

	"go.uber.org/zap"
)

// Option configures an Engine.
type Option interface {
	apply(*options)
}

type setOption struct {
	name  string
	value string
}

type options struct {
	setOptions []setOption
	logger     *zap.Logger
}

func defaultOptions() options {
	return options{logger: zap.NewNop()}
}

type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithOption sends "setoption name <name> value <value>" after the handshake.
func WithOption(name, value string) Option {
	return optionFunc(func(o *options) {
		o.setOptions = append(o.setOptions, setOption{name: name, value: value})
	})
}

// WithThreads sets the number of search threads.
func WithThreads(n int) Option {
	return WithOption("Threads", strconv.Itoa(n))
}

// WithHash sets the transposition table size in megabytes.
func WithHash(mb int) Option {
	return WithOption("Hash", strconv.Itoa(mb))
}

// WithSkillLevel limits engine strength by Stockfish skill level (0-20).
func WithSkillLevel(level int) Option {
	return WithOption("Skill Level", strconv.Itoa(level))
}

// WithElo limits engine strength to an approximate rating.
func WithElo(elo int) Option {
	return optionFunc(func(o *options) {
		o.setOptions = append(o.setOptions,
			setOption{name: "UCI_LimitStrength", value: "true"},
			setOption{name: "UCI_Elo", value: strconv.Itoa(elo)},
		)
	})
}

// WithLogger sets the logger used for protocol tracing.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
