// Package memorycoachfx provides an fx module for an in-memory coach client
// with a scripted engine. Useful for testing.
package memorycoachfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/coach"
	"github.com/discochess/coach/internal/oracle/memoracle"
	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/stats/logger"
	"github.com/discochess/coach/internal/store/memstore"
)

// Module provides an in-memory coach client for testing, along with the
// *memstore.Store and *memoracle.Engine behind it for seeding.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memorycoach",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newEngine,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("coach.stats"))
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// newEngine scores unscripted positions by material.
func newEngine() *memoracle.Engine {
	return memoracle.New(memoracle.Material)
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Engine    *memoracle.Engine
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *coach.Client
}

func newClient(p Params) (Result, error) {
	client, err := coach.New(
		coach.WithStore(p.Store),
		coach.WithEngine(p.Engine),
		coach.WithStats(p.Collector),
		coach.WithLogger(p.Logger.Named("coach")),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
