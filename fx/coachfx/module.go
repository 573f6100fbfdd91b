// Package coachfx provides an fx module for a coach client backed by a
// profile store, a UCI engine and, optionally, Gemini feedback and an
// analysis history.
package coachfx

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/coach"
	"github.com/discochess/coach/internal/cachestrategy/lru"
	"github.com/discochess/coach/internal/codec/codecs"
	"github.com/discochess/coach/internal/feedback"
	"github.com/discochess/coach/internal/feedback/gemini"
	"github.com/discochess/coach/internal/history"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/oracle/uci"
	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/stats/logger"
	"github.com/discochess/coach/internal/store"
	"github.com/discochess/coach/internal/store/cachedstore"
	"github.com/discochess/coach/internal/store/cachedstore/memory"
	"github.com/discochess/coach/internal/store/diskstore"
	"github.com/discochess/coach/internal/store/gcsstore"
	"github.com/discochess/coach/internal/store/s3store"
)

// Store backends.
const (
	BackendDisk = "disk"
	BackendS3   = "s3"
	BackendGCS  = "gcs"
)

// Config holds configuration for the coach client.
type Config struct {
	// DataDir holds profiles/ and games/ for the disk backend, and the
	// analysis history unless HistoryPath is set.
	DataDir string

	// Backend selects the profile store: "disk" (default), "s3" or "gcs".
	Backend  string
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string

	// Codec names the profile compression: "zstd" (default), "gzip" or "none".
	Codec string

	// CacheSize is the number of profiles to cache in memory.
	// Default is 100.
	CacheSize int

	// LiveCacheSize bounds the deep analysis and explanation caches.
	LiveCacheSize int

	// EnginePath is the UCI engine binary. Default is "stockfish".
	EnginePath    string
	EngineThreads int
	EngineHashMB  int

	// GeminiAPIKey enables generated feedback when set.
	GeminiAPIKey string
	GeminiModel  string

	// HistoryPath is the analysis history database. Default is
	// DataDir/history.db; with neither set no history is kept.
	HistoryPath string
}

// Module provides a *coach.Client.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("coach",
	fx.Provide(
		newStatsCollector,
		newStore,
		newGuard,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("coach.stats"))
}

// StoreParams holds dependencies for creating the profile store.
type StoreParams struct {
	fx.In

	Config    Config
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

func newStore(p StoreParams) (store.Store, error) {
	c, err := codecs.ByName(p.Config.Codec)
	if err != nil {
		return nil, err
	}

	var base store.Store
	ctx := context.Background()
	switch p.Config.Backend {
	case "", BackendDisk:
		base, err = diskstore.New(p.Config.DataDir, c)
	case BackendS3:
		opts := []s3store.Option{s3store.WithPrefix(p.Config.Prefix)}
		if p.Config.Region != "" {
			opts = append(opts, s3store.WithRegion(p.Config.Region))
		}
		if p.Config.Endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(p.Config.Endpoint))
		}
		base, err = s3store.New(ctx, p.Config.Bucket, c, opts...)
	case BackendGCS:
		base, err = gcsstore.New(ctx, p.Config.Bucket, c, gcsstore.WithPrefix(p.Config.Prefix))
	default:
		return nil, fmt.Errorf("unknown store backend %q", p.Config.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s store: %w", p.Config.Backend, err)
	}

	cacheSize := p.Config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 100
	}
	strategy, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return cachedstore.New(base, memory.New(strategy, p.Collector)), nil
}

// GuardParams holds dependencies for starting the engine.
type GuardParams struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
}

// newGuard starts the engine. A failed start does not stop the app: the
// client reports the cause on every engine-backed request.
func newGuard(p GuardParams) *oracle.Guard {
	path := p.Config.EnginePath
	if path == "" {
		path = "stockfish"
	}

	var opts []uci.Option
	if p.Config.EngineThreads > 0 {
		opts = append(opts, uci.WithThreads(p.Config.EngineThreads))
	}
	if p.Config.EngineHashMB > 0 {
		opts = append(opts, uci.WithHash(p.Config.EngineHashMB))
	}
	opts = append(opts, uci.WithLogger(p.Logger.Named("uci")))

	engine, err := uci.Start(path, opts...)
	if err != nil {
		p.Logger.Warn("engine failed to start", zap.String("path", path), zap.Error(err))
		return oracle.Failed(err)
	}
	return oracle.NewGuard(engine,
		oracle.WithStats(p.Collector),
		oracle.WithLogger(p.Logger.Named("oracle")),
	)
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Store     store.Store
	Guard     *oracle.Guard
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *coach.Client
}

func newClient(p Params) (Result, error) {
	opts := []coach.Option{
		coach.WithStore(p.Store),
		coach.WithGuard(p.Guard),
		coach.WithStats(p.Collector),
		coach.WithLogger(p.Logger.Named("coach")),
	}
	if p.Config.LiveCacheSize > 0 {
		opts = append(opts, coach.WithCacheCapacity(p.Config.LiveCacheSize))
	}

	if gen := generator(p.Config, p.Logger); gen != nil {
		opts = append(opts, coach.WithFeedback(gen))
	}

	historyPath := p.Config.HistoryPath
	if historyPath == "" && p.Config.DataDir != "" {
		historyPath = filepath.Join(p.Config.DataDir, coach.HistoryFile)
	}
	if historyPath != "" {
		h, err := history.Open(historyPath)
		if err != nil {
			return Result{}, fmt.Errorf("opening history: %w", err)
		}
		opts = append(opts, coach.WithHistory(h))
	}

	client, err := coach.New(opts...)
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

// generator returns the Gemini client, or nil when feedback is not configured.
func generator(cfg Config, log *zap.Logger) feedback.Generator {
	if cfg.GeminiAPIKey == "" {
		log.Info("feedback disabled: no Gemini API key")
		return nil
	}
	var opts []gemini.Option
	if cfg.GeminiModel != "" {
		opts = append(opts, gemini.WithModel(cfg.GeminiModel))
	}
	gen, err := gemini.New(context.Background(), cfg.GeminiAPIKey, opts...)
	if err != nil {
		log.Warn("feedback disabled", zap.Error(err))
		return nil
	}
	return gen
}
