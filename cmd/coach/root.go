package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/discochess/coach"
	"github.com/discochess/coach/fx/coachfx"
)

var (
	// Global flags.
	dataDir    string
	enginePath string
	backend    string
	bucket     string
	prefix     string
	codecName  string
	verbose    bool
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "Score chess moves and profile players from their games",
	Long: `Coach scores chess moves by centipawn loss with a UCI engine, builds
player profiles from PGN archives and explains mistakes.

Player data lives in the data directory:
  profiles/<username>.json.zst   built profiles
  games/<username>.pgn           game archives (<username>_chesscom.pgn preferred)
  history.db                     stored game analyses

Examples:
  # Score a move
  coach analyze alice "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" g2g4

  # Build or show a profile
  coach profile alice

  # Serve the HTTP API
  coach serve --addr :8000`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", envOr("COACH_DATA", "./data"), "directory containing profiles and games")
	rootCmd.PersistentFlags().StringVar(&enginePath, "engine", envOr("STOCKFISH_PATH", "stockfish"), "path to a UCI engine binary")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", coachfx.BackendDisk, "profile store: disk, s3 or gcs")
	rootCmd.PersistentFlags().StringVar(&bucket, "bucket", "", "bucket for the s3 and gcs backends")
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "", "key prefix for the s3 and gcs backends")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "zstd", "profile compression: zstd, gzip or none")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output results as JSON")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func config() coachfx.Config {
	return coachfx.Config{
		DataDir:      dataDir,
		Backend:      backend,
		Bucket:       bucket,
		Prefix:       prefix,
		Codec:        codecName,
		EnginePath:   enginePath,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}
}

// newLogger logs to stderr: debug and up with --verbose, warnings otherwise.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return cfg.Build()
}

// appOptions wires the coach module for CLI commands.
func appOptions(log *zap.Logger) []fx.Option {
	opts := []fx.Option{
		fx.Supply(log, config()),
		coachfx.Module,
	}
	if verbose {
		opts = append(opts, fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}))
	} else {
		opts = append(opts, fx.NopLogger)
	}
	return opts
}

// withClient starts a client, runs fn and shuts the client down.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *coach.Client) error) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	var client *coach.Client
	app := fx.New(append(appOptions(log), fx.Populate(&client))...)

	startCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer app.Stop(context.Background())

	return fn(cmd.Context(), client)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
