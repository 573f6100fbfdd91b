package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/coach"
	"github.com/discochess/coach/internal/httpapi"
	"github.com/discochess/coach/internal/stats"
	statsprom "github.com/discochess/coach/internal/stats/prometheus"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the coach over HTTP",
	Long: `Start the HTTP API. Metrics are served in Prometheus format at /metrics.

A missing engine does not stop the server: engine-backed routes answer 500
with the start-up error and /healthz reports it.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := serverLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	app := fx.New(append(appOptions(log),
		fx.Replace(fx.Annotate(statsprom.New(registry), fx.As(new(stats.Collector)))),
		fx.Invoke(func(lc fx.Lifecycle, client *coach.Client) {
			registerServer(lc, client, metrics, log)
		}),
	)...)

	if err := app.Start(cmd.Context()); err != nil {
		return err
	}
	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return app.Stop(stopCtx)
}

func registerServer(lc fx.Lifecycle, client *coach.Client, metrics http.Handler, log *zap.Logger) {
	srv := &http.Server{
		Addr: serveAddr,
		Handler: httpapi.New(client,
			httpapi.WithLogger(log.Named("http")),
			httpapi.WithMetrics(metrics),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", srv.Addr, err)
			}
			log.Info("serving", zap.String("addr", ln.Addr().String()), zap.Error(client.EngineErr()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// serverLogger logs at info level unless --verbose asks for debug.
func serverLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
