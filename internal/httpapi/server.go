// Package httpapi serves the coach over HTTP with JSON bodies.
//
// Routes:
//
//	POST /analyze/move              live move analysis
//	POST /analyze/move/deep         deep move analysis with lines
//	POST /analyze/move/explain      deep analysis with coaching text
//	GET  /profile/{username}        stored or freshly built profile
//	POST /profile/{username}/rebuild
//	GET  /feedback/{username}       coaching text for proof positions
//	POST /model/predict             engine move for a position
//	POST /analysis/game             whole-game review, optionally stored
//	GET  /analyses                  recent stored reviews
//	GET  /healthz
//	GET  /metrics                   when a metrics handler is configured
//
// Errors are returned as {"detail": "..."}: malformed requests map to 400,
// missing player data to 404, and engine failures to 500.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/coach"
)

// MaxBodyBytes bounds request bodies, which may carry whole PGN files.
const MaxBodyBytes = 8 << 20

// Service is the part of coach.Client served over HTTP.
type Service interface {
	AnalyzeMove(ctx context.Context, req coach.MoveRequest) (*coach.MoveAnalysis, error)
	AnalyzeMoveDeep(ctx context.Context, req coach.MoveRequest) (*coach.DeepAnalysis, error)
	ExplainMove(ctx context.Context, req coach.MoveRequest) (*coach.Explanation, error)
	Profile(ctx context.Context, username string) (*coach.Profile, error)
	RebuildProfile(ctx context.Context, username string) (*coach.Profile, error)
	Feedback(ctx context.Context, username string) (*coach.FeedbackReport, error)
	BestMove(ctx context.Context, fen string, movetime time.Duration) (*coach.Prediction, error)
	AnalyzeGame(ctx context.Context, source, pgn string, depth int) (*coach.GameAnalysis, error)
	AnalyzeAndStore(ctx context.Context, source, pgn string, depth int) (*coach.GameAnalysis, error)
	RecentAnalyses(ctx context.Context, limit int) ([]coach.GameAnalysis, error)
	EngineErr() error
	FeedbackAvailable() bool
}

// Compile-time check that coach.Client implements Service.
var _ Service = (*coach.Client)(nil)

// Server routes HTTP requests to a Service.
type Server struct {
	svc     Service
	mux     *http.ServeMux
	logger  *zap.Logger
	metrics http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics serves h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New creates a Server for svc.
func New(svc Service, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		mux:    http.NewServeMux(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /analyze/move", s.handleAnalyzeMove)
	s.mux.HandleFunc("POST /analyze/move/deep", s.handleAnalyzeMoveDeep)
	s.mux.HandleFunc("POST /analyze/move/explain", s.handleExplainMove)
	s.mux.HandleFunc("GET /profile/{username}", s.handleProfile)
	s.mux.HandleFunc("POST /profile/{username}/rebuild", s.handleRebuildProfile)
	s.mux.HandleFunc("GET /feedback/{username}", s.handleFeedback)
	s.mux.HandleFunc("POST /model/predict", s.handlePredict)
	s.mux.HandleFunc("POST /analysis/game", s.handleAnalyzeGame)
	s.mux.HandleFunc("GET /analyses", s.handleAnalyses)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	r.Body = http.MaxBytesReader(rec, r.Body, MaxBodyBytes)

	s.mux.ServeHTTP(rec, r)

	s.logger.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("elapsed", time.Since(start)),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
