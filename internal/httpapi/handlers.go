package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/coach"
)

type predictRequest struct {
	FEN string `json:"fen"`

	// MoveTimeMS overrides the search time in milliseconds.
	MoveTimeMS int `json:"movetime_ms,omitempty"`
}

type gameRequest struct {
	PGN   string `json:"pgn"`
	File  string `json:"file,omitempty"`
	Depth int    `json:"depth,omitempty"`
	Store bool   `json:"store,omitempty"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Engine   bool   `json:"engine"`
	Error    string `json:"engine_error,omitempty"`
	Feedback bool   `json:"feedback"`
}

func (s *Server) handleAnalyzeMove(w http.ResponseWriter, r *http.Request) {
	var req coach.MoveRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.svc.AnalyzeMove(r.Context(), req)
	s.respond(w, res, err)
}

func (s *Server) handleAnalyzeMoveDeep(w http.ResponseWriter, r *http.Request) {
	var req coach.MoveRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.svc.AnalyzeMoveDeep(r.Context(), req)
	s.respond(w, res, err)
}

func (s *Server) handleExplainMove(w http.ResponseWriter, r *http.Request) {
	var req coach.MoveRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.svc.ExplainMove(r.Context(), req)
	s.respond(w, res, err)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Profile(r.Context(), r.PathValue("username"))
	s.respond(w, res, err)
}

func (s *Server) handleRebuildProfile(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.RebuildProfile(r.Context(), r.PathValue("username"))
	s.respond(w, res, err)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Feedback(r.Context(), r.PathValue("username"))
	s.respond(w, res, err)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !s.decode(w, r, &req) {
		return
	}
	movetime := time.Duration(req.MoveTimeMS) * time.Millisecond
	res, err := s.svc.BestMove(r.Context(), req.FEN, movetime)
	s.respond(w, res, err)
}

func (s *Server) handleAnalyzeGame(w http.ResponseWriter, r *http.Request) {
	var req gameRequest
	if !s.decode(w, r, &req) {
		return
	}
	analyze := s.svc.AnalyzeGame
	if req.Store {
		analyze = s.svc.AnalyzeAndStore
	}
	res, err := analyze(r.Context(), req.File, req.PGN, req.Depth)
	s.respond(w, res, err)
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	res, err := s.svc.RecentAnalyses(r.Context(), limit)
	s.respond(w, res, err)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{Status: "ok", Engine: true, Feedback: s.svc.FeedbackAvailable()}
	if err := s.svc.EngineErr(); err != nil {
		res.Engine = false
		res.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, res)
}

// decode reads a JSON body into v, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Warn("request failed", zap.Error(err))
		}
		writeError(w, status, detailFor(err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func statusFor(err error) int {
	switch {
	case coach.IsInputError(err):
		return http.StatusBadRequest
	case coach.IsDataError(err):
		return http.StatusNotFound
	case errors.Is(err, coach.ErrNoHistory):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func detailFor(err error) string {
	switch {
	case errors.Is(err, coach.ErrProfileNotFound):
		return "Profile not found"
	case errors.Is(err, coach.ErrNoProofs):
		return "No proof positions found"
	case errors.Is(err, coach.ErrNoGames):
		return "No PGN found for this user. Fetch/upload games first."
	case errors.Is(err, coach.ErrUnavailable):
		return "Stockfish engine failed to start: " + err.Error()
	default:
		return err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
