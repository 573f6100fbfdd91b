package coach

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/discochess/coach/internal/feedback"
	"github.com/discochess/coach/internal/history"
	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/oracle/memoracle"
	"github.com/discochess/coach/internal/profile"
	"github.com/discochess/coach/internal/stats"
	"github.com/discochess/coach/internal/store/memstore"
)

const (
	startFEN     = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	foolsMateFEN = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"

	startBoard = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"
	g4Board    = "rnbqkbnr/pppppppp/8/8/6P1/8/PPPPPP1P/RNBQKBNR"
	e4Board    = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR"
)

type line struct {
	cp int
	pv []string
}

// scripted answers by piece placement, so en passant and clock fields do
// not matter. Unknown positions are scored by material.
func scripted(lines map[string][]line) memoracle.Func {
	return func(fen string) []oracle.Info {
		ls, ok := lines[strings.Fields(fen)[0]]
		if !ok {
			return memoracle.Material(fen)
		}
		infos := make([]oracle.Info, len(ls))
		for i, l := range ls {
			infos[i] = oracle.Info{MultiPV: i + 1, Depth: 10, Score: oracle.CP(l.cp), PV: l.pv}
		}
		return infos
	}
}

func openingLines() map[string][]line {
	return map[string][]line{
		startBoard: {
			{30, []string{"e2e4", "e7e5", "g1f3"}},
			{25, []string{"d2d4", "d7d5"}},
			{20, []string{"e2e4", "c7c5"}},
		},
		g4Board: {{150, []string{"d7d5", "f1g2"}}},
		e4Board: {{-30, []string{"e7e5"}}},
	}
}

type fixture struct {
	client *Client
	engine *memoracle.Engine
	store  *memstore.Store
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	engine := memoracle.New(scripted(openingLines()))
	st := memstore.New()
	client, err := New(append([]Option{WithStore(st), WithEngine(engine)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return &fixture{client: client, engine: engine, store: st}
}

func (f *fixture) storeProfile(t *testing.T, p *profile.Profile) {
	t.Helper()
	data, err := profile.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.store.WriteProfile(context.Background(), p.Username, data); err != nil {
		t.Fatal(err)
	}
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return "Keep your king safe.", nil
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New()
	if !errors.Is(err, ErrNoStore) {
		t.Errorf("New() error = %v, want ErrNoStore", err)
	}
}

func TestNew_WithoutEngine(t *testing.T) {
	client, err := New(WithStore(memstore.New()), WithEngineError(errors.New("exec: stockfish not found")))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	err = client.EngineErr()
	if !errors.Is(err, ErrUnavailable) || !strings.Contains(err.Error(), "stockfish not found") {
		t.Errorf("EngineErr() = %v, want ErrUnavailable with cause", err)
	}
}

func TestAnalyzeMove_InputErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  MoveRequest
		want error
	}{
		{"bad fen", MoveRequest{Username: "alice", FEN: "not a fen", Move: "e2e4"}, ErrInvalidFEN},
		{"bad move syntax", MoveRequest{Username: "alice", FEN: startFEN, Move: "e2"}, ErrInvalidMove},
		{"illegal move", MoveRequest{Username: "alice", FEN: startFEN, Move: "e2e5"}, ErrIllegalMove},
		{"empty username", MoveRequest{FEN: startFEN, Move: "e2e4"}, ErrInvalidUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.client.AnalyzeMove(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("AnalyzeMove() error = %v, want %v", err, tt.want)
			}
			if !IsInputError(err) {
				t.Errorf("IsInputError(%v) = false", err)
			}
			if _, err := f.client.AnalyzeMoveDeep(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Errorf("AnalyzeMoveDeep() error = %v, want %v", err, tt.want)
			}
		})
	}

	if calls := f.engine.Calls(); calls != 0 {
		t.Errorf("engine calls = %d, want 0 for invalid input", calls)
	}
}

func TestAnalyzeMove_EngineUnavailable(t *testing.T) {
	client, err := New(WithStore(memstore.New()))
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	_, err = client.AnalyzeMove(context.Background(), MoveRequest{Username: "alice", FEN: startFEN, Move: "e2e4"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("AnalyzeMove() error = %v, want ErrUnavailable", err)
	}

	// Input is still validated first.
	_, err = client.AnalyzeMove(context.Background(), MoveRequest{Username: "alice", FEN: startFEN, Move: "e2e5"})
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("AnalyzeMove() error = %v, want ErrIllegalMove", err)
	}
}

func TestAnalyzeMove(t *testing.T) {
	rec := stats.NewRecorder()
	f := newFixture(t, WithStats(rec))
	f.storeProfile(t, &profile.Profile{Username: "alice", WeakPhase: Opening})
	f.storeProfile(t, &profile.Profile{Username: "bob", WeakPhase: Endgame})

	tests := []struct {
		name         string
		req          MoveRequest
		wantCPL      int
		wantLabel    Label
		wantMatches  bool
		wantFeedback string
	}{
		{
			name:      "best move",
			req:       MoveRequest{Username: "alice", FEN: startFEN, Move: "e2e4"},
			wantCPL:   0,
			wantLabel: Good,
		},
		{
			name:         "mistake in weak phase",
			req:          MoveRequest{Username: "alice", FEN: startFEN, Move: "g2g4"},
			wantCPL:      180,
			wantLabel:    Mistake,
			wantMatches:  true,
			wantFeedback: "This move worsens your position. Focus on safety, development, and solid plans. This matches your usual weakness in the opening.",
		},
		{
			name:         "mistake in another phase",
			req:          MoveRequest{Username: "bob", FEN: startFEN, Move: "g2g4"},
			wantCPL:      180,
			wantLabel:    Mistake,
			wantFeedback: "This move worsens your position. Focus on safety, development, and solid plans.",
		},
		{
			name:         "player without profile",
			req:          MoveRequest{Username: "carol", FEN: startFEN, Move: "g2g4"},
			wantCPL:      180,
			wantLabel:    Mistake,
			wantFeedback: "This move worsens your position. Focus on safety, development, and solid plans.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.client.AnalyzeMove(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("AnalyzeMove() error = %v", err)
			}
			if res.CPL != tt.wantCPL || res.Label != tt.wantLabel || res.Phase != Opening {
				t.Errorf("got cpl=%d label=%s phase=%s, want %d %s opening", res.CPL, res.Label, res.Phase, tt.wantCPL, tt.wantLabel)
			}
			if res.MatchesProfileWeakness != tt.wantMatches {
				t.Errorf("MatchesProfileWeakness = %v, want %v", res.MatchesProfileWeakness, tt.wantMatches)
			}
			if res.Feedback != tt.wantFeedback {
				t.Errorf("Feedback = %q, want %q", res.Feedback, tt.wantFeedback)
			}
			if strings.Join(res.SuggestedGoodMoves, ",") != "e2e4,d2d4" {
				t.Errorf("SuggestedGoodMoves = %v, want [e2e4 d2d4]", res.SuggestedGoodMoves)
			}
		})
	}

	if got := rec.Counter(stats.MetricLiveAnalyses); got != int64(len(tests)) {
		t.Errorf("live analyses = %d, want %d", got, len(tests))
	}
}

func TestAnalyzeMoveDeep(t *testing.T) {
	f := newFixture(t)
	f.storeProfile(t, &profile.Profile{Username: "alice", WeakPhase: Opening})
	req := MoveRequest{Username: "alice", FEN: startFEN, Move: "g2g4"}

	res, err := f.client.AnalyzeMoveDeep(context.Background(), req)
	if err != nil {
		t.Fatalf("AnalyzeMoveDeep() error = %v", err)
	}

	want := DeepAnalysis{
		CPL:                    180,
		Label:                  Mistake,
		Phase:                  Opening,
		MatchesProfileWeakness: true,
		BestMove:               "e2e4",
		EvalBest:               30,
		EvalPlayed:             -150,
		EvalDelta:              180,
		Depth:                  DefaultDeepDepth,
	}
	if res.CPL != want.CPL || res.Label != want.Label || res.Phase != want.Phase ||
		res.MatchesProfileWeakness != want.MatchesProfileWeakness || res.BestMove != want.BestMove ||
		res.EvalBest != want.EvalBest || res.EvalPlayed != want.EvalPlayed ||
		res.EvalDelta != want.EvalDelta || res.Depth != want.Depth {
		t.Errorf("AnalyzeMoveDeep() = %+v, want %+v", *res, want)
	}
	if got := strings.Join(res.BestLine, " "); got != "e4 e5 Nf3" {
		t.Errorf("BestLine = %q, want %q", got, "e4 e5 Nf3")
	}
	if got := strings.Join(res.PlayedLine, " "); got != "g4 d5 Bg2" {
		t.Errorf("PlayedLine = %q, want %q", got, "g4 d5 Bg2")
	}

	calls := f.engine.Calls()
	again, err := f.client.AnalyzeMoveDeep(context.Background(), req)
	if err != nil {
		t.Fatalf("second AnalyzeMoveDeep() error = %v", err)
	}
	if f.engine.Calls() != calls {
		t.Errorf("engine calls grew from %d to %d on a cached request", calls, f.engine.Calls())
	}
	if again.CPL != res.CPL || again.EvalDelta != res.EvalDelta {
		t.Errorf("cached result differs: %+v vs %+v", *again, *res)
	}

	req.PVLen = 1
	short, err := f.client.AnalyzeMoveDeep(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if f.engine.Calls() == calls {
		t.Error("different pv length served from cache")
	}
	if len(short.BestLine) != 1 || len(short.PlayedLine) != 1 {
		t.Errorf("pv_len=1 lines = %v / %v", short.BestLine, short.PlayedLine)
	}
}

func TestAnalyzeMoveDeep_FailureNotCached(t *testing.T) {
	f := newFixture(t)
	req := MoveRequest{Username: "alice", FEN: startFEN, Move: "e2e4"}

	f.engine.Fail(startFEN, errors.New("engine crashed"))
	if _, err := f.client.AnalyzeMoveDeep(context.Background(), req); err == nil {
		t.Fatal("AnalyzeMoveDeep() error = nil with failing engine")
	}

	f.engine.Fail(startFEN, nil)
	if _, err := f.client.AnalyzeMoveDeep(context.Background(), req); err != nil {
		t.Errorf("AnalyzeMoveDeep() after recovery error = %v", err)
	}
}

func TestExplainMove(t *testing.T) {
	gen := &fakeGenerator{}
	f := newFixture(t, WithFeedback(gen))
	req := MoveRequest{Username: "alice", FEN: startFEN, Move: "g2g4"}

	res, err := f.client.ExplainMove(context.Background(), req)
	if err != nil {
		t.Fatalf("ExplainMove() error = %v", err)
	}
	if res.Explanation != "Keep your king safe." {
		t.Errorf("Explanation = %q", res.Explanation)
	}
	if res.Analysis.CPL != 180 || res.Analysis.MatchesProfileWeakness {
		t.Errorf("Analysis = %+v", res.Analysis)
	}

	calls := f.engine.Calls()
	if _, err := f.client.ExplainMove(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
	if f.engine.Calls() != calls {
		t.Error("cached explanation queried the engine")
	}
}

func TestExplainMove_WithoutGenerator(t *testing.T) {
	f := newFixture(t)
	res, err := f.client.ExplainMove(context.Background(), MoveRequest{Username: "alice", FEN: startFEN, Move: "e2e4"})
	if err != nil {
		t.Fatalf("ExplainMove() error = %v", err)
	}
	if res.Explanation != feedback.UnavailableMessage {
		t.Errorf("Explanation = %q, want unavailable message", res.Explanation)
	}
}

// flakyGenerator fails its first call.
type flakyGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *flakyGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.calls == 1 {
		return "", errors.New("503 service unavailable")
	}
	return "Develop before attacking.", nil
}

func TestExplainMove_FallbackNotCached(t *testing.T) {
	gen := &flakyGenerator{}
	f := newFixture(t, WithFeedback(gen))
	req := MoveRequest{Username: "alice", FEN: startFEN, Move: "g2g4"}

	first, err := f.client.ExplainMove(context.Background(), req)
	if err != nil {
		t.Fatalf("ExplainMove() error = %v", err)
	}
	if first.Explanation != feedback.UnavailableMessage || first.Analysis.CPL != 180 {
		t.Errorf("first ExplainMove() = %+v, want fallback text with analysis", first)
	}

	for i := 0; i < 2; i++ {
		res, err := f.client.ExplainMove(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if res.Explanation != "Develop before attacking." {
			t.Errorf("ExplainMove() #%d = %q, want generated text", i+2, res.Explanation)
		}
	}
	if gen.calls != 2 {
		t.Errorf("generator calls = %d, want 2", gen.calls)
	}
}

func TestAnalyzeMoveDeep_CachedHitSkipsEngineLock(t *testing.T) {
	f := newFixture(t)
	req := MoveRequest{Username: "alice", FEN: startFEN, Move: "g2g4"}
	if _, err := f.client.AnalyzeMoveDeep(context.Background(), req); err != nil {
		t.Fatalf("AnalyzeMoveDeep() error = %v", err)
	}
	calls := f.engine.Calls()

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- f.client.guard.Do(context.Background(), func(*oracle.Evaluator) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer func() {
		close(release)
		if err := <-done; err != nil {
			t.Errorf("guard.Do() error = %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := f.client.AnalyzeMoveDeep(ctx, req)
	if err != nil {
		t.Fatalf("cached AnalyzeMoveDeep() with engine busy error = %v", err)
	}
	if res.CPL != 180 || res.Label != Mistake {
		t.Errorf("cached AnalyzeMoveDeep() = %+v", *res)
	}
	if f.engine.Calls() != calls {
		t.Errorf("engine calls grew from %d to %d on a cached request", calls, f.engine.Calls())
	}
}

func TestBestMove(t *testing.T) {
	f := newFixture(t)

	got, err := f.client.BestMove(context.Background(), startFEN, 0)
	if err != nil {
		t.Fatalf("BestMove() error = %v", err)
	}
	if got.Move != "e4" {
		t.Errorf("BestMove() = %q, want e4", got.Move)
	}

	calls := f.engine.Calls()
	over, err := f.client.BestMove(context.Background(), foolsMateFEN, time.Second)
	if err != nil {
		t.Fatalf("BestMove() on mate error = %v", err)
	}
	if over.Move != "" || over.Message != "Game over" {
		t.Errorf("BestMove() on mate = %+v", over)
	}
	if f.engine.Calls() != calls {
		t.Error("finished game queried the engine")
	}

	if _, err := f.client.BestMove(context.Background(), "garbage", 0); !errors.Is(err, ErrInvalidFEN) {
		t.Errorf("BestMove() error = %v, want ErrInvalidFEN", err)
	}
}

const aliceGames = `[Event "Casual"]
[White "Alice"]
[Black "bob"]
[ECO "C20"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0

[Event "Casual"]
[White "carol"]
[Black "alice"]
[Opening "Queen's Gambit Declined"]

1. d4 d5 2. c4 e6 3. Nc3 Nf6 1/2-1/2
`

func TestProfile_BuildsOnceAndStores(t *testing.T) {
	f := newFixture(t)
	f.store.SetGames("alice", aliceGames)

	p, err := f.client.Profile(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if p.Username != "alice" || p.GamesAnalyzed != 2 {
		t.Errorf("Profile() = %s with %d games, want alice with 2", p.Username, p.GamesAnalyzed)
	}
	if f.store.Writes() != 1 {
		t.Errorf("store writes = %d, want 1", f.store.Writes())
	}

	calls := f.engine.Calls()
	again, err := f.client.Profile(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if f.engine.Calls() != calls || f.store.Writes() != 1 {
		t.Error("stored profile was rebuilt")
	}
	if again.GamesAnalyzed != p.GamesAnalyzed || again.AvgCPL != p.AvgCPL {
		t.Errorf("stored profile differs: %+v vs %+v", again, p)
	}

	if _, err := f.client.RebuildProfile(context.Background(), "alice"); err != nil {
		t.Fatalf("RebuildProfile() error = %v", err)
	}
	if f.store.Writes() != 2 {
		t.Errorf("store writes after rebuild = %d, want 2", f.store.Writes())
	}
}

func TestProfile_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.Profile(context.Background(), "nobody")
	if !errors.Is(err, ErrNoGames) || !IsDataError(err) {
		t.Errorf("Profile(nobody) error = %v, want ErrNoGames", err)
	}

	if _, err := f.client.Profile(context.Background(), "../etc"); !errors.Is(err, ErrInvalidUsername) {
		t.Errorf("Profile(../etc) error = %v, want ErrInvalidUsername", err)
	}

	noEngine, err := New(WithStore(f.store))
	if err != nil {
		t.Fatal(err)
	}
	defer noEngine.Close()
	f.store.SetGames("dave", aliceGames)
	if _, err := noEngine.Profile(context.Background(), "dave"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Profile() without engine error = %v, want ErrUnavailable", err)
	}

	f.storeProfile(t, &profile.Profile{Username: "erin", GamesAnalyzed: 7})
	p, err := noEngine.Profile(context.Background(), "erin")
	if err != nil || p.GamesAnalyzed != 7 {
		t.Errorf("stored Profile() without engine = %v, %v", p, err)
	}
}

func TestFeedback(t *testing.T) {
	f := newFixture(t)

	if _, err := f.client.Feedback(context.Background(), "alice"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Feedback() error = %v, want ErrProfileNotFound", err)
	}

	f.storeProfile(t, &profile.Profile{Username: "bob"})
	if _, err := f.client.Feedback(context.Background(), "bob"); !errors.Is(err, ErrNoProofs) {
		t.Errorf("Feedback() error = %v, want ErrNoProofs", err)
	}

	f.storeProfile(t, &profile.Profile{
		Username: "alice",
		Proofs: []Proof{
			{PlayedMove: "d1h5", Label: Mistake, MoveNumber: 2},
			{PlayedMove: "g2g4", Label: Blunder, MoveNumber: 1},
		},
	})
	report, err := f.client.Feedback(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Feedback() error = %v", err)
	}
	if len(report.Feedback) != 2 {
		t.Fatalf("len(Feedback) = %d, want 2", len(report.Feedback))
	}
	item := report.Feedback[0]
	if item.MoveNumber != 2 || item.PlayedMove != "d1h5" || item.Label != Mistake {
		t.Errorf("Feedback[0] = %+v", item)
	}
	if item.Feedback != feedback.UnavailableMessage {
		t.Errorf("Feedback[0].Feedback = %q, want unavailable message", item.Feedback)
	}
	if f.engine.Calls() != 0 {
		t.Error("Feedback queried the engine")
	}
}

func TestAnalyzeGame(t *testing.T) {
	f := newFixture(t)
	pgn := `[White "alice"]
[Black "bob"]

1. e4 e5 2. Qh5 Nc6 *`

	r, err := f.client.AnalyzeGame(context.Background(), "casual.pgn", pgn, 0)
	if err != nil {
		t.Fatalf("AnalyzeGame() error = %v", err)
	}
	if r.Source != "casual.pgn" || r.White != "alice" || r.Black != "bob" {
		t.Errorf("header fields = %q %q %q", r.Source, r.White, r.Black)
	}
	if r.MovesAnalyzed != 4 || len(r.Moves) != 4 {
		t.Fatalf("moves = %d/%d, want 4", r.MovesAnalyzed, len(r.Moves))
	}
	if r.Moves[0].Played != "e4" || r.Moves[0].Best != "e4" || r.Moves[0].CPL != 0 {
		t.Errorf("Moves[0] = %+v", r.Moves[0])
	}
	if r.Moves[2].Played != "Qh5" || r.Moves[2].Ply != 3 {
		t.Errorf("Moves[2] = %+v", r.Moves[2])
	}
	if r.AvgCPL != 0 || r.Accuracy != 100 {
		t.Errorf("avg/accuracy = %d/%v, want 0/100", r.AvgCPL, r.Accuracy)
	}
	if calls := f.engine.Calls(); calls != 5 {
		t.Errorf("engine calls = %d, want one per position (5)", calls)
	}

	if _, err := f.client.AnalyzeGame(context.Background(), "x", "[White \"a\"]\n\n*", 0); !errors.Is(err, ErrInvalidPGN) {
		t.Errorf("AnalyzeGame() on empty game error = %v, want ErrInvalidPGN", err)
	}
}

func TestAnalyzeAndStore(t *testing.T) {
	f := newFixture(t)
	if _, err := f.client.AnalyzeAndStore(context.Background(), "g.pgn", "1. e4 e5 *", 0); !errors.Is(err, ErrNoHistory) {
		t.Errorf("AnalyzeAndStore() without history error = %v, want ErrNoHistory", err)
	}

	h, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	f = newFixture(t, WithHistory(h))

	saved, err := f.client.AnalyzeAndStore(context.Background(), "g.pgn", "1. e4 e5 *", 0)
	if err != nil {
		t.Fatalf("AnalyzeAndStore() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("saved analysis has no ID")
	}

	recent, err := f.client.RecentAnalyses(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentAnalyses() error = %v", err)
	}
	if len(recent) != 1 || recent[0].ID != saved.ID {
		t.Errorf("RecentAnalyses() = %+v", recent)
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		avg  int
		want float64
	}{
		{0, 100},
		{37, 96.3},
		{250, 75},
		{1000, 0},
		{5000, 0},
	}
	for _, tt := range tests {
		if got := accuracy(tt.avg); got != tt.want {
			t.Errorf("accuracy(%d) = %v, want %v", tt.avg, got, tt.want)
		}
	}
}

func TestClient_Close(t *testing.T) {
	client, err := New(WithStore(memstore.New()), WithEngine(memoracle.New(nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := client.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("Close() second call error = %v, want ErrClosed", err)
	}

	if _, err := client.AnalyzeMove(context.Background(), MoveRequest{Username: "a", FEN: startFEN, Move: "e2e4"}); !errors.Is(err, ErrClosed) {
		t.Errorf("AnalyzeMove() after close error = %v, want ErrClosed", err)
	}
	if _, err := client.Profile(context.Background(), "a"); !errors.Is(err, ErrClosed) {
		t.Errorf("Profile() after close error = %v, want ErrClosed", err)
	}
}

func TestErrorClassification(t *testing.T) {
	if IsInputError(ErrNoGames) || IsDataError(ErrInvalidFEN) {
		t.Error("input and data errors overlap")
	}
	if IsInputError(ErrUnavailable) || IsDataError(ErrUnavailable) {
		t.Error("engine errors classified as input or data errors")
	}
}
