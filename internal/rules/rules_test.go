package rules

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/notnil/chess"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestParseFEN(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "starting position", input: startFEN},
		{name: "four fields", input: "4k3/8/8/8/8/8/8/4K2R w K -"},
		{name: "garbage", input: "not a fen", wantErr: true},
		{name: "bad side", input: "4k3/8/8/8/8/8/8/4K2R x K - 0 1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFEN(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFEN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidFEN) {
				t.Errorf("ParseFEN() error = %v, want ErrInvalidFEN", err)
			}
		})
	}
}

func TestParseUCI(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	tests := []struct {
		name    string
		move    string
		wantErr error
	}{
		{name: "legal pawn push", move: "e2e4"},
		{name: "legal knight move", move: "g1f3"},
		{name: "illegal", move: "e2e5", wantErr: ErrIllegalMove},
		{name: "empty", move: "", wantErr: ErrInvalidMove},
		{name: "bad square", move: "z9e4", wantErr: ErrInvalidMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := pos.ParseUCI(tt.move)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseUCI(%q) error = %v, want %v", tt.move, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseUCI(%q) error = %v", tt.move, err)
			}
			if m.String() != tt.move {
				t.Errorf("ParseUCI(%q) = %s", tt.move, m)
			}
		})
	}
}

func TestPlyIndex(t *testing.T) {
	tests := []struct {
		fen  string
		want int
	}{
		{startFEN, 1},
		{"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", 2},
		{"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3", 5},
		{"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3", 6},
	}

	for _, tt := range tests {
		pos, err := ParseFEN(tt.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q) error = %v", tt.fen, err)
		}
		if got := pos.PlyIndex(); got != tt.want {
			t.Errorf("PlyIndex(%q) = %d, want %d", tt.fen, got, tt.want)
		}
	}
}

func TestMoveTags(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/ppppp1pp/5p2/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	m, err := pos.ParseUCI("d1h5")
	if err != nil {
		t.Fatalf("ParseUCI() error = %v", err)
	}
	if !pos.MovesQueen(m) {
		t.Error("MovesQueen() = false, want true")
	}
	if !GivesCheck(m) {
		t.Error("GivesCheck() = false, want true")
	}
	if IsCapture(m) || IsCastle(m) {
		t.Error("queen check reported as capture or castle")
	}
	if got := pos.SAN(m); got != "Qh5+" {
		t.Errorf("SAN() = %q, want %q", got, "Qh5+")
	}

	castle, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}
	m, err = castle.ParseUCI("e1g1")
	if err != nil {
		t.Fatalf("ParseUCI() error = %v", err)
	}
	if !IsCastle(m) {
		t.Error("IsCastle() = false, want true")
	}
}

func TestSANLine(t *testing.T) {
	pos, err := ParseFEN(startFEN)
	if err != nil {
		t.Fatalf("ParseFEN() error = %v", err)
	}

	tests := []struct {
		name string
		uci  []string
		max  int
		want []string
	}{
		{"full line", []string{"e2e4", "e7e5", "g1f3"}, 8, []string{"e4", "e5", "Nf3"}},
		{"truncated", []string{"e2e4", "e7e5", "g1f3"}, 2, []string{"e4", "e5"}},
		{"stops at illegal", []string{"e2e4", "e2e4"}, 8, []string{"e4"}},
		{"empty", nil, 8, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SANLine(pos, tt.uci, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SANLine() = %v, want %v", got, tt.want)
			}
		})
	}
}

const twoGames = `[Event "Live Chess"]
[White "Alice"]
[Black "bob"]
[Opening "Italian Game"]
[ECO "C50"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 1-0

[Event "Live Chess"]
[White "carol"]
[Black "Alice"]
[ECO "B01"]

1. e4 d5 2. exd5 Qxd5 0-1
`

func TestScanner(t *testing.T) {
	sc := NewScanner(strings.NewReader(twoGames))

	g1, err := sc.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if side, ok := g1.Side("alice"); !ok || side != chess.White {
		t.Errorf("Side(alice) = %v, %v, want White, true", side, ok)
	}
	if got := g1.Opening(); got != "Italian Game" {
		t.Errorf("Opening() = %q, want %q", got, "Italian Game")
	}
	if got := len(g1.Moves()); got != 6 {
		t.Errorf("len(Moves()) = %d, want 6", got)
	}
	if got := len(g1.Positions()); got != 7 {
		t.Errorf("len(Positions()) = %d, want 7", got)
	}

	g2, err := sc.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if side, ok := g2.Side("ALICE"); !ok || side != chess.Black {
		t.Errorf("Side(ALICE) = %v, %v, want Black, true", side, ok)
	}
	if got := g2.Opening(); got != "B01" {
		t.Errorf("Opening() = %q, want ECO fallback %q", got, "B01")
	}
	if _, ok := g2.Side("dave"); ok {
		t.Error("Side(dave) matched, want no match")
	}

	if _, err := sc.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestScannerSkipsBrokenGames(t *testing.T) {
	input := `[Event "Broken"]
[White "a"]
[Black "b"]

1. e4 e5 2. Ke8 1-0

` + twoGames

	sc := NewScanner(strings.NewReader(input))
	var n int
	for {
		_, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		n++
	}

	if n != 2 {
		t.Errorf("parsed %d games, want 2", n)
	}
	if sc.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", sc.Skipped())
	}
}
