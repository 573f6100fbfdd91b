package memoracle

import (
	"context"
	"errors"
	"testing"

	"github.com/discochess/coach/internal/oracle"
)

const start = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestEngineScripted(t *testing.T) {
	e := New(nil)
	e.Set(start,
		oracle.Info{Score: oracle.CP(30), PV: []string{"e2e4"}},
		oracle.Info{Score: oracle.CP(25), PV: []string{"d2d4"}},
	)

	// Move counters are ignored when matching positions.
	infos, err := e.Analyse(context.Background(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 3 9", oracle.Depth(1), 1)
	if err != nil {
		t.Fatalf("Analyse() error = %v", err)
	}
	if len(infos) != 1 || infos[0].PV[0] != "e2e4" {
		t.Errorf("Analyse() = %+v, want only the best line", infos)
	}

	infos, err = e.Analyse(context.Background(), start, oracle.Depth(1), 5)
	if err != nil {
		t.Fatalf("Analyse() error = %v", err)
	}
	if len(infos) != 2 || infos[1].MultiPV != 2 {
		t.Errorf("Analyse() = %+v, want two ranked lines", infos)
	}

	move, err := e.Play(context.Background(), start, oracle.Depth(1))
	if err != nil || move != "e2e4" {
		t.Errorf("Play() = %q, %v, want e2e4", move, err)
	}

	if got := e.Calls(); got != 3 {
		t.Errorf("Calls() = %d, want 3", got)
	}
}

func TestEngineFailureAndClose(t *testing.T) {
	boom := errors.New("boom")
	e := New(Material)
	e.Fail(start, boom)

	if _, err := e.Analyse(context.Background(), start, oracle.Depth(1), 1); !errors.Is(err, boom) {
		t.Errorf("Analyse() error = %v, want %v", err, boom)
	}

	_ = e.Close()
	if _, err := e.Analyse(context.Background(), "4k3/8/8/8/8/8/8/4K3 w - - 0 1", oracle.Depth(1), 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Analyse() after Close error = %v, want ErrClosed", err)
	}
}

func TestMaterial(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want int
	}{
		{"balanced", start, 0},
		{"white up a rook, white to move", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", 500},
		{"white up a rook, black to move", "4k3/8/8/8/8/8/8/R3K3 b - - 0 1", -500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infos := Material(tt.fen)
			if len(infos) != 1 {
				t.Fatalf("Material() returned %d lines, want 1", len(infos))
			}
			if got := *infos[0].Score.Centipawns; got != tt.want {
				t.Errorf("score = %d, want %d", got, tt.want)
			}
			if len(infos[0].PV) != 1 {
				t.Errorf("PV = %v, want one legal move", infos[0].PV)
			}
		})
	}
}
