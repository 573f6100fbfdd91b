package phase

import "testing"

func TestClassify(t *testing.T) {
	const start = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	tests := []struct {
		name string
		fen  string
		ply  int
		want Phase
	}{
		{"first ply", start, 1, Opening},
		{"last opening ply", start, 16, Opening},
		{"full material after opening", start, 17, Middlegame},
		{"queens traded", "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNB1KBNR w KQkq - 0 20", 40, Endgame},
		{"queen and rook each", "3qk2r/8/8/8/8/8/8/3QK2R w - - 0 40", 80, Middlegame},
		{"queen and minor vs nothing", "4k3/8/8/8/8/8/8/2BQK3 w - - 0 40", 80, Endgame},
		{"endgame position still opening by ply", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", 10, Opening},
		{"unparseable", "garbage", 30, Middlegame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.fen, tt.ply); got != tt.want {
				t.Errorf("Classify(%q, %d) = %q, want %q", tt.fen, tt.ply, got, tt.want)
			}
		})
	}
}
