// Package rules adapts github.com/notnil/chess to the narrow set of chess
// rules the coach needs: FEN parsing, move legality, SAN rendering and PGN
// game iteration.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/discochess/coach/internal/fen"
)

// Input errors. They are reported to the caller before any engine work.
var (
	// ErrInvalidFEN indicates the position string could not be parsed.
	ErrInvalidFEN = errors.New("rules: invalid FEN")

	// ErrInvalidMove indicates the move is not syntactically valid UCI.
	ErrInvalidMove = errors.New("rules: invalid move format")

	// ErrIllegalMove indicates the move is well formed but not legal here.
	ErrIllegalMove = errors.New("rules: illegal move")
)

// Position is an immutable chess position.
type Position struct {
	pos *chess.Position
}

// ParseFEN parses a FEN string. Missing move counters default to "0 1".
func ParseFEN(s string) (*Position, error) {
	full, err := fen.Complete(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFEN, s)
	}

	opt, err := chess.FEN(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}

	return &Position{pos: chess.NewGame(opt).Position()}, nil
}

// FEN returns the position in Forsyth-Edwards Notation.
func (p *Position) FEN() string {
	return p.pos.String()
}

// Turn returns the side to move.
func (p *Position) Turn() chess.Color {
	return p.pos.Turn()
}

// FullMove returns the fullmove counter.
func (p *Position) FullMove() int {
	n, err := fen.FullMove(p.FEN())
	if err != nil {
		return 1
	}
	return n
}

// PlyIndex returns the 1-based ply of the next move: 1 for White's first
// move, 2 for Black's reply, and so on.
func (p *Position) PlyIndex() int {
	ply := (p.FullMove() - 1) * 2
	if p.Turn() == chess.White {
		return ply + 1
	}
	return ply + 2
}

// ParseUCI resolves a UCI move string against the position.
// The returned move carries capture, check and castling tags.
func (p *Position) ParseUCI(s string) (*chess.Move, error) {
	s = strings.TrimSpace(s)
	decoded, err := chess.UCINotation{}.Decode(p.pos, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}

	want := decoded.String()
	for _, m := range p.pos.ValidMoves() {
		if m.String() == want {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrIllegalMove, s, p.FEN())
}

// Apply returns the position after a legal move.
func (p *Position) Apply(m *chess.Move) *Position {
	return &Position{pos: p.pos.Update(m)}
}

// SAN renders a legal move in standard algebraic notation.
func (p *Position) SAN(m *chess.Move) string {
	return chess.AlgebraicNotation{}.Encode(p.pos, m)
}

// MovesQueen reports whether the piece on the move's origin square is a queen.
func (p *Position) MovesQueen(m *chess.Move) bool {
	return p.pos.Board().Piece(m.S1()).Type() == chess.Queen
}

// IsCapture reports whether the move captures, including en passant.
func IsCapture(m *chess.Move) bool {
	return m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)
}

// GivesCheck reports whether the move checks the opponent.
func GivesCheck(m *chess.Move) bool {
	return m.HasTag(chess.Check)
}

// IsCastle reports whether the move castles on either side.
func IsCastle(m *chess.Move) bool {
	return m.HasTag(chess.KingSideCastle) || m.HasTag(chess.QueenSideCastle)
}

// SANLine converts a line of UCI moves to SAN starting from pos, stopping at
// max moves or at the first move that is not legal.
func SANLine(pos *Position, uciMoves []string, max int) []string {
	line := make([]string, 0, min(len(uciMoves), max))
	for _, s := range uciMoves {
		if len(line) >= max {
			break
		}
		m, err := pos.ParseUCI(s)
		if err != nil {
			break
		}
		line = append(line, pos.SAN(m))
		pos = pos.Apply(m)
	}
	return line
}

// LegalMoves returns every legal move in UCI notation.
func (p *Position) LegalMoves() []string {
	valid := p.pos.ValidMoves()
	moves := make([]string, len(valid))
	for i, m := range valid {
		moves[i] = m.String()
	}
	return moves
}
