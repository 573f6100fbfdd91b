// Package fen provides FEN (Forsyth-Edwards Notation) parsing utilities.
package fen

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidFEN indicates the FEN string is malformed.
var ErrInvalidFEN = errors.New("invalid FEN notation")

// Piece values used for non-pawn material counts.
const (
	MinorValue = 3
	RookValue  = 5
	QueenValue = 9
)

// Material represents the piece counts for both sides.
type Material struct {
	WhitePawns   int
	WhiteKnights int
	WhiteBishops int
	WhiteRooks   int
	WhiteQueens  int

	BlackPawns   int
	BlackKnights int
	BlackBishops int
	BlackRooks   int
	BlackQueens  int
}

// Queens returns the number of queens on the board for both sides.
func (m Material) Queens() int {
	return m.WhiteQueens + m.BlackQueens
}

// NonPawnPoints returns the combined value of all knights, bishops, rooks
// and queens for both sides.
func (m Material) NonPawnPoints() int {
	minors := m.WhiteKnights + m.WhiteBishops + m.BlackKnights + m.BlackBishops
	rooks := m.WhiteRooks + m.BlackRooks
	return minors*MinorValue + rooks*RookValue + m.Queens()*QueenValue
}

// Complete validates a FEN string and returns it with all six fields.
// Missing halfmove and fullmove counters default to "0 1".
func Complete(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return "", ErrInvalidFEN
	}

	if !isValidPiecePlacement(parts[0]) {
		return "", ErrInvalidFEN
	}

	if parts[1] != "w" && parts[1] != "b" {
		return "", ErrInvalidFEN
	}

	switch len(parts) {
	case 4:
		parts = append(parts, "0", "1")
	case 5:
		parts = append(parts, "1")
	}
	return strings.Join(parts, " "), nil
}

// FullMove returns the fullmove number of a FEN string.
// A missing counter is reported as 1.
func FullMove(fen string) (int, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return 0, ErrInvalidFEN
	}
	if len(parts) < 6 {
		return 1, nil
	}
	n, err := strconv.Atoi(parts[5])
	if err != nil || n < 1 {
		return 0, ErrInvalidFEN
	}
	return n, nil
}

// ParseMaterial extracts material counts from a FEN string.
func ParseMaterial(fen string) (Material, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return Material{}, ErrInvalidFEN
	}

	var m Material
	for _, ch := range parts[0] {
		switch ch {
		case 'P':
			m.WhitePawns++
		case 'N':
			m.WhiteKnights++
		case 'B':
			m.WhiteBishops++
		case 'R':
			m.WhiteRooks++
		case 'Q':
			m.WhiteQueens++
		case 'p':
			m.BlackPawns++
		case 'n':
			m.BlackKnights++
		case 'b':
			m.BlackBishops++
		case 'r':
			m.BlackRooks++
		case 'q':
			m.BlackQueens++
		case 'K', 'k':
			// Kings are always present, don't count
		case '/', '1', '2', '3', '4', '5', '6', '7', '8':
			// Valid FEN characters, ignore
		default:
			return Material{}, ErrInvalidFEN
		}
	}

	return m, nil
}

// SideToMove returns "w" or "b" from a FEN string.
func SideToMove(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return "", ErrInvalidFEN
	}
	if parts[1] != "w" && parts[1] != "b" {
		return "", ErrInvalidFEN
	}
	return parts[1], nil
}

// isValidPiecePlacement validates the piece placement part of a FEN.
func isValidPiecePlacement(placement string) bool {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return false
	}

	for _, rank := range ranks {
		squares := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				squares += int(ch - '0')
			case ch == 'P', ch == 'N', ch == 'B', ch == 'R', ch == 'Q', ch == 'K',
				ch == 'p', ch == 'n', ch == 'b', ch == 'r', ch == 'q', ch == 'k':
				squares++
			default:
				return false
			}
		}
		if squares != 8 {
			return false
		}
	}

	return true
}
