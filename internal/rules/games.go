package rules

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/notnil/chess"
)

// Game is a parsed PGN game.
type Game struct {
	game *chess.Game
}

// Tag returns the value of a PGN header, or "" when absent.
func (g *Game) Tag(key string) string {
	tp := g.game.GetTagPair(key)
	if tp == nil {
		return ""
	}
	return tp.Value
}

// Side returns the color username played, matched case-insensitively.
// The second result is false when username played neither side.
func (g *Game) Side(username string) (chess.Color, bool) {
	switch {
	case strings.EqualFold(g.Tag("White"), username):
		return chess.White, true
	case strings.EqualFold(g.Tag("Black"), username):
		return chess.Black, true
	default:
		return chess.NoColor, false
	}
}

// Opening returns the opening name, falling back to the ECO code.
func (g *Game) Opening() string {
	if name := g.Tag("Opening"); name != "" {
		return name
	}
	return g.Tag("ECO")
}

// Moves returns the moves of the main line.
func (g *Game) Moves() []*chess.Move {
	return g.game.Moves()
}

// Positions returns every position of the main line, starting position first.
// It holds one more entry than Moves.
func (g *Game) Positions() []*Position {
	raw := g.game.Positions()
	out := make([]*Position, len(raw))
	for i, p := range raw {
		out[i] = &Position{pos: p}
	}
	return out
}

// ParseGame parses a single PGN game.
func ParseGame(pgnText string) (*Game, error) {
	pgnFunc, err := chess.PGN(strings.NewReader(pgnText))
	if err != nil {
		return nil, fmt.Errorf("parsing PGN: %w", err)
	}
	return &Game{game: chess.NewGame(pgnFunc)}, nil
}

// Scanner iterates over the games of a multi-game PGN stream.
// Games that fail to parse are skipped and counted.
type Scanner struct {
	lines   *bufio.Scanner
	pending strings.Builder
	next    string
	skipped int
	eof     bool
}

// NewScanner returns a Scanner reading PGN text from r.
func NewScanner(r io.Reader) *Scanner {
	lines := bufio.NewScanner(r)
	// Increase buffer size for long movetext lines.
	lines.Buffer(make([]byte, 1024*1024), 1024*1024)
	return &Scanner{lines: lines}
}

// Next returns the next game that parses, or io.EOF when the stream is done.
func (s *Scanner) Next() (*Game, error) {
	for {
		text, err := s.nextText()
		if err != nil {
			return nil, err
		}
		g, err := ParseGame(text)
		if err != nil || len(g.Moves()) == 0 {
			s.skipped++
			continue
		}
		return g, nil
	}
}

// Skipped returns the number of games that failed to parse so far.
func (s *Scanner) Skipped() int {
	return s.skipped
}

// nextText returns the raw text of the next game.
func (s *Scanner) nextText() (string, error) {
	if s.eof {
		return "", io.EOF
	}

	s.pending.Reset()
	if s.next != "" {
		s.pending.WriteString(s.next)
		s.pending.WriteString("\n")
		s.next = ""
	}

	for s.lines.Scan() {
		line := s.lines.Text()

		// Detect game boundaries.
		if strings.HasPrefix(line, "[Event ") && hasMovetext(s.pending.String()) {
			s.next = line
			return s.pending.String(), nil
		}

		if s.pending.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		s.pending.WriteString(line)
		s.pending.WriteString("\n")
	}

	if err := s.lines.Err(); err != nil {
		return "", fmt.Errorf("reading PGN: %w", err)
	}

	s.eof = true
	if strings.TrimSpace(s.pending.String()) == "" {
		return "", io.EOF
	}
	return s.pending.String(), nil
}

// hasMovetext reports whether the text contains a non-header line.
func hasMovetext(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "[") {
			return true
		}
	}
	return false
}
