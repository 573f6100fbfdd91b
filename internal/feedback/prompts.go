package feedback

import (
	"strings"
	"text/template"

	"github.com/discochess/coach/internal/profile"
	"github.com/discochess/coach/internal/scorer"
)

var (
	proofTmpl = template.Must(template.New("proof").Parse(`You are a chess coach explaining mistakes to a human player.

PLAYER PROFILE:
- Average CPL: {{.Profile.AvgCPL}}
- Weak phase: {{.Profile.WeakPhase}}
- Style:
  - Early queen moves: {{.Profile.Style.EarlyQueen}}
  - Late castling: {{.Profile.Style.LateCastling}}
  - Aggressive: {{.Profile.Style.Aggressive}}

POSITION:
- FEN: {{.Proof.FEN}}
- Move played: {{.Proof.PlayedMove}}
- Centipawn loss: {{.Proof.CPL}}
- Classification: {{.Proof.Label}}
- Phase: {{.Proof.Phase}}

TASK:
Explain in simple, instructional language:
1. Why this move is bad
2. Which chess principle was violated
3. What the player should focus on improving, considering their usual weaknesses

RULES:
- Do NOT suggest engine-like calculations
- Do NOT mention Stockfish or engines
- Keep it concise (3-5 sentences)
- Be encouraging, not insulting
`))

	explainTmpl = template.Must(template.New("explain").Funcs(template.FuncMap{"join": joinMoves}).Parse(`You are a chess coach reviewing a single move a player just made.
{{if .Profile}}
PLAYER PROFILE:
- Average CPL: {{.Profile.AvgCPL}}
- Weak phase: {{.Profile.WeakPhase}}
- Early queen moves: {{.Profile.Style.EarlyQueen}}
- Late castling: {{.Profile.Style.LateCastling}}
- Aggressive: {{.Profile.Style.Aggressive}}
{{else}}
The player has no profile yet.
{{end}}
POSITION:
- FEN: {{.Move.FEN}}
- Move played: {{.Move.Move}}
- Centipawn loss: {{.A.CPL}}
- Classification: {{.A.Label}}
- Phase: {{.A.Phase}}
- Matches usual weakness: {{.Move.MatchesWeakness}}
- Stronger continuation: {{join .A.BestLine}}
- Line after the played move: {{join .A.PlayedLine}}

TASK:
Explain what the move changes in the position and what a stronger plan
would have looked like. If the move was good, say so briefly.

RULES:
- Do NOT mention Stockfish or engines
- Keep it concise (3-5 sentences)
- Be encouraging, not insulting
`))
)

func joinMoves(moves []string) string {
	if len(moves) == 0 {
		return "(none)"
	}
	return strings.Join(moves, " ")
}

// ProofPrompt builds the prompt explaining a proof position.
func ProofPrompt(p *profile.Profile, proof profile.Proof) string {
	return render(proofTmpl, struct {
		Profile *profile.Profile
		Proof   profile.Proof
	}{p, proof})
}

// ExplainPrompt builds the prompt explaining a live move.
func ExplainPrompt(p *profile.Profile, m Move) string {
	return render(explainTmpl, struct {
		Profile *profile.Profile
		Move    Move
		A       scorer.Deep
	}{p, m, m.Analysis})
}

func render(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		panic("feedback: rendering " + t.Name() + ": " + err.Error())
	}
	return b.String()
}
