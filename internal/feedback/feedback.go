// Package feedback turns profiles and move analyses into coaching text
// produced by a language model.
//
// A Coach never fails: when no model is configured, or the model call errors
// or returns nothing, it answers with UnavailableMessage.
package feedback

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/discochess/coach/internal/profile"
	"github.com/discochess/coach/internal/scorer"
)

// UnavailableMessage is returned in place of generated text.
const UnavailableMessage = "Gemini feedback is not available. Please configure a valid GEMINI_API_KEY and restart the server."

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Coach writes feedback through a Generator.
type Coach struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a Coach. A nil gen makes every answer UnavailableMessage.
func New(gen Generator, logger *zap.Logger) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coach{gen: gen, logger: logger.Named("feedback")}
}

// Available reports whether a generator is configured.
func (c *Coach) Available() bool {
	return c.gen != nil
}

// Proof explains one proof position of a profile.
func (c *Coach) Proof(ctx context.Context, p *profile.Profile, proof profile.Proof) string {
	return c.generate(ctx, ProofPrompt(p, proof))
}

// Move describes a live move for Explain.
type Move struct {
	FEN             string
	Move            string
	Analysis        scorer.Deep
	MatchesWeakness bool
}

// Explain explains a deep move analysis. p may be nil when the player has
// no profile yet.
func (c *Coach) Explain(ctx context.Context, p *profile.Profile, m Move) string {
	return c.generate(ctx, ExplainPrompt(p, m))
}

func (c *Coach) generate(ctx context.Context, prompt string) string {
	if c.gen == nil {
		return UnavailableMessage
	}
	text, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("generating feedback", zap.Error(err))
		return UnavailableMessage
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return UnavailableMessage
	}
	return text
}
