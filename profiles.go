package coach

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/discochess/coach/internal/oracle"
	"github.com/discochess/coach/internal/profile"
	"github.com/discochess/coach/internal/store"
)

// Profile returns the stored profile of username, building and storing it
// from the player's game archive when none exists yet.
// The engine is held for the whole build.
func (c *Client) Profile(ctx context.Context, username string) (*Profile, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := store.ValidateUsername(username); err != nil {
		return nil, err
	}

	p, err := c.storedProfile(ctx, username)
	if !errors.Is(err, ErrProfileNotFound) {
		return p, err
	}
	return c.build(ctx, username)
}

// RebuildProfile builds the profile of username from its game archive and
// replaces any stored profile.
func (c *Client) RebuildProfile(ctx context.Context, username string) (*Profile, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := store.ValidateUsername(username); err != nil {
		return nil, err
	}
	return c.build(ctx, username)
}

// Feedback returns coaching text for each proof position of the stored
// profile of username. It never builds a profile.
func (c *Client) Feedback(ctx context.Context, username string) (*FeedbackReport, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := store.ValidateUsername(username); err != nil {
		return nil, err
	}

	p, err := c.storedProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(p.Proofs) == 0 {
		return nil, ErrNoProofs
	}

	report := &FeedbackReport{
		Username: username,
		Feedback: make([]FeedbackItem, 0, len(p.Proofs)),
	}
	for _, proof := range p.Proofs {
		report.Feedback = append(report.Feedback, FeedbackItem{
			MoveNumber: proof.MoveNumber,
			PlayedMove: proof.PlayedMove,
			Label:      proof.Label,
			Feedback:   c.coach.Proof(ctx, p, proof),
		})
	}
	return report, nil
}

// build profiles username from the game archive and stores the result.
// Concurrent builds of the same player share one walk.
func (c *Client) build(ctx context.Context, username string) (*Profile, error) {
	v, err, shared := c.builds.Do(username, func() (any, error) {
		games, err := c.store.OpenGames(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoGames, username)
		}
		if err != nil {
			return nil, fmt.Errorf("opening games: %w", err)
		}
		defer games.Close()

		var p *profile.Profile
		err = c.guard.Do(ctx, func(ev *oracle.Evaluator) error {
			var err error
			p, err = c.builder.Build(ctx, username, games, ev)
			return err
		})
		if err != nil {
			return nil, err
		}

		data, err := profile.Marshal(p)
		if err != nil {
			return nil, err
		}
		if err := c.store.WriteProfile(ctx, username, data); err != nil {
			return nil, fmt.Errorf("saving profile: %w", err)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("profile ready", zap.String("username", username), zap.Bool("shared", shared))
	return v.(*Profile), nil
}

// storedProfile loads a profile without building one.
func (c *Client) storedProfile(ctx context.Context, username string) (*Profile, error) {
	data, err := c.store.ReadProfile(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return profile.Unmarshal(data)
}
