package service

import (
	"anoa.com/bragboard/internal/config"
	"anoa.com/bragboard/internal/entity"
	"github.com/google/uuid"
)

// Weights are the points awarded per unit of each counter.
type Weights = config.Weights

func DefaultWeights() Weights {
	return Weights{ShoutoutSent: 5, ReactionReceived: 2, CommentReceived: 2, ReactionGiven: 1}
}

// Counters is the activity of one user. Received counters count reactions
// and comments on shoutouts where the user is a tagged recipient.
type Counters struct {
	ShoutoutsSent     int
	ReactionsReceived int
	CommentsReceived  int
	ReactionsGiven    int
}

// Points is a score split by category.
type Points struct {
	ShoutoutsSent     int
	ReactionsReceived int
	CommentsReceived  int
	ReactionsGiven    int
}

func (p Points) Total() int {
	return p.ShoutoutsSent + p.ReactionsReceived + p.CommentsReceived + p.ReactionsGiven
}

func Breakdown(c Counters, w Weights) Points {
	return Points{
		ShoutoutsSent:     c.ShoutoutsSent * w.ShoutoutSent,
		ReactionsReceived: c.ReactionsReceived * w.ReactionReceived,
		CommentsReceived:  c.CommentsReceived * w.CommentReceived,
		ReactionsGiven:    c.ReactionsGiven * w.ReactionGiven,
	}
}

func Score(c Counters, w Weights) int {
	return Breakdown(c, w).Total()
}

// Reduce folds ledger entries into per-user counters. Entries about a
// shoutout whose deletion is also in entries are skipped, and reaction type
// swaps count for nothing. Counters never go below zero, which matters when
// entries start after the actions they undo.
func Reduce(entries []entity.LedgerEntry) map[uuid.UUID]Counters {
	deleted := make(map[uuid.UUID]bool)
	for _, e := range entries {
		if e.Kind == entity.LedgerShoutoutDeleted {
			deleted[e.ShoutoutID] = true
		}
	}

	out := make(map[uuid.UUID]Counters)
	bump := func(id uuid.UUID, fn func(*Counters)) {
		c := out[id]
		fn(&c)
		out[id] = c
	}

	for _, e := range entries {
		if deleted[e.ShoutoutID] || e.IsReplacement() {
			continue
		}

		switch e.Kind {
		case entity.LedgerShoutoutSent:
			bump(e.ActorID, func(c *Counters) { c.ShoutoutsSent++ })
		case entity.LedgerReactionAdded:
			bump(e.ActorID, func(c *Counters) { c.ReactionsGiven++ })
			for _, t := range e.Targets {
				bump(t, func(c *Counters) { c.ReactionsReceived++ })
			}
		case entity.LedgerReactionRemoved:
			bump(e.ActorID, func(c *Counters) { c.ReactionsGiven-- })
			for _, t := range e.Targets {
				bump(t, func(c *Counters) { c.ReactionsReceived-- })
			}
		case entity.LedgerCommentReceived:
			for _, t := range e.Targets {
				bump(t, func(c *Counters) { c.CommentsReceived++ })
			}
		case entity.LedgerCommentRemoved:
			for _, t := range e.Targets {
				bump(t, func(c *Counters) { c.CommentsReceived-- })
			}
		case entity.LedgerShoutoutRetargeted:
			received := func(c *Counters) *int { return &c.ReactionsReceived }
			if e.CommentID != nil {
				received = func(c *Counters) *int { return &c.CommentsReceived }
			}
			for _, t := range e.Targets {
				bump(t, func(c *Counters) { *received(c)++ })
			}
			for _, t := range e.Dropped {
				bump(t, func(c *Counters) { *received(c)-- })
			}
		}
	}

	for id, c := range out {
		c.ShoutoutsSent = max(c.ShoutoutsSent, 0)
		c.ReactionsReceived = max(c.ReactionsReceived, 0)
		c.CommentsReceived = max(c.CommentsReceived, 0)
		c.ReactionsGiven = max(c.ReactionsGiven, 0)
		out[id] = c
	}
	return out
}
