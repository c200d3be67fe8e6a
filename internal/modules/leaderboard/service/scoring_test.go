package service

import (
	"testing"

	"anoa.com/bragboard/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScoreIsPure(t *testing.T) {
	c := Counters{ShoutoutsSent: 3, ReactionsReceived: 4, CommentsReceived: 2, ReactionsGiven: 7}
	w := DefaultWeights()

	first := Score(c, w)
	for range 5 {
		assert.Equal(t, first, Score(c, w))
	}
	assert.Equal(t, 3*5+4*2+2*2+7*1, first)
}

func TestScoreIsMonotonic(t *testing.T) {
	w := DefaultWeights()
	base := Counters{ShoutoutsSent: 1, ReactionsReceived: 1, CommentsReceived: 1, ReactionsGiven: 1}

	bumps := map[string]func(c *Counters){
		"shoutouts sent":     func(c *Counters) { c.ShoutoutsSent++ },
		"reactions received": func(c *Counters) { c.ReactionsReceived++ },
		"comments received":  func(c *Counters) { c.CommentsReceived++ },
		"reactions given":    func(c *Counters) { c.ReactionsGiven++ },
	}
	for name, bump := range bumps {
		t.Run(name, func(t *testing.T) {
			c := base
			bump(&c)
			assert.GreaterOrEqual(t, Score(c, w), Score(base, w))
		})
	}
}

func TestZeroActivityScoresZero(t *testing.T) {
	assert.Zero(t, Score(Counters{}, DefaultWeights()))
}

func TestBreakdownSumsToScore(t *testing.T) {
	w := Weights{ShoutoutSent: 10, ReactionReceived: 3, CommentReceived: 4, ReactionGiven: 0}
	c := Counters{ShoutoutsSent: 1, ReactionsReceived: 2, CommentsReceived: 3, ReactionsGiven: 9}

	p := Breakdown(c, w)
	assert.Equal(t, Points{ShoutoutsSent: 10, ReactionsReceived: 6, CommentsReceived: 12, ReactionsGiven: 0}, p)
	assert.Equal(t, Score(c, w), p.Total())
}

func TestReduce(t *testing.T) {
	sender, recipient, fan := uuid.New(), uuid.New(), uuid.New()
	post, gone := uuid.New(), uuid.New()

	entries := []entity.LedgerEntry{
		{Kind: entity.LedgerShoutoutSent, ActorID: sender, ShoutoutID: post, Targets: []uuid.UUID{recipient}},
		{Kind: entity.LedgerReactionAdded, ActorID: fan, ShoutoutID: post, ReactionType: entity.ReactionLike, Targets: []uuid.UUID{recipient}},
		{Kind: entity.LedgerReactionAdded, ActorID: fan, ShoutoutID: post, ReactionType: entity.ReactionClap, ReplacedType: entity.ReactionLike, Targets: []uuid.UUID{recipient}},
		{Kind: entity.LedgerCommentReceived, ActorID: fan, ShoutoutID: post, Targets: []uuid.UUID{recipient}},
		{Kind: entity.LedgerCommentReceived, ActorID: sender, ShoutoutID: post, Targets: []uuid.UUID{recipient}},
		{Kind: entity.LedgerCommentRemoved, ActorID: sender, ShoutoutID: post, Targets: []uuid.UUID{recipient}},

		{Kind: entity.LedgerShoutoutSent, ActorID: fan, ShoutoutID: gone, Targets: []uuid.UUID{sender}},
		{Kind: entity.LedgerReactionAdded, ActorID: recipient, ShoutoutID: gone, ReactionType: entity.ReactionStar, Targets: []uuid.UUID{sender}},
		{Kind: entity.LedgerShoutoutDeleted, ActorID: fan, ShoutoutID: gone, Targets: []uuid.UUID{sender}},
	}

	got := Reduce(entries)

	assert.Equal(t, Counters{ShoutoutsSent: 1}, got[sender])
	assert.Equal(t, Counters{ReactionsReceived: 1, CommentsReceived: 1}, got[recipient])
	assert.Equal(t, Counters{ReactionsGiven: 1}, got[fan])
}

func TestReduceMovesCreditOnRetarget(t *testing.T) {
	sender, before, after, fan, post := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()
	commentID := uuid.New()

	got := Reduce([]entity.LedgerEntry{
		{Kind: entity.LedgerShoutoutSent, ActorID: sender, ShoutoutID: post, Targets: []uuid.UUID{before}},
		{Kind: entity.LedgerReactionAdded, ActorID: fan, ShoutoutID: post, ReactionType: entity.ReactionLike, Targets: []uuid.UUID{before}},
		{Kind: entity.LedgerCommentReceived, ActorID: fan, ShoutoutID: post, CommentID: &commentID, Targets: []uuid.UUID{before}},
		{Kind: entity.LedgerShoutoutRetargeted, ActorID: fan, ShoutoutID: post, ReactionType: entity.ReactionLike, Targets: []uuid.UUID{after}, Dropped: []uuid.UUID{before}},
		{Kind: entity.LedgerShoutoutRetargeted, ActorID: fan, ShoutoutID: post, CommentID: &commentID, Targets: []uuid.UUID{after}, Dropped: []uuid.UUID{before}},
	})

	assert.Equal(t, Counters{}, got[before])
	assert.Equal(t, Counters{ReactionsReceived: 1, CommentsReceived: 1}, got[after])
	assert.Equal(t, Counters{ReactionsGiven: 1}, got[fan], "retargeting does not count as giving")
	assert.Equal(t, Counters{ShoutoutsSent: 1}, got[sender])
}

func TestReduceClampsAtZero(t *testing.T) {
	fan, recipient, post := uuid.New(), uuid.New(), uuid.New()

	got := Reduce([]entity.LedgerEntry{
		{Kind: entity.LedgerReactionRemoved, ActorID: fan, ShoutoutID: post, Targets: []uuid.UUID{recipient}},
		{Kind: entity.LedgerCommentRemoved, ActorID: fan, ShoutoutID: post, Targets: []uuid.UUID{recipient}},
	})

	assert.Equal(t, Counters{}, got[fan])
	assert.Equal(t, Counters{}, got[recipient])
}

func TestReduceEmpty(t *testing.T) {
	assert.Empty(t, Reduce(nil))
}
