package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerKind string

const (
	LedgerShoutoutSent    LedgerKind = "shoutout_sent"
	LedgerShoutoutDeleted LedgerKind = "shoutout_deleted"
	LedgerReactionAdded   LedgerKind = "reaction_added"
	LedgerReactionRemoved LedgerKind = "reaction_removed"
	LedgerCommentReceived LedgerKind = "comment_received"
	LedgerCommentRemoved  LedgerKind = "comment_removed"
	// LedgerShoutoutRetargeted moves the credit of one live reaction or
	// comment when the shoutout's recipients are edited: Targets gain it,
	// Dropped lose it. CommentID is set for comments, ReactionType for
	// reactions.
	LedgerShoutoutRetargeted LedgerKind = "shoutout_retargeted"
)

// LedgerEntry is an append-only record of one scoring-relevant action.
// Targets holds the users the action credits: the tagged recipients of the
// shoutout involved.
type LedgerEntry struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Kind         LedgerKind   `gorm:"size:30;not null;index" json:"kind"`
	ActorID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"actor_id"`
	ShoutoutID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"shoutout_id"`
	CommentID    *uuid.UUID   `gorm:"type:uuid" json:"comment_id,omitempty"`
	ReactionType ReactionType `gorm:"size:10" json:"reaction_type,omitempty"`
	ReplacedType ReactionType `gorm:"size:10" json:"replaced_type,omitempty"`
	Targets      []uuid.UUID  `gorm:"type:text;serializer:json" json:"targets"`
	Dropped      []uuid.UUID  `gorm:"type:text;serializer:json" json:"dropped,omitempty"`
	CreatedAt    time.Time    `gorm:"index" json:"created_at"`
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}

// IsReplacement reports whether a reaction_added entry swapped one reaction
// type for another rather than adding a new reaction.
func (e *LedgerEntry) IsReplacement() bool {
	return e.Kind == LedgerReactionAdded && e.ReplacedType != ""
}
