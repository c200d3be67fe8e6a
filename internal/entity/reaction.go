package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReactionType string

const (
	ReactionLike ReactionType = "like"
	ReactionClap ReactionType = "clap"
	ReactionStar ReactionType = "star"
)

// ReactionTypes lists every reaction kind in display order.
func ReactionTypes() []ReactionType {
	return []ReactionType{ReactionLike, ReactionClap, ReactionStar}
}

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionClap, ReactionStar:
		return true
	}
	return false
}

type Reaction struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ShoutoutID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_shoutout_user,priority:1" json:"shoutout_id"`
	Shoutout   Shoutout     `gorm:"foreignKey:ShoutoutID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_shoutout_user,priority:2;index" json:"user_id"`
	User       User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Type       ReactionType `gorm:"size:10;not null" json:"type"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Reaction) TableName() string {
	return "reactions"
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
