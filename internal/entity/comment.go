package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ShoutoutID uuid.UUID  `gorm:"type:uuid;not null;index:idx_comments_shoutout_created,priority:1" json:"shoutout_id"`
	Shoutout   Shoutout   `gorm:"foreignKey:ShoutoutID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author     User       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	IsDeleted  bool       `gorm:"not null;default:false" json:"is_deleted"`
	DeletedBy  *uuid.UUID `gorm:"type:uuid" json:"deleted_by,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `gorm:"index:idx_comments_shoutout_created,priority:2" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
