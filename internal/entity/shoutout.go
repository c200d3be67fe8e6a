package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shoutout struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender        User                `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender"`
	Message       string              `gorm:"type:text;not null" json:"message"`
	AttachmentURL *string             `gorm:"type:text" json:"attachment_url,omitempty"`
	Department    *string             `gorm:"size:100;index" json:"department,omitempty"`
	Recipients    []ShoutoutRecipient `gorm:"foreignKey:ShoutoutID;constraint:OnDelete:CASCADE" json:"recipients"`
	CreatedAt     time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (s *Shoutout) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

// RecipientIDs returns the recipients in tag order.
func (s *Shoutout) RecipientIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.Recipients))
	for i, r := range s.Recipients {
		ids[i] = r.UserID
	}
	return ids
}

type ShoutoutRecipient struct {
	ShoutoutID uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Position   int       `gorm:"not null;default:0" json:"-"`
}
