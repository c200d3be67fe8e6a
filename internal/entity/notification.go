package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationShoutout NotificationType = "shoutout"
	NotificationReaction NotificationType = "reaction"
	NotificationComment  NotificationType = "comment"
)

type Notification struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	ActorID    uuid.UUID        `gorm:"type:uuid;not null" json:"actor_id"`
	Actor      *User            `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	ShoutoutID *uuid.UUID       `gorm:"type:uuid" json:"shoutout_id,omitempty"`
	Type       NotificationType `gorm:"size:20;not null" json:"type"`
	Message    string           `gorm:"type:text" json:"message"`
	IsRead     bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time        `gorm:"index:idx_notifications_user_created,priority:2" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
