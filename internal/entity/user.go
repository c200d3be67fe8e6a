package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Department   *string   `gorm:"size:100;index" json:"department,omitempty"`
	Role         string    `gorm:"size:20;not null;default:employee" json:"role"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	GoogleID     *string   `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	if u.Role == "" {
		u.Role = RoleEmployee
	}
	return
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID     uuid.UUID
	Role       string
	Department *string
}

func ActorFromUser(u *User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, Department: u.Department}
}

func (a Actor) IsZero() bool {
	return a.UserID == uuid.Nil
}

// IsModerator reports whether the actor may remove other users' content.
func (a Actor) IsModerator() bool {
	return a.Role == RoleAdmin
}
