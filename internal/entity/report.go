package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportPending        ReportStatus = "pending"
	ReportDismissed      ReportStatus = "dismissed"
	ReportContentDeleted ReportStatus = "content_deleted"
)

// Report targets exactly one of a shoutout or a comment. The target columns
// carry no foreign key so resolved reports outlive the content they name.
type Report struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ShoutoutID *uuid.UUID   `gorm:"type:uuid;index" json:"shoutout_id,omitempty"`
	CommentID  *uuid.UUID   `gorm:"type:uuid;index" json:"comment_id,omitempty"`
	ReporterID uuid.UUID    `gorm:"type:uuid;not null;index" json:"reporter_id"`
	Reporter   User         `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"reporter"`
	Reason     string       `gorm:"type:text;not null" json:"reason"`
	Status     ReportStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	ResolvedBy *uuid.UUID   `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt  time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	if r.Status == "" {
		r.Status = ReportPending
	}
	return
}
