package dto

import (
	"time"

	"anoa.com/bragboard/internal/entity"
	commonDto "anoa.com/bragboard/pkg/dto"
	"github.com/google/uuid"
)

// CreateReportRequest names exactly one of a shoutout or a comment.
type CreateReportRequest struct {
	ShoutoutID *uuid.UUID `json:"shoutout_id"`
	CommentID  *uuid.UUID `json:"comment_id"`
	Reason     string     `json:"reason" binding:"required"`
}

type ReportResponse struct {
	ID         uuid.UUID                `json:"id"`
	ShoutoutID *uuid.UUID               `json:"shoutout_id,omitempty"`
	CommentID  *uuid.UUID               `json:"comment_id,omitempty"`
	Reporter   commonDto.AuthorResponse `json:"reporter"`
	Reason     string                   `json:"reason"`
	Status     entity.ReportStatus      `json:"status"`
	ResolvedBy *uuid.UUID               `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time               `json:"resolved_at,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
}

func NewReportResponse(r *entity.Report) ReportResponse {
	return ReportResponse{
		ID:         r.ID,
		ShoutoutID: r.ShoutoutID,
		CommentID:  r.CommentID,
		Reporter:   commonDto.NewAuthorResponse(&r.Reporter),
		Reason:     r.Reason,
		Status:     r.Status,
		ResolvedBy: r.ResolvedBy,
		ResolvedAt: r.ResolvedAt,
		CreatedAt:  r.CreatedAt,
	}
}
