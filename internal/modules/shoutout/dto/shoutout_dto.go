package dto

import (
	"time"

	"anoa.com/bragboard/internal/entity"
	commonDto "anoa.com/bragboard/pkg/dto"
	"github.com/google/uuid"
)

type CreateShoutoutRequest struct {
	RecipientIDs  []uuid.UUID `json:"recipient_ids" binding:"required,min=1,max=20"`
	Message       string      `json:"message" binding:"required"`
	AttachmentURL *string     `json:"attachment_url" binding:"omitempty,url"`
}

type UpdateShoutoutRequest struct {
	RecipientIDs  []uuid.UUID `json:"recipient_ids" binding:"required,min=1,max=20"`
	Message       string      `json:"message" binding:"required"`
	AttachmentURL *string     `json:"attachment_url" binding:"omitempty,url"`
}

type ShoutoutResponse struct {
	ID            uuid.UUID                  `json:"id"`
	Sender        commonDto.AuthorResponse   `json:"sender"`
	Recipients    []commonDto.AuthorResponse `json:"recipients"`
	Message       string                     `json:"message"`
	AttachmentURL *string                    `json:"attachment_url,omitempty"`
	Department    *string                    `json:"department,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// NewShoutoutResponse expects Sender and Recipients.User to be loaded.
func NewShoutoutResponse(s *entity.Shoutout) ShoutoutResponse {
	recipients := make([]commonDto.AuthorResponse, len(s.Recipients))
	for i := range s.Recipients {
		recipients[i] = commonDto.NewAuthorResponse(&s.Recipients[i].User)
	}

	return ShoutoutResponse{
		ID:            s.ID,
		Sender:        commonDto.NewAuthorResponse(&s.Sender),
		Recipients:    recipients,
		Message:       s.Message,
		AttachmentURL: s.AttachmentURL,
		Department:    s.Department,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
