package dto

import (
	"time"

	"anoa.com/bragboard/internal/entity"
	commonDto "anoa.com/bragboard/pkg/dto"
	"github.com/google/uuid"
)

type NotificationQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type NotificationResponse struct {
	ID         uuid.UUID                 `json:"id"`
	Type       entity.NotificationType   `json:"type"`
	Message    string                    `json:"message"`
	ShoutoutID *uuid.UUID                `json:"shoutout_id,omitempty"`
	Actor      *commonDto.AuthorResponse `json:"actor,omitempty"`
	IsRead     bool                      `json:"is_read"`
	CreatedAt  time.Time                 `json:"created_at"`
}

func NewNotificationResponse(n *entity.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:         n.ID,
		Type:       n.Type,
		Message:    n.Message,
		ShoutoutID: n.ShoutoutID,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
	if n.Actor != nil {
		actor := commonDto.NewAuthorResponse(n.Actor)
		resp.Actor = &actor
	}
	return resp
}

type NotificationListResponse struct {
	Data []NotificationResponse  `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
