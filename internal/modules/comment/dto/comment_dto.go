package dto

import (
	"time"

	"anoa.com/bragboard/internal/entity"
	commonDto "anoa.com/bragboard/pkg/dto"
	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID         uuid.UUID                `json:"id"`
	ShoutoutID uuid.UUID                `json:"shoutout_id"`
	Author     commonDto.AuthorResponse `json:"author"`
	Content    string                   `json:"content"`
	IsDeleted  bool                     `json:"is_deleted"`
	CreatedAt  time.Time                `json:"created_at"`
}

// NewCommentResponse blanks the content of soft-deleted comments so they
// keep their place in the thread without exposing the text.
func NewCommentResponse(c *entity.Comment) CommentResponse {
	resp := CommentResponse{
		ID:         c.ID,
		ShoutoutID: c.ShoutoutID,
		Author:     commonDto.NewAuthorResponse(&c.Author),
		Content:    c.Content,
		IsDeleted:  c.IsDeleted,
		CreatedAt:  c.CreatedAt,
	}
	if c.IsDeleted {
		resp.Content = ""
	}
	return resp
}
