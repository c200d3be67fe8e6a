package dto

import (
	"strings"

	"anoa.com/bragboard/internal/entity"
	commentDto "anoa.com/bragboard/internal/modules/comment/dto"
	reactionDto "anoa.com/bragboard/internal/modules/reaction/dto"
	shoutoutDto "anoa.com/bragboard/internal/modules/shoutout/dto"
	commonDto "anoa.com/bragboard/pkg/dto"
	"github.com/google/uuid"
)

// FeedQuery is the query string of GET /posts.
type FeedQuery struct {
	Recipient  string `form:"recipient" binding:"omitempty,uuid"`
	Department string `form:"department"`
	Date       string `form:"date"`
	Sender     string `form:"sender" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=0,max=100"`
}

// FeedFilter narrows the feed. Nil or empty fields match everything and set
// fields combine with AND. Date is a YYYY-MM-DD calendar day. A zero Limit
// returns every match on one page.
type FeedFilter struct {
	Recipient  *uuid.UUID
	Department *string
	Date       string
	Sender     *uuid.UUID
	Page       int
	Limit      int
}

// Filter converts a bound query. Ids were validated by binding.
func (q FeedQuery) Filter() FeedFilter {
	f := FeedFilter{Date: strings.TrimSpace(q.Date), Page: q.Page, Limit: q.Limit}
	if id, err := uuid.Parse(q.Recipient); err == nil {
		f.Recipient = &id
	}
	if id, err := uuid.Parse(q.Sender); err == nil {
		f.Sender = &id
	}
	if d := strings.TrimSpace(q.Department); d != "" {
		f.Department = &d
	}
	return f
}

// FeedItem is a shoutout with its live reaction aggregate, the viewer's own
// reaction and its visible comments.
type FeedItem struct {
	shoutoutDto.ShoutoutResponse
	Reactions  reactionDto.ReactionCounts   `json:"reactions"`
	MyReaction *entity.ReactionType         `json:"my_reaction"`
	Comments   []commentDto.CommentResponse `json:"comments"`
}

type FeedResponse struct {
	Data []FeedItem               `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
