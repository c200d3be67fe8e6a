package service

import (
	"context"
	"fmt"
	"time"

	"anoa.com/bragboard/internal/entity"
	commentService "anoa.com/bragboard/internal/modules/comment/service"
	"anoa.com/bragboard/internal/modules/feed/dto"
	reactionService "anoa.com/bragboard/internal/modules/reaction/service"
	shoutoutDto "anoa.com/bragboard/internal/modules/shoutout/dto"
	shoutoutRepo "anoa.com/bragboard/internal/modules/shoutout/repository"
	"anoa.com/bragboard/pkg/apperror"
	commonDto "anoa.com/bragboard/pkg/dto"
	"anoa.com/bragboard/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
)

const dateLayout = "2006-01-02"

type FeedService interface {
	QueryFeed(ctx context.Context, viewer entity.Actor, filter dto.FeedFilter) (*dto.FeedResponse, error)
}

type feedService struct {
	shoutouts shoutoutRepo.ShoutoutRepository
	reactions reactionService.ReactionService
	comments  commentService.CommentService
	loc       *time.Location
}

// NewFeedService interprets date filters in loc, or UTC when loc is nil.
func NewFeedService(shoutouts shoutoutRepo.ShoutoutRepository, reactions reactionService.ReactionService, comments commentService.CommentService, loc *time.Location) FeedService {
	if loc == nil {
		loc = time.UTC
	}
	return &feedService{
		shoutouts: shoutouts,
		reactions: reactions,
		comments:  comments,
		loc:       loc,
	}
}

func (s *feedService) QueryFeed(ctx context.Context, viewer entity.Actor, filter dto.FeedFilter) (*dto.FeedResponse, error) {
	timer := prometheus.NewTimer(metrics.FeedDuration)
	defer timer.ObserveDuration()

	list := shoutoutRepo.ListFilter{
		RecipientID: filter.Recipient,
		SenderID:    filter.Sender,
		Department:  filter.Department,
	}

	if filter.Date != "" {
		day, err := time.ParseInLocation(dateLayout, filter.Date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", apperror.ErrInvalidInput)
		}
		from := day.UTC()
		to := day.AddDate(0, 0, 1).UTC()
		list.From, list.To = &from, &to
	}

	page := max(filter.Page, 1)
	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", apperror.ErrInvalidInput)
	}
	if filter.Limit > 0 {
		list.Offset = (page - 1) * filter.Limit
		list.Limit = filter.Limit
	} else {
		page = 1
	}

	shoutouts, total, err := s.shoutouts.List(ctx, list)
	if err != nil {
		return nil, err
	}

	ids := lo.Map(shoutouts, func(sh entity.Shoutout, _ int) uuid.UUID { return sh.ID })

	counts, err := s.reactions.CountsForMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	mine := map[uuid.UUID]entity.ReactionType{}
	if !viewer.IsZero() {
		mine, err = s.reactions.ViewerReactions(ctx, viewer.UserID, ids)
		if err != nil {
			return nil, err
		}
	}
	comments, err := s.comments.ListForShoutouts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.FeedItem, len(shoutouts))
	for i := range shoutouts {
		sh := &shoutouts[i]
		item := dto.FeedItem{
			ShoutoutResponse: shoutoutDto.NewShoutoutResponse(sh),
			Reactions:        counts[sh.ID],
			Comments:         comments[sh.ID],
		}
		if rt, ok := mine[sh.ID]; ok {
			item.MyReaction = &rt
		}
		items[i] = item
	}

	return &dto.FeedResponse{
		Data: items,
		Meta: commonDto.NewPaginationMeta(page, filter.Limit, total),
	}, nil
}
