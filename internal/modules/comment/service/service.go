package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/modules/comment/dto"
	commentRepo "anoa.com/bragboard/internal/modules/comment/repository"
	ledgerService "anoa.com/bragboard/internal/modules/ledger/service"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/ratelimiter"
	"anoa.com/bragboard/pkg/sanitize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CommentService interface {
	AddComment(ctx context.Context, actor entity.Actor, shoutoutID uuid.UUID, content string) (*dto.CommentResponse, error)
	SoftDeleteComment(ctx context.Context, actor entity.Actor, commentID uuid.UUID) error
	ListComments(ctx context.Context, shoutoutID uuid.UUID) ([]dto.CommentResponse, error)
	ListForShoutouts(ctx context.Context, shoutoutIDs []uuid.UUID) (map[uuid.UUID][]dto.CommentResponse, error)
}

type Options struct {
	MaxLength int
	Cooldown  time.Duration
}

type commentService struct {
	repo    commentRepo.CommentRepository
	ledger  ledgerService.LedgerService
	limiter *ratelimiter.Limiter
	opts    Options
	logger  *zap.Logger
}

func NewCommentService(repo commentRepo.CommentRepository, ledger ledgerService.LedgerService, limiter *ratelimiter.Limiter, opts Options, logger *zap.Logger) CommentService {
	if opts.MaxLength <= 0 {
		opts.MaxLength = 3000
	}
	return &commentService{
		repo:    repo,
		ledger:  ledger,
		limiter: limiter,
		opts:    opts,
		logger:  logger.Named("comment"),
	}
}

func (s *commentService) AddComment(ctx context.Context, actor entity.Actor, shoutoutID uuid.UUID, content string) (*dto.CommentResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}

	content = sanitize.PlainText(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", apperror.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > s.opts.MaxLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", apperror.ErrInvalidInput, s.opts.MaxLength)
	}

	if err := s.limiter.Acquire(ctx, actor.UserID, "comment", s.opts.Cooldown); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		ShoutoutID: shoutoutID,
		AuthorID:   actor.UserID,
		Content:    content,
	}
	entry, err := s.repo.Create(ctx, comment)
	if err != nil {
		if relErr := s.limiter.Release(ctx, actor.UserID, "comment"); relErr != nil {
			s.logger.Warn("failed to release comment cooldown", zap.Error(relErr))
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, fmt.Errorf("%w: shoutout was deleted", apperror.ErrConflict)
		}
		return nil, err
	}

	s.ledger.Dispatch(ctx, entry)

	saved, err := s.repo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCommentResponse(saved)
	return &resp, nil
}

func (s *commentService) SoftDeleteComment(ctx context.Context, actor entity.Actor, commentID uuid.UUID) error {
	if actor.IsZero() {
		return apperror.ErrUnauthorized
	}

	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: comment not found", apperror.ErrNotFound)
		}
		return err
	}

	if comment.AuthorID != actor.UserID && !actor.IsModerator() {
		return fmt.Errorf("%w: only the author or an admin can delete this comment", apperror.ErrForbidden)
	}

	entry, err := s.repo.SoftDelete(ctx, commentID, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: comment not found", apperror.ErrNotFound)
		}
		return err
	}
	if entry != nil {
		s.ledger.Dispatch(ctx, entry)
	}
	return nil
}

func (s *commentService) ListComments(ctx context.Context, shoutoutID uuid.UUID) ([]dto.CommentResponse, error) {
	all, err := s.ListForShoutouts(ctx, []uuid.UUID{shoutoutID})
	if err != nil {
		return nil, err
	}
	return all[shoutoutID], nil
}

// ListForShoutouts groups comments per shoutout, oldest first. Every
// requested id maps to a non-nil slice.
func (s *commentService) ListForShoutouts(ctx context.Context, shoutoutIDs []uuid.UUID) (map[uuid.UUID][]dto.CommentResponse, error) {
	out := make(map[uuid.UUID][]dto.CommentResponse, len(shoutoutIDs))
	for _, id := range shoutoutIDs {
		out[id] = []dto.CommentResponse{}
	}

	comments, err := s.repo.ListByShoutouts(ctx, shoutoutIDs)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		c := &comments[i]
		out[c.ShoutoutID] = append(out[c.ShoutoutID], dto.NewCommentResponse(c))
	}
	return out, nil
}
