package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/bragboard/internal/entity"
	ledgerService "anoa.com/bragboard/internal/modules/ledger/service"
	"anoa.com/bragboard/internal/modules/reaction/dto"
	reactionRepo "anoa.com/bragboard/internal/modules/reaction/repository"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/keylock"
	"anoa.com/bragboard/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReactionService interface {
	SetReaction(ctx context.Context, actor entity.Actor, shoutoutID uuid.UUID, reactionType entity.ReactionType) (*dto.ReactionResponse, error)
	RemoveReaction(ctx context.Context, actor entity.Actor, shoutoutID uuid.UUID) (*dto.ReactionResponse, error)
	CountsFor(ctx context.Context, shoutoutID uuid.UUID) (dto.ReactionCounts, error)
	CountsForMany(ctx context.Context, shoutoutIDs []uuid.UUID) (map[uuid.UUID]dto.ReactionCounts, error)
	ViewerReactions(ctx context.Context, viewerID uuid.UUID, shoutoutIDs []uuid.UUID) (map[uuid.UUID]entity.ReactionType, error)
}

type reactionService struct {
	repo   reactionRepo.ReactionRepository
	ledger ledgerService.LedgerService
	locks  *keylock.KeyLock
	logger *zap.Logger
}

func NewReactionService(repo reactionRepo.ReactionRepository, ledger ledgerService.LedgerService, logger *zap.Logger) ReactionService {
	return &reactionService{
		repo:   repo,
		ledger: ledger,
		locks:  keylock.New(),
		logger: logger.Named("reaction"),
	}
}

func (s *reactionService) SetReaction(ctx context.Context, actor entity.Actor, shoutoutID uuid.UUID, reactionType entity.ReactionType) (*dto.ReactionResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}
	if !reactionType.Valid() {
		return nil, fmt.Errorf("%w: unknown reaction type %q", apperror.ErrInvalidInput, reactionType)
	}

	m, err := s.mutate(actor.UserID, shoutoutID, func() (*reactionRepo.Mutation, error) {
		return s.repo.Set(ctx, shoutoutID, actor.UserID, reactionType)
	})
	if err != nil {
		return nil, err
	}

	return s.afterMutation(ctx, shoutoutID, m)
}

func (s *reactionService) RemoveReaction(ctx context.Context, actor entity.Actor, shoutoutID uuid.UUID) (*dto.ReactionResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}

	m, err := s.mutate(actor.UserID, shoutoutID, func() (*reactionRepo.Mutation, error) {
		return s.repo.Remove(ctx, shoutoutID, actor.UserID)
	})
	if err != nil {
		return nil, err
	}

	return s.afterMutation(ctx, shoutoutID, m)
}

// mutate serializes writes for one (shoutout, user) pair in this process and
// retries once when another process won the insert race.
func (s *reactionService) mutate(userID, shoutoutID uuid.UUID, write func() (*reactionRepo.Mutation, error)) (*reactionRepo.Mutation, error) {
	unlock := s.locks.Lock(shoutoutID.String() + ":" + userID.String())
	defer unlock()

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var m *reactionRepo.Mutation
		m, err = write()
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		s.logger.Debug("reaction insert raced, retrying",
			zap.Stringer("shoutout_id", shoutoutID),
			zap.Stringer("user_id", userID))
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, fmt.Errorf("%w: concurrent reaction update, try again", apperror.ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return nil, fmt.Errorf("%w: shoutout was deleted", apperror.ErrConflict)
	}
	return nil, err
}

func (s *reactionService) afterMutation(ctx context.Context, shoutoutID uuid.UUID, m *reactionRepo.Mutation) (*dto.ReactionResponse, error) {
	if m.Entry != nil {
		metrics.ReactionMutations.WithLabelValues(outcome(m)).Inc()
		s.ledger.Dispatch(ctx, m.Entry)
	}

	counts, err := s.CountsFor(ctx, shoutoutID)
	if err != nil {
		return nil, err
	}

	return &dto.ReactionResponse{
		Added:    m.Current != "",
		Previous: m.Previous,
		Current:  m.Current,
		Counts:   counts,
	}, nil
}

func outcome(m *reactionRepo.Mutation) string {
	switch {
	case m.Previous == "":
		return "added"
	case m.Current == "":
		return "removed"
	default:
		return "replaced"
	}
}

func (s *reactionService) CountsFor(ctx context.Context, shoutoutID uuid.UUID) (dto.ReactionCounts, error) {
	exists, err := s.repo.ShoutoutExists(ctx, shoutoutID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: shoutout not found", apperror.ErrNotFound)
	}

	all, err := s.CountsForMany(ctx, []uuid.UUID{shoutoutID})
	if err != nil {
		return nil, err
	}
	return all[shoutoutID], nil
}

// CountsForMany aggregates reactions for several shoutouts with one query.
// Every requested id is present in the result.
func (s *reactionService) CountsForMany(ctx context.Context, shoutoutIDs []uuid.UUID) (map[uuid.UUID]dto.ReactionCounts, error) {
	out := make(map[uuid.UUID]dto.ReactionCounts, len(shoutoutIDs))
	for _, id := range shoutoutIDs {
		out[id] = dto.EmptyCounts()
	}

	reactors, err := s.repo.ListReactors(ctx, shoutoutIDs)
	if err != nil {
		return nil, err
	}

	for _, r := range reactors {
		counts, ok := out[r.ShoutoutID]
		if !ok {
			continue
		}
		summary := counts[r.Type]
		summary.Count++
		summary.Users = append(summary.Users, r.Name)
		counts[r.Type] = summary
	}

	return out, nil
}

func (s *reactionService) ViewerReactions(ctx context.Context, viewerID uuid.UUID, shoutoutIDs []uuid.UUID) (map[uuid.UUID]entity.ReactionType, error) {
	return s.repo.UserReactions(ctx, viewerID, shoutoutIDs)
}
