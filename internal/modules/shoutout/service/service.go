package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"anoa.com/bragboard/internal/entity"
	ledgerService "anoa.com/bragboard/internal/modules/ledger/service"
	"anoa.com/bragboard/internal/modules/shoutout/dto"
	shoutoutRepo "anoa.com/bragboard/internal/modules/shoutout/repository"
	userRepo "anoa.com/bragboard/internal/modules/user/repository"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/ratelimiter"
	"anoa.com/bragboard/pkg/sanitize"
	"anoa.com/bragboard/pkg/storage"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxMessageLength = 2000

// SearchIndexer keeps the search index in step with shoutout writes.
type SearchIndexer interface {
	IndexShoutout(shoutout *entity.Shoutout) error
	DeleteShoutout(id uuid.UUID) error
}

type ShoutoutService interface {
	Create(ctx context.Context, actor entity.Actor, req dto.CreateShoutoutRequest) (*dto.ShoutoutResponse, error)
	Update(ctx context.Context, actor entity.Actor, id uuid.UUID, req dto.UpdateShoutoutRequest) (*dto.ShoutoutResponse, error)
	Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*dto.ShoutoutResponse, error)
}

type RateLimits struct {
	Global time.Duration
	Post   time.Duration
}

type shoutoutService struct {
	repo     shoutoutRepo.ShoutoutRepository
	userRepo userRepo.UserRepository
	ledger   ledgerService.LedgerService
	limiter  *ratelimiter.Limiter
	limits   RateLimits
	search   SearchIndexer
	images   storage.ImageStorage
	logger   *zap.Logger
}

// NewShoutoutService accepts nil search and images for deployments without
// meilisearch or cloudinary.
func NewShoutoutService(
	repo shoutoutRepo.ShoutoutRepository,
	userRepo userRepo.UserRepository,
	ledger ledgerService.LedgerService,
	limiter *ratelimiter.Limiter,
	limits RateLimits,
	search SearchIndexer,
	images storage.ImageStorage,
	logger *zap.Logger,
) ShoutoutService {
	return &shoutoutService{
		repo:     repo,
		userRepo: userRepo,
		ledger:   ledger,
		limiter:  limiter,
		limits:   limits,
		search:   search,
		images:   images,
		logger:   logger.Named("shoutout"),
	}
}

func (s *shoutoutService) Create(ctx context.Context, actor entity.Actor, req dto.CreateShoutoutRequest) (*dto.ShoutoutResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}

	sender, err := s.userRepo.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	message, recipients, err := s.validate(ctx, actor.UserID, req.Message, req.RecipientIDs)
	if err != nil {
		return nil, err
	}

	if err := s.acquireCooldowns(ctx, actor.UserID); err != nil {
		return nil, err
	}

	shoutout := &entity.Shoutout{
		SenderID:      sender.ID,
		Message:       message,
		AttachmentURL: normalizeURL(req.AttachmentURL),
		Department:    sender.Department,
	}

	entry, err := s.repo.Create(ctx, shoutout, recipients)
	if err != nil {
		s.releaseCooldowns(ctx, actor.UserID)
		return nil, err
	}

	s.ledger.Dispatch(ctx, entry)

	saved, err := s.repo.FindByID(ctx, shoutout.ID)
	if err != nil {
		return nil, err
	}
	s.index(saved)

	resp := dto.NewShoutoutResponse(saved)
	return &resp, nil
}

func (s *shoutoutService) Update(ctx context.Context, actor entity.Actor, id uuid.UUID, req dto.UpdateShoutoutRequest) (*dto.ShoutoutResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.SenderID != actor.UserID {
		return nil, fmt.Errorf("%w: only the sender can edit this shoutout", apperror.ErrForbidden)
	}

	message, recipients, err := s.validate(ctx, actor.UserID, req.Message, req.RecipientIDs)
	if err != nil {
		return nil, err
	}

	oldAttachment := existing.AttachmentURL
	existing.Message = message
	existing.AttachmentURL = normalizeURL(req.AttachmentURL)

	entries, err := s.repo.Update(ctx, existing, recipients)
	if err != nil {
		return nil, err
	}
	s.ledger.Dispatch(ctx, entries...)

	if oldAttachment != nil && (existing.AttachmentURL == nil || *existing.AttachmentURL != *oldAttachment) {
		s.deleteImage(ctx, *oldAttachment)
	}

	saved, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(saved)

	resp := dto.NewShoutoutResponse(saved)
	return &resp, nil
}

func (s *shoutoutService) Delete(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	if actor.IsZero() {
		return apperror.ErrUnauthorized
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if existing.SenderID != actor.UserID && !actor.IsModerator() {
		return fmt.Errorf("%w: only the sender or an admin can delete this shoutout", apperror.ErrForbidden)
	}

	entry, err := s.repo.Delete(ctx, id, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: shoutout not found", apperror.ErrNotFound)
		}
		return err
	}

	s.ledger.Dispatch(ctx, entry)

	if existing.AttachmentURL != nil {
		s.deleteImage(ctx, *existing.AttachmentURL)
	}
	if s.search != nil {
		if err := s.search.DeleteShoutout(id); err != nil {
			s.logger.Warn("failed to remove shoutout from search index", zap.Stringer("shoutout_id", id), zap.Error(err))
		}
	}

	return nil
}

func (s *shoutoutService) Get(ctx context.Context, id uuid.UUID) (*dto.ShoutoutResponse, error) {
	shoutout, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewShoutoutResponse(shoutout)
	return &resp, nil
}

func (s *shoutoutService) find(ctx context.Context, id uuid.UUID) (*entity.Shoutout, error) {
	shoutout, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: shoutout not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	return shoutout, nil
}

// validate returns the sanitized message and the de-duplicated recipient
// list in the order given.
func (s *shoutoutService) validate(ctx context.Context, senderID uuid.UUID, message string, recipientIDs []uuid.UUID) (string, []uuid.UUID, error) {
	message = sanitize.PlainText(message)
	if message == "" {
		return "", nil, fmt.Errorf("%w: message cannot be empty", apperror.ErrInvalidInput)
	}
	if utf8.RuneCountInString(message) > maxMessageLength {
		return "", nil, fmt.Errorf("%w: message exceeds %d characters", apperror.ErrInvalidInput, maxMessageLength)
	}

	recipients := lo.Uniq(lo.Filter(recipientIDs, func(id uuid.UUID, _ int) bool { return id != uuid.Nil }))
	if len(recipients) == 0 {
		return "", nil, fmt.Errorf("%w: at least one recipient is required", apperror.ErrInvalidInput)
	}
	if lo.Contains(recipients, senderID) {
		return "", nil, fmt.Errorf("%w: you cannot tag yourself", apperror.ErrInvalidInput)
	}

	users, err := s.userRepo.FindByIDs(ctx, recipients)
	if err != nil {
		return "", nil, err
	}
	if len(users) != len(recipients) {
		found := lo.Map(users, func(u entity.User, _ int) uuid.UUID { return u.ID })
		missing, _ := lo.Difference(recipients, found)
		return "", nil, fmt.Errorf("%w: unknown recipient %s", apperror.ErrInvalidInput, missing[0])
	}

	return message, recipients, nil
}

func (s *shoutoutService) acquireCooldowns(ctx context.Context, userID uuid.UUID) error {
	if err := s.limiter.Acquire(ctx, userID, "global", s.limits.Global); err != nil {
		return err
	}
	if err := s.limiter.Acquire(ctx, userID, "post", s.limits.Post); err != nil {
		if relErr := s.limiter.Release(ctx, userID, "global"); relErr != nil {
			s.logger.Warn("failed to release global cooldown", zap.Error(relErr))
		}
		return err
	}
	return nil
}

func (s *shoutoutService) releaseCooldowns(ctx context.Context, userID uuid.UUID) {
	for _, action := range []string{"global", "post"} {
		if err := s.limiter.Release(ctx, userID, action); err != nil {
			s.logger.Warn("failed to release cooldown", zap.String("action", action), zap.Error(err))
		}
	}
}

func (s *shoutoutService) index(shoutout *entity.Shoutout) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexShoutout(shoutout); err != nil {
		s.logger.Warn("failed to index shoutout", zap.Stringer("shoutout_id", shoutout.ID), zap.Error(err))
	}
}

func (s *shoutoutService) deleteImage(ctx context.Context, url string) {
	if s.images == nil {
		return
	}
	if err := s.images.DeleteImage(ctx, url); err != nil {
		s.logger.Warn("failed to delete attachment", zap.String("url", url), zap.Error(err))
	}
}

func normalizeURL(u *string) *string {
	if u == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*u)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
