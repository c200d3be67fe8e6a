package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/modules/notification/dto"
	notifRepo "anoa.com/bragboard/internal/modules/notification/repository"
	"anoa.com/bragboard/pkg/apperror"
	commonDto "anoa.com/bragboard/pkg/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultPageSize = 20

// Channel is the redis pub/sub channel carrying a user's live notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

type NotificationService interface {
	// HandleLedgerEntry turns committed ledger entries into notifications.
	HandleLedgerEntry(ctx context.Context, entry entity.LedgerEntry) error
	List(ctx context.Context, actor entity.Actor, page, limit int) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, actor entity.Actor) (int64, error)
	MarkAsRead(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, actor entity.Actor) error
	// Cleanup deletes read notifications older than retention.
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewNotificationService publishes live updates only when redisClient is set.
func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, logger *zap.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		logger:      logger.Named("notification"),
	}
}

func (s *notificationService) HandleLedgerEntry(ctx context.Context, entry entity.LedgerEntry) error {
	var (
		kind       entity.NotificationType
		message    string
		recipients []uuid.UUID
	)

	switch entry.Kind {
	case entity.LedgerShoutoutSent:
		kind, message = entity.NotificationShoutout, "gave you a shoutout"
		recipients = entry.Targets
	case entity.LedgerReactionAdded:
		if entry.IsReplacement() {
			return nil
		}
		kind, message = entity.NotificationReaction, fmt.Sprintf("reacted %s to a shoutout you are part of", entry.ReactionType)
	case entity.LedgerCommentReceived:
		kind, message = entity.NotificationComment, "commented on a shoutout you are part of"
	default:
		return nil
	}

	if recipients == nil {
		senderID, tagged, err := s.repo.Audience(ctx, entry.ShoutoutID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		recipients = append([]uuid.UUID{senderID}, tagged...)
	}

	recipients = lo.Uniq(lo.Without(recipients, entry.ActorID))
	if len(recipients) == 0 {
		return nil
	}

	shoutoutID := entry.ShoutoutID
	notifications := lo.Map(recipients, func(userID uuid.UUID, _ int) *entity.Notification {
		return &entity.Notification{
			UserID:     userID,
			ActorID:    entry.ActorID,
			ShoutoutID: &shoutoutID,
			Type:       kind,
			Message:    message,
		}
	})

	if err := s.repo.Create(ctx, notifications); err != nil {
		return err
	}

	s.publish(ctx, notifications)
	return nil
}

func (s *notificationService) publish(ctx context.Context, notifications []*entity.Notification) {
	if s.redisClient == nil {
		return
	}

	for _, n := range notifications {
		payload, err := json.Marshal(dto.NewNotificationResponse(n))
		if err != nil {
			continue
		}
		if err := s.redisClient.Publish(ctx, Channel(n.UserID), payload).Err(); err != nil {
			s.logger.Warn("failed to publish notification",
				zap.Stringer("user_id", n.UserID),
				zap.Error(err))
		}
	}
}

func (s *notificationService) List(ctx context.Context, actor entity.Actor, page, limit int) (*dto.NotificationListResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	notifications, total, err := s.repo.GetByUserID(ctx, actor.UserID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &dto.NotificationListResponse{
		Data: lo.Map(notifications, func(n entity.Notification, _ int) dto.NotificationResponse {
			return dto.NewNotificationResponse(&n)
		}),
		Meta: commonDto.NewPaginationMeta(page, limit, total),
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor entity.Actor) (int64, error) {
	if actor.IsZero() {
		return 0, apperror.ErrUnauthorized
	}
	return s.repo.CountUnread(ctx, actor.UserID)
}

func (s *notificationService) MarkAsRead(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	if actor.IsZero() {
		return apperror.ErrUnauthorized
	}

	found, err := s.repo.MarkAsRead(ctx, id, actor.UserID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: notification not found", apperror.ErrNotFound)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, actor entity.Actor) error {
	if actor.IsZero() {
		return apperror.ErrUnauthorized
	}
	return s.repo.MarkAllAsRead(ctx, actor.UserID)
}

func (s *notificationService) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	deleted, err := s.repo.DeleteReadBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	s.logger.Info("old notifications removed", zap.Int64("deleted", deleted))
	return deleted, nil
}
