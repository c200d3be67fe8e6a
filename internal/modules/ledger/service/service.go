package service

import (
	"context"
	"time"

	"anoa.com/bragboard/internal/entity"
	ledgerRepo "anoa.com/bragboard/internal/modules/ledger/repository"
	"anoa.com/bragboard/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subscriber reacts to ledger entries once their transaction has committed.
type Subscriber interface {
	HandleLedgerEntry(ctx context.Context, entry entity.LedgerEntry) error
}

type LedgerService interface {
	Since(ctx context.Context, since time.Time) ([]entity.LedgerEntry, error)
	ForShoutout(ctx context.Context, shoutoutID uuid.UUID) ([]entity.LedgerEntry, error)
	// Dispatch fans committed entries out to metrics and subscribers.
	// Subscriber failures are logged and never returned.
	Dispatch(ctx context.Context, entries ...*entity.LedgerEntry)
	Subscribe(sub Subscriber)
}

type ledgerService struct {
	repo   ledgerRepo.LedgerRepository
	subs   []Subscriber
	logger *zap.Logger
}

func NewLedgerService(repo ledgerRepo.LedgerRepository, logger *zap.Logger) LedgerService {
	return &ledgerService{
		repo:   repo,
		logger: logger.Named("ledger"),
	}
}

func (s *ledgerService) Subscribe(sub Subscriber) {
	s.subs = append(s.subs, sub)
}

func (s *ledgerService) Since(ctx context.Context, since time.Time) ([]entity.LedgerEntry, error) {
	return s.repo.ListSince(ctx, since)
}

func (s *ledgerService) ForShoutout(ctx context.Context, shoutoutID uuid.UUID) ([]entity.LedgerEntry, error) {
	return s.repo.ListByShoutout(ctx, shoutoutID)
}

func (s *ledgerService) Dispatch(ctx context.Context, entries ...*entity.LedgerEntry) {
	// The request may be finished by the time subscribers run.
	ctx = context.WithoutCancel(ctx)

	for _, entry := range entries {
		if entry == nil {
			continue
		}
		metrics.LedgerEvents.WithLabelValues(string(entry.Kind)).Inc()

		for _, sub := range s.subs {
			if err := sub.HandleLedgerEntry(ctx, *entry); err != nil {
				s.logger.Warn("ledger subscriber failed",
					zap.String("kind", string(entry.Kind)),
					zap.Stringer("entry_id", entry.ID),
					zap.Error(err))
			}
		}
	}
}
