package repository

import (
	"context"
	"fmt"
	"time"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerRepository interface {
	// WithTx binds the repository to an open transaction so entries commit
	// together with the mutation that produced them.
	WithTx(tx *gorm.DB) LedgerRepository
	Append(ctx context.Context, entries ...*entity.LedgerEntry) error
	ListSince(ctx context.Context, since time.Time) ([]entity.LedgerEntry, error)
	ListByShoutout(ctx context.Context, shoutoutID uuid.UUID) ([]entity.LedgerEntry, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: tx}
}

func (r *ledgerRepository) Append(ctx context.Context, entries ...*entity.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

func (r *ledgerRepository) ListSince(ctx context.Context, since time.Time) ([]entity.LedgerEntry, error) {
	entries := []entity.LedgerEntry{}
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since.UTC()).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *ledgerRepository) ListByShoutout(ctx context.Context, shoutoutID uuid.UUID) ([]entity.LedgerEntry, error) {
	entries := []entity.LedgerEntry{}
	err := r.db.WithContext(ctx).
		Where("shoutout_id = ?", shoutoutID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// CreditedRecipients returns the recipients of a shoutout that an action by
// actorID credits, which is every recipient except the actor, in tag order.
// It runs on tx so callers see rows their own transaction wrote, and returns
// ErrNotFound when the shoutout does not exist.
func CreditedRecipients(tx *gorm.DB, shoutoutID, actorID uuid.UUID) ([]uuid.UUID, error) {
	var count int64
	if err := tx.Model(&entity.Shoutout{}).Where("id = ?", shoutoutID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: shoutout not found", apperror.ErrNotFound)
	}

	ids := []uuid.UUID{}
	if err := tx.Model(&entity.ShoutoutRecipient{}).
		Where("shoutout_id = ? AND user_id <> ?", shoutoutID, actorID).
		Order("position ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
