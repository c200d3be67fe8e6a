package repository

import (
	"context"
	"errors"

	"anoa.com/bragboard/internal/entity"
	ledgerRepo "anoa.com/bragboard/internal/modules/ledger/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mutation describes what a reaction write changed. Entry is nil when the
// write was a no-op.
type Mutation struct {
	Previous entity.ReactionType
	Current  entity.ReactionType
	Entry    *entity.LedgerEntry
}

type Reactor struct {
	ShoutoutID uuid.UUID
	UserID     uuid.UUID
	Name       string
	Type       entity.ReactionType
}

type ReactionRepository interface {
	// Set inserts, replaces or toggles off the user's reaction on a shoutout
	// and appends the matching ledger entry in the same transaction.
	Set(ctx context.Context, shoutoutID, userID uuid.UUID, reactionType entity.ReactionType) (*Mutation, error)
	Remove(ctx context.Context, shoutoutID, userID uuid.UUID) (*Mutation, error)
	ListReactors(ctx context.Context, shoutoutIDs []uuid.UUID) ([]Reactor, error)
	UserReactions(ctx context.Context, userID uuid.UUID, shoutoutIDs []uuid.UUID) (map[uuid.UUID]entity.ReactionType, error)
	ShoutoutExists(ctx context.Context, shoutoutID uuid.UUID) (bool, error)
}

type reactionRepository struct {
	db     *gorm.DB
	ledger ledgerRepo.LedgerRepository
}

func NewReactionRepository(db *gorm.DB, ledger ledgerRepo.LedgerRepository) ReactionRepository {
	return &reactionRepository{db: db, ledger: ledger}
}

func (r *reactionRepository) Set(ctx context.Context, shoutoutID, userID uuid.UUID, reactionType entity.ReactionType) (*Mutation, error) {
	var m *Mutation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		credited, err := ledgerRepo.CreditedRecipients(tx, shoutoutID, userID)
		if err != nil {
			return err
		}

		existing, err := findForUpdate(tx, shoutoutID, userID)
		if err != nil {
			return err
		}

		entry := &entity.LedgerEntry{
			ActorID:      userID,
			ShoutoutID:   shoutoutID,
			ReactionType: reactionType,
			Targets:      credited,
		}

		switch {
		case existing == nil:
			reaction := &entity.Reaction{ShoutoutID: shoutoutID, UserID: userID, Type: reactionType}
			if err := tx.Omit(clause.Associations).Create(reaction).Error; err != nil {
				return err
			}
			entry.Kind = entity.LedgerReactionAdded
			m = &Mutation{Current: reactionType, Entry: entry}

		case existing.Type == reactionType:
			if err := tx.Delete(existing).Error; err != nil {
				return err
			}
			entry.Kind = entity.LedgerReactionRemoved
			m = &Mutation{Previous: reactionType, Entry: entry}

		default:
			previous := existing.Type
			if err := tx.Model(existing).Update("type", reactionType).Error; err != nil {
				return err
			}
			entry.Kind = entity.LedgerReactionAdded
			entry.ReplacedType = previous
			m = &Mutation{Previous: previous, Current: reactionType, Entry: entry}
		}

		return r.ledger.WithTx(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *reactionRepository) Remove(ctx context.Context, shoutoutID, userID uuid.UUID) (*Mutation, error) {
	m := &Mutation{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		credited, err := ledgerRepo.CreditedRecipients(tx, shoutoutID, userID)
		if err != nil {
			return err
		}

		existing, err := findForUpdate(tx, shoutoutID, userID)
		if err != nil || existing == nil {
			return err
		}

		if err := tx.Delete(existing).Error; err != nil {
			return err
		}

		m.Previous = existing.Type
		m.Entry = &entity.LedgerEntry{
			Kind:         entity.LedgerReactionRemoved,
			ActorID:      userID,
			ShoutoutID:   shoutoutID,
			ReactionType: existing.Type,
			Targets:      credited,
		}
		return r.ledger.WithTx(tx).Append(ctx, m.Entry)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *reactionRepository) ListReactors(ctx context.Context, shoutoutIDs []uuid.UUID) ([]Reactor, error) {
	rows := []Reactor{}
	if len(shoutoutIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Table("reactions AS r").
		Select("r.shoutout_id, r.user_id, u.name, r.type").
		Joins("JOIN users u ON u.id = r.user_id").
		Where("r.shoutout_id IN ?", shoutoutIDs).
		Order("r.updated_at ASC, r.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reactionRepository) UserReactions(ctx context.Context, userID uuid.UUID, shoutoutIDs []uuid.UUID) (map[uuid.UUID]entity.ReactionType, error) {
	out := make(map[uuid.UUID]entity.ReactionType)
	if len(shoutoutIDs) == 0 || userID == uuid.Nil {
		return out, nil
	}

	var reactions []entity.Reaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND shoutout_id IN ?", userID, shoutoutIDs).
		Find(&reactions).Error; err != nil {
		return nil, err
	}
	for _, reaction := range reactions {
		out[reaction.ShoutoutID] = reaction.Type
	}
	return out, nil
}

func (r *reactionRepository) ShoutoutExists(ctx context.Context, shoutoutID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Shoutout{}).Where("id = ?", shoutoutID).Count(&count).Error
	return count > 0, err
}

func findForUpdate(tx *gorm.DB, shoutoutID, userID uuid.UUID) (*entity.Reaction, error) {
	query := tx.Where("shoutout_id = ? AND user_id = ?", shoutoutID, userID)
	// sqlite has no row locks; its single writer serializes the transaction.
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var reaction entity.Reaction
	if err := query.Take(&reaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reaction, nil
}
