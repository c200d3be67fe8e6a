package repository

import (
	"context"
	"time"

	"anoa.com/bragboard/internal/entity"
	ledgerRepo "anoa.com/bragboard/internal/modules/ledger/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter narrows a shoutout listing. Zero fields match everything;
// set fields are combined with AND. From is inclusive, To exclusive.
type ListFilter struct {
	RecipientID *uuid.UUID
	SenderID    *uuid.UUID
	Department  *string
	From        *time.Time
	To          *time.Time
	Offset      int
	Limit       int
}

type ShoutoutRepository interface {
	Create(ctx context.Context, shoutout *entity.Shoutout, recipientIDs []uuid.UUID) (*entity.LedgerEntry, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Shoutout, error)
	// Update returns the shoutout_retargeted entries written when the new
	// recipients move credit for existing reactions or comments.
	Update(ctx context.Context, shoutout *entity.Shoutout, recipientIDs []uuid.UUID) ([]*entity.LedgerEntry, error)
	// Delete removes the shoutout with its recipients, reactions and
	// comments, resolves pending reports against it and appends a
	// shoutout_deleted entry.
	Delete(ctx context.Context, id, deletedBy uuid.UUID) (*entity.LedgerEntry, error)
	List(ctx context.Context, filter ListFilter) ([]entity.Shoutout, int64, error)
}

type shoutoutRepository struct {
	db     *gorm.DB
	ledger ledgerRepo.LedgerRepository
}

func NewShoutoutRepository(db *gorm.DB, ledger ledgerRepo.LedgerRepository) ShoutoutRepository {
	return &shoutoutRepository{db: db, ledger: ledger}
}

func (r *shoutoutRepository) Create(ctx context.Context, shoutout *entity.Shoutout, recipientIDs []uuid.UUID) (*entity.LedgerEntry, error) {
	var entry *entity.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(shoutout).Error; err != nil {
			return err
		}
		if err := insertRecipients(tx, shoutout.ID, recipientIDs); err != nil {
			return err
		}

		entry = &entity.LedgerEntry{
			Kind:       entity.LedgerShoutoutSent,
			ActorID:    shoutout.SenderID,
			ShoutoutID: shoutout.ID,
			Targets:    recipientIDs,
		}
		return r.ledger.WithTx(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func insertRecipients(tx *gorm.DB, shoutoutID uuid.UUID, recipientIDs []uuid.UUID) error {
	rows := make([]entity.ShoutoutRecipient, len(recipientIDs))
	for i, id := range recipientIDs {
		rows[i] = entity.ShoutoutRecipient{ShoutoutID: shoutoutID, UserID: id, Position: i}
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func (r *shoutoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Shoutout, error) {
	var shoutout entity.Shoutout
	if err := withAssociations(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&shoutout).Error; err != nil {
		return nil, err
	}
	return &shoutout, nil
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Sender").
		Preload("Recipients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Recipients.User")
}

// Update rewrites message, attachment and recipients. Department and sender
// are never touched.
func (r *shoutoutRepository) Update(ctx context.Context, shoutout *entity.Shoutout, recipientIDs []uuid.UUID) ([]*entity.LedgerEntry, error) {
	var entries []*entity.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		previous := []uuid.UUID{}
		if err := tx.Model(&entity.ShoutoutRecipient{}).
			Where("shoutout_id = ?", shoutout.ID).
			Order("position ASC").
			Pluck("user_id", &previous).Error; err != nil {
			return err
		}

		if err := tx.Model(&entity.Shoutout{}).Where("id = ?", shoutout.ID).Updates(map[string]interface{}{
			"message":        shoutout.Message,
			"attachment_url": shoutout.AttachmentURL,
			"updated_at":     time.Now().UTC(),
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("shoutout_id = ?", shoutout.ID).Delete(&entity.ShoutoutRecipient{}).Error; err != nil {
			return err
		}
		if err := insertRecipients(tx, shoutout.ID, recipientIDs); err != nil {
			return err
		}

		var err error
		entries, err = retargetEntries(tx, shoutout.ID, previous, recipientIDs)
		if err != nil {
			return err
		}
		return r.ledger.WithTx(tx).Append(ctx, entries...)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// retargetEntries builds one entry per live reaction and comment whose
// credited recipients differ between before and after.
func retargetEntries(tx *gorm.DB, shoutoutID uuid.UUID, before, after []uuid.UUID) ([]*entity.LedgerEntry, error) {
	if sameMembers(before, after) {
		return nil, nil
	}

	var reactions []entity.Reaction
	if err := tx.Where("shoutout_id = ?", shoutoutID).Order("created_at ASC, id ASC").Find(&reactions).Error; err != nil {
		return nil, err
	}
	var comments []entity.Comment
	if err := tx.Where("shoutout_id = ? AND is_deleted = ?", shoutoutID, false).Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}

	moved := func(actorID uuid.UUID) (gained, dropped []uuid.UUID) {
		was := lo.Without(before, actorID)
		now := lo.Without(after, actorID)
		return lo.Without(now, was...), lo.Without(was, now...)
	}

	entries := []*entity.LedgerEntry{}
	for _, reaction := range reactions {
		gained, dropped := moved(reaction.UserID)
		if len(gained) == 0 && len(dropped) == 0 {
			continue
		}
		entries = append(entries, &entity.LedgerEntry{
			Kind:         entity.LedgerShoutoutRetargeted,
			ActorID:      reaction.UserID,
			ShoutoutID:   shoutoutID,
			ReactionType: reaction.Type,
			Targets:      gained,
			Dropped:      dropped,
		})
	}
	for i := range comments {
		comment := &comments[i]
		gained, dropped := moved(comment.AuthorID)
		if len(gained) == 0 && len(dropped) == 0 {
			continue
		}
		commentID := comment.ID
		entries = append(entries, &entity.LedgerEntry{
			Kind:       entity.LedgerShoutoutRetargeted,
			ActorID:    comment.AuthorID,
			ShoutoutID: shoutoutID,
			CommentID:  &commentID,
			Targets:    gained,
			Dropped:    dropped,
		})
	}
	return entries, nil
}

func sameMembers(a, b []uuid.UUID) bool {
	return len(lo.Uniq(a)) == len(lo.Uniq(b)) && lo.Every(a, b)
}

func (r *shoutoutRepository) Delete(ctx context.Context, id, deletedBy uuid.UUID) (*entity.LedgerEntry, error) {
	var entry *entity.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id = ?", id)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var shoutout entity.Shoutout
		if err := query.Take(&shoutout).Error; err != nil {
			return err
		}

		recipients := []uuid.UUID{}
		if err := tx.Model(&entity.ShoutoutRecipient{}).
			Where("shoutout_id = ?", id).
			Order("position ASC").
			Pluck("user_id", &recipients).Error; err != nil {
			return err
		}

		commentIDs := []uuid.UUID{}
		if err := tx.Model(&entity.Comment{}).Where("shoutout_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		resolve := tx.Model(&entity.Report{}).Where("status = ?", entity.ReportPending)
		if len(commentIDs) > 0 {
			resolve = resolve.Where("shoutout_id = ? OR comment_id IN ?", id, commentIDs)
		} else {
			resolve = resolve.Where("shoutout_id = ?", id)
		}
		if err := resolve.Updates(map[string]interface{}{
			"status":      entity.ReportContentDeleted,
			"resolved_by": deletedBy,
			"resolved_at": now,
		}).Error; err != nil {
			return err
		}

		for _, model := range []interface{}{&entity.Reaction{}, &entity.Comment{}, &entity.ShoutoutRecipient{}} {
			if err := tx.Where("shoutout_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("id = ?", id).Delete(&entity.Shoutout{}).Error; err != nil {
			return err
		}

		entry = &entity.LedgerEntry{
			Kind:       entity.LedgerShoutoutDeleted,
			ActorID:    deletedBy,
			ShoutoutID: id,
			Targets:    recipients,
		}
		return r.ledger.WithTx(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns shoutouts newest first together with the unpaged total.
// A zero Limit returns every match.
func (r *shoutoutRepository) List(ctx context.Context, filter ListFilter) ([]entity.Shoutout, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Shoutout{})

	if filter.RecipientID != nil {
		query = query.Where("EXISTS (SELECT 1 FROM shoutout_recipients sr WHERE sr.shoutout_id = shoutouts.id AND sr.user_id = ?)", *filter.RecipientID)
	}
	if filter.SenderID != nil {
		query = query.Where("shoutouts.sender_id = ?", *filter.SenderID)
	}
	if filter.Department != nil {
		query = query.Where("shoutouts.department = ?", *filter.Department)
	}
	if filter.From != nil {
		query = query.Where("shoutouts.created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("shoutouts.created_at < ?", filter.To.UTC())
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	shoutouts := []entity.Shoutout{}
	list := withAssociations(query).Order("shoutouts.created_at DESC, shoutouts.id DESC")
	if filter.Limit > 0 {
		list = list.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := list.Find(&shoutouts).Error; err != nil {
		return nil, 0, err
	}

	return shoutouts, total, nil
}
