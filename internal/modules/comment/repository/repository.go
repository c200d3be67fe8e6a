package repository

import (
	"context"
	"time"

	"anoa.com/bragboard/internal/entity"
	ledgerRepo "anoa.com/bragboard/internal/modules/ledger/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepository interface {
	// Create stores the comment and its comment_received ledger entry.
	Create(ctx context.Context, comment *entity.Comment) (*entity.LedgerEntry, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	// SoftDelete marks the comment deleted and resolves pending reports on
	// it. It returns a nil entry when the comment was already deleted.
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) (*entity.LedgerEntry, error)
	ListByShoutouts(ctx context.Context, shoutoutIDs []uuid.UUID) ([]entity.Comment, error)
}

type commentRepository struct {
	db     *gorm.DB
	ledger ledgerRepo.LedgerRepository
}

func NewCommentRepository(db *gorm.DB, ledger ledgerRepo.LedgerRepository) CommentRepository {
	return &commentRepository{db: db, ledger: ledger}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) (*entity.LedgerEntry, error) {
	var entry *entity.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		credited, err := ledgerRepo.CreditedRecipients(tx, comment.ShoutoutID, comment.AuthorID)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return err
		}

		commentID := comment.ID
		entry = &entity.LedgerEntry{
			Kind:       entity.LedgerCommentReceived,
			ActorID:    comment.AuthorID,
			ShoutoutID: comment.ShoutoutID,
			CommentID:  &commentID,
			Targets:    credited,
		}
		return r.ledger.WithTx(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) (*entity.LedgerEntry, error) {
	var entry *entity.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("id = ?", id)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var comment entity.Comment
		if err := query.Take(&comment).Error; err != nil {
			return err
		}
		if comment.IsDeleted {
			return nil
		}

		now := time.Now().UTC()
		if err := tx.Model(&entity.Comment{}).Where("id = ?", id).Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_by": deletedBy,
			"deleted_at": now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Model(&entity.Report{}).
			Where("comment_id = ? AND status = ?", id, entity.ReportPending).
			Updates(map[string]interface{}{
				"status":      entity.ReportContentDeleted,
				"resolved_by": deletedBy,
				"resolved_at": now,
			}).Error; err != nil {
			return err
		}

		credited, err := ledgerRepo.CreditedRecipients(tx, comment.ShoutoutID, comment.AuthorID)
		if err != nil {
			return err
		}

		entry = &entity.LedgerEntry{
			Kind:       entity.LedgerCommentRemoved,
			ActorID:    deletedBy,
			ShoutoutID: comment.ShoutoutID,
			CommentID:  &comment.ID,
			Targets:    credited,
		}
		return r.ledger.WithTx(tx).Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByShoutouts returns comments oldest first, soft-deleted ones included.
func (r *commentRepository) ListByShoutouts(ctx context.Context, shoutoutIDs []uuid.UUID) ([]entity.Comment, error) {
	comments := []entity.Comment{}
	if len(shoutoutIDs) == 0 {
		return comments, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("shoutout_id IN ?", shoutoutIDs).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}
