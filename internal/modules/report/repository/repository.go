package repository

import (
	"context"
	"time"

	"anoa.com/bragboard/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	// ListPending returns pending reports oldest first.
	ListPending(ctx context.Context) ([]entity.Report, error)
	CountPending(ctx context.Context) (int64, error)
	// HasPending reports whether reporterID already has a pending report on
	// the same target.
	HasPending(ctx context.Context, reporterID uuid.UUID, shoutoutID, commentID *uuid.UUID) (bool, error)
	// Resolve moves a pending report to status. It returns false when the
	// report was no longer pending.
	Resolve(ctx context.Context, id uuid.UUID, status entity.ReportStatus, resolvedBy uuid.UUID) (bool, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	var report entity.Report
	if err := r.db.WithContext(ctx).Preload("Reporter").Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListPending(ctx context.Context) ([]entity.Report, error) {
	reports := []entity.Report{}
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Where("status = ?", entity.ReportPending).
		Order("created_at ASC, id ASC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Report{}).Where("status = ?", entity.ReportPending).Count(&count).Error
	return count, err
}

func (r *reportRepository) HasPending(ctx context.Context, reporterID uuid.UUID, shoutoutID, commentID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.Report{}).
		Where("reporter_id = ? AND status = ?", reporterID, entity.ReportPending)
	if shoutoutID != nil {
		query = query.Where("shoutout_id = ?", *shoutoutID)
	}
	if commentID != nil {
		query = query.Where("comment_id = ?", *commentID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reportRepository) Resolve(ctx context.Context, id uuid.UUID, status entity.ReportStatus, resolvedBy uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entity.Report{}).
		Where("id = ? AND status = ?", id, entity.ReportPending).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_by": resolvedBy,
			"resolved_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
