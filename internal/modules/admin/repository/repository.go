package repository

import (
	"context"

	"anoa.com/bragboard/internal/entity"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type UserTotal struct {
	User  entity.User
	Total int64
}

type AdminRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountShoutouts(ctx context.Context) (int64, error)
	CountPendingReports(ctx context.Context) (int64, error)
	TopSenders(ctx context.Context, limit int) ([]UserTotal, error)
	TopRecipients(ctx context.Context, limit int) ([]UserTotal, error)
	ReactionsByType(ctx context.Context) (map[entity.ReactionType]int64, error)
	SetRole(ctx context.Context, userID uuid.UUID, role string) (*entity.User, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&n).Error
	return n, err
}

func (r *adminRepository) CountShoutouts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Shoutout{}).Count(&n).Error
	return n, err
}

func (r *adminRepository) CountPendingReports(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Report{}).Where("status = ?", entity.ReportPending).Count(&n).Error
	return n, err
}

func (r *adminRepository) TopSenders(ctx context.Context, limit int) ([]UserTotal, error) {
	return r.topUsers(ctx, "shoutouts", "sender_id", limit)
}

func (r *adminRepository) TopRecipients(ctx context.Context, limit int) ([]UserTotal, error) {
	return r.topUsers(ctx, "shoutout_recipients", "user_id", limit)
}

type userCount struct {
	UserID uuid.UUID
	Total  int64
}

// topUsers ranks users by how many rows of table name them in column.
func (r *adminRepository) topUsers(ctx context.Context, table, column string, limit int) ([]UserTotal, error) {
	var rows []userCount
	err := r.db.WithContext(ctx).
		Table(table).
		Select(column + " AS user_id, COUNT(*) AS total").
		Group(column).
		Order("total DESC").
		Order(column).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []UserTotal{}, nil
	}

	var users []entity.User
	ids := lo.Map(rows, func(row userCount, _ int) uuid.UUID { return row.UserID })
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := lo.KeyBy(users, func(u entity.User) uuid.UUID { return u.ID })

	return lo.FilterMap(rows, func(row userCount, _ int) (UserTotal, bool) {
		u, ok := byID[row.UserID]
		return UserTotal{User: u, Total: row.Total}, ok
	}), nil
}

func (r *adminRepository) ReactionsByType(ctx context.Context) (map[entity.ReactionType]int64, error) {
	var rows []struct {
		Type  entity.ReactionType
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Select("type, COUNT(*) AS total").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[entity.ReactionType]int64, len(entity.ReactionTypes()))
	for _, t := range entity.ReactionTypes() {
		out[t] = 0
	}
	for _, row := range rows {
		out[row.Type] = row.Total
	}
	return out, nil
}

func (r *adminRepository) SetRole(ctx context.Context, userID uuid.UUID, role string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("role", role).Error
	})
	if err != nil {
		return nil, err
	}
	user.Role = role
	return &user, nil
}
