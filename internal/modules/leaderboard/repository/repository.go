package repository

import (
	"context"

	"anoa.com/bragboard/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity is a user with the raw counts the score is built from.
type Activity struct {
	User              entity.User
	ShoutoutsSent     int
	ReactionsReceived int
	CommentsReceived  int
	ReactionsGiven    int
}

type LeaderboardRepository interface {
	// Activity returns one row per user, users without any activity
	// included. A non-nil department restricts the users returned.
	Activity(ctx context.Context, department *string) ([]Activity, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

type userCount struct {
	UserID uuid.UUID
	N      int
}

func (r *leaderboardRepository) Activity(ctx context.Context, department *string) ([]Activity, error) {
	db := r.db.WithContext(ctx)

	users := []entity.User{}
	query := db.Order("id ASC")
	if department != nil {
		query = query.Where("department = ?", *department)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []Activity{}, nil
	}

	sent, err := r.countBy(db.Model(&entity.Shoutout{}).
		Select("sender_id AS user_id, COUNT(*) AS n").
		Group("sender_id"))
	if err != nil {
		return nil, err
	}

	// Appreciation is credited to the tagged recipients of a shoutout,
	// never to the user who gave it.
	reactionsReceived, err := r.countBy(db.Table("reactions r").
		Joins("JOIN shoutout_recipients sr ON sr.shoutout_id = r.shoutout_id").
		Where("r.user_id <> sr.user_id").
		Select("sr.user_id AS user_id, COUNT(*) AS n").
		Group("sr.user_id"))
	if err != nil {
		return nil, err
	}

	commentsReceived, err := r.countBy(db.Table("comments c").
		Joins("JOIN shoutout_recipients sr ON sr.shoutout_id = c.shoutout_id").
		Where("c.is_deleted = ? AND c.author_id <> sr.user_id", false).
		Select("sr.user_id AS user_id, COUNT(*) AS n").
		Group("sr.user_id"))
	if err != nil {
		return nil, err
	}

	given, err := r.countBy(db.Model(&entity.Reaction{}).
		Select("user_id, COUNT(*) AS n").
		Group("user_id"))
	if err != nil {
		return nil, err
	}

	out := make([]Activity, len(users))
	for i, u := range users {
		out[i] = Activity{
			User:              u,
			ShoutoutsSent:     sent[u.ID],
			ReactionsReceived: reactionsReceived[u.ID],
			CommentsReceived:  commentsReceived[u.ID],
			ReactionsGiven:    given[u.ID],
		}
	}
	return out, nil
}

func (r *leaderboardRepository) countBy(query *gorm.DB) (map[uuid.UUID]int, error) {
	var rows []userCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.N
	}
	return counts, nil
}
