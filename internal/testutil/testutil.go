// Package testutil builds throwaway databases, redis servers and fixtures for
// package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"anoa.com/bragboard/internal/bootstrap"
	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/pkg/database"
	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB returns a migrated in-memory sqlite database private to t. It has a
// single connection, so code running inside a transaction must use the
// transaction handle.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	return db
}

func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func CreateUser(t testing.TB, db *gorm.DB, name, department string) *entity.User {
	t.Helper()

	u := &entity.User{
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", strings.ToLower(strings.ReplaceAll(name, " ", ".")), uuid.NewString()[:8]),
		PasswordHash: "x",
		Role:         entity.RoleEmployee,
	}
	if department != "" {
		u.Department = &department
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateAdmin(t testing.TB, db *gorm.DB, name string) *entity.User {
	t.Helper()

	u := CreateUser(t, db, name, "")
	require.NoError(t, db.Model(u).Update("role", entity.RoleAdmin).Error)
	u.Role = entity.RoleAdmin
	return u
}

func Actor(u *entity.User) entity.Actor {
	return entity.ActorFromUser(u)
}

// CreateShoutout inserts a shoutout directly, without ledger entries. A zero
// createdAt uses the current time.
func CreateShoutout(t testing.TB, db *gorm.DB, sender *entity.User, createdAt time.Time, recipients ...*entity.User) *entity.Shoutout {
	t.Helper()

	s := &entity.Shoutout{
		SenderID:   sender.ID,
		Message:    "thanks " + sender.Name,
		Department: sender.Department,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(s).Error)

	for i, r := range recipients {
		rec := entity.ShoutoutRecipient{ShoutoutID: s.ID, UserID: r.ID, Position: i}
		require.NoError(t, db.Omit(clause.Associations).Create(&rec).Error)
		s.Recipients = append(s.Recipients, rec)
	}
	return s
}

func StrPtr(s string) *string {
	return &s
}

// Now is the current time truncated to microseconds, the precision postgres
// keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
