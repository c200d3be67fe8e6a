package service_test

import (
	"strings"
	"testing"
	"time"

	"anoa.com/bragboard/internal/entity"
	commentRepo "anoa.com/bragboard/internal/modules/comment/repository"
	"anoa.com/bragboard/internal/modules/comment/service"
	ledgerRepo "anoa.com/bragboard/internal/modules/ledger/repository"
	ledgerService "anoa.com/bragboard/internal/modules/ledger/service"
	"anoa.com/bragboard/internal/testutil"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	svc       service.CommentService
	sender    *entity.User
	recipient *entity.User
	outsider  *entity.User
	admin     *entity.User
	post      *entity.Shoutout
}

func setup(t *testing.T, opts service.Options) fixture {
	t.Helper()

	db := testutil.NewDB(t)
	lRepo := ledgerRepo.NewLedgerRepository(db)
	ledger := ledgerService.NewLedgerService(lRepo, zap.NewNop())
	rdb, _ := testutil.NewRedis(t)
	svc := service.NewCommentService(commentRepo.NewCommentRepository(db, lRepo), ledger, ratelimiter.New(rdb), opts, zap.NewNop())

	f := fixture{db: db, svc: svc}
	f.sender = testutil.CreateUser(t, db, "Sender", "Ops")
	f.recipient = testutil.CreateUser(t, db, "Recipient", "Ops")
	f.outsider = testutil.CreateUser(t, db, "Outsider", "Legal")
	f.admin = testutil.CreateAdmin(t, db, "Moderator")
	f.post = testutil.CreateShoutout(t, db, f.sender, testutil.Now(), f.recipient)
	return f
}

func TestAddCommentSanitizesAndRecordsLedger(t *testing.T) {
	f := setup(t, service.Options{})

	got, err := f.svc.AddComment(t.Context(), testutil.Actor(f.outsider), f.post.ID, "  <b>Well</b> deserved!<script>x()</script> ")
	require.NoError(t, err)
	assert.Equal(t, "Well deserved!", got.Content)
	assert.Equal(t, "Outsider", got.Author.Name)

	var entry entity.LedgerEntry
	require.NoError(t, f.db.First(&entry).Error)
	assert.Equal(t, entity.LedgerCommentReceived, entry.Kind)
	assert.Equal(t, []uuid.UUID{f.recipient.ID}, entry.Targets)
	require.NotNil(t, entry.CommentID)
	assert.Equal(t, got.ID, *entry.CommentID)
}

func TestAddCommentValidation(t *testing.T) {
	f := setup(t, service.Options{MaxLength: 10})
	ctx := t.Context()
	actor := testutil.Actor(f.outsider)

	_, err := f.svc.AddComment(ctx, actor, f.post.ID, "   ")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.AddComment(ctx, actor, f.post.ID, "<p></p>")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.AddComment(ctx, actor, f.post.ID, strings.Repeat("a", 11))
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	_, err = f.svc.AddComment(ctx, actor, f.post.ID, strings.Repeat("é", 10))
	assert.NoError(t, err)

	_, err = f.svc.AddComment(ctx, actor, uuid.New(), "hello")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.AddComment(ctx, entity.Actor{}, f.post.ID, "hello")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAddCommentRateLimited(t *testing.T) {
	f := setup(t, service.Options{Cooldown: time.Minute})
	ctx := t.Context()

	_, err := f.svc.AddComment(ctx, testutil.Actor(f.outsider), f.post.ID, "first")
	require.NoError(t, err)

	_, err = f.svc.AddComment(ctx, testutil.Actor(f.outsider), f.post.ID, "second")
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	_, err = f.svc.AddComment(ctx, testutil.Actor(f.recipient), f.post.ID, "other user")
	assert.NoError(t, err)
}

func TestSoftDeletePermissions(t *testing.T) {
	f := setup(t, service.Options{})
	ctx := t.Context()

	c, err := f.svc.AddComment(ctx, testutil.Actor(f.outsider), f.post.ID, "nice")
	require.NoError(t, err)

	err = f.svc.SoftDeleteComment(ctx, testutil.Actor(f.sender), c.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, f.svc.SoftDeleteComment(ctx, testutil.Actor(f.admin), c.ID))
	require.NoError(t, f.svc.SoftDeleteComment(ctx, testutil.Actor(f.admin), c.ID))

	err = f.svc.SoftDeleteComment(ctx, testutil.Actor(f.admin), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var kinds []entity.LedgerKind
	require.NoError(t, f.db.Model(&entity.LedgerEntry{}).Order("created_at ASC, id ASC").Pluck("kind", &kinds).Error)
	assert.Equal(t, []entity.LedgerKind{entity.LedgerCommentReceived, entity.LedgerCommentRemoved}, kinds)

	var stored entity.Comment
	require.NoError(t, f.db.First(&stored, "id = ?", c.ID).Error)
	assert.True(t, stored.IsDeleted)
	assert.Equal(t, "nice", stored.Content)
	require.NotNil(t, stored.DeletedBy)
	assert.Equal(t, f.admin.ID, *stored.DeletedBy)
}

func TestSoftDeleteResolvesPendingReports(t *testing.T) {
	f := setup(t, service.Options{})
	ctx := t.Context()

	c, err := f.svc.AddComment(ctx, testutil.Actor(f.outsider), f.post.ID, "rude words")
	require.NoError(t, err)

	report := entity.Report{CommentID: &c.ID, ReporterID: f.recipient.ID, Reason: "rude"}
	require.NoError(t, f.db.Create(&report).Error)

	require.NoError(t, f.svc.SoftDeleteComment(ctx, testutil.Actor(f.outsider), c.ID))

	var got entity.Report
	require.NoError(t, f.db.First(&got, "id = ?", report.ID).Error)
	assert.Equal(t, entity.ReportContentDeleted, got.Status)
	require.NotNil(t, got.ResolvedBy)
	assert.Equal(t, f.outsider.ID, *got.ResolvedBy)
}

func TestListCommentsOldestFirstWithDeletedElided(t *testing.T) {
	f := setup(t, service.Options{})
	ctx := t.Context()

	first, err := f.svc.AddComment(ctx, testutil.Actor(f.outsider), f.post.ID, "one")
	require.NoError(t, err)
	second, err := f.svc.AddComment(ctx, testutil.Actor(f.recipient), f.post.ID, "two")
	require.NoError(t, err)
	third, err := f.svc.AddComment(ctx, testutil.Actor(f.sender), f.post.ID, "three")
	require.NoError(t, err)

	require.NoError(t, f.svc.SoftDeleteComment(ctx, testutil.Actor(f.recipient), second.ID))

	list, err := f.svc.ListComments(ctx, f.post.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, third.ID}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})
	assert.True(t, list[1].IsDeleted)
	assert.Empty(t, list[1].Content)
	assert.Equal(t, "three", list[2].Content)

	again, err := f.svc.ListComments(ctx, f.post.ID)
	require.NoError(t, err)
	require.Len(t, again, 3)
	assert.Equal(t, list[1].ID, again[1].ID)

	empty, err := f.svc.ListComments(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
