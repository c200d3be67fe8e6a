package service_test

import (
	"strings"
	"testing"

	"anoa.com/bragboard/internal/entity"
	commentRepo "anoa.com/bragboard/internal/modules/comment/repository"
	commentService "anoa.com/bragboard/internal/modules/comment/service"
	"anoa.com/bragboard/internal/modules/feed/dto"
	feedService "anoa.com/bragboard/internal/modules/feed/service"
	ledgerRepo "anoa.com/bragboard/internal/modules/ledger/repository"
	ledgerService "anoa.com/bragboard/internal/modules/ledger/service"
	reactionRepo "anoa.com/bragboard/internal/modules/reaction/repository"
	reactionService "anoa.com/bragboard/internal/modules/reaction/service"
	reportDto "anoa.com/bragboard/internal/modules/report/dto"
	reportRepo "anoa.com/bragboard/internal/modules/report/repository"
	"anoa.com/bragboard/internal/modules/report/service"
	shoutoutRepo "anoa.com/bragboard/internal/modules/shoutout/repository"
	shoutoutService "anoa.com/bragboard/internal/modules/shoutout/service"
	userRepo "anoa.com/bragboard/internal/modules/user/repository"
	"anoa.com/bragboard/internal/testutil"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc       service.ReportService
	feed      feedService.FeedService
	reactions reactionService.ReactionService
	comments  commentService.CommentService
	sender    *entity.User
	recipient *entity.User
	reporter  *entity.User
	admin     *entity.User
	post      *entity.Shoutout
}

func setup(t *testing.T) fixture {
	t.Helper()

	db := testutil.NewDB(t)
	lRepo := ledgerRepo.NewLedgerRepository(db)
	ledger := ledgerService.NewLedgerService(lRepo, zap.NewNop())
	limiter := ratelimiter.New(nil)

	sRepo := shoutoutRepo.NewShoutoutRepository(db, lRepo)
	cRepo := commentRepo.NewCommentRepository(db, lRepo)
	shoutouts := shoutoutService.NewShoutoutService(sRepo, userRepo.NewUserRepository(db), ledger, limiter, shoutoutService.RateLimits{}, nil, nil, zap.NewNop())

	f := fixture{
		reactions: reactionService.NewReactionService(reactionRepo.NewReactionRepository(db, lRepo), ledger, zap.NewNop()),
		comments:  commentService.NewCommentService(cRepo, ledger, limiter, commentService.Options{}, zap.NewNop()),
	}
	f.feed = feedService.NewFeedService(sRepo, f.reactions, f.comments, nil)
	f.svc = service.NewReportService(reportRepo.NewReportRepository(db), sRepo, cRepo, shoutouts, f.comments, zap.NewNop())

	f.sender = testutil.CreateUser(t, db, "Sender", "Ops")
	f.recipient = testutil.CreateUser(t, db, "Recipient", "Ops")
	f.reporter = testutil.CreateUser(t, db, "Reporter", "Legal")
	f.admin = testutil.CreateAdmin(t, db, "Moderator")
	f.post = testutil.CreateShoutout(t, db, f.sender, testutil.Now(), f.recipient)
	return f
}

func (f fixture) reportPost(t *testing.T) *reportDto.ReportResponse {
	t.Helper()
	res, err := f.svc.Create(t.Context(), testutil.Actor(f.reporter), reportDto.CreateReportRequest{ShoutoutID: &f.post.ID, Reason: "spam"})
	require.NoError(t, err)
	return res
}

func TestCreateReportValidation(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	missing := uuid.New()

	tests := []struct {
		name  string
		actor *entity.User
		req   reportDto.CreateReportRequest
		want  error
	}{
		{"no target", f.reporter, reportDto.CreateReportRequest{Reason: "spam"}, apperror.ErrInvalidInput},
		{"two targets", f.reporter, reportDto.CreateReportRequest{ShoutoutID: &f.post.ID, CommentID: &missing, Reason: "spam"}, apperror.ErrInvalidInput},
		{"blank reason", f.reporter, reportDto.CreateReportRequest{ShoutoutID: &f.post.ID, Reason: " <b></b> "}, apperror.ErrInvalidInput},
		{"long reason", f.reporter, reportDto.CreateReportRequest{ShoutoutID: &f.post.ID, Reason: strings.Repeat("r", 501)}, apperror.ErrInvalidInput},
		{"unknown shoutout", f.reporter, reportDto.CreateReportRequest{ShoutoutID: &missing, Reason: "spam"}, apperror.ErrNotFound},
		{"unknown comment", f.reporter, reportDto.CreateReportRequest{CommentID: &missing, Reason: "spam"}, apperror.ErrNotFound},
		{"own content", f.sender, reportDto.CreateReportRequest{ShoutoutID: &f.post.ID, Reason: "spam"}, apperror.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, testutil.Actor(tt.actor), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateReportRejectsDuplicatePending(t *testing.T) {
	f := setup(t)

	first := f.reportPost(t)
	assert.Equal(t, entity.ReportPending, first.Status)
	assert.Equal(t, "Reporter", first.Reporter.Name)

	_, err := f.svc.Create(t.Context(), testutil.Actor(f.reporter), reportDto.CreateReportRequest{ShoutoutID: &f.post.ID, Reason: "again"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestAdminOnlyOperations(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	report := f.reportPost(t)
	user := testutil.Actor(f.reporter)

	_, err := f.svc.ListPending(ctx, user)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = f.svc.Dismiss(ctx, user, report.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = f.svc.DeleteContent(ctx, user, report.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	pending, err := f.svc.ListPending(ctx, testutil.Actor(f.admin))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, report.ID, pending[0].ID)
}

func TestDismissReport(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	admin := testutil.Actor(f.admin)
	report := f.reportPost(t)

	res, err := f.svc.Dismiss(ctx, admin, report.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReportDismissed, res.Status)
	require.NotNil(t, res.ResolvedBy)
	assert.Equal(t, f.admin.ID, *res.ResolvedBy)
	assert.NotNil(t, res.ResolvedAt)

	_, err = f.svc.Dismiss(ctx, admin, report.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	_, err = f.svc.DeleteContent(ctx, admin, report.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.svc.Dismiss(ctx, admin, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	feed, err := f.feed.QueryFeed(ctx, admin, dto.FeedFilter{})
	require.NoError(t, err)
	assert.Len(t, feed.Data, 1)
}

func TestDeleteReportedShoutout(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	admin := testutil.Actor(f.admin)

	_, err := f.reactions.SetReaction(ctx, testutil.Actor(f.reporter), f.post.ID, entity.ReactionLike)
	require.NoError(t, err)
	_, err = f.comments.AddComment(ctx, testutil.Actor(f.reporter), f.post.ID, "hmm")
	require.NoError(t, err)
	report := f.reportPost(t)

	res, err := f.svc.DeleteContent(ctx, admin, report.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReportContentDeleted, res.Status)
	require.NotNil(t, res.ShoutoutID)
	assert.Equal(t, f.post.ID, *res.ShoutoutID)

	feed, err := f.feed.QueryFeed(ctx, admin, dto.FeedFilter{})
	require.NoError(t, err)
	assert.Empty(t, feed.Data)

	_, err = f.reactions.CountsFor(ctx, f.post.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	comments, err := f.comments.ListComments(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	pending, err := f.svc.ListPending(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeleteReportedComment(t *testing.T) {
	f := setup(t)
	ctx := t.Context()
	admin := testutil.Actor(f.admin)

	comment, err := f.comments.AddComment(ctx, testutil.Actor(f.sender), f.post.ID, "rude words")
	require.NoError(t, err)
	report, err := f.svc.Create(ctx, testutil.Actor(f.reporter), reportDto.CreateReportRequest{CommentID: &comment.ID, Reason: "abusive"})
	require.NoError(t, err)

	res, err := f.svc.DeleteContent(ctx, admin, report.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReportContentDeleted, res.Status)

	comments, err := f.comments.ListComments(ctx, f.post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.True(t, comments[0].IsDeleted)
	assert.Empty(t, comments[0].Content)

	_, err = f.svc.Create(ctx, testutil.Actor(f.recipient), reportDto.CreateReportRequest{CommentID: &comment.ID, Reason: "abusive"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteContentWhenTargetAlreadyGone(t *testing.T) {
	f := setup(t)
	ctx := t.Context()

	comment, err := f.comments.AddComment(ctx, testutil.Actor(f.sender), f.post.ID, "temp")
	require.NoError(t, err)
	report, err := f.svc.Create(ctx, testutil.Actor(f.reporter), reportDto.CreateReportRequest{CommentID: &comment.ID, Reason: "spam"})
	require.NoError(t, err)

	// The post goes first, taking the comment and resolving the report.
	postReport := f.reportPost(t)
	_, err = f.svc.DeleteContent(ctx, testutil.Actor(f.admin), postReport.ID)
	require.NoError(t, err)

	_, err = f.svc.DeleteContent(ctx, testutil.Actor(f.admin), report.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}
