package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/modules/leaderboard/dto"
	leaderboardRepo "anoa.com/bragboard/internal/modules/leaderboard/repository"
	ledgerService "anoa.com/bragboard/internal/modules/ledger/service"
	"anoa.com/bragboard/pkg/apperror"
	commonDto "anoa.com/bragboard/pkg/dto"
	"anoa.com/bragboard/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	weeklyWindow = 7 * 24 * time.Hour
)

type LeaderboardService interface {
	Global(ctx context.Context, limit int) (*dto.LeaderboardResponse, error)
	// Department ranks the given department, or the caller's own when
	// department is empty.
	Department(ctx context.Context, actor entity.Actor, department string, limit int) (*dto.LeaderboardResponse, error)
	Me(ctx context.Context, actor entity.Actor) (*dto.MeResponse, error)
}

type leaderboardService struct {
	repo    leaderboardRepo.LeaderboardRepository
	ledger  ledgerService.LedgerService
	weights Weights
	now     func() time.Time
	logger  *zap.Logger
}

func NewLeaderboardService(repo leaderboardRepo.LeaderboardRepository, ledger ledgerService.LedgerService, weights Weights, logger *zap.Logger) LeaderboardService {
	return &leaderboardService{
		repo:    repo,
		ledger:  ledger,
		weights: weights,
		now:     time.Now,
		logger:  logger.Named("leaderboard"),
	}
}

func (s *leaderboardService) Global(ctx context.Context, limit int) (*dto.LeaderboardResponse, error) {
	timer := prometheus.NewTimer(metrics.LeaderboardDuration.WithLabelValues("global"))
	defer timer.ObserveDuration()

	standings, err := s.standings(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &dto.LeaderboardResponse{
		Scope:   GlobalScope().Name(),
		Entries: s.page(Rank(standings, GlobalScope()), limit),
	}, nil
}

func (s *leaderboardService) Department(ctx context.Context, actor entity.Actor, department string, limit int) (*dto.LeaderboardResponse, error) {
	timer := prometheus.NewTimer(metrics.LeaderboardDuration.WithLabelValues("department"))
	defer timer.ObserveDuration()

	department = strings.TrimSpace(department)
	if department == "" {
		if actor.Department == nil || *actor.Department == "" {
			return nil, fmt.Errorf("%w: department is required for users without one", apperror.ErrInvalidInput)
		}
		department = *actor.Department
	}

	standings, err := s.standings(ctx, &department)
	if err != nil {
		return nil, err
	}

	scope := DepartmentScope(department)
	return &dto.LeaderboardResponse{
		Scope:      scope.Name(),
		Department: &department,
		Entries:    s.page(Rank(standings, scope), limit),
	}, nil
}

// Me scores every user to place the actor globally. The department rank is
// taken from the same standings.
func (s *leaderboardService) Me(ctx context.Context, actor entity.Actor) (*dto.MeResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}

	timer := prometheus.NewTimer(metrics.LeaderboardDuration.WithLabelValues("me"))
	defer timer.ObserveDuration()

	activity, err := s.repo.Activity(ctx, nil)
	if err != nil {
		return nil, err
	}
	standings := lo.Map(activity, func(a leaderboardRepo.Activity, _ int) Standing {
		return s.standing(a)
	})

	global := Rank(standings, GlobalScope())
	me, ok := lo.Find(global, func(e RankedEntry) bool { return e.UserID == actor.UserID })
	if !ok {
		return nil, fmt.Errorf("%w: user not found", apperror.ErrNotFound)
	}
	user, _ := lo.Find(activity, func(a leaderboardRepo.Activity) bool { return a.User.ID == actor.UserID })

	res := &dto.MeResponse{
		User:      commonDto.NewAuthorResponse(&user.User),
		Rank:      me.Rank,
		Score:     me.Score,
		Counters:  countersResponse(me.Counters),
		Breakdown: breakdownResponse(Breakdown(me.Counters, s.weights)),
		Tier:      tierResponse(Tier(me.Score)),
	}

	if me.Department != nil {
		ranked := Rank(standings, DepartmentScope(*me.Department))
		if entry, ok := lo.Find(ranked, func(e RankedEntry) bool { return e.UserID == actor.UserID }); ok {
			res.DepartmentRank = &entry.Rank
		}
	}

	weekly, err := s.weeklyPoints(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	res.WeeklyPoints = weekly
	res.WeeklyLabel = WeeklyLabel(weekly)

	return res, nil
}

// weeklyPoints replays the last week of the ledger. A failed read degrades
// to zero instead of failing the whole view.
func (s *leaderboardService) weeklyPoints(ctx context.Context, userID uuid.UUID) (int, error) {
	entries, err := s.ledger.Since(ctx, s.now().Add(-weeklyWindow))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		s.logger.Warn("failed to read weekly ledger", zap.Stringer("user_id", userID), zap.Error(err))
		return 0, nil
	}
	return Score(Reduce(entries)[userID], s.weights), nil
}

func (s *leaderboardService) standings(ctx context.Context, department *string) ([]Standing, error) {
	activity, err := s.repo.Activity(ctx, department)
	if err != nil {
		return nil, err
	}
	return lo.Map(activity, func(a leaderboardRepo.Activity, _ int) Standing {
		return s.standing(a)
	}), nil
}

func (s *leaderboardService) standing(a leaderboardRepo.Activity) Standing {
	c := Counters{
		ShoutoutsSent:     a.ShoutoutsSent,
		ReactionsReceived: a.ReactionsReceived,
		CommentsReceived:  a.CommentsReceived,
		ReactionsGiven:    a.ReactionsGiven,
	}
	return Standing{
		UserID:     a.User.ID,
		Name:       a.User.Name,
		AvatarURL:  a.User.AvatarURL,
		Department: a.User.Department,
		Counters:   c,
		Score:      Score(c, s.weights),
	}
}

// page keeps users who scored and cuts the list to limit.
func (s *leaderboardService) page(ranked []RankedEntry, limit int) []dto.LeaderboardEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	entries := make([]dto.LeaderboardEntry, 0, limit)
	for _, e := range ranked {
		if len(entries) == limit {
			break
		}
		if e.Score <= 0 {
			continue
		}
		entries = append(entries, dto.LeaderboardEntry{
			Rank: e.Rank,
			User: commonDto.AuthorResponse{
				ID:         e.UserID,
				Name:       e.Name,
				Department: e.Department,
				AvatarURL:  e.AvatarURL,
			},
			Score:     e.Score,
			Breakdown: breakdownResponse(Breakdown(e.Counters, s.weights)),
			Tier:      tierResponse(Tier(e.Score)),
		})
	}
	return entries
}

func countersResponse(c Counters) dto.CountersResponse {
	return dto.CountersResponse{
		ShoutoutsSent:     c.ShoutoutsSent,
		ReactionsReceived: c.ReactionsReceived,
		CommentsReceived:  c.CommentsReceived,
		ReactionsGiven:    c.ReactionsGiven,
	}
}

func breakdownResponse(p Points) dto.BreakdownResponse {
	return dto.BreakdownResponse{
		ShoutoutsSent:     p.ShoutoutsSent,
		ReactionsReceived: p.ReactionsReceived,
		CommentsReceived:  p.CommentsReceived,
		ReactionsGiven:    p.ReactionsGiven,
	}
}

func tierResponse(t TierStatus) dto.TierResponse {
	return dto.TierResponse{
		Name:          t.Name,
		NextTier:      t.NextTier,
		CurrentPoints: t.CurrentPoints,
		TargetPoints:  t.TargetPoints,
		Progress:      t.Progress,
	}
}
