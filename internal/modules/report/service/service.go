package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"anoa.com/bragboard/internal/entity"
	commentRepo "anoa.com/bragboard/internal/modules/comment/repository"
	commentService "anoa.com/bragboard/internal/modules/comment/service"
	"anoa.com/bragboard/internal/modules/report/dto"
	reportRepo "anoa.com/bragboard/internal/modules/report/repository"
	shoutoutRepo "anoa.com/bragboard/internal/modules/shoutout/repository"
	shoutoutService "anoa.com/bragboard/internal/modules/shoutout/service"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxReasonLength = 500

type ReportService interface {
	Create(ctx context.Context, actor entity.Actor, req dto.CreateReportRequest) (*dto.ReportResponse, error)
	ListPending(ctx context.Context, actor entity.Actor) ([]dto.ReportResponse, error)
	Dismiss(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ReportResponse, error)
	// DeleteContent removes the reported shoutout, or soft-deletes the
	// reported comment, and closes the report as content_deleted.
	DeleteContent(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ReportResponse, error)
}

type reportService struct {
	repo            reportRepo.ReportRepository
	shoutoutRepo    shoutoutRepo.ShoutoutRepository
	commentRepo     commentRepo.CommentRepository
	shoutoutService shoutoutService.ShoutoutService
	commentService  commentService.CommentService
	logger          *zap.Logger
}

func NewReportService(
	repo reportRepo.ReportRepository,
	shoutoutRepo shoutoutRepo.ShoutoutRepository,
	commentRepo commentRepo.CommentRepository,
	shoutoutService shoutoutService.ShoutoutService,
	commentService commentService.CommentService,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		repo:            repo,
		shoutoutRepo:    shoutoutRepo,
		commentRepo:     commentRepo,
		shoutoutService: shoutoutService,
		commentService:  commentService,
		logger:          logger.Named("report"),
	}
}

func (s *reportService) Create(ctx context.Context, actor entity.Actor, req dto.CreateReportRequest) (*dto.ReportResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}
	if (req.ShoutoutID == nil) == (req.CommentID == nil) {
		return nil, fmt.Errorf("%w: report exactly one of a shoutout or a comment", apperror.ErrInvalidInput)
	}

	reason := sanitize.PlainText(req.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason cannot be empty", apperror.ErrInvalidInput)
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return nil, fmt.Errorf("%w: reason exceeds %d characters", apperror.ErrInvalidInput, maxReasonLength)
	}

	ownerID, err := s.targetOwner(ctx, req)
	if err != nil {
		return nil, err
	}
	if ownerID == actor.UserID {
		return nil, fmt.Errorf("%w: you cannot report your own content", apperror.ErrInvalidInput)
	}

	dup, err := s.repo.HasPending(ctx, actor.UserID, req.ShoutoutID, req.CommentID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, fmt.Errorf("%w: you already reported this", apperror.ErrConflict)
	}

	report := &entity.Report{
		ShoutoutID: req.ShoutoutID,
		CommentID:  req.CommentID,
		ReporterID: actor.UserID,
		Reason:     reason,
		Status:     entity.ReportPending,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("content reported",
		zap.Stringer("report_id", report.ID),
		zap.Stringer("reporter_id", actor.UserID))

	return s.get(ctx, report.ID)
}

// targetOwner returns the author of the reported content. Soft-deleted
// comments count as missing.
func (s *reportService) targetOwner(ctx context.Context, req dto.CreateReportRequest) (uuid.UUID, error) {
	if req.ShoutoutID != nil {
		shoutout, err := s.shoutoutRepo.FindByID(ctx, *req.ShoutoutID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, fmt.Errorf("%w: shoutout not found", apperror.ErrNotFound)
			}
			return uuid.Nil, err
		}
		return shoutout.SenderID, nil
	}

	comment, err := s.commentRepo.FindByID(ctx, *req.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fmt.Errorf("%w: comment not found", apperror.ErrNotFound)
		}
		return uuid.Nil, err
	}
	if comment.IsDeleted {
		return uuid.Nil, fmt.Errorf("%w: comment not found", apperror.ErrNotFound)
	}
	return comment.AuthorID, nil
}

func (s *reportService) ListPending(ctx context.Context, actor entity.Actor) ([]dto.ReportResponse, error) {
	if !actor.IsModerator() {
		return nil, apperror.ErrForbidden
	}

	reports, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(reports, func(r entity.Report, _ int) dto.ReportResponse {
		return dto.NewReportResponse(&r)
	}), nil
}

func (s *reportService) Dismiss(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ReportResponse, error) {
	if _, err := s.pending(ctx, actor, id); err != nil {
		return nil, err
	}

	ok, err := s.repo.Resolve(ctx, id, entity.ReportDismissed, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: report is already resolved", apperror.ErrConflict)
	}

	return s.get(ctx, id)
}

func (s *reportService) DeleteContent(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ReportResponse, error) {
	report, err := s.pending(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	switch {
	case report.ShoutoutID != nil:
		err = s.shoutoutService.Delete(ctx, actor, *report.ShoutoutID)
	case report.CommentID != nil:
		err = s.commentService.SoftDeleteComment(ctx, actor, *report.CommentID)
	}
	// Content already gone still closes the report.
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	// Deleting the content resolves its pending reports in the same
	// transaction, so this only catches reports whose content was gone.
	if _, err := s.repo.Resolve(ctx, id, entity.ReportContentDeleted, actor.UserID); err != nil {
		return nil, err
	}

	s.logger.Info("reported content deleted",
		zap.Stringer("report_id", id),
		zap.Stringer("admin_id", actor.UserID))

	return s.get(ctx, id)
}

// pending loads a report for an admin decision.
func (s *reportService) pending(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Report, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}
	if !actor.IsModerator() {
		return nil, apperror.ErrForbidden
	}

	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: report not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	if report.Status != entity.ReportPending {
		return nil, fmt.Errorf("%w: report is already %s", apperror.ErrConflict, report.Status)
	}
	return report, nil
}

func (s *reportService) get(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewReportResponse(report)
	return &resp, nil
}
