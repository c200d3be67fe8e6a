package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/modules/admin/dto"
	adminRepo "anoa.com/bragboard/internal/modules/admin/repository"
	userDto "anoa.com/bragboard/internal/modules/user/dto"
	"anoa.com/bragboard/pkg/apperror"
	commonDto "anoa.com/bragboard/pkg/dto"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const topN = 5

type AdminService interface {
	Stats(ctx context.Context, actor entity.Actor) (*dto.StatsResponse, error)
	UpdateRole(ctx context.Context, actor entity.Actor, userID uuid.UUID, role string) (*userDto.UserResponse, error)
}

type adminService struct {
	repo adminRepo.AdminRepository
}

func NewAdminService(repo adminRepo.AdminRepository) AdminService {
	return &adminService{repo: repo}
}

func (s *adminService) Stats(ctx context.Context, actor entity.Actor) (*dto.StatsResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}
	if !actor.IsModerator() {
		return nil, fmt.Errorf("%w: admin only", apperror.ErrForbidden)
	}

	var (
		resp dto.StatsResponse
		err  error
	)
	if resp.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, err
	}
	if resp.TotalShoutouts, err = s.repo.CountShoutouts(ctx); err != nil {
		return nil, err
	}
	if resp.PendingReports, err = s.repo.CountPendingReports(ctx); err != nil {
		return nil, err
	}

	senders, err := s.repo.TopSenders(ctx, topN)
	if err != nil {
		return nil, err
	}
	recipients, err := s.repo.TopRecipients(ctx, topN)
	if err != nil {
		return nil, err
	}
	resp.TopContributors = lo.Map(senders, toUserTotal)
	resp.MostAppreciated = lo.Map(recipients, toUserTotal)

	if resp.ReactionsByType, err = s.repo.ReactionsByType(ctx); err != nil {
		return nil, err
	}

	return &resp, nil
}

// UpdateRole promotes or demotes another user. An admin's own role is fixed.
func (s *adminService) UpdateRole(ctx context.Context, actor entity.Actor, userID uuid.UUID, role string) (*userDto.UserResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}
	if !actor.IsModerator() {
		return nil, fmt.Errorf("%w: admin only", apperror.ErrForbidden)
	}
	if actor.UserID == userID {
		return nil, fmt.Errorf("%w: cannot change your own role", apperror.ErrForbidden)
	}
	if role != entity.RoleEmployee && role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", apperror.ErrInvalidInput, role)
	}

	user, err := s.repo.SetRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	resp := userDto.NewUserResponse(user)
	return &resp, nil
}

func toUserTotal(t adminRepo.UserTotal, _ int) dto.UserTotalResponse {
	return dto.UserTotalResponse{User: commonDto.NewAuthorResponse(&t.User), Total: t.Total}
}
