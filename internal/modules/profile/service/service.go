package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/bragboard/internal/entity"
	leaderboardService "anoa.com/bragboard/internal/modules/leaderboard/service"
	"anoa.com/bragboard/internal/modules/profile/dto"
	userDto "anoa.com/bragboard/internal/modules/user/dto"
	userRepo "anoa.com/bragboard/internal/modules/user/repository"
	"anoa.com/bragboard/pkg/apperror"
	commonDto "anoa.com/bragboard/pkg/dto"
	"anoa.com/bragboard/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// minPasswordLength matches the registration rule.
const minPasswordLength = 8

type ProfileService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, actor entity.Actor, input dto.UpdateProfileInput, avatar *commonDto.UploadFile) (*dto.ProfileResponse, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	leaderboard  leaderboardService.LeaderboardService
	imageStorage storage.ImageStorage
	logger       *zap.Logger
}

func NewProfileService(repo userRepo.UserRepository, leaderboard leaderboardService.LeaderboardService, imageStorage storage.ImageStorage, logger *zap.Logger) ProfileService {
	return &profileService{
		repo:         repo,
		leaderboard:  leaderboard,
		imageStorage: imageStorage,
		logger:       logger.Named("profile"),
	}
}

func (s *profileService) GetProfile(ctx context.Context, id uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	return s.build(ctx, user, false)
}

func (s *profileService) UpdateProfile(ctx context.Context, actor entity.Actor, input dto.UpdateProfileInput, avatar *commonDto.UploadFile) (*dto.ProfileResponse, error) {
	if actor.IsZero() {
		return nil, apperror.ErrUnauthorized
	}
	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperror.ErrInvalidInput)
		}
		user.Name = name
	}

	if input.Department != nil {
		user.Department = nil
		if dept := strings.TrimSpace(*input.Department); dept != "" {
			user.Department = &dept
		}
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", apperror.ErrInvalidInput, minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	var oldAvatar, newAvatar *string
	if avatar != nil && avatar.Reader != nil {
		if s.imageStorage == nil {
			return nil, fmt.Errorf("%w: image storage is not configured", apperror.ErrUnavailable)
		}
		url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, avatar.FileName)
		if err != nil {
			return nil, err
		}
		oldAvatar = user.AvatarURL
		newAvatar = &url
		user.AvatarURL = &url
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if newAvatar != nil {
			if delErr := s.imageStorage.DeleteImage(ctx, *newAvatar); delErr != nil {
				s.logger.Warn("failed to delete orphaned avatar", zap.String("url", *newAvatar), zap.Error(delErr))
			}
		}
		return nil, err
	}

	if oldAvatar != nil {
		if err := s.imageStorage.DeleteImage(ctx, *oldAvatar); err != nil {
			s.logger.Warn("failed to delete old avatar", zap.String("url", *oldAvatar), zap.Error(err))
		}
	}

	return s.build(ctx, user, true)
}

// build attaches the leaderboard standing. Emails are only shown to their
// owner.
func (s *profileService) build(ctx context.Context, user *entity.User, withEmail bool) (*dto.ProfileResponse, error) {
	standing, err := s.leaderboard.Me(ctx, entity.ActorFromUser(user))
	if err != nil {
		return nil, err
	}

	u := userDto.NewUserResponse(user)
	if !withEmail {
		u.Email = ""
	}
	return &dto.ProfileResponse{User: u, Standing: *standing}, nil
}
