package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/modules/user/dto"
	"anoa.com/bragboard/internal/modules/user/repository"
	"anoa.com/bragboard/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized)

// SearchTokenIssuer mints a scoped search key handed out at login.
type SearchTokenIssuer interface {
	GenerateSearchToken(user *entity.User) (string, error)
}

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	GoogleLoginURL(state string) (string, error)
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
}

type UserService interface {
	Me(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error)
	List(ctx context.Context, search string) ([]dto.UserResponse, error)
	Departments(ctx context.Context) ([]string, error)
}

type authService struct {
	repo     repository.UserRepository
	secret   string
	tokenTTL time.Duration
	search   SearchTokenIssuer
	google   *GoogleProvider
	logger   *zap.Logger
}

// NewAuthService builds password auth; google may be nil to disable Google
// sign-in.
func NewAuthService(repo repository.UserRepository, secret string, tokenTTL time.Duration, search SearchTokenIssuer, google *GoogleProvider, logger *zap.Logger) AuthService {
	return &authService{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
		search:   search,
		google:   google,
		logger:   logger.Named("auth"),
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperror.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.RoleEmployee,
	}
	if dept := strings.TrimSpace(input.Department); dept != "" {
		user.Department = &dept
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", apperror.ErrConflict)
		}
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	var searchToken string
	if s.search != nil {
		searchToken, err = s.search.GenerateSearchToken(user)
		if err != nil {
			s.logger.Warn("failed to generate search token", zap.Stringer("user_id", user.ID), zap.Error(err))
			searchToken = ""
		}
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        dto.NewUserResponse(user),
		SearchToken: searchToken,
	}, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Me(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error) {
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

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// List is the directory used to pick shoutout recipients. Emails are not
// exposed.
func (s *userService) List(ctx context.Context, search string) ([]dto.UserResponse, error) {
	users, err := s.repo.FindAll(ctx, search)
	if err != nil {
		return nil, err
	}

	return lo.Map(users, func(u entity.User, _ int) dto.UserResponse {
		resp := dto.NewUserResponse(&u)
		resp.Email = ""
		return resp
	}), nil
}

// Departments feeds the department filter of the feed and leaderboard.
func (s *userService) Departments(ctx context.Context) ([]string, error) {
	return s.repo.Departments(ctx)
}
