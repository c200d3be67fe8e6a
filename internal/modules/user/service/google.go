package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/modules/user/dto"
	"anoa.com/bragboard/pkg/apperror"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var errGoogleDisabled = fmt.Errorf("%w: google sign-in is not configured", apperror.ErrUnavailable)

// GoogleProvider signs employees in with their Google account. AllowedDomain,
// when set, restricts sign-in to addresses of that domain.
type GoogleProvider struct {
	OAuth         *oauth2.Config
	UserInfoURL   string
	AllowedDomain string
}

// NewGoogleProvider returns nil when clientID is empty.
func NewGoogleProvider(clientID, clientSecret, redirectURL, allowedDomain string) *GoogleProvider {
	if clientID == "" {
		return nil
	}
	return &GoogleProvider{
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		UserInfoURL:   GoogleUserInfoURL,
		AllowedDomain: strings.ToLower(strings.TrimPrefix(allowedDomain, "@")),
	}
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (p *GoogleProvider) fetchUser(ctx context.Context, token *oauth2.Token) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.OAuth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %s", resp.Status)
	}

	var u googleUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &u, nil
}

func (s *authService) GoogleLoginURL(state string) (string, error) {
	if s.google == nil {
		return "", errGoogleDisabled
	}
	return s.google.OAuth.AuthCodeURL(state), nil
}

// GoogleCallback exchanges an authorization code, then signs in the
// matching user, creating an employee account on first sign-in.
func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	if s.google == nil {
		return nil, errGoogleDisabled
	}

	token, err := s.google.OAuth.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("google code exchange failed", zap.Error(err))
		return nil, fmt.Errorf("%w: google sign-in failed", apperror.ErrUnauthorized)
	}

	profile, err := s.google.fetchUser(ctx, token)
	if err != nil {
		s.logger.Warn("google userinfo failed", zap.Error(err))
		return nil, fmt.Errorf("%w: google sign-in failed", apperror.ErrUnauthorized)
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if profile.ID == "" || email == "" || !profile.VerifiedEmail {
		return nil, fmt.Errorf("%w: google account has no verified email", apperror.ErrUnauthorized)
	}
	if s.google.AllowedDomain != "" && !strings.HasSuffix(email, "@"+s.google.AllowedDomain) {
		return nil, fmt.Errorf("%w: email domain must be @%s", apperror.ErrForbidden, s.google.AllowedDomain)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.createGoogleUser(ctx, email, profile)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case user.GoogleID == nil:
		user.GoogleID = &profile.ID
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, err
		}
	case *user.GoogleID != profile.ID:
		return nil, fmt.Errorf("%w: account is linked to another google identity", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) createGoogleUser(ctx context.Context, email string, profile *googleUser) (*entity.User, error) {
	// Password login stays unusable until the user sets one on their profile.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.RoleEmployee,
		GoogleID:     &profile.ID,
	}
	if profile.Picture != "" {
		user.AvatarURL = &profile.Picture
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", apperror.ErrConflict)
		}
		return nil, err
	}
	s.logger.Info("created user from google sign-in", zap.Stringer("user_id", user.ID))
	return user, nil
}
