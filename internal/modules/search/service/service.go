package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/modules/user/repository"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ShoutoutIndex  = "shoutouts"
	signingKeyName = "BragBoardTenantTokenSigner"
	tokenTTL       = 24 * time.Hour
)

type SearchService interface {
	IndexShoutout(shoutout *entity.Shoutout) error
	DeleteShoutout(id uuid.UUID) error
	GenerateSearchToken(user *entity.User) (string, error)
	TokenFor(ctx context.Context, actor entity.Actor) (string, error)
}

type searchService struct {
	client        meilisearch.ServiceManager
	users         repository.UserRepository
	signingKeyUID string
	signingKey    string
	logger        *zap.Logger
}

// NewSearchService configures the shoutout index and finds or creates the
// key used to sign tenant tokens. Setup failures are logged; indexing still
// works with the master key.
func NewSearchService(client meilisearch.ServiceManager, users repository.UserRepository, logger *zap.Logger) SearchService {
	s := &searchService{
		client: client,
		users:  users,
		logger: logger.Named("search"),
	}
	s.initIndex()
	s.initSigningKey()
	return s
}

func (s *searchService) initIndex() {
	filterable := lo.Map([]string{"department", "sender_id", "recipient_ids"}, func(v string, _ int) any { return v })
	if _, err := s.client.Index(ShoutoutIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.logger.Warn("failed to update filterable attributes", zap.Error(err))
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(ShoutoutIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.logger.Warn("failed to update sortable attributes", zap.Error(err))
	}
}

func (s *searchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{Limit: 20})
	if err != nil {
		s.logger.Warn("failed to list meilisearch keys", zap.Error(err))
		return
	}

	for _, key := range resp.Results {
		if key.Name == signingKeyName {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			s.logger.Info("found existing meilisearch signing key")
			return
		}
	}

	key, err := s.client.CreateKey(&meilisearch.Key{
		Name:        signingKeyName,
		Description: "Signs tenant tokens for shoutout search",
		Actions:     []string{"search"},
		Indexes:     []string{ShoutoutIndex},
		ExpiresAt:   time.Now().AddDate(100, 0, 0),
	})
	if err != nil {
		s.logger.Warn("failed to create meilisearch signing key", zap.Error(err))
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	s.logger.Info("created meilisearch signing key")
}

func (s *searchService) IndexShoutout(shoutout *entity.Shoutout) error {
	doc := NewShoutoutDocument(shoutout)
	task, err := s.client.Index(ShoutoutIndex).AddDocuments([]ShoutoutDocument{doc}, lo.ToPtr("id"))
	if err != nil {
		return err
	}
	s.logger.Debug("indexed shoutout", zap.String("shoutout_id", doc.ID), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *searchService) DeleteShoutout(id uuid.UUID) error {
	_, err := s.client.Index(ShoutoutIndex).DeleteDocument(id.String())
	return err
}

func (s *searchService) GenerateSearchToken(user *entity.User) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("%w: search signing key not initialized", apperror.ErrUnavailable)
	}

	return s.client.GenerateTenantToken(s.signingKeyUID, SearchRules(user), &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(tokenTTL),
	})
}

func (s *searchService) TokenFor(ctx context.Context, actor entity.Actor) (string, error) {
	if actor.IsZero() {
		return "", apperror.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: user not found", apperror.ErrNotFound)
		}
		return "", err
	}
	return s.GenerateSearchToken(user)
}

// ShoutoutDocument is the meilisearch representation of a shoutout.
type ShoutoutDocument struct {
	ID           string   `json:"id"`
	Message      string   `json:"message"`
	SenderID     string   `json:"sender_id"`
	SenderName   string   `json:"sender_name"`
	RecipientIDs []string `json:"recipient_ids"`
	Recipients   []string `json:"recipients"`
	Department   string   `json:"department"`
	HasImage     bool     `json:"has_image"`
	CreatedAt    int64    `json:"created_at"`
}

func NewShoutoutDocument(s *entity.Shoutout) ShoutoutDocument {
	return ShoutoutDocument{
		ID:         s.ID.String(),
		Message:    sanitize.IndexText(s.Message),
		SenderID:   s.SenderID.String(),
		SenderName: s.Sender.Name,
		RecipientIDs: lo.Map(s.Recipients, func(r entity.ShoutoutRecipient, _ int) string {
			return r.UserID.String()
		}),
		Recipients: lo.FilterMap(s.Recipients, func(r entity.ShoutoutRecipient, _ int) (string, bool) {
			return r.User.Name, r.User.Name != ""
		}),
		Department: lo.FromPtr(s.Department),
		HasImage:   s.AttachmentURL != nil,
		CreatedAt:  s.CreatedAt.Unix(),
	}
}

// SearchRules scopes a tenant token: admins reach every index, employees
// only the shoutout index.
func SearchRules(user *entity.User) map[string]any {
	if user.IsAdmin() {
		return map[string]any{"*": map[string]any{}}
	}
	return map[string]any{ShoutoutIndex: map[string]any{}}
}
