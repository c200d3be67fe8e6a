package dto

import (
	"anoa.com/bragboard/internal/entity"
	"github.com/google/uuid"
)

type AuthorResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Department *string   `json:"department,omitempty"`
	AvatarURL  *string   `json:"avatar_url,omitempty"`
}

func NewAuthorResponse(u *entity.User) AuthorResponse {
	return AuthorResponse{
		ID:         u.ID,
		Name:       u.Name,
		Department: u.Department,
		AvatarURL:  u.AvatarURL,
	}
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

// NewPaginationMeta computes page metadata. A zero limit means the whole
// result set was returned as one page.
func NewPaginationMeta(page, limit int, total int64) PaginationMeta {
	if limit <= 0 {
		return PaginationMeta{CurrentPage: 1, TotalPages: 1, TotalItems: total, Limit: int(total)}
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return PaginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Limit:       limit,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UploadFile struct {
	Reader interface {
		Read(p []byte) (n int, err error)
	}
	FileName string
}
