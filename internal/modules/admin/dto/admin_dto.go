package dto

import (
	"anoa.com/bragboard/internal/entity"
	commonDto "anoa.com/bragboard/pkg/dto"
)

type UserTotalResponse struct {
	User  commonDto.AuthorResponse `json:"user"`
	Total int64                    `json:"total"`
}

type StatsResponse struct {
	TotalUsers      int64                         `json:"total_users"`
	TotalShoutouts  int64                         `json:"total_shoutouts"`
	PendingReports  int64                         `json:"pending_reports"`
	TopContributors []UserTotalResponse           `json:"top_contributors"`
	MostAppreciated []UserTotalResponse           `json:"most_appreciated"`
	ReactionsByType map[entity.ReactionType]int64 `json:"reactions_by_type"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=employee admin"`
}
