package dto

import "anoa.com/bragboard/internal/entity"

type ReactionQuery struct {
	Type entity.ReactionType `form:"type" binding:"required,oneof=like clap star"`
}

// ReactionSummary is the live aggregate for one reaction type on a post.
// Users holds display names in reaction order.
type ReactionSummary struct {
	Count int      `json:"count"`
	Users []string `json:"users"`
}

type ReactionCounts map[entity.ReactionType]ReactionSummary

// EmptyCounts has an entry for every reaction type.
func EmptyCounts() ReactionCounts {
	counts := make(ReactionCounts, len(entity.ReactionTypes()))
	for _, t := range entity.ReactionTypes() {
		counts[t] = ReactionSummary{Users: []string{}}
	}
	return counts
}

type ReactionResponse struct {
	Added    bool                `json:"added"`
	Previous entity.ReactionType `json:"previous,omitempty"`
	Current  entity.ReactionType `json:"current,omitempty"`
	Counts   ReactionCounts      `json:"counts"`
}
