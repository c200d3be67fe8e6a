package dto

import commonDto "anoa.com/bragboard/pkg/dto"

type LeaderboardQuery struct {
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Department string `form:"department"`
}

type CountersResponse struct {
	ShoutoutsSent     int `json:"shoutouts_sent"`
	ReactionsReceived int `json:"reactions_received"`
	CommentsReceived  int `json:"comments_received"`
	ReactionsGiven    int `json:"reactions_given"`
}

// BreakdownResponse holds the points earned per category.
type BreakdownResponse struct {
	ShoutoutsSent     int `json:"shoutouts_sent"`
	ReactionsReceived int `json:"reactions_received"`
	CommentsReceived  int `json:"comments_received"`
	ReactionsGiven    int `json:"reactions_given"`
}

type TierResponse struct {
	Name          string  `json:"name"`
	NextTier      string  `json:"next_tier"`
	CurrentPoints int     `json:"current_points"`
	TargetPoints  int     `json:"target_points"`
	Progress      float64 `json:"progress"`
}

// LeaderboardEntry is one row of a leaderboard. Rank is 1-based.
type LeaderboardEntry struct {
	Rank      int                      `json:"rank"`
	User      commonDto.AuthorResponse `json:"user"`
	Score     int                      `json:"score"`
	Breakdown BreakdownResponse        `json:"breakdown"`
	Tier      TierResponse             `json:"tier"`
}

type LeaderboardResponse struct {
	Scope      string             `json:"scope"`
	Department *string            `json:"department,omitempty"`
	Entries    []LeaderboardEntry `json:"entries"`
}

// MeResponse is the caller's own standing. It is returned even with no
// activity. DepartmentRank is nil for users without a department.
type MeResponse struct {
	User           commonDto.AuthorResponse `json:"user"`
	Rank           int                      `json:"rank"`
	DepartmentRank *int                     `json:"department_rank,omitempty"`
	Score          int                      `json:"score"`
	Counters       CountersResponse         `json:"counters"`
	Breakdown      BreakdownResponse        `json:"breakdown"`
	Tier           TierResponse             `json:"tier"`
	WeeklyPoints   int                      `json:"weekly_points"`
	WeeklyLabel    string                   `json:"weekly_label"`
}
