package dto

import (
	leaderboardDto "anoa.com/bragboard/internal/modules/leaderboard/dto"
	userDto "anoa.com/bragboard/internal/modules/user/dto"
)

// UpdateProfileInput is bound from a multipart form; the avatar arrives as
// the "avatar" file part. Nil fields are left unchanged and an empty
// department clears it.
type UpdateProfileInput struct {
	Name       *string `form:"name" binding:"omitempty,min=1,max=100"`
	Department *string `form:"department" binding:"omitempty,max=100"`
	Password   *string `form:"password" binding:"omitempty,min=8"`
}

// ProfileResponse is a user together with their recognition standing.
type ProfileResponse struct {
	User     userDto.UserResponse      `json:"user"`
	Standing leaderboardDto.MeResponse `json:"standing"`
}
