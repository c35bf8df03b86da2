package dto

import (
	"github.com/oremi-app/oremi-backend/internal/models"
)

type CreateFriendRequest struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Birthday        string   `json:"birthday"`
	Notes           string   `json:"notes"`
	FavouriteThings []string `json:"favourite_things"`
	// ISO-8601; defaults to now when empty.
	LastSeen string `json:"last_seen"`
}

type UpdateFriendRequest struct {
	FirstName       *string   `json:"first_name"`
	LastName        *string   `json:"last_name"`
	Email           *string   `json:"email"`
	Phone           *string   `json:"phone"`
	Birthday        *string   `json:"birthday"`
	Notes           *string   `json:"notes"`
	FavouriteThings *[]string `json:"favourite_things"`
	LastSeen        *string   `json:"last_seen"`
}

// FriendResponse wraps a friend record with its derived overdue flag. The
// flag is recomputed on every read and never persisted.
type FriendResponse struct {
	models.Friend
	Overdue bool `json:"overdue"`
}

type FriendListResponse struct {
	Friends []FriendResponse `json:"friends"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type SearchFriendsResponse struct {
	Friends []FriendResponse `json:"friends"`
	Total   int64            `json:"total"`
	Query   string           `json:"query"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type DeleteFriendResponse struct {
	Message string `json:"message"`
}
