package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                  uint64      `json:"id"`
	Username            string      `json:"username"`
	Email               string      `json:"email"`
	Role                models.Role `json:"role"`
	IsActive            bool        `json:"is_active"`
	IsSubscribed        bool        `json:"is_subscribed"`
	SubscriptionEndDate *time.Time  `json:"subscription_end_date"`
	CreatedAt           time.Time   `json:"created_at"`
}

// UserSummaryDTO is the minimal user shape used in participant and candidate lists
type UserSummaryDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// TokenDTO is returned by a successful login
type TokenDTO struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                  user.ID,
		Username:            user.Username,
		Email:               user.Email,
		Role:                user.Role,
		IsActive:            user.IsActive,
		IsSubscribed:        user.IsSubscribed,
		SubscriptionEndDate: user.SubscriptionEndsAt,
		CreatedAt:           user.CreatedAt,
	}
}

// ToUserSummaryDTOs converts users to their summary shape
func ToUserSummaryDTOs(users []models.User) []UserSummaryDTO {
	out := make([]UserSummaryDTO, len(users))
	for i, u := range users {
		out[i] = UserSummaryDTO{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	return out
}

// ToUserListResponse converts a page of users
func ToUserListResponse(users []models.User, pagination utils.PaginationResponse) UserListResponse {
	items := make([]UserDTO, len(users))
	for i, u := range users {
		items[i] = ToUserDTO(u)
	}
	return UserListResponse{Users: items, Pagination: pagination}
}
