package domain

import (
	"time"
)

// DefaultMessageColor is assigned at registration when the client
// does not pick a color.
const DefaultMessageColor = "#3B82F6"

// User represents a user entity.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	MessageColor string    `json:"messageColor"`
	IsOnline     bool      `json:"isOnline"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Username     string `json:"username" binding:"required,min=3,max=50"`
	Password     string `json:"password" binding:"required,min=6"`
	MessageColor string `json:"messageColor" binding:"omitempty,hexcolor"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a profile update. Nil fields are left untouched.
type UpdateProfileRequest struct {
	Username     *string `json:"username" binding:"omitempty,min=3,max=50"`
	MessageColor *string `json:"messageColor" binding:"omitempty,hexcolor"`
}

// AuthResponse is returned after register and login.
type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	MessageColor string    `json:"messageColor"`
	IsOnline     bool      `json:"isOnline"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToResponse converts User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		MessageColor: u.MessageColor,
		IsOnline:     u.IsOnline,
		CreatedAt:    u.CreatedAt,
	}
}

// UserSummary is the short user shape embedded in conversations and messages.
type UserSummary struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	MessageColor string `json:"messageColor"`
}
