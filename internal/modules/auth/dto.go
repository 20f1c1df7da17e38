package auth

import (
	"time"

	"adbond/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type UserPublic struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	Role                  string     `json:"role"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	EntityID              *string    `json:"entity_id,omitempty"`
	PasswordResetRequired bool       `json:"password_reset_required"`
	TempPasswordExpires   *time.Time `json:"temp_password_expires,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

type LoginResponse struct {
	Token                 string     `json:"token"`
	User                  UserPublic `json:"user"`
	PasswordResetRequired bool       `json:"password_reset_required"`
}

func toUserPublic(u *domain.User) UserPublic {
	return UserPublic{
		ID:                    u.ID,
		Email:                 u.Email,
		Role:                  string(u.Role),
		FirstName:             u.FirstName,
		LastName:              u.LastName,
		EntityID:              u.EntityID,
		PasswordResetRequired: u.PasswordResetRequired,
		TempPasswordExpires:   u.TempPasswordExpires,
		CreatedAt:             u.CreatedAt,
	}
}
