package domain

import "time"

type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdvertiser UserRole = "advertiser"
	RoleAffiliate  UserRole = "affiliate"
	RoleNetwork    UserRole = "network"
	RoleAdmin      UserRole = "admin"
)

// RoleForEntity mirrors an entity classification onto a user role.
func RoleForEntity(t EntityType) UserRole {
	return UserRole(t)
}

type User struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	Role                  UserRole   `json:"role"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	EntityID              *string    `json:"entity_id,omitempty"`
	PasswordResetRequired bool       `json:"password_reset_required"`
	TempPasswordExpires   *time.Time `json:"temp_password_expires,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// TempPasswordExpired reports whether the user still holds a temporary
// credential whose validity window has closed.
func (u *User) TempPasswordExpired(now time.Time) bool {
	if !u.PasswordResetRequired {
		return false
	}
	if u.TempPasswordExpires == nil {
		return true
	}
	return !now.Before(*u.TempPasswordExpires)
}
