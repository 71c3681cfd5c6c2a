package entity

import (
	"time"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the aggregate root for the user domain.
// Password holds the bcrypt hash and is only loaded when explicitly selected.
type User struct {
	ID        string
	Email     string
	Name      string
	UserName  string
	Password  string
	Role      Role
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicProfile is the projection of a user that may leave the service.
type PublicProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	UserName  string    `json:"user_name"`
	Role      Role      `json:"user_role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		UserName:  u.UserName,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
