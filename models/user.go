package models

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleVolunteer UserRole = "volunteer"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	DiscordID    *int64    `json:"discord_id,omitempty" db:"discord_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
