package models

import (
	"time"
)

// Account status values as persisted by the original schema.
const (
	StatusActive   = "ativo"
	StatusInactive = "inativo"
)

// User is the credential-store record behind every authentication decision.
// Email is stored lowercase and is the login key. Badges holds a JSON-encoded
// list of informational tags with no effect on authorization.
type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string     `gorm:"not null"                 json:"name"`
	Email        string     `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	Role         string     `gorm:"not null"                 json:"role"`
	SubRole      string     `json:"sub_role,omitempty"`
	Status       string     `gorm:"not null;default:ativo"   json:"status"`
	Badges       string     `json:"badges,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// RememberToken extends authentication across browser restarts. At most one
// live token exists per user; issuing a new one replaces the previous row.
type RememberToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
}
