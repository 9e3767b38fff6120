// Package domain contains core types for the auth service.
package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ParseRole normalizes raw; an empty value defaults to viewer.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleEditor:
		return RoleEditor, nil
	case RoleViewer, "":
		return RoleViewer, nil
	default:
		return "", ErrInvalidRole
	}
}

// User represents a system user account.
type User struct {
	ID           string    `gorm:"primaryKey;size:40" json:"id"`
	Name         string    `gorm:"type:text;not null" json:"name"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;type:text;not null" json:"-"`
	Role         Role      `gorm:"type:text;not null" json:"role"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session.
type Session struct {
	ID               string     `gorm:"primaryKey;size:40"`
	UserID           string     `gorm:"column:user_id;size:40;not null;index"`
	SessionTokenHash string     `gorm:"column:session_token_hash;size:64;not null;uniqueIndex"`
	UserAgent        string     `gorm:"column:user_agent;type:text"`
	IPAddress        string     `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time  `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time `gorm:"column:revoked_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null"`
	LastSeenAt       time.Time  `gorm:"column:last_seen_at;not null"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// Principal is the authenticated caller attached to a request.
type Principal struct {
	SessionID string `json:"-"`
	UserID    string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// Models lists the auth tables for AutoMigrate.
func Models() []any {
	return []any{&User{}, &Session{}}
}
