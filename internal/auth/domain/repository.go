package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	CreateUser(ctx context.Context, db *gorm.DB, user *User) error
	FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindUserByID(ctx context.Context, db *gorm.DB, id string) (*User, error)
	DeleteUser(ctx context.Context, db *gorm.DB, id string) (int64, error)

	CreateSession(ctx context.Context, db *gorm.DB, session *Session) error
	GetSessionByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Session, error)
	UpdateLastSeen(ctx context.Context, db *gorm.DB, sessionID string, lastSeen time.Time) error
	RevokeSession(ctx context.Context, db *gorm.DB, sessionID string, revokedAt time.Time) error
	RevokeUserSessions(ctx context.Context, db *gorm.DB, userID string, revokedAt time.Time) ([]string, error)
	PurgeSessions(ctx context.Context, db *gorm.DB, before time.Time, limit int) (int64, error)
}
