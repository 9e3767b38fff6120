package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id string) (*IncomeEntry, error)
	Insert(ctx context.Context, db *gorm.DB, entry *IncomeEntry) error
	Update(ctx context.Context, db *gorm.DB, entry *IncomeEntry) error
	Delete(ctx context.Context, db *gorm.DB, id string) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListIncomeFilter) ([]*IncomeEntry, error)

	InsertCogsItems(ctx context.Context, db *gorm.DB, items []IncomeCogsItem) error
	InsertRefunds(ctx context.Context, db *gorm.DB, items []IncomeRefundItem) error
	DeleteCogsItems(ctx context.Context, db *gorm.DB, entryID string) error
	DeleteRefunds(ctx context.Context, db *gorm.DB, entryID string) error
	ListCogsItems(ctx context.Context, db *gorm.DB, entryIDs []string) ([]IncomeCogsItem, error)
	ListRefunds(ctx context.Context, db *gorm.DB, entryIDs []string) ([]IncomeRefundItem, error)
}
