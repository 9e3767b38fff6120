package repository

import (
	"context"

	"github.com/smallbiznis/bizledger/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is the per-entity store used by the diff-synced collections. Every write is an
// insert-or-update keyed on id.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, opts ...option.QueryOption) ([]*T, error)
	Upsert(ctx context.Context, resource *T) error
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, query *T) (int64, error)
}
