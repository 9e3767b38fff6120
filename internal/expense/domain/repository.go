package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	InsertExpense(ctx context.Context, db *gorm.DB, entry *ExpenseEntry) error
	FindExpenseByID(ctx context.Context, db *gorm.DB, id string) (*ExpenseEntry, error)
	UpdateExpensePayment(ctx context.Context, db *gorm.DB, id string, paid, remaining decimal.Decimal, updatedAt time.Time) error
	DeleteExpense(ctx context.Context, db *gorm.DB, id string) (int64, error)
	ListExpenses(ctx context.Context, db *gorm.DB, filter ListExpenseFilter, page pagination.Pagination) ([]*ExpenseEntry, error)

	InsertOutstanding(ctx context.Context, db *gorm.DB, outstanding *OutstandingExpense) error
	FindOutstandingByID(ctx context.Context, db *gorm.DB, id string, forUpdate bool) (*OutstandingExpense, error)
	UpdateOutstandingAmount(ctx context.Context, db *gorm.DB, id string, amount decimal.Decimal, updatedAt time.Time) error
	DeleteOutstanding(ctx context.Context, db *gorm.DB, id string) error
	DeleteOutstandingByExpenseID(ctx context.Context, db *gorm.DB, expenseID string) (int64, error)
	ListOutstanding(ctx context.Context, db *gorm.DB, filter ListOutstandingFilter, page pagination.Pagination) ([]*OutstandingExpense, error)

	ListActiveStaff(ctx context.Context, db *gorm.DB) ([]StaffMember, error)
}
