package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ExpenseEntry struct {
	ID              string          `gorm:"primaryKey;size:40" json:"id"`
	Date            datatypes.Date  `gorm:"not null;index" json:"date"`
	JournalNo       string          `gorm:"size:32;not null" json:"journal_no"`
	CategoryID      string          `gorm:"size:40;not null;index" json:"category_id"`
	DepartmentID    string          `gorm:"size:40;not null;index" json:"department_id"`
	EmployeeID      *string         `gorm:"size:40;index" json:"employee_id,omitempty"`
	Amount          decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"amount"`
	AmountPaid      decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"amount_paid"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"remaining_amount"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

func (ExpenseEntry) TableName() string { return "expense_entries" }

// OutstandingExpense is the unpaid balance of exactly one expense entry.
type OutstandingExpense struct {
	ID           string          `gorm:"primaryKey;size:40" json:"id"`
	ExpenseID    string          `gorm:"size:40;not null;uniqueIndex" json:"expense_id"`
	Date         datatypes.Date  `gorm:"not null" json:"date"`
	Amount       decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"amount"`
	DepartmentID string          `gorm:"size:40;not null;index" json:"department_id"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

func (OutstandingExpense) TableName() string { return "outstanding_expenses" }

// MoneyScale is the number of decimal places kept in money columns.
const MoneyScale int32 = 8

// Remaining is max(0, amount - paid).
func Remaining(amount, paid decimal.Decimal) decimal.Decimal {
	r := amount.Sub(paid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// StaffMember is an active employee eligible for a shared expense.
type StaffMember struct {
	ID           string
	DepartmentID string
}

func Models() []any {
	return []any{
		&ExpenseEntry{},
		&OutstandingExpense{},
	}
}
