package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
)

type CreateExpenseRequest struct {
	Date                  string          `json:"date"`
	JournalNo             string          `json:"journal_no"`
	CategoryID            string          `json:"category_id"`
	DepartmentID          string          `json:"department_id"`
	EmployeeID            string          `json:"employee_id"`
	Amount                decimal.Decimal `json:"amount"`
	AmountPaid            decimal.Decimal `json:"amount_paid"`
	Description           string          `json:"description"`
	SplitAmongActiveStaff bool            `json:"split_among_active_staff"`
}

type CreateExpenseResult struct {
	Expenses    []ExpenseEntry       `json:"expenses"`
	Outstanding []OutstandingExpense `json:"outstanding"`
}

type SettleRequest struct {
	OutstandingID string
	AmountToPay   decimal.Decimal
}

type SettleResult struct {
	Expense     ExpenseEntry        `json:"expense"`
	Outstanding *OutstandingExpense `json:"outstanding"`
	Retired     bool                `json:"retired"`
}

type ListExpenseRequest struct {
	PageToken    string
	PageSize     int32
	DepartmentID string
	EmployeeID   string
	CategoryID   string
	DateFrom     string
	DateTo       string
}

type ListExpenseFilter struct {
	DepartmentID string
	EmployeeID   string
	CategoryID   string
	DateFrom     *time.Time
	DateTo       *time.Time
}

type ListExpenseResponse struct {
	pagination.PageInfo
	Expenses []ExpenseEntry `json:"expenses"`
}

type ListOutstandingRequest struct {
	PageToken    string
	PageSize     int32
	DepartmentID string
}

type ListOutstandingFilter struct {
	DepartmentID string
}

type ListOutstandingResponse struct {
	pagination.PageInfo
	Outstanding []OutstandingExpense `json:"outstanding"`
}

type Service interface {
	Create(context.Context, CreateExpenseRequest) (CreateExpenseResult, error)
	Settle(context.Context, SettleRequest) (SettleResult, error)
	Delete(ctx context.Context, id string) error
	List(context.Context, ListExpenseRequest) (ListExpenseResponse, error)
	ListOutstanding(context.Context, ListOutstandingRequest) (ListOutstandingResponse, error)
}

var (
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidAmountPaid  = errors.New("invalid_amount_paid")
	ErrInvalidPayment     = errors.New("invalid_payment")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidDepartment  = errors.New("invalid_department")
	ErrInvalidDate        = errors.New("invalid_date")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNoActiveEmployees  = errors.New("no_active_employees")
	ErrNotFound           = errors.New("not_found")
	ErrOutstandingMissing = errors.New("outstanding_not_found")
)

const DateLayout = "2006-01-02"
