package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
)

const (
	ReportRoster               = "roster"
	ReportExpensesByEmployee   = "expenses-by-employee"
	ReportExpensesByDepartment = "expenses-by-department"
	ReportDashboard            = "dashboard"

	DirectLabel = "Direct"
)

type Filter struct {
	EmployeeID   string `form:"employee_id"`
	DepartmentID string `form:"department_id"`
	DateFrom     string `form:"date_from"`
	DateTo       string `form:"date_to"`
}

type RosterRow struct {
	EmployeeNumber string          `json:"employee_number"`
	Name           string          `json:"name"`
	Department     string          `json:"department"`
	Salary         decimal.Decimal `json:"salary"`
	Nationality    string          `json:"nationality"`
	Status         string          `json:"status"`
}

type Roster struct {
	Rows        []RosterRow     `json:"rows"`
	TotalSalary decimal.Decimal `json:"total_salary"`
	ActiveCount int             `json:"active_count"`
}

type EmployeeExpenseRow struct {
	Date        string          `json:"date"`
	JournalNo   string          `json:"journal_no"`
	Employee    string          `json:"employee"`
	Department  string          `json:"department"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Remaining   decimal.Decimal `json:"remaining_amount"`
	Description string          `json:"description"`
}

type EmployeeExpenseReport struct {
	Rows      []EmployeeExpenseRow `json:"rows"`
	Total     decimal.Decimal      `json:"total"`
	TotalPaid decimal.Decimal      `json:"total_paid"`
	Remaining decimal.Decimal      `json:"remaining"`
}

type DepartmentExpenseRow struct {
	DepartmentID string          `json:"department_id"`
	Department   string          `json:"department"`
	Total        decimal.Decimal `json:"total"`
	Paid         decimal.Decimal `json:"paid"`
	Remaining    decimal.Decimal `json:"remaining"`
	Count        int             `json:"count"`
}

type DepartmentExpenseReport struct {
	Rows  []DepartmentExpenseRow `json:"rows"`
	Total decimal.Decimal        `json:"total"`
}

type NamedTotal struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type Dashboard struct {
	TotalExpenses    decimal.Decimal              `json:"total_expenses"`
	TotalPaid        decimal.Decimal              `json:"total_paid"`
	TotalOutstanding decimal.Decimal              `json:"total_outstanding"`
	ByDepartment     []NamedTotal                 `json:"by_department"`
	ByCategory       []NamedTotal                 `json:"by_category"`
	TopDepartment    *NamedTotal                  `json:"top_department"`
	RecentExpenses   []expensedomain.ExpenseEntry `json:"recent_expenses"`
}

// Table is the flat form every report takes for export.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
	Footer  []string
}

type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type Service interface {
	Roster(ctx context.Context) (Roster, error)
	ExpensesByEmployee(ctx context.Context, filter Filter) (EmployeeExpenseReport, error)
	ExpensesByDepartment(ctx context.Context, filter Filter) (DepartmentExpenseReport, error)
	Dashboard(ctx context.Context) (Dashboard, error)
	Export(ctx context.Context, name string, filter Filter) (File, error)
}

var (
	ErrUnknownReport = errors.New("unknown_report")
	ErrInvalidDate   = errors.New("invalid_date")
)
