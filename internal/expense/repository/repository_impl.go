package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/pkg/db"
	"github.com/smallbiznis/bizledger/pkg/db/option"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"gorm.io/gorm"
)

const (
	expenseColumns     = `id, date, journal_no, category_id, department_id, employee_id, amount, amount_paid, remaining_amount, description, created_at, updated_at`
	outstandingColumns = `id, expense_id, date, amount, department_id, description, created_at, updated_at`
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertExpense(ctx context.Context, db *gorm.DB, e *domain.ExpenseEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO expense_entries (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Date,
		e.JournalNo,
		e.CategoryID,
		e.DepartmentID,
		e.EmployeeID,
		e.Amount,
		e.AmountPaid,
		e.RemainingAmount,
		e.Description,
		e.CreatedAt,
		e.UpdatedAt,
	).Error
}

func (r *repo) FindExpenseByID(ctx context.Context, db *gorm.DB, id string) (*domain.ExpenseEntry, error) {
	var entry domain.ExpenseEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+expenseColumns+` FROM expense_entries WHERE id = ?`,
		id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == "" {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) UpdateExpensePayment(ctx context.Context, db *gorm.DB, id string, paid, remaining decimal.Decimal, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE expense_entries SET amount_paid = ?, remaining_amount = ?, updated_at = ? WHERE id = ?`,
		paid,
		remaining,
		updatedAt,
		id,
	).Error
}

func (r *repo) DeleteExpense(ctx context.Context, db *gorm.DB, id string) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM expense_entries WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) ListExpenses(ctx context.Context, db *gorm.DB, filter domain.ListExpenseFilter, page pagination.Pagination) ([]*domain.ExpenseEntry, error) {
	var entries []*domain.ExpenseEntry
	stmt := db.WithContext(ctx).Model(&domain.ExpenseEntry{})
	if filter.DepartmentID != "" {
		stmt = stmt.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.EmployeeID != "" {
		stmt = stmt.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.CategoryID != "" {
		stmt = stmt.Where("category_id = ?", filter.CategoryID)
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("date <= ?", *filter.DateTo)
	}
	if page.PageSize > 0 {
		stmt = option.ApplyPagination(page).Apply(stmt)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) InsertOutstanding(ctx context.Context, db *gorm.DB, o *domain.OutstandingExpense) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO outstanding_expenses (`+outstandingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.ExpenseID,
		o.Date,
		o.Amount,
		o.DepartmentID,
		o.Description,
		o.CreatedAt,
		o.UpdatedAt,
	).Error
}

// FindOutstandingByID locks the row for the rest of the transaction when forUpdate is set and
// the dialect supports it.
func (r *repo) FindOutstandingByID(ctx context.Context, conn *gorm.DB, id string, forUpdate bool) (*domain.OutstandingExpense, error) {
	query := `SELECT ` + outstandingColumns + ` FROM outstanding_expenses WHERE id = ?`
	if forUpdate && db.SupportsRowLocking(conn) {
		query += ` FOR UPDATE`
	}

	var outstanding domain.OutstandingExpense
	if err := conn.WithContext(ctx).Raw(query, id).Scan(&outstanding).Error; err != nil {
		return nil, err
	}
	if outstanding.ID == "" {
		return nil, nil
	}
	return &outstanding, nil
}

func (r *repo) UpdateOutstandingAmount(ctx context.Context, db *gorm.DB, id string, amount decimal.Decimal, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE outstanding_expenses SET amount = ?, updated_at = ? WHERE id = ?`,
		amount,
		updatedAt,
		id,
	).Error
}

func (r *repo) DeleteOutstanding(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM outstanding_expenses WHERE id = ?`, id).Error
}

func (r *repo) DeleteOutstandingByExpenseID(ctx context.Context, db *gorm.DB, expenseID string) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM outstanding_expenses WHERE expense_id = ?`, expenseID)
	return res.RowsAffected, res.Error
}

func (r *repo) ListOutstanding(ctx context.Context, db *gorm.DB, filter domain.ListOutstandingFilter, page pagination.Pagination) ([]*domain.OutstandingExpense, error) {
	var items []*domain.OutstandingExpense
	stmt := db.WithContext(ctx).Model(&domain.OutstandingExpense{})
	if filter.DepartmentID != "" {
		stmt = stmt.Where("department_id = ?", filter.DepartmentID)
	}
	if page.PageSize > 0 {
		stmt = option.ApplyPagination(page).Apply(stmt)
	}
	err := stmt.
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListActiveStaff(ctx context.Context, db *gorm.DB) ([]domain.StaffMember, error) {
	var staff []domain.StaffMember
	err := db.WithContext(ctx).Raw(
		`SELECT id, department_id FROM employees WHERE is_active = ? ORDER BY id`,
		true,
	).Scan(&staff).Error
	if err != nil {
		return nil, err
	}
	return staff, nil
}
