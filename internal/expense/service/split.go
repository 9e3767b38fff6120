package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// createSplit divides the expense evenly across every active employee. Each share is booked
// against the employee's own department.
func (s *Service) createSplit(ctx context.Context, in createInput) (domain.CreateExpenseResult, error) {
	policy := s.ledger.Get().Split
	now := s.clock.Now()

	var result domain.CreateExpenseResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		staff, err := s.repo.ListActiveStaff(ctx, tx)
		if err != nil {
			return db.Wrap("employee.list_active", err)
		}
		if len(staff) == 0 {
			return domain.ErrNoActiveEmployees
		}

		shares := splitEvenly(in.amount, len(staff))
		paidShares := splitEvenly(in.paid, len(staff))

		journalNo := in.journalNo
		for i, member := range staff {
			entry := s.newEntry(in, shares[i], paidShares[i], now)
			employeeID := member.ID
			entry.EmployeeID = &employeeID
			entry.DepartmentID = member.DepartmentID
			entry.Description = in.description + policy.DescriptionSuffix
			if journalNo == "" {
				journalNo = s.journalNo(entry.ID)
			}
			entry.JournalNo = journalNo

			if err := s.repo.InsertExpense(ctx, tx, &entry); err != nil {
				return db.Wrap("expense.insert", err)
			}
			result.Expenses = append(result.Expenses, entry)

			if policy.CreateOutstanding && entry.RemainingAmount.IsPositive() {
				outstanding := s.newOutstanding(entry, now)
				if err := s.repo.InsertOutstanding(ctx, tx, &outstanding); err != nil {
					return db.Wrap("outstanding.insert", err)
				}
				result.Outstanding = append(result.Outstanding, outstanding)
			}
		}
		return nil
	})
	if err != nil {
		return domain.CreateExpenseResult{}, db.Wrap("expense.create_split", err, passthrough...)
	}

	s.metrics.RecordExpensesCreated(ctx, "split", len(result.Expenses))
	s.log.Info("shared expense created",
		zap.Int("shares", len(result.Expenses)),
		zap.String("amount", in.amount.String()),
		zap.Bool("outstanding_created", len(result.Outstanding) > 0),
	)
	return result, nil
}

// splitEvenly divides total into n shares truncated to the money scale. The last share takes
// the remainder so the shares sum to total.
func splitEvenly(total decimal.Decimal, n int) []decimal.Decimal {
	share := total.Div(decimal.NewFromInt(int64(n))).Truncate(domain.MoneyScale)
	shares := make([]decimal.Decimal, n)
	for i := 0; i < n-1; i++ {
		shares[i] = share
	}
	shares[n-1] = total.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))
	return shares
}
