package service

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Settle applies a payment to an outstanding balance and its expense in one transaction.
// An overpayment retires the balance and leaves the expense's remaining amount at zero.
func (s *Service) Settle(ctx context.Context, req domain.SettleRequest) (domain.SettleResult, error) {
	id := strings.TrimSpace(req.OutstandingID)
	if id == "" {
		return domain.SettleResult{}, domain.ErrInvalidID
	}
	pay := req.AmountToPay.Round(domain.MoneyScale)
	if !pay.IsPositive() {
		return domain.SettleResult{}, domain.ErrInvalidPayment
	}

	var result domain.SettleResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		outstanding, err := s.repo.FindOutstandingByID(ctx, tx, id, true)
		if err != nil {
			return db.Wrap("outstanding.find", err)
		}
		if outstanding == nil {
			return domain.ErrNotFound
		}

		expense, err := s.repo.FindExpenseByID(ctx, tx, outstanding.ExpenseID)
		if err != nil {
			return db.Wrap("expense.find", err)
		}
		if expense == nil {
			return domain.ErrNotFound
		}

		now := s.clock.Now()
		newOutstanding := outstanding.Amount.Sub(pay)
		newPaid := expense.AmountPaid.Add(pay)
		newRemaining := domain.Remaining(expense.Amount, newPaid)

		if err := s.repo.UpdateExpensePayment(ctx, tx, expense.ID, newPaid, newRemaining, now); err != nil {
			return db.Wrap("expense.update_payment", err)
		}
		expense.AmountPaid = newPaid
		expense.RemainingAmount = newRemaining
		expense.UpdatedAt = now
		result.Expense = *expense

		if !newOutstanding.IsPositive() {
			if err := s.repo.DeleteOutstanding(ctx, tx, outstanding.ID); err != nil {
				return db.Wrap("outstanding.delete", err)
			}
			result.Retired = true
			return nil
		}

		if err := s.repo.UpdateOutstandingAmount(ctx, tx, outstanding.ID, newOutstanding, now); err != nil {
			return db.Wrap("outstanding.update_amount", err)
		}
		outstanding.Amount = newOutstanding
		outstanding.UpdatedAt = now
		result.Outstanding = outstanding
		return nil
	})
	if err != nil {
		s.metrics.RecordSettlement(ctx, settlementFailure(err))
		return domain.SettleResult{}, db.Wrap("expense.settle", err, passthrough...)
	}

	outcome := "partial"
	if result.Retired {
		outcome = "settled"
	}
	s.metrics.RecordSettlement(ctx, outcome)
	s.log.Info("payment settled",
		zap.String("outstanding_id", id),
		zap.String("expense_id", result.Expense.ID),
		zap.String("amount", pay.String()),
		zap.Bool("retired", result.Retired),
	)
	return result, nil
}

func settlementFailure(err error) string {
	if errors.Is(err, domain.ErrNotFound) {
		return "not_found"
	}
	return "failed"
}
