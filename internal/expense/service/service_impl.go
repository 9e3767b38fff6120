package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/internal/observability/metrics"
	"github.com/smallbiznis/bizledger/pkg/db"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Ledger  *config.LedgerConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	ledger  *config.LedgerConfigHolder
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("expense.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		ledger:  p.Ledger,
		metrics: p.Metrics,
	}
}

// passthrough lists the errors that reach callers unwrapped.
var passthrough = []error{
	domain.ErrInvalidAmount,
	domain.ErrInvalidAmountPaid,
	domain.ErrInvalidPayment,
	domain.ErrInvalidCategory,
	domain.ErrInvalidDepartment,
	domain.ErrInvalidDate,
	domain.ErrInvalidID,
	domain.ErrNoActiveEmployees,
	domain.ErrNotFound,
	domain.ErrOutstandingMissing,
}

func (s *Service) Create(ctx context.Context, req domain.CreateExpenseRequest) (domain.CreateExpenseResult, error) {
	input, err := s.normalizeCreate(req)
	if err != nil {
		return domain.CreateExpenseResult{}, err
	}

	if input.split {
		return s.createSplit(ctx, input)
	}
	return s.createSingle(ctx, input)
}

type createInput struct {
	date         time.Time
	journalNo    string
	categoryID   string
	departmentID string
	employeeID   string
	amount       decimal.Decimal
	paid         decimal.Decimal
	description  string
	split        bool
}

func (s *Service) normalizeCreate(req domain.CreateExpenseRequest) (createInput, error) {
	in := createInput{
		journalNo:    strings.TrimSpace(req.JournalNo),
		categoryID:   strings.TrimSpace(req.CategoryID),
		departmentID: strings.TrimSpace(req.DepartmentID),
		employeeID:   strings.TrimSpace(req.EmployeeID),
		amount:       req.Amount.Round(domain.MoneyScale),
		paid:         req.AmountPaid.Round(domain.MoneyScale),
		description:  strings.TrimSpace(req.Description),
		split:        req.SplitAmongActiveStaff,
	}

	if !in.amount.IsPositive() {
		return createInput{}, domain.ErrInvalidAmount
	}
	if in.paid.IsNegative() || in.paid.GreaterThan(in.amount) {
		return createInput{}, domain.ErrInvalidAmountPaid
	}
	if in.categoryID == "" {
		return createInput{}, domain.ErrInvalidCategory
	}
	if !in.split && in.departmentID == "" {
		return createInput{}, domain.ErrInvalidDepartment
	}

	date, err := s.parseDate(req.Date)
	if err != nil {
		return createInput{}, err
	}
	in.date = date

	return in, nil
}

func (s *Service) createSingle(ctx context.Context, in createInput) (domain.CreateExpenseResult, error) {
	now := s.clock.Now()
	entry := s.newEntry(in, in.amount, in.paid, now)
	if in.employeeID != "" {
		employeeID := in.employeeID
		entry.EmployeeID = &employeeID
	}
	if entry.JournalNo == "" {
		entry.JournalNo = s.journalNo(entry.ID)
	}

	var result domain.CreateExpenseResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertExpense(ctx, tx, &entry); err != nil {
			return db.Wrap("expense.insert", err)
		}
		result.Expenses = append(result.Expenses, entry)

		if entry.RemainingAmount.IsPositive() {
			outstanding := s.newOutstanding(entry, now)
			if err := s.repo.InsertOutstanding(ctx, tx, &outstanding); err != nil {
				return db.Wrap("outstanding.insert", err)
			}
			result.Outstanding = append(result.Outstanding, outstanding)
		}
		return nil
	})
	if err != nil {
		return domain.CreateExpenseResult{}, db.Wrap("expense.create", err, passthrough...)
	}

	s.metrics.RecordExpensesCreated(ctx, "single", 1)
	s.log.Info("expense created",
		zap.String("expense_id", entry.ID),
		zap.String("journal_no", entry.JournalNo),
		zap.String("remaining", entry.RemainingAmount.String()),
	)
	return result, nil
}

func (s *Service) newEntry(in createInput, amount, paid decimal.Decimal, now time.Time) domain.ExpenseEntry {
	return domain.ExpenseEntry{
		ID:              s.genID.Generate().String(),
		Date:            datatypes.Date(in.date),
		JournalNo:       in.journalNo,
		CategoryID:      in.categoryID,
		DepartmentID:    in.departmentID,
		Amount:          amount,
		AmountPaid:      paid,
		RemainingAmount: domain.Remaining(amount, paid),
		Description:     in.description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *Service) newOutstanding(entry domain.ExpenseEntry, now time.Time) domain.OutstandingExpense {
	return domain.OutstandingExpense{
		ID:           s.genID.Generate().String(),
		ExpenseID:    entry.ID,
		Date:         entry.Date,
		Amount:       entry.RemainingAmount,
		DepartmentID: entry.DepartmentID,
		Description:  "Balance for: " + entry.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *Service) journalNo(id string) string {
	prefix := s.ledger.Get().JournalPrefix
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return prefix + id
	}
	return fmt.Sprintf("%s%06d", prefix, parsed.Int64()%1000000)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidID
	}

	var cleared int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.repo.DeleteOutstandingByExpenseID(ctx, tx, id)
		if err != nil {
			return db.Wrap("outstanding.delete_by_expense", err)
		}
		cleared = n

		deleted, err := s.repo.DeleteExpense(ctx, tx, id)
		if err != nil {
			return db.Wrap("expense.delete", err)
		}
		if deleted == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return db.Wrap("expense.delete", err, passthrough...)
	}

	s.log.Info("expense deleted", zap.String("expense_id", id), zap.Int64("outstanding_cleared", cleared))
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListExpenseRequest) (domain.ListExpenseResponse, error) {
	filter := domain.ListExpenseFilter{
		DepartmentID: strings.TrimSpace(req.DepartmentID),
		EmployeeID:   strings.TrimSpace(req.EmployeeID),
		CategoryID:   strings.TrimSpace(req.CategoryID),
	}
	var err error
	if filter.DateFrom, err = parseOptionalDate(req.DateFrom); err != nil {
		return domain.ListExpenseResponse{}, err
	}
	if filter.DateTo, err = parseOptionalDate(req.DateTo); err != nil {
		return domain.ListExpenseResponse{}, err
	}

	pageSize := pageSizeOrDefault(req.PageSize)
	items, err := s.repo.ListExpenses(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListExpenseResponse{}, db.Wrap("expense.list", err)
	}

	items, pageInfo := pagination.Trim(items, pageSize, func(e *domain.ExpenseEntry) string {
		return encodeCursor(e.ID, e.CreatedAt)
	})

	resp := domain.ListExpenseResponse{
		PageInfo: pageInfo,
		Expenses: make([]domain.ExpenseEntry, 0, len(items)),
	}
	for _, item := range items {
		if item != nil {
			resp.Expenses = append(resp.Expenses, *item)
		}
	}
	return resp, nil
}

func (s *Service) ListOutstanding(ctx context.Context, req domain.ListOutstandingRequest) (domain.ListOutstandingResponse, error) {
	pageSize := pageSizeOrDefault(req.PageSize)
	items, err := s.repo.ListOutstanding(ctx, s.db, domain.ListOutstandingFilter{
		DepartmentID: strings.TrimSpace(req.DepartmentID),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListOutstandingResponse{}, db.Wrap("outstanding.list", err)
	}

	items, pageInfo := pagination.Trim(items, pageSize, func(o *domain.OutstandingExpense) string {
		return encodeCursor(o.ID, o.CreatedAt)
	})

	resp := domain.ListOutstandingResponse{
		PageInfo:    pageInfo,
		Outstanding: make([]domain.OutstandingExpense, 0, len(items)),
	}
	for _, item := range items {
		if item != nil {
			resp.Outstanding = append(resp.Outstanding, *item)
		}
	}
	return resp, nil
}

func (s *Service) parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		now := s.clock.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return date, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	return &date, nil
}

func pageSizeOrDefault(size int32) int {
	if size <= 0 {
		return pagination.DefaultPageSize
	}
	if size > pagination.MaxPageSize {
		return pagination.MaxPageSize
	}
	return int(size)
}

func encodeCursor(id string, createdAt time.Time) string {
	token, err := pagination.EncodeCursor(pagination.Cursor{
		ID:        id,
		CreatedAt: createdAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return ""
	}
	return token
}
