package service

import (
	"context"

	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	incomedomain "github.com/smallbiznis/bizledger/internal/income/domain"
	"github.com/smallbiznis/bizledger/internal/state/domain"
	"github.com/smallbiznis/bizledger/pkg/db"
	"github.com/smallbiznis/bizledger/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Catalog     catalogdomain.Service
	ExpenseRepo expensedomain.Repository
	Income      incomedomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	catalog     catalogdomain.Service
	expenseRepo expensedomain.Repository
	income      incomedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("state.service"),
		catalog:     p.Catalog,
		expenseRepo: p.ExpenseRepo,
		income:      p.Income,
	}
}

func (s *Service) GetState(ctx context.Context) (domain.AppState, error) {
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return domain.AppState{}, err
	}

	expenses, err := s.expenseRepo.ListExpenses(ctx, s.db, expensedomain.ListExpenseFilter{}, pagination.Pagination{})
	if err != nil {
		return domain.AppState{}, db.Wrap("state.expenses", err)
	}
	outstanding, err := s.expenseRepo.ListOutstanding(ctx, s.db, expensedomain.ListOutstandingFilter{}, pagination.Pagination{})
	if err != nil {
		return domain.AppState{}, db.Wrap("state.outstanding", err)
	}
	incomes, err := s.income.List(ctx, incomedomain.ListIncomeRequest{})
	if err != nil {
		return domain.AppState{}, err
	}

	state := domain.AppState{
		Departments:       snapshot.Departments,
		Employees:         snapshot.Employees,
		ExpenseGroups:     snapshot.ExpenseGroups,
		ExpenseCategories: snapshot.ExpenseCategories,
		IncomeServices:    snapshot.IncomeServices,
		Tasks:             snapshot.Tasks,
		Expenses:          derefAll(expenses),
		Outstanding:       derefAll(outstanding),
		Incomes:           incomes,
	}

	s.log.Debug("state assembled",
		zap.Int("expenses", len(state.Expenses)),
		zap.Int("outstanding", len(state.Outstanding)),
		zap.Int("incomes", len(state.Incomes)),
	)
	return state, nil
}

func derefAll[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}
