package service

import (
	"context"
	"strings"
	"time"

	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	"github.com/smallbiznis/bizledger/internal/clock"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/internal/report/domain"
	"github.com/smallbiznis/bizledger/internal/report/export"
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
	Clock       clock.Clock
	Catalog     catalogdomain.Service
	ExpenseRepo expensedomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	catalog     catalogdomain.Service
	expenseRepo expensedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("report.service"),
		clock:       p.Clock,
		catalog:     p.Catalog,
		expenseRepo: p.ExpenseRepo,
	}
}

func (s *Service) Roster(ctx context.Context) (domain.Roster, error) {
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return domain.Roster{}, err
	}
	return BuildRoster(snapshot), nil
}

func (s *Service) ExpensesByEmployee(ctx context.Context, filter domain.Filter) (domain.EmployeeExpenseReport, error) {
	snapshot, expenses, err := s.load(ctx, filter, true)
	if err != nil {
		return domain.EmployeeExpenseReport{}, err
	}
	return BuildExpensesByEmployee(snapshot, expenses), nil
}

func (s *Service) ExpensesByDepartment(ctx context.Context, filter domain.Filter) (domain.DepartmentExpenseReport, error) {
	snapshot, expenses, err := s.load(ctx, filter, false)
	if err != nil {
		return domain.DepartmentExpenseReport{}, err
	}
	return BuildExpensesByDepartment(snapshot, expenses), nil
}

func (s *Service) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	snapshot, expenses, err := s.load(ctx, domain.Filter{}, false)
	if err != nil {
		return domain.Dashboard{}, err
	}
	outstanding, err := s.expenseRepo.ListOutstanding(ctx, s.db, expensedomain.ListOutstandingFilter{}, pagination.Pagination{})
	if err != nil {
		return domain.Dashboard{}, db.Wrap("report.outstanding", err)
	}
	return BuildDashboard(snapshot, expenses, derefAll(outstanding)), nil
}

func (s *Service) Export(ctx context.Context, name string, filter domain.Filter) (domain.File, error) {
	var table domain.Table
	switch strings.TrimSpace(name) {
	case domain.ReportRoster:
		r, err := s.Roster(ctx)
		if err != nil {
			return domain.File{}, err
		}
		table = rosterTable(r)
	case domain.ReportExpensesByEmployee:
		r, err := s.ExpensesByEmployee(ctx, filter)
		if err != nil {
			return domain.File{}, err
		}
		table = employeeExpenseTable(r)
	case domain.ReportExpensesByDepartment:
		r, err := s.ExpensesByDepartment(ctx, filter)
		if err != nil {
			return domain.File{}, err
		}
		table = departmentExpenseTable(r)
	case domain.ReportDashboard:
		r, err := s.Dashboard(ctx)
		if err != nil {
			return domain.File{}, err
		}
		table = dashboardTable(r)
	default:
		return domain.File{}, domain.ErrUnknownReport
	}

	now := s.clock.Now()
	body, err := export.RenderPDF(table, now)
	if err != nil {
		s.log.Error("render report pdf", zap.String("report", name), zap.Error(err))
		return domain.File{}, err
	}

	return domain.File{
		Name:        export.FileName(table.Title, now),
		ContentType: export.ContentTypePDF,
		Body:        body,
	}, nil
}

func (s *Service) load(ctx context.Context, filter domain.Filter, byEmployee bool) (catalogdomain.Catalog, []expensedomain.ExpenseEntry, error) {
	listFilter := expensedomain.ListExpenseFilter{
		DepartmentID: strings.TrimSpace(filter.DepartmentID),
	}
	if byEmployee {
		listFilter.EmployeeID = strings.TrimSpace(filter.EmployeeID)
	}
	var err error
	if listFilter.DateFrom, err = parseOptionalDate(filter.DateFrom); err != nil {
		return catalogdomain.Catalog{}, nil, err
	}
	if listFilter.DateTo, err = parseOptionalDate(filter.DateTo); err != nil {
		return catalogdomain.Catalog{}, nil, err
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return catalogdomain.Catalog{}, nil, err
	}
	items, err := s.expenseRepo.ListExpenses(ctx, s.db, listFilter, pagination.Pagination{})
	if err != nil {
		return catalogdomain.Catalog{}, nil, db.Wrap("report.expenses", err)
	}
	return snapshot, derefAll(items), nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(expensedomain.DateLayout, value)
	if err != nil {
		return nil, domain.ErrInvalidDate
	}
	return &date, nil
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
