package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/catalog/domain"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/pkg/db"
	"github.com/smallbiznis/bizledger/pkg/db/option"
	"github.com/smallbiznis/bizledger/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repos domain.Repositories
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repos domain.Repositories

	collections map[string]collection
}

func New(p Params) domain.Service {
	s := &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repos: p.Repos,
	}
	s.collections = map[string]collection{
		domain.CollectionDepartments: &typedCollection[domain.Department]{
			store:   p.Repos.Departments,
			prepare: prepareDepartment,
			setID:   func(d *domain.Department, id string) { d.ID = id },
		},
		domain.CollectionEmployees: &typedCollection[domain.Employee]{
			store:   p.Repos.Employees,
			prepare: prepareEmployee,
			setID:   func(e *domain.Employee, id string) { e.ID = id },
		},
		domain.CollectionExpenseGroups: &typedCollection[domain.ExpenseGroup]{
			store:   p.Repos.ExpenseGroups,
			prepare: prepareExpenseGroup,
			setID:   func(g *domain.ExpenseGroup, id string) { g.ID = id },
		},
		domain.CollectionExpenseCategories: &typedCollection[domain.ExpenseCategory]{
			store:   p.Repos.ExpenseCategories,
			prepare: prepareExpenseCategory,
			setID:   func(c *domain.ExpenseCategory, id string) { c.ID = id },
		},
		domain.CollectionIncomeServices: &typedCollection[domain.IncomeService]{
			store:   p.Repos.IncomeServices,
			prepare: prepareIncomeService,
			setID:   func(is *domain.IncomeService, id string) { is.ID = id },
		},
		domain.CollectionTasks: &typedCollection[domain.Task]{
			store:   p.Repos.Tasks,
			prepare: s.prepareTask,
			setID:   func(t *domain.Task, id string) { t.ID = id },
		},
	}
	return s
}

func (s *Service) Upsert(ctx context.Context, name string, payload json.RawMessage) (domain.Record, error) {
	coll, ok := s.collections[strings.TrimSpace(name)]
	if !ok {
		return nil, domain.ErrUnknownCollection
	}

	record, err := coll.upsert(ctx, payload, s.genID)
	if err != nil {
		return nil, db.Wrap("catalog.upsert", err, domainErrors...)
	}

	s.log.Debug("catalog record upserted",
		zap.String("collection", name),
		zap.String("id", record.GetID()),
	)
	return record, nil
}

func (s *Service) Delete(ctx context.Context, name, id string) error {
	coll, ok := s.collections[strings.TrimSpace(name)]
	if !ok {
		return domain.ErrUnknownCollection
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidID
	}

	deleted, err := coll.delete(ctx, id)
	if err != nil {
		return db.Wrap("catalog.delete", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.log.Debug("catalog record deleted", zap.String("collection", name), zap.String("id", id))
	return nil
}

func (s *Service) Snapshot(ctx context.Context) (domain.Catalog, error) {
	var out domain.Catalog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		byID := option.WithOrder("id asc")
		if out.Departments, err = listValues(ctx, s.repos.Departments.WithTrx(tx), byID); err != nil {
			return err
		}
		if out.Employees, err = listValues(ctx, s.repos.Employees.WithTrx(tx), byID); err != nil {
			return err
		}
		if out.ExpenseGroups, err = listValues(ctx, s.repos.ExpenseGroups.WithTrx(tx), byID); err != nil {
			return err
		}
		if out.ExpenseCategories, err = listValues(ctx, s.repos.ExpenseCategories.WithTrx(tx), byID); err != nil {
			return err
		}
		if out.IncomeServices, err = listValues(ctx, s.repos.IncomeServices.WithTrx(tx), byID); err != nil {
			return err
		}
		out.Tasks, err = listValues(ctx, s.repos.Tasks.WithTrx(tx), option.WithOrder("created_at desc, id desc"))
		return err
	})
	if err != nil {
		return domain.Catalog{}, db.Wrap("catalog.snapshot", err)
	}
	return out, nil
}

func (s *Service) ActiveEmployees(ctx context.Context) ([]domain.Employee, error) {
	items, err := s.repos.Employees.Find(ctx, &domain.Employee{IsActive: true}, option.WithOrder("id asc"))
	if err != nil {
		return nil, db.Wrap("catalog.active_employees", err)
	}
	out := make([]domain.Employee, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func listValues[T any](ctx context.Context, store repository.Repository[T], opts ...option.QueryOption) ([]T, error) {
	items, err := store.List(ctx, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

var domainErrors = []error{
	domain.ErrInvalidPayload,
	domain.ErrInvalidName,
	domain.ErrInvalidDepartment,
	domain.ErrInvalidGroup,
	domain.ErrInvalidAddress,
	domain.ErrInvalidStatus,
	domain.ErrInvalidSalary,
}
