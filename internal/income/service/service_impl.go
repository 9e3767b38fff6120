package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/income/domain"
	"github.com/smallbiznis/bizledger/internal/observability/metrics"
	"github.com/smallbiznis/bizledger/pkg/db"
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
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("income.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

var passthrough = []error{
	domain.ErrInvalidID,
	domain.ErrInvalidDate,
	domain.ErrInvalidService,
	domain.ErrInvalidType,
	domain.ErrInvalidAmount,
	domain.ErrInvalidOrders,
	domain.ErrInvalidCogs,
	domain.ErrInvalidRefund,
	domain.ErrNotFound,
}

// Upsert writes the entry and replaces its cogs items and refunds in one transaction. Totals
// and child ids are always derived server-side.
func (s *Service) Upsert(ctx context.Context, req domain.UpsertIncomeRequest) (domain.IncomeEntry, error) {
	entry, err := s.buildEntry(req)
	if err != nil {
		return domain.IncomeEntry{}, err
	}

	now := s.clock.Now()
	entry.UpdatedAt = now
	operation := "insert"

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, entry.ID)
		if err != nil {
			return db.Wrap("income.find", err)
		}

		if existing != nil {
			operation = "update"
			entry.CreatedAt = existing.CreatedAt
			if err := s.repo.DeleteCogsItems(ctx, tx, entry.ID); err != nil {
				return db.Wrap("income.delete_cogs_items", err)
			}
			if err := s.repo.DeleteRefunds(ctx, tx, entry.ID); err != nil {
				return db.Wrap("income.delete_refunds", err)
			}
			if err := s.repo.Update(ctx, tx, &entry); err != nil {
				return db.Wrap("income.update", err)
			}
		} else {
			entry.CreatedAt = now
			if err := s.repo.Insert(ctx, tx, &entry); err != nil {
				return db.Wrap("income.insert", err)
			}
		}

		if err := s.repo.InsertCogsItems(ctx, tx, entry.CogsItems); err != nil {
			return db.Wrap("income.insert_cogs_items", err)
		}
		if err := s.repo.InsertRefunds(ctx, tx, entry.Refunds); err != nil {
			return db.Wrap("income.insert_refunds", err)
		}
		return nil
	})
	if err != nil {
		return domain.IncomeEntry{}, db.Wrap("income.upsert", err, passthrough...)
	}

	s.metrics.RecordIncomeWrite(ctx, operation, string(entry.Type))
	s.log.Info("income entry written",
		zap.String("income_id", entry.ID),
		zap.String("operation", operation),
		zap.String("type", string(entry.Type)),
		zap.Int("cogs_items", len(entry.CogsItems)),
		zap.Int("refunds", len(entry.Refunds)),
	)
	return entry, nil
}

func (s *Service) buildEntry(req domain.UpsertIncomeRequest) (domain.IncomeEntry, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = s.genID.Generate().String()
	}
	serviceID := strings.TrimSpace(req.ServiceID)
	if serviceID == "" {
		return domain.IncomeEntry{}, domain.ErrInvalidService
	}
	date, err := s.parseDate(req.Date)
	if err != nil {
		return domain.IncomeEntry{}, err
	}

	entry := domain.IncomeEntry{
		ID:          id,
		Date:        datatypes.Date(date),
		ServiceID:   serviceID,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
	}

	switch req.Type {
	case domain.TypeRevenue:
		err = s.buildRevenue(&entry, req)
	case domain.TypeRefund:
		err = s.buildRefund(&entry, req)
	default:
		err = domain.ErrInvalidType
	}
	if err != nil {
		return domain.IncomeEntry{}, err
	}

	entry.COGS, entry.TotalRefundsAmount, entry.TotalInspectorShareCancelled = entry.Totals()
	return entry, nil
}

func (s *Service) buildRevenue(entry *domain.IncomeEntry, req domain.UpsertIncomeRequest) error {
	if !req.Amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if req.GrossOrdersCount < 0 {
		return domain.ErrInvalidOrders
	}

	cogs, err := s.cogsItems(entry.ID, req.CogsItems)
	if err != nil {
		return err
	}
	refunds, err := s.refundItems(entry.ID, req.Refunds)
	if err != nil {
		return err
	}

	var refundedOrders int64
	for _, r := range refunds {
		refundedOrders += r.OrdersCount
	}
	if refundedOrders > req.GrossOrdersCount {
		return domain.ErrInvalidOrders
	}

	gross := req.GrossOrdersCount
	entry.Amount = req.Amount
	entry.GrossOrdersCount = &gross
	entry.OrdersCount = gross - refundedOrders
	entry.CogsItems = cogs
	entry.Refunds = refunds
	return nil
}

// buildRefund stores refund inputs as refund lines so the totals always sum from children.
func (s *Service) buildRefund(entry *domain.IncomeEntry, req domain.UpsertIncomeRequest) error {
	if len(req.CogsItems) > 0 {
		return domain.ErrInvalidCogs
	}

	inputs := req.Refunds
	if len(inputs) == 0 {
		inputs = []domain.RefundInput{{
			OrdersCount:             req.RefundOrders,
			AmountRefunded:          req.RefundAmount,
			InspectorShareCancelled: req.InspectorShareCancelled,
		}}
	}
	refunds, err := s.refundItems(entry.ID, inputs)
	if err != nil {
		return err
	}

	// A refund with no orders is a money-only refund.
	var orders int64
	for _, r := range refunds {
		orders += r.OrdersCount
	}

	entry.Amount = decimal.Zero
	entry.OrdersCount = -orders
	entry.CogsItems = []domain.IncomeCogsItem{}
	entry.Refunds = refunds
	return nil
}

func (s *Service) cogsItems(entryID string, inputs []domain.CogsItemInput) ([]domain.IncomeCogsItem, error) {
	items := make([]domain.IncomeCogsItem, 0, len(inputs))
	for _, in := range inputs {
		categoryID := strings.TrimSpace(in.CategoryID)
		if categoryID == "" || in.Amount.IsNegative() {
			return nil, domain.ErrInvalidCogs
		}
		items = append(items, domain.IncomeCogsItem{
			ID:            s.genID.Generate().String(),
			IncomeEntryID: entryID,
			CategoryID:    categoryID,
			Amount:        in.Amount,
		})
	}
	return items, nil
}

func (s *Service) refundItems(entryID string, inputs []domain.RefundInput) ([]domain.IncomeRefundItem, error) {
	items := make([]domain.IncomeRefundItem, 0, len(inputs))
	for _, in := range inputs {
		if in.OrdersCount < 0 || in.AmountRefunded.IsNegative() || in.InspectorShareCancelled.IsNegative() {
			return nil, domain.ErrInvalidRefund
		}
		items = append(items, domain.IncomeRefundItem{
			ID:                      s.genID.Generate().String(),
			IncomeEntryID:           entryID,
			OrdersCount:             in.OrdersCount,
			AmountRefunded:          in.AmountRefunded,
			InspectorShareCancelled: in.InspectorShareCancelled,
		})
	}
	return items, nil
}

// Delete removes cogs items, then refunds, then the entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteCogsItems(ctx, tx, id); err != nil {
			return db.Wrap("income.delete_cogs_items", err)
		}
		if err := s.repo.DeleteRefunds(ctx, tx, id); err != nil {
			return db.Wrap("income.delete_refunds", err)
		}
		n, err := s.repo.Delete(ctx, tx, id)
		if err != nil {
			return db.Wrap("income.delete", err)
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return db.Wrap("income.delete", err, passthrough...)
	}

	s.metrics.RecordIncomeWrite(ctx, "delete", "")
	s.log.Info("income entry deleted", zap.String("income_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.IncomeEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.IncomeEntry{}, domain.ErrInvalidID
	}

	entry, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.IncomeEntry{}, db.Wrap("income.find", err)
	}
	if entry == nil {
		return domain.IncomeEntry{}, domain.ErrNotFound
	}

	entries := []*domain.IncomeEntry{entry}
	if err := s.attachChildren(ctx, s.db, entries); err != nil {
		return domain.IncomeEntry{}, err
	}
	return *entry, nil
}

func (s *Service) List(ctx context.Context, req domain.ListIncomeRequest) ([]domain.IncomeEntry, error) {
	filter := domain.ListIncomeFilter{ServiceID: strings.TrimSpace(req.ServiceID)}
	var err error
	if filter.DateFrom, err = parseOptionalDate(req.DateFrom); err != nil {
		return nil, err
	}
	if filter.DateTo, err = parseOptionalDate(req.DateTo); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, db.Wrap("income.list", err)
	}
	if err := s.attachChildren(ctx, s.db, items); err != nil {
		return nil, err
	}

	out := make([]domain.IncomeEntry, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *Service) attachChildren(ctx context.Context, conn *gorm.DB, entries []*domain.IncomeEntry) error {
	ids := make([]string, 0, len(entries))
	byID := make(map[string]*domain.IncomeEntry, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		e.CogsItems = []domain.IncomeCogsItem{}
		e.Refunds = []domain.IncomeRefundItem{}
		ids = append(ids, e.ID)
		byID[e.ID] = e
	}

	cogs, err := s.repo.ListCogsItems(ctx, conn, ids)
	if err != nil {
		return db.Wrap("income.list_cogs_items", err)
	}
	for _, item := range cogs {
		if e, ok := byID[item.IncomeEntryID]; ok {
			e.CogsItems = append(e.CogsItems, item)
		}
	}

	refunds, err := s.repo.ListRefunds(ctx, conn, ids)
	if err != nil {
		return db.Wrap("income.list_refunds", err)
	}
	for _, item := range refunds {
		if e, ok := byID[item.IncomeEntryID]; ok {
			e.Refunds = append(e.Refunds, item)
		}
	}
	return nil
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
