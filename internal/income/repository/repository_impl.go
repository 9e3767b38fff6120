package repository

import (
	"context"

	"github.com/smallbiznis/bizledger/internal/income/domain"
	"gorm.io/gorm"
)

const incomeColumns = `id, date, service_id, type, amount, orders_count, gross_orders_count, cogs, total_refunds_amount, total_inspector_share_cancelled, description, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.IncomeEntry, error) {
	var entry domain.IncomeEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+incomeColumns+` FROM income_entries WHERE id = ?`,
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

func (r *repo) Insert(ctx context.Context, db *gorm.DB, e *domain.IncomeEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO income_entries (`+incomeColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Date,
		e.ServiceID,
		e.Type,
		e.Amount,
		e.OrdersCount,
		e.GrossOrdersCount,
		e.COGS,
		e.TotalRefundsAmount,
		e.TotalInspectorShareCancelled,
		e.Description,
		e.CreatedAt,
		e.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, e *domain.IncomeEntry) error {
	return db.WithContext(ctx).Exec(
		`UPDATE income_entries
		 SET date = ?, service_id = ?, type = ?, amount = ?, orders_count = ?, gross_orders_count = ?,
		     cogs = ?, total_refunds_amount = ?, total_inspector_share_cancelled = ?, description = ?, updated_at = ?
		 WHERE id = ?`,
		e.Date,
		e.ServiceID,
		e.Type,
		e.Amount,
		e.OrdersCount,
		e.GrossOrdersCount,
		e.COGS,
		e.TotalRefundsAmount,
		e.TotalInspectorShareCancelled,
		e.Description,
		e.UpdatedAt,
		e.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id string) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM income_entries WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListIncomeFilter) ([]*domain.IncomeEntry, error) {
	var entries []*domain.IncomeEntry
	stmt := db.WithContext(ctx).Model(&domain.IncomeEntry{})
	if filter.ServiceID != "" {
		stmt = stmt.Where("service_id = ?", filter.ServiceID)
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("date <= ?", *filter.DateTo)
	}
	if err := stmt.Order("date desc, id desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) InsertCogsItems(ctx context.Context, db *gorm.DB, items []domain.IncomeCogsItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) InsertRefunds(ctx context.Context, db *gorm.DB, items []domain.IncomeRefundItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) DeleteCogsItems(ctx context.Context, db *gorm.DB, entryID string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM income_cogs_items WHERE income_entry_id = ?`, entryID).Error
}

func (r *repo) DeleteRefunds(ctx context.Context, db *gorm.DB, entryID string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM income_refund_items WHERE income_entry_id = ?`, entryID).Error
}

func (r *repo) ListCogsItems(ctx context.Context, db *gorm.DB, entryIDs []string) ([]domain.IncomeCogsItem, error) {
	var items []domain.IncomeCogsItem
	if len(entryIDs) == 0 {
		return items, nil
	}
	err := db.WithContext(ctx).
		Where("income_entry_id IN ?", entryIDs).
		Order("income_entry_id, id").
		Find(&items).Error
	return items, err
}

func (r *repo) ListRefunds(ctx context.Context, db *gorm.DB, entryIDs []string) ([]domain.IncomeRefundItem, error) {
	var items []domain.IncomeRefundItem
	if len(entryIDs) == 0 {
		return items, nil
	}
	err := db.WithContext(ctx).
		Where("income_entry_id IN ?", entryIDs).
		Order("income_entry_id, id").
		Find(&items).Error
	return items, err
}
