package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type EntryType string

const (
	TypeRevenue EntryType = "revenue"
	TypeRefund  EntryType = "refund"
)

type IncomeEntry struct {
	ID                           string             `gorm:"primaryKey;size:40" json:"id"`
	Date                         datatypes.Date     `gorm:"not null;index" json:"date"`
	ServiceID                    string             `gorm:"size:40;not null;index" json:"service_id"`
	Type                         EntryType          `gorm:"size:16;not null" json:"type"`
	Amount                       decimal.Decimal    `gorm:"type:numeric(24,8);not null" json:"amount"`
	OrdersCount                  int64              `gorm:"not null" json:"orders_count"`
	GrossOrdersCount             *int64             `json:"gross_orders_count,omitempty"`
	COGS                         decimal.Decimal    `gorm:"column:cogs;type:numeric(24,8);not null" json:"cogs"`
	TotalRefundsAmount           decimal.Decimal    `gorm:"type:numeric(24,8);not null" json:"total_refunds_amount"`
	TotalInspectorShareCancelled decimal.Decimal    `gorm:"type:numeric(24,8);not null" json:"total_inspector_share_cancelled"`
	Description                  string             `json:"description"`
	CreatedAt                    time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt                    time.Time          `gorm:"not null" json:"updated_at"`
	CogsItems                    []IncomeCogsItem   `gorm:"-" json:"cogs_items"`
	Refunds                      []IncomeRefundItem `gorm:"-" json:"refunds"`
}

func (IncomeEntry) TableName() string { return "income_entries" }

type IncomeCogsItem struct {
	ID            string          `gorm:"primaryKey;size:40" json:"id"`
	IncomeEntryID string          `gorm:"size:40;not null;index" json:"income_entry_id"`
	CategoryID    string          `gorm:"size:40;not null" json:"category_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"amount"`
}

func (IncomeCogsItem) TableName() string { return "income_cogs_items" }

type IncomeRefundItem struct {
	ID                      string          `gorm:"primaryKey;size:40" json:"id"`
	IncomeEntryID           string          `gorm:"size:40;not null;index" json:"income_entry_id"`
	OrdersCount             int64           `gorm:"not null" json:"orders_count"`
	AmountRefunded          decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"amount_refunded"`
	InspectorShareCancelled decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"inspector_share_cancelled"`
}

func (IncomeRefundItem) TableName() string { return "income_refund_items" }

// Totals recomputes the denormalized sums from the child collections.
func (e *IncomeEntry) Totals() (cogs, refunds, inspectorShare decimal.Decimal) {
	cogs, refunds, inspectorShare = decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range e.CogsItems {
		cogs = cogs.Add(item.Amount)
	}
	for _, r := range e.Refunds {
		refunds = refunds.Add(r.AmountRefunded)
		inspectorShare = inspectorShare.Add(r.InspectorShareCancelled)
	}
	return cogs, refunds, inspectorShare
}

// Clone deep-copies the child collections.
func (e IncomeEntry) Clone() IncomeEntry {
	out := e
	if e.CogsItems != nil {
		out.CogsItems = append([]IncomeCogsItem(nil), e.CogsItems...)
	}
	if e.Refunds != nil {
		out.Refunds = append([]IncomeRefundItem(nil), e.Refunds...)
	}
	if e.GrossOrdersCount != nil {
		gross := *e.GrossOrdersCount
		out.GrossOrdersCount = &gross
	}
	return out
}

// CategoryCOGS is one line of the per-category cost breakdown.
type CategoryCOGS struct {
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type Summary struct {
	IncomeID      string          `json:"income_id"`
	Type          EntryType       `json:"type"`
	OrdersCount   int64           `json:"orders_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	TotalRefunds  decimal.Decimal `json:"total_refunds"`
	NetRevenue    decimal.Decimal `json:"net_revenue"`
	COGS          decimal.Decimal `json:"cogs"`
	InspectorBack decimal.Decimal `json:"inspector_share_cancelled"`
	NetCOGS       decimal.Decimal `json:"net_cogs"`
	Net           decimal.Decimal `json:"net"`
	COGSBreakdown []CategoryCOGS  `json:"cogs_breakdown"`
}

func Models() []any {
	return []any{
		&IncomeEntry{},
		&IncomeCogsItem{},
		&IncomeRefundItem{},
	}
}
