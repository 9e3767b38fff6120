package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type CogsItemInput struct {
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
}

type RefundInput struct {
	OrdersCount             int64           `json:"orders_count"`
	AmountRefunded          decimal.Decimal `json:"amount_refunded"`
	InspectorShareCancelled decimal.Decimal `json:"inspector_share_cancelled"`
}

// UpsertIncomeRequest carries a whole income entry. Child collections replace whatever the
// entry held before. Refund-type entries may pass a single refund through the Refund* fields.
type UpsertIncomeRequest struct {
	ID                      string          `json:"id"`
	Date                    string          `json:"date"`
	ServiceID               string          `json:"service_id"`
	Type                    EntryType       `json:"type"`
	Amount                  decimal.Decimal `json:"amount"`
	GrossOrdersCount        int64           `json:"gross_orders_count"`
	CogsItems               []CogsItemInput `json:"cogs_items"`
	Refunds                 []RefundInput   `json:"refunds"`
	RefundOrders            int64           `json:"refund_orders"`
	RefundAmount            decimal.Decimal `json:"refund_amount"`
	InspectorShareCancelled decimal.Decimal `json:"inspector_share_cancelled"`
	Description             string          `json:"description"`
}

type ListIncomeRequest struct {
	ServiceID string
	DateFrom  string
	DateTo    string
}

type ListIncomeFilter struct {
	ServiceID string
	DateFrom  *time.Time
	DateTo    *time.Time
}

type Service interface {
	Upsert(context.Context, UpsertIncomeRequest) (IncomeEntry, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (IncomeEntry, error)
	List(context.Context, ListIncomeRequest) ([]IncomeEntry, error)
	Summary(ctx context.Context, id string) (Summary, error)
}

var (
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidDate    = errors.New("invalid_date")
	ErrInvalidService = errors.New("invalid_service")
	ErrInvalidType    = errors.New("invalid_type")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrInvalidOrders  = errors.New("invalid_orders_count")
	ErrInvalidCogs    = errors.New("invalid_cogs_item")
	ErrInvalidRefund  = errors.New("invalid_refund_item")
	ErrNotFound       = errors.New("not_found")
)

const DateLayout = "2006-01-02"
