package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/income/domain"
	"github.com/smallbiznis/bizledger/internal/income/repository"
	"github.com/smallbiznis/bizledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(conn, domain.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, conn
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func revenueRequest() domain.UpsertIncomeRequest {
	return domain.UpsertIncomeRequest{
		Date:             "2024-04-01",
		ServiceID:        "svc-inspection",
		Type:             domain.TypeRevenue,
		Amount:           dec("5000"),
		GrossOrdersCount: 40,
		CogsItems: []domain.CogsItemInput{
			{CategoryID: "cat-fuel", Amount: dec("300")},
			{CategoryID: "cat-inspector", Amount: dec("1200")},
			{CategoryID: "cat-fuel", Amount: dec("50")},
		},
		Refunds: []domain.RefundInput{
			{OrdersCount: 2, AmountRefunded: dec("250"), InspectorShareCancelled: dec("60")},
			{OrdersCount: 1, AmountRefunded: dec("125"), InspectorShareCancelled: dec("30")},
		},
		Description: "April week 1",
	}
}

func countRows(t *testing.T, conn *gorm.DB, model any, entryID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).Where("income_entry_id = ?", entryID).Count(&n).Error)
	return n
}

func TestUpsertComputesTotalsFromChildren(t *testing.T) {
	svc, _ := newTestService(t)

	req := revenueRequest()
	entry, err := svc.Upsert(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, entry.COGS.Equal(dec("1550")))
	assert.True(t, entry.TotalRefundsAmount.Equal(dec("375")))
	assert.True(t, entry.TotalInspectorShareCancelled.Equal(dec("90")))
	assert.EqualValues(t, 37, entry.OrdersCount)
	require.NotNil(t, entry.GrossOrdersCount)
	assert.EqualValues(t, 40, *entry.GrossOrdersCount)

	stored, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Len(t, stored.CogsItems, 3)
	assert.Len(t, stored.Refunds, 2)
	cogs, refunds, _ := stored.Totals()
	assert.True(t, stored.COGS.Equal(cogs))
	assert.True(t, stored.TotalRefundsAmount.Equal(refunds))
}

func TestUpsertReplacesChildren(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, revenueRequest())
	require.NoError(t, err)
	oldChild := first.CogsItems[0].ID

	edit := revenueRequest()
	edit.ID = first.ID
	edit.CogsItems = []domain.CogsItemInput{{CategoryID: "cat-fuel", Amount: dec("80")}}
	edit.Refunds = nil

	updated, err := svc.Upsert(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.True(t, updated.COGS.Equal(dec("80")))
	assert.True(t, updated.TotalRefundsAmount.IsZero())
	assert.EqualValues(t, 40, updated.OrdersCount)
	assert.NotEqual(t, oldChild, updated.CogsItems[0].ID)

	assert.EqualValues(t, 1, countRows(t, conn, &domain.IncomeCogsItem{}, first.ID))
	assert.EqualValues(t, 0, countRows(t, conn, &domain.IncomeRefundItem{}, first.ID))

	list, err := svc.List(ctx, domain.ListIncomeRequest{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].COGS.Equal(dec("80")))
}

func TestRefundEntryNegatesOrders(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.Upsert(context.Background(), domain.UpsertIncomeRequest{
		Date:                    "2024-04-03",
		ServiceID:               "svc-inspection",
		Type:                    domain.TypeRefund,
		Amount:                  dec("999"),
		RefundOrders:            3,
		RefundAmount:            dec("450"),
		InspectorShareCancelled: dec("90"),
	})
	require.NoError(t, err)

	assert.EqualValues(t, -3, entry.OrdersCount)
	assert.True(t, entry.Amount.IsZero())
	assert.True(t, entry.COGS.IsZero())
	assert.Nil(t, entry.GrossOrdersCount)
	require.Len(t, entry.Refunds, 1)
	assert.True(t, entry.TotalRefundsAmount.Equal(dec("450")))
	assert.True(t, entry.TotalInspectorShareCancelled.Equal(dec("90")))
}

func TestRefundEntryWithoutOrders(t *testing.T) {
	svc, conn := newTestService(t)

	entry, err := svc.Upsert(context.Background(), domain.UpsertIncomeRequest{
		Date:         "2024-04-04",
		ServiceID:    "svc-inspection",
		Type:         domain.TypeRefund,
		RefundAmount: dec("25"),
	})
	require.NoError(t, err)
	assert.Zero(t, entry.OrdersCount)
	assert.True(t, entry.TotalRefundsAmount.Equal(dec("25")))

	var stored domain.IncomeEntry
	require.NoError(t, conn.First(&stored, "id = ?", entry.ID).Error)
	assert.Zero(t, stored.OrdersCount)
	assert.True(t, stored.TotalRefundsAmount.Equal(dec("25")))
}

func TestUpsertValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.UpsertIncomeRequest)
		want   error
	}{
		{"service", func(r *domain.UpsertIncomeRequest) { r.ServiceID = "" }, domain.ErrInvalidService},
		{"type", func(r *domain.UpsertIncomeRequest) { r.Type = "grant" }, domain.ErrInvalidType},
		{"amount", func(r *domain.UpsertIncomeRequest) { r.Amount = decimal.Zero }, domain.ErrInvalidAmount},
		{"date", func(r *domain.UpsertIncomeRequest) { r.Date = "April" }, domain.ErrInvalidDate},
		{"cogs category", func(r *domain.UpsertIncomeRequest) { r.CogsItems[0].CategoryID = "" }, domain.ErrInvalidCogs},
		{"refund amount", func(r *domain.UpsertIncomeRequest) { r.Refunds[0].AmountRefunded = dec("-1") }, domain.ErrInvalidRefund},
		{"refunds exceed orders", func(r *domain.UpsertIncomeRequest) { r.GrossOrdersCount = 2 }, domain.ErrInvalidOrders},
		{"refund with negative orders", func(r *domain.UpsertIncomeRequest) {
			r.Type = domain.TypeRefund
			r.CogsItems = nil
			r.Refunds = nil
			r.RefundOrders = -2
		}, domain.ErrInvalidRefund},
		{"refund with cogs", func(r *domain.UpsertIncomeRequest) { r.Type = domain.TypeRefund }, domain.ErrInvalidCogs},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := revenueRequest()
			tc.mutate(&req)
			_, err := svc.Upsert(ctx, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDeleteRemovesChildren(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Upsert(ctx, revenueRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	assert.Zero(t, countRows(t, conn, &domain.IncomeCogsItem{}, entry.ID))
	assert.Zero(t, countRows(t, conn, &domain.IncomeRefundItem{}, entry.ID))

	_, err = svc.Get(ctx, entry.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, entry.ID), domain.ErrNotFound)
}

func TestSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Upsert(ctx, revenueRequest())
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, entry.ID)
	require.NoError(t, err)

	assert.True(t, summary.NetRevenue.Equal(dec("4625")))
	assert.True(t, summary.NetCOGS.Equal(dec("1460")))
	assert.True(t, summary.Net.Equal(dec("3165")))
	require.Len(t, summary.COGSBreakdown, 2)
	assert.Equal(t, "cat-fuel", summary.COGSBreakdown[0].CategoryID)
	assert.True(t, summary.COGSBreakdown[0].Amount.Equal(dec("350")))
	assert.True(t, summary.COGSBreakdown[1].Amount.Equal(dec("1200")))
}
