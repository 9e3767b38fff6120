package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/internal/expense/repository"
	"github.com/smallbiznis/bizledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db  *gorm.DB
	svc domain.Service
}

func newFixture(t *testing.T, ledger config.LedgerConfig) fixture {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	models := append(domain.Models(), catalogdomain.Models()...)
	if err := db.AutoMigrate(conn, models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	svc := New(Params{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.NewFakeClock(testNow),
		Repo:   repository.Provide(),
		Ledger: config.NewStaticLedgerConfigHolder(ledger),
	})
	return fixture{db: conn, svc: svc}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func (f fixture) outstandingFor(t *testing.T, expenseID string) []domain.OutstandingExpense {
	t.Helper()
	var rows []domain.OutstandingExpense
	require.NoError(t, f.db.Where("expense_id = ?", expenseID).Find(&rows).Error)
	return rows
}

func (f fixture) expense(t *testing.T, id string) domain.ExpenseEntry {
	t.Helper()
	var entry domain.ExpenseEntry
	require.NoError(t, f.db.Where("id = ?", id).First(&entry).Error)
	return entry
}

func (f fixture) createPartial(t *testing.T, amount, paid string) domain.CreateExpenseResult {
	t.Helper()
	res, err := f.svc.Create(context.Background(), domain.CreateExpenseRequest{
		Date:         "2024-03-10",
		CategoryID:   "cat-fuel",
		DepartmentID: "dept-ops",
		Amount:       dec(amount),
		AmountPaid:   dec(paid),
		Description:  "Diesel",
	})
	require.NoError(t, err)
	return res
}

func TestCreatePartialPaymentCreatesOutstanding(t *testing.T) {
	f := newFixture(t, config.DefaultLedgerConfig())

	res := f.createPartial(t, "500", "200")
	require.Len(t, res.Expenses, 1)
	require.Len(t, res.Outstanding, 1)

	entry := f.expense(t, res.Expenses[0].ID)
	assert.True(t, entry.RemainingAmount.Equal(dec("300")))
	assert.Regexp(t, `^J\d{6}$`, entry.JournalNo)

	rows := f.outstandingFor(t, entry.ID)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(dec("300")))
	assert.Equal(t, "dept-ops", rows[0].DepartmentID)
	assert.Equal(t, "Balance for: Diesel", rows[0].Description)

	require.NoError(t, f.svc.Delete(context.Background(), entry.ID))
	assert.Empty(t, f.outstandingFor(t, entry.ID))

	var count int64
	require.NoError(t, f.db.Model(&domain.ExpenseEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateFullyPaidHasNoOutstanding(t *testing.T) {
	f := newFixture(t, config.DefaultLedgerConfig())

	res := f.createPartial(t, "120", "120")
	assert.Empty(t, res.Outstanding)
	assert.Empty(t, f.outstandingFor(t, res.Expenses[0].ID))
	assert.True(t, res.Expenses[0].RemainingAmount.IsZero())
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, config.DefaultLedgerConfig())
	ctx := context.Background()

	base := domain.CreateExpenseRequest{
		CategoryID:   "cat",
		DepartmentID: "dept",
		Amount:       dec("100"),
		AmountPaid:   dec("0"),
	}

	cases := []struct {
		name   string
		mutate func(*domain.CreateExpenseRequest)
		want   error
	}{
		{"zero amount", func(r *domain.CreateExpenseRequest) { r.Amount = decimal.Zero }, domain.ErrInvalidAmount},
		{"negative paid", func(r *domain.CreateExpenseRequest) { r.AmountPaid = dec("-1") }, domain.ErrInvalidAmountPaid},
		{"overpaid", func(r *domain.CreateExpenseRequest) { r.AmountPaid = dec("101") }, domain.ErrInvalidAmountPaid},
		{"missing category", func(r *domain.CreateExpenseRequest) { r.CategoryID = "" }, domain.ErrInvalidCategory},
		{"missing department", func(r *domain.CreateExpenseRequest) { r.DepartmentID = " " }, domain.ErrInvalidDepartment},
		{"bad date", func(r *domain.CreateExpenseRequest) { r.Date = "15/03/2024" }, domain.ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := f.svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&domain.ExpenseEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSettleInTwoStepsMatchesSingleSettlement(t *testing.T) {
	ctx := context.Background()

	twoStep := newFixture(t, config.DefaultLedgerConfig())
	res := twoStep.createPartial(t, "150", "50")
	outID := res.Outstanding[0].ID

	first, err := twoStep.svc.Settle(ctx, domain.SettleRequest{OutstandingID: outID, AmountToPay: dec("40")})
	require.NoError(t, err)
	assert.False(t, first.Retired)
	require.NotNil(t, first.Outstanding)
	assert.True(t, first.Outstanding.Amount.Equal(dec("60")))
	assert.True(t, first.Expense.RemainingAmount.Equal(dec("60")))

	second, err := twoStep.svc.Settle(ctx, domain.SettleRequest{OutstandingID: outID, AmountToPay: dec("60")})
	require.NoError(t, err)
	assert.True(t, second.Retired)
	assert.Nil(t, second.Outstanding)

	oneStep := newFixture(t, config.DefaultLedgerConfig())
	res2 := oneStep.createPartial(t, "150", "50")
	_, err = oneStep.svc.Settle(ctx, domain.SettleRequest{OutstandingID: res2.Outstanding[0].ID, AmountToPay: dec("100")})
	require.NoError(t, err)

	a := twoStep.expense(t, res.Expenses[0].ID)
	b := oneStep.expense(t, res2.Expenses[0].ID)
	assert.True(t, a.AmountPaid.Equal(dec("150")))
	assert.True(t, a.AmountPaid.Equal(b.AmountPaid))
	assert.True(t, a.RemainingAmount.IsZero())
	assert.True(t, b.RemainingAmount.IsZero())
	assert.Empty(t, twoStep.outstandingFor(t, a.ID))
	assert.Empty(t, oneStep.outstandingFor(t, b.ID))
}

func TestSettleOverpayClamps(t *testing.T) {
	f := newFixture(t, config.DefaultLedgerConfig())
	res := f.createPartial(t, "100", "0")

	out, err := f.svc.Settle(context.Background(), domain.SettleRequest{
		OutstandingID: res.Outstanding[0].ID,
		AmountToPay:   dec("250"),
	})
	require.NoError(t, err)
	assert.True(t, out.Retired)
	assert.True(t, out.Expense.RemainingAmount.IsZero())

	entry := f.expense(t, res.Expenses[0].ID)
	assert.True(t, entry.RemainingAmount.IsZero())
	assert.Empty(t, f.outstandingFor(t, entry.ID))
}

func TestSettleErrors(t *testing.T) {
	f := newFixture(t, config.DefaultLedgerConfig())
	ctx := context.Background()

	_, err := f.svc.Settle(ctx, domain.SettleRequest{OutstandingID: "", AmountToPay: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = f.svc.Settle(ctx, domain.SettleRequest{OutstandingID: "x", AmountToPay: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)

	_, err = f.svc.Settle(ctx, domain.SettleRequest{OutstandingID: "missing", AmountToPay: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// balance whose expense has vanished
	res := f.createPartial(t, "80", "0")
	require.NoError(t, f.db.Exec(`DELETE FROM expense_entries WHERE id = ?`, res.Expenses[0].ID).Error)
	_, err = f.svc.Settle(ctx, domain.SettleRequest{OutstandingID: res.Outstanding[0].ID, AmountToPay: dec("10")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rows := f.outstandingFor(t, res.Expenses[0].ID)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(dec("80")))
}

func TestDeleteUnknownExpense(t *testing.T) {
	f := newFixture(t, config.DefaultLedgerConfig())
	assert.ErrorIs(t, f.svc.Delete(context.Background(), "nope"), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), ""), domain.ErrInvalidID)
}

func TestListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t, config.DefaultLedgerConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.createPartial(t, "10", "10")
	}
	_, err := f.svc.Create(ctx, domain.CreateExpenseRequest{
		CategoryID:   "cat-rent",
		DepartmentID: "dept-admin",
		Amount:       dec("900"),
		AmountPaid:   dec("0"),
	})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, domain.ListExpenseRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Expenses, 4)
	assert.False(t, all.HasMore)

	admin, err := f.svc.List(ctx, domain.ListExpenseRequest{DepartmentID: "dept-admin"})
	require.NoError(t, err)
	require.Len(t, admin.Expenses, 1)
	assert.Equal(t, "cat-rent", admin.Expenses[0].CategoryID)

	page, err := f.svc.List(ctx, domain.ListExpenseRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Expenses, 2)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextPageToken)

	outstanding, err := f.svc.ListOutstanding(ctx, domain.ListOutstandingRequest{})
	require.NoError(t, err)
	require.Len(t, outstanding.Outstanding, 1)
	assert.True(t, outstanding.Outstanding[0].Amount.Equal(dec("900")))

	_, err = f.svc.List(ctx, domain.ListExpenseRequest{DateFrom: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}
