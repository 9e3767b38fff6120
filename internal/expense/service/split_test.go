package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStaff(t *testing.T, f fixture) {
	t.Helper()
	staff := []catalogdomain.Employee{
		{ID: "e1", Name: "Ali", DepartmentID: "d-ops", Salary: dec("4000"), IsActive: true},
		{ID: "e2", Name: "Huda", DepartmentID: "d-sales", Salary: dec("4200"), IsActive: true},
		{ID: "e3", Name: "Omar", DepartmentID: "d-ops", Salary: dec("3900"), IsActive: true},
		{ID: "e4", Name: "Lina", DepartmentID: "d-ops", Salary: dec("3000"), IsActive: false},
	}
	require.NoError(t, f.db.Create(&staff).Error)
}

func splitRequest(amount, paid string) domain.CreateExpenseRequest {
	return domain.CreateExpenseRequest{
		CategoryID:            "cat-meals",
		Amount:                dec(amount),
		AmountPaid:            dec(paid),
		Description:           "Team lunch",
		SplitAmongActiveStaff: true,
	}
}

func TestSplitAcrossActiveStaff(t *testing.T) {
	f := newFixture(t, config.DefaultLedgerConfig())
	seedStaff(t, f)

	res, err := f.svc.Create(context.Background(), splitRequest("900", "300"))
	require.NoError(t, err)
	require.Len(t, res.Expenses, 3)
	assert.Empty(t, res.Outstanding)

	total := decimal.Zero
	for _, e := range res.Expenses {
		total = total.Add(e.Amount)
		assert.True(t, e.Amount.Equal(dec("300")))
		assert.True(t, e.AmountPaid.Equal(dec("100")))
		assert.True(t, e.RemainingAmount.Equal(dec("200")))
		assert.Equal(t, "Team lunch (Shared)", e.Description)
		require.NotNil(t, e.EmployeeID)
	}
	assert.True(t, total.Equal(dec("900")))

	assert.Equal(t, "d-ops", res.Expenses[0].DepartmentID)
	assert.Equal(t, "d-sales", res.Expenses[1].DepartmentID)
	assert.Equal(t, res.Expenses[0].JournalNo, res.Expenses[2].JournalNo)

	var outstanding int64
	require.NoError(t, f.db.Model(&domain.OutstandingExpense{}).Count(&outstanding).Error)
	assert.Zero(t, outstanding)
}

func TestSplitWithOutstandingPolicy(t *testing.T) {
	ledger := config.DefaultLedgerConfig()
	ledger.Split.CreateOutstanding = true
	f := newFixture(t, ledger)
	seedStaff(t, f)

	res, err := f.svc.Create(context.Background(), splitRequest("900", "300"))
	require.NoError(t, err)
	require.Len(t, res.Outstanding, 3)
	for i, o := range res.Outstanding {
		assert.Equal(t, res.Expenses[i].ID, o.ExpenseID)
		assert.True(t, o.Amount.Equal(res.Expenses[i].RemainingAmount))
	}
}

func TestSplitWithoutActiveStaff(t *testing.T) {
	f := newFixture(t, config.DefaultLedgerConfig())

	_, err := f.svc.Create(context.Background(), splitRequest("900", "0"))
	assert.ErrorIs(t, err, domain.ErrNoActiveEmployees)
}

func TestSplitUnevenAmountStoresConsistentRows(t *testing.T) {
	f := newFixture(t, config.DefaultLedgerConfig())
	seedStaff(t, f)

	res, err := f.svc.Create(context.Background(), splitRequest("100", "50"))
	require.NoError(t, err)
	require.Len(t, res.Expenses, 3)

	var stored []domain.ExpenseEntry
	require.NoError(t, f.db.Find(&stored).Error)
	require.Len(t, stored, 3)

	amount, paid := decimal.Zero, decimal.Zero
	for _, e := range stored {
		assert.GreaterOrEqual(t, e.Amount.Exponent(), -domain.MoneyScale, e.Amount.String())
		assert.GreaterOrEqual(t, e.AmountPaid.Exponent(), -domain.MoneyScale, e.AmountPaid.String())
		assert.True(t, e.RemainingAmount.Equal(domain.Remaining(e.Amount, e.AmountPaid)),
			"remaining %s for amount %s paid %s", e.RemainingAmount, e.Amount, e.AmountPaid)
		amount = amount.Add(e.Amount)
		paid = paid.Add(e.AmountPaid)
	}
	assert.True(t, amount.Equal(dec("100")), amount.String())
	assert.True(t, paid.Equal(dec("50")), paid.String())

	assert.True(t, res.Expenses[0].Amount.Equal(dec("33.33333333")))
	assert.True(t, res.Expenses[2].Amount.Equal(dec("33.33333334")))
	assert.True(t, res.Expenses[2].AmountPaid.Equal(dec("16.66666668")))
}

func TestSplitEvenly(t *testing.T) {
	cases := []struct {
		name  string
		total string
		n     int
		want  []string
	}{
		{"even", "900", 3, []string{"300", "300", "300"}},
		{"remainder on last", "100", 3, []string{"33.33333333", "33.33333333", "33.33333334"}},
		{"below scale", "0.00000007", 10, []string{"0", "0", "0", "0", "0", "0", "0", "0", "0", "0.00000007"}},
		{"single", "12.5", 1, []string{"12.5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitEvenly(dec(tc.total), tc.n)
			require.Len(t, got, len(tc.want))
			for i, want := range tc.want {
				assert.True(t, got[i].Equal(dec(want)), "share %d: got %s want %s", i, got[i], want)
			}
		})
	}
}
