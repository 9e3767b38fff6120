package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/bizledger/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/bizledger/internal/catalog/repository"
	catalogsvc "github.com/smallbiznis/bizledger/internal/catalog/service"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	expensedomain "github.com/smallbiznis/bizledger/internal/expense/domain"
	expenserepo "github.com/smallbiznis/bizledger/internal/expense/repository"
	expensesvc "github.com/smallbiznis/bizledger/internal/expense/service"
	incomedomain "github.com/smallbiznis/bizledger/internal/income/domain"
	incomerepo "github.com/smallbiznis/bizledger/internal/income/repository"
	incomesvc "github.com/smallbiznis/bizledger/internal/income/service"
	"github.com/smallbiznis/bizledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetStateAssemblesEverything(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	var models []any
	models = append(models, catalogdomain.Models()...)
	models = append(models, expensedomain.Models()...)
	models = append(models, incomedomain.Models()...)
	require.NoError(t, db.AutoMigrate(conn, models...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	catalog := catalogsvc.New(catalogsvc.Params{DB: conn, Log: log, GenID: node, Clock: clk, Repos: catalogrepo.Provide(conn)})
	expenses := expensesvc.New(expensesvc.Params{
		DB: conn, Log: log, GenID: node, Clock: clk, Repo: expenserepo.Provide(),
		Ledger: config.NewStaticLedgerConfigHolder(config.DefaultLedgerConfig()),
	})
	incomes := incomesvc.New(incomesvc.Params{DB: conn, Log: log, GenID: node, Clock: clk, Repo: incomerepo.Provide()})

	ctx := context.Background()
	_, err = catalog.Upsert(ctx, catalogdomain.CollectionDepartments, json.RawMessage(`{"id":"d1","name":"Ops"}`))
	require.NoError(t, err)
	_, err = expenses.Create(ctx, expensedomain.CreateExpenseRequest{
		CategoryID: "c1", DepartmentID: "d1", Amount: decimal.NewFromInt(500), AmountPaid: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	_, err = incomes.Upsert(ctx, incomedomain.UpsertIncomeRequest{
		ServiceID: "s1", Type: incomedomain.TypeRevenue, Amount: decimal.NewFromInt(900), GrossOrdersCount: 9,
		CogsItems: []incomedomain.CogsItemInput{{CategoryID: "c1", Amount: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)

	svc := New(Params{DB: conn, Log: log, Catalog: catalog, ExpenseRepo: expenserepo.Provide(), Income: incomes})
	state, err := svc.GetState(ctx)
	require.NoError(t, err)

	assert.Len(t, state.Departments, 1)
	assert.Len(t, state.Expenses, 1)
	require.Len(t, state.Outstanding, 1)
	assert.True(t, state.Outstanding[0].Amount.Equal(decimal.NewFromInt(300)))
	require.Len(t, state.Incomes, 1)
	assert.Len(t, state.Incomes[0].CogsItems, 1)
	assert.False(t, state.Session.LoggedIn())
}
