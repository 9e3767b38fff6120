package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bizledger/internal/clock"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/expense/domain"
	"github.com/smallbiznis/bizledger/internal/expense/repository"
	"github.com/smallbiznis/bizledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockService(t *testing.T) (domain.Service, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	conn, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := New(Params{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.NewFakeClock(testNow),
		Repo:   repository.Provide(),
		Ledger: config.NewStaticLedgerConfigHolder(config.DefaultLedgerConfig()),
	})
	return svc, mock
}

func TestSettleRollsBackWhenExpenseUpdateFails(t *testing.T) {
	svc, mock := newMockService(t)
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM outstanding_expenses WHERE id = \$1 FOR UPDATE`).
		WithArgs("out-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "expense_id", "date", "amount", "department_id", "description", "created_at", "updated_at"}).
			AddRow("out-1", "exp-1", date, "100", "dept", "Balance for: Rent", testNow, testNow))
	mock.ExpectQuery(`SELECT .+ FROM expense_entries WHERE id = \$1`).
		WithArgs("exp-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "journal_no", "category_id", "department_id", "employee_id", "amount", "amount_paid", "remaining_amount", "description", "created_at", "updated_at"}).
			AddRow("exp-1", date, "J000001", "cat", "dept", nil, "300", "200", "100", "Rent", testNow, testNow))
	mock.ExpectExec(`UPDATE expense_entries SET amount_paid`).
		WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	_, err := svc.Settle(context.Background(), domain.SettleRequest{
		OutstandingID: "out-1",
		AmountToPay:   dec("40"),
	})
	require.Error(t, err)
	assert.True(t, db.IsPersistenceError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRollsBackWhenOutstandingInsertFails(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO expense_entries`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO outstanding_expenses`).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), domain.CreateExpenseRequest{
		Date:         "2024-03-10",
		CategoryID:   "cat",
		DepartmentID: "dept",
		Amount:       dec("500"),
		AmountPaid:   dec("200"),
		Description:  "Rent",
	})
	require.Error(t, err)
	assert.True(t, db.IsPersistenceError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
