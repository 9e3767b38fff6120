package db

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerLine struct {
	ID     string          `gorm:"primaryKey;size:40"`
	Amount decimal.Decimal `gorm:"type:numeric(24,8);not null"`
}

func TestAutoMigrateKeepsDecimalPrecisionOnSQLite(t *testing.T) {
	conn, err := NewTest()
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(conn, &ledgerLine{}))
	require.NoError(t, AutoMigrate(conn, &ledgerLine{}))

	want := decimal.RequireFromString("1234567890123456.12345678")
	require.NoError(t, conn.Create(&ledgerLine{ID: "l1", Amount: want}).Error)

	var storage string
	require.NoError(t, conn.Raw("SELECT typeof(amount) FROM ledger_lines WHERE id = ?", "l1").Scan(&storage).Error)
	assert.Equal(t, "text", storage)

	var got ledgerLine
	require.NoError(t, conn.First(&got, "id = ?", "l1").Error)
	assert.True(t, got.Amount.Equal(want), got.Amount.String())
}
