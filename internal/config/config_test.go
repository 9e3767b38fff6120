package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_TYPE", "SQLite")
	t.Setenv("SESSION_TTL_HOURS", "12")
	t.Setenv("LOGIN_BURST", "not-a-number")
	t.Setenv("BOOTSTRAP_SEED_REFERENCE_DATA", "off")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.AuthCookieSecure)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.LoginBurst)
	assert.False(t, cfg.Bootstrap.SeedReferenceData)
}

func TestLedgerConfigHolderDefaults(t *testing.T) {
	var holder *LedgerConfigHolder
	assert.Equal(t, DefaultLedgerConfig(), holder.Get())

	custom := DefaultLedgerConfig()
	custom.Split.CreateOutstanding = true
	holder = NewStaticLedgerConfigHolder(custom)
	assert.True(t, holder.Get().Split.CreateOutstanding)
	assert.Equal(t, " (Shared)", holder.Get().Split.DescriptionSuffix)
}

func TestValidateLedgerConfig(t *testing.T) {
	cfg := DefaultLedgerConfig()
	cfg.JournalPrefix = "  "
	assert.Error(t, validateLedgerConfig(cfg))
	assert.NoError(t, validateLedgerConfig(DefaultLedgerConfig()))
}
