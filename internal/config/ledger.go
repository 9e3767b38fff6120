package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// LedgerConfig holds ledger policy that can change without a restart.
type LedgerConfig struct {
	JournalPrefix string      `mapstructure:"journalPrefix"`
	Split         SplitPolicy `mapstructure:"split"`
}

// SplitPolicy controls expenses divided among active staff.
type SplitPolicy struct {
	// CreateOutstanding creates a balance row for every split entry with an unpaid remainder.
	CreateOutstanding bool   `mapstructure:"createOutstanding"`
	DescriptionSuffix string `mapstructure:"descriptionSuffix"`
}

func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		JournalPrefix: "J",
		Split: SplitPolicy{
			CreateOutstanding: false,
			DescriptionSuffix: " (Shared)",
		},
	}
}

type LedgerConfigHolder struct {
	current atomic.Value // holds LedgerConfig
}

// NewStaticLedgerConfigHolder returns a holder that never reloads.
func NewStaticLedgerConfigHolder(cfg LedgerConfig) *LedgerConfigHolder {
	holder := &LedgerConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewLedgerConfigHolder(log *zap.Logger) (*LedgerConfigHolder, error) {
	log = log.Named("config.ledger")

	v := viper.New()
	v.SetConfigName("ledger")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/bizledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BIZLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultLedgerConfig()
	v.SetDefault("ledger.journalPrefix", defaults.JournalPrefix)
	v.SetDefault("ledger.split.createOutstanding", defaults.Split.CreateOutstanding)
	v.SetDefault("ledger.split.descriptionSuffix", defaults.Split.DescriptionSuffix)

	fromFile := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fromFile = false
	}

	var cfg LedgerConfig
	if err := v.UnmarshalKey("ledger", &cfg); err != nil {
		return nil, err
	}
	if err := validateLedgerConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticLedgerConfigHolder(cfg)
	if !fromFile {
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var updated LedgerConfig
		if err := v.UnmarshalKey("ledger", &updated); err != nil {
			log.Warn("ledger config reload failed", zap.Error(err))
			return
		}
		if err := validateLedgerConfig(updated); err != nil {
			log.Warn("invalid ledger config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("ledger config reloaded",
			zap.String("file", e.Name),
			zap.Bool("split_create_outstanding", updated.Split.CreateOutstanding),
		)
	})
	v.WatchConfig()

	return holder, nil
}

func (h *LedgerConfigHolder) Get() LedgerConfig {
	if h == nil {
		return DefaultLedgerConfig()
	}
	return h.current.Load().(LedgerConfig)
}

func validateLedgerConfig(cfg LedgerConfig) error {
	if strings.TrimSpace(cfg.JournalPrefix) == "" {
		return errors.New("ledger.journalPrefix cannot be empty")
	}
	return nil
}
