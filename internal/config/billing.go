package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// BillingConfig bounds the schedule generators. MaxRecurringCycles caps
// how many future cycles a single request may materialize.
type BillingConfig struct {
	MaxRecurringCycles     int    `mapstructure:"maxRecurringCycles"`
	MaxInstallments        int    `mapstructure:"maxInstallments"`
	DefaultRecurringCycles int    `mapstructure:"defaultRecurringCycles"`
	DefaultInterval        string `mapstructure:"defaultInterval"`
}

// DefaultBillingConfig returns the bounds used when no config file is mounted.
func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		MaxRecurringCycles:     60,
		MaxInstallments:        120,
		DefaultRecurringCycles: 12,
		DefaultInterval:        "MONTHLY",
	}
}

// BillingConfigHolder exposes the current billing config and hot-reloads
// it when the mounted file changes.
type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

// NewBillingConfigHolder loads billing.yml and watches it for changes.
func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/leadloom/config") // Volume-mounted config
	v.AddConfigPath("/etc/leadloom")            // System config
	v.AddConfigPath(".")                        // Current directory (dev mode)

	v.SetEnvPrefix("LEADLOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.maxRecurringCycles", defaults.MaxRecurringCycles)
	v.SetDefault("billing.maxInstallments", defaults.MaxInstallments)
	v.SetDefault("billing.defaultRecurringCycles", defaults.DefaultRecurringCycles)
	v.SetDefault("billing.defaultInterval", defaults.DefaultInterval)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			zap.L().Warn("billing config reload failed", zap.Error(err))
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			zap.L().Warn("billing config invalid, keeping previous", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		zap.L().Info("billing config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticBillingConfigHolder returns a holder pinned to a fixed config.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// Get returns the current billing config.
func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.MaxRecurringCycles < 1 {
		return errors.New("billing.maxRecurringCycles must be positive")
	}
	if cfg.MaxInstallments < 1 {
		return errors.New("billing.maxInstallments must be positive")
	}
	if cfg.DefaultRecurringCycles < 1 || cfg.DefaultRecurringCycles > cfg.MaxRecurringCycles {
		return errors.New("billing.defaultRecurringCycles out of range")
	}
	return nil
}
