package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnforcementConfig carries the commission and escalation policy knobs.
// These are operator-tunable and must never be hard-coded at call sites.
type EnforcementConfig struct {
	// CommissionRate is the platform take on revenue net of coupon
	// discounts. Platform-wide, applied identically to every restaurant.
	CommissionRate float64 `mapstructure:"commissionRate"`

	// GraceDays is the number of calendar days after a billing period
	// ends during which non-payment carries no escalation.
	GraceDays int `mapstructure:"graceDays"`

	// LockoutGraceDays is the second, longer window past period end.
	// Any unpaid period older than this locks the restaurant out.
	LockoutGraceDays int `mapstructure:"lockoutGraceDays"`

	// LockoutOverduePeriods locks the restaurant out once this many
	// periods are past the first grace window, regardless of age.
	LockoutOverduePeriods int `mapstructure:"lockoutOverduePeriods"`
}

func DefaultEnforcementConfig() EnforcementConfig {
	return EnforcementConfig{
		CommissionRate:        0.05,
		GraceDays:             5,
		LockoutGraceDays:      14,
		LockoutOverduePeriods: 3,
	}
}

// EnforcementConfigHolder exposes the current policy with hot reload.
type EnforcementConfigHolder struct {
	current atomic.Value // holds EnforcementConfig
}

// NewEnforcementConfigHolder reads enforcement.yml when present and
// watches it for changes. Missing file falls back to defaults so the
// service is usable out of the box.
func NewEnforcementConfigHolder() (*EnforcementConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("enforcement")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/platefee/config")
	v.AddConfigPath("/etc/platefee")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PLATEFEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultEnforcementConfig()
	v.SetDefault("enforcement.commissionRate", defaults.CommissionRate)
	v.SetDefault("enforcement.graceDays", defaults.GraceDays)
	v.SetDefault("enforcement.lockoutGraceDays", defaults.LockoutGraceDays)
	v.SetDefault("enforcement.lockoutOverduePeriods", defaults.LockoutOverduePeriods)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg EnforcementConfig
	if err := v.UnmarshalKey("enforcement", &cfg); err != nil {
		return nil, err
	}
	if err := validateEnforcementConfig(cfg); err != nil {
		return nil, err
	}

	holder := &EnforcementConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated EnforcementConfig
		if err := v.UnmarshalKey("enforcement", &updated); err != nil {
			log.Printf("[enforcement-config] reload failed: %v", err)
			return
		}
		if err := validateEnforcementConfig(updated); err != nil {
			log.Printf("[enforcement-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[enforcement-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticEnforcementConfigHolder wraps a fixed policy, for tests.
func NewStaticEnforcementConfigHolder(cfg EnforcementConfig) *EnforcementConfigHolder {
	holder := &EnforcementConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *EnforcementConfigHolder) Get() EnforcementConfig {
	return h.current.Load().(EnforcementConfig)
}

func validateEnforcementConfig(cfg EnforcementConfig) error {
	if cfg.CommissionRate < 0 || cfg.CommissionRate > 1 {
		return errors.New("enforcement.commissionRate must be within [0, 1]")
	}
	if cfg.GraceDays < 0 {
		return errors.New("enforcement.graceDays cannot be negative")
	}
	if cfg.LockoutGraceDays <= cfg.GraceDays {
		return errors.New("enforcement.lockoutGraceDays must exceed graceDays")
	}
	if cfg.LockoutOverduePeriods < 1 {
		return errors.New("enforcement.lockoutOverduePeriods must be at least 1")
	}
	return nil
}
