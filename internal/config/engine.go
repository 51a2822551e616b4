package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EngineConfig holds hot-reloadable operational settings for the
// commission engine. It never changes resolution semantics, only
// presentation-level knobs such as the currency rounding scale.
type EngineConfig struct {
	CurrencyScale    int32  `mapstructure:"currencyScale"`
	DefaultCurrency  string `mapstructure:"defaultCurrency"`
	MaxFormulaLength int    `mapstructure:"maxFormulaLength"`
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		CurrencyScale:    2,
		DefaultCurrency:  "TRY",
		MaxFormulaLength: 64,
	}
}

type EngineConfigHolder struct {
	current atomic.Value // holds EngineConfig
}

func NewEngineConfigHolder() (*EngineConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("engine")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/acentera/config")
	v.AddConfigPath("/etc/acentera")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ACENTERA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultEngineConfig()
	v.SetDefault("engine.currencyScale", defaults.CurrencyScale)
	v.SetDefault("engine.defaultCurrency", defaults.DefaultCurrency)
	v.SetDefault("engine.maxFormulaLength", defaults.MaxFormulaLength)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg EngineConfig
	if err := v.UnmarshalKey("engine", &cfg); err != nil {
		return nil, err
	}
	if err := validateEngineConfig(cfg); err != nil {
		return nil, err
	}

	holder := &EngineConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated EngineConfig
		if err := v.UnmarshalKey("engine", &updated); err != nil {
			log.Printf("[engine-config] reload failed: %v", err)
			return
		}
		if err := validateEngineConfig(updated); err != nil {
			log.Printf("[engine-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[engine-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *EngineConfigHolder) Get() EngineConfig {
	return h.current.Load().(EngineConfig)
}

func validateEngineConfig(cfg EngineConfig) error {
	if cfg.CurrencyScale < 0 || cfg.CurrencyScale > 8 {
		return errors.New("engine.currencyScale must be between 0 and 8")
	}
	if cfg.MaxFormulaLength <= 0 {
		return errors.New("engine.maxFormulaLength must be positive")
	}
	return nil
}
