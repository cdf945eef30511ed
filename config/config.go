// Package config loads and validates the full run configuration from
// YAML or JSON files. Validation failures are fatal: a run never starts
// on a bad config.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kestrelquant/kestrel/backtest"
)

// Config is the complete run configuration.
type Config struct {
	Backtest backtest.Config `json:"backtest" yaml:"backtest"`
	Data     DataConfig      `json:"data" yaml:"data"`
	Alphas   AlphasConfig    `json:"alphas" yaml:"alphas"`
	Journal  JournalConfig   `json:"journal" yaml:"journal"`
	Report   ReportConfig    `json:"report" yaml:"report"`
}

// DataConfig maps symbols to their CSV bar files.
type DataConfig struct {
	Files map[string]string `json:"files" yaml:"files"`
}

// AlphasConfig enables and parameterizes the built-in alphas.
type AlphasConfig struct {
	EMACross EMACrossConfig `json:"ema_cross" yaml:"ema_cross"`
	MACD     MACDConfig     `json:"macd" yaml:"macd"`
}

type EMACrossConfig struct {
	Enabled    bool `json:"enabled" yaml:"enabled"`
	FastPeriod int  `json:"fast_period" yaml:"fast_period"`
	SlowPeriod int  `json:"slow_period" yaml:"slow_period"`
}

type MACDConfig struct {
	Enabled      bool `json:"enabled" yaml:"enabled"`
	FastPeriod   int  `json:"fast_period" yaml:"fast_period"`
	SlowPeriod   int  `json:"slow_period" yaml:"slow_period"`
	SignalPeriod int  `json:"signal_period" yaml:"signal_period"`
}

// JournalConfig selects the persistence backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ReportConfig selects the run-end outputs.
type ReportConfig struct {
	// ChartFile, when set, is where the HTML equity chart is written.
	ChartFile string `json:"chart_file,omitempty" yaml:"chart_file,omitempty"`
}

// LoadFromFile reads a config from path, trying YAML first and falling
// back to JSON, and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the config to path, YAML for .yaml/.yml extensions
// and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Backtest.Validate(); err != nil {
		return err
	}

	if len(c.Data.Files) == 0 {
		return fmt.Errorf("data.files must name at least one symbol CSV")
	}
	for sym, path := range c.Data.Files {
		if sym == "" || path == "" {
			return fmt.Errorf("data.files entries need both symbol and path")
		}
	}

	if c.Alphas.EMACross.Enabled {
		e := c.Alphas.EMACross
		if e.FastPeriod <= 0 || e.SlowPeriod <= e.FastPeriod {
			return fmt.Errorf("alphas.ema_cross needs 0 < fast_period < slow_period")
		}
	}
	if c.Alphas.MACD.Enabled {
		m := c.Alphas.MACD
		if m.FastPeriod <= 0 || m.SlowPeriod <= m.FastPeriod || m.SignalPeriod <= 0 {
			return fmt.Errorf("alphas.macd needs 0 < fast_period < slow_period and positive signal_period")
		}
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for csv type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a runnable configuration with the standard limits and
// both built-in alphas enabled.
func Default() *Config {
	return &Config{
		Backtest: backtest.DefaultConfig(100_000),
		Data: DataConfig{
			Files: map[string]string{"SPY": "./data/spy.csv"},
		},
		Alphas: AlphasConfig{
			EMACross: EMACrossConfig{Enabled: true, FastPeriod: 10, SlowPeriod: 30},
			MACD:     MACDConfig{Enabled: true, FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9},
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
