package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelquant/kestrel/signal"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kestrel.yaml")
	content := `
backtest:
  initial_capital: 50000
  commission_per_trade: 0.5
  slippage_pct: 0.02
  default_position_size_pct: 5
  use_confidence_sizing: true
  min_confidence: 0.6
  default_stop_loss_pct: 2
  default_take_profit_pct: 4
  aggregation_strategy: majority-vote
  risk:
    max_open_positions: 5
    max_risk_per_trade_pct: 0.5
    max_correlation_exposure_pct: 50
    max_consecutive_losses: 3
    max_daily_drawdown_pct: 5
    emergency_stop_value: 25000
data:
  files:
    SPY: ./spy.csv
alphas:
  ema_cross:
    enabled: true
    fast_period: 5
    slow_period: 20
journal:
  type: sqlite
  db_path: ./runs.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50_000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, signal.MajorityVote, cfg.Backtest.AggregationStrategy)
	assert.Equal(t, 5, cfg.Backtest.Risk.MaxOpenPositions)
	assert.Equal(t, "./spy.csv", cfg.Data.Files["SPY"])
	assert.True(t, cfg.Alphas.EMACross.Enabled)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kestrel.json")
	cfg := Default()
	cfg.Backtest.InitialCapital = 42_000
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 42_000.0, loaded.Backtest.InitialCapital)
}

func TestSaveRoundTripYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kestrel.yml")
	cfg := Default()
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Backtest.InitialCapital, loaded.Backtest.InitialCapital)
	assert.Equal(t, cfg.Journal, loaded.Journal)
}

func TestValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-positive capital", func(c *Config) { c.Backtest.InitialCapital = 0 }},
		{"negative commission", func(c *Config) { c.Backtest.CommissionPerTrade = -1 }},
		{"no data files", func(c *Config) { c.Data.Files = nil }},
		{"empty file path", func(c *Config) { c.Data.Files = map[string]string{"SPY": ""} }},
		{"bad ema periods", func(c *Config) { c.Alphas.EMACross = EMACrossConfig{Enabled: true, FastPeriod: 30, SlowPeriod: 10} }},
		{"bad macd periods", func(c *Config) { c.Alphas.MACD = MACDConfig{Enabled: true, FastPeriod: 12, SlowPeriod: 26} }},
		{"csv without files", func(c *Config) { c.Journal = JournalConfig{Type: "csv"} }},
		{"sqlite without path", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "parquet" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{not config"), 0o644))
	_, err := LoadFromFile(path)
	assert.Error(t, err)
}
