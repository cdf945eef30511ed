package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kestrelquant/kestrel/backtest"
	"github.com/kestrelquant/kestrel/market"
	"github.com/kestrelquant/kestrel/portfolio"
)

// SQLiteJournal persists runs to a SQLite database file.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, start_time, end_time, initial_capital, final_value, total_trades, win_rate_pct, sharpe_ratio, max_drawdown_pct, grade)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Start, r.End, r.InitialCapital, r.FinalValue,
		r.TotalTrades, r.WinRatePct, r.SharpeRatio, r.MaxDrawdownPct, r.Grade,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(runID string, t portfolio.ClosedTrade) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, symbol, quantity, entry_price, exit_price, entry_time, exit_time, commission, slippage, gross_pnl, net_pnl, exit_reason, entry_confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, runID, t.Symbol.String(), t.Quantity.Value(),
		t.EntryPrice.Value(), t.ExitPrice.Value(), t.EntryTime, t.ExitTime,
		t.Commission, t.Slippage, t.GrossPnL, t.NetPnL,
		t.ExitReason.String(), t.EntryConfidence.Value(),
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(runID string, p backtest.EquityPoint) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, time, value) VALUES (?, ?, ?)`,
		runID, p.Time, p.Value,
	)
	return err
}

// GetRun returns a single run summary by ID.
func (j *SQLiteJournal) GetRun(runID string) (RunRecord, error) {
	var r RunRecord
	row := j.db.QueryRow(`
		SELECT run_id, start_time, end_time, initial_capital, final_value, total_trades, win_rate_pct, sharpe_ratio, max_drawdown_pct, grade
		FROM runs WHERE run_id = ?`, runID)

	err := row.Scan(&r.RunID, &r.Start, &r.End, &r.InitialCapital, &r.FinalValue,
		&r.TotalTrades, &r.WinRatePct, &r.SharpeRatio, &r.MaxDrawdownPct, &r.Grade)
	if err == sql.ErrNoRows {
		return RunRecord{}, fmt.Errorf("run %q not found", runID)
	}
	if err != nil {
		return RunRecord{}, err
	}
	return r, nil
}

// ListTrades returns a run's trades ordered by exit time.
func (j *SQLiteJournal) ListTrades(runID string) ([]portfolio.ClosedTrade, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, quantity, entry_price, exit_price, entry_time, exit_time, commission, slippage, gross_pnl, net_pnl, exit_reason, entry_confidence
		FROM trades WHERE run_id = ? ORDER BY exit_time ASC, trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []portfolio.ClosedTrade
	for rows.Next() {
		var (
			t          portfolio.ClosedTrade
			symbol     string
			quantity   int64
			entry      float64
			exit       float64
			reason     string
			confidence float64
		)
		if err := rows.Scan(&t.TradeID, &symbol, &quantity, &entry, &exit,
			&t.EntryTime, &t.ExitTime, &t.Commission, &t.Slippage,
			&t.GrossPnL, &t.NetPnL, &reason, &confidence); err != nil {
			return nil, err
		}
		t.Symbol = market.Symbol(symbol)
		t.Quantity = market.Quantity(quantity)
		t.EntryPrice = market.Price(entry)
		t.ExitPrice = market.Price(exit)
		t.EntryConfidence = market.Confidence(confidence)
		if err := t.ExitReason.UnmarshalText([]byte(reason)); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquity returns a run's equity curve ordered by time.
func (j *SQLiteJournal) ListEquity(runID string) ([]backtest.EquityPoint, error) {
	rows, err := j.db.Query(`
		SELECT time, value FROM equity WHERE run_id = ? ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []backtest.EquityPoint
	for rows.Next() {
		var p backtest.EquityPoint
		var ts time.Time
		if err := rows.Scan(&ts, &p.Value); err != nil {
			return nil, err
		}
		p.Time = ts
		out = append(out, p)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error { return j.db.Close() }
