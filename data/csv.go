package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kestrelquant/kestrel/market"
)

// LoadBarsCSV reads one symbol's bar series from a CSV file with
// columns:
//
//	time,open,high,low,close,volume
//
// A header row is allowed. Malformed rows are logged and skipped
// individually; only unreadable files are fatal.
func LoadBarsCSV(path string, log zerolog.Logger) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("data: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []market.Bar
	sawFirst := false
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("data: read %s: %w", path, err)
		}
		line++

		if !sawFirst {
			sawFirst = true
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		bar, err := parseBarRow(row)
		if err != nil {
			log.Warn().Str("file", path).Int("line", line).Err(err).Msg("dropping bar")
			continue
		}
		if err := bar.Validate(); err != nil {
			log.Warn().Str("file", path).Int("line", line).Err(err).Msg("dropping bar")
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// LoadHistoryCSV loads one CSV per symbol and indexes the result.
func LoadHistoryCSV(files map[market.Symbol]string, log zerolog.Logger) (*History, error) {
	series := make(map[market.Symbol][]market.Bar, len(files))
	for sym, path := range files {
		bars, err := LoadBarsCSV(path, log)
		if err != nil {
			return nil, err
		}
		series[sym] = bars
	}
	h, dropped := NewHistory(series)
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("dropped invalid bars while indexing")
	}
	return h, nil
}

func parseBarRow(row []string) (market.Bar, error) {
	if len(row) < 6 {
		return market.Bar{}, fmt.Errorf("need 6 columns, got %d", len(row))
	}

	ts := strings.TrimSpace(row[0])
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad time %q: %w", ts, err)
		}
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("bad value %q in column %d: %w", row[i+1], i+1, err)
		}
		vals[i] = v
	}

	return market.Bar{
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
