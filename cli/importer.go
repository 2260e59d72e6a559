package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/kasboek/currency"
	"github.com/robinvdvleuten/kasboek/telemetry"
)

const (
	numRateFields = 3
	colDate       = 0
	colCurrency   = 1
	colRate       = 2
)

// rateRow is one line of a rate CSV file.
type rateRow struct {
	Date time.Time
	Code string
	Rate decimal.Decimal
}

// readRates reads date,currency,rate rows. A first row starting with
// "date" is a header. Lines starting with # are ignored.
func readRates(r io.Reader) ([]rateRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numRateFields
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rates CSV: %w", err)
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][colDate]), "date") {
		records = records[1:]
	}

	rows := make([]rateRow, 0, len(records))
	for i, rec := range records {
		row, err := unmarshalRate(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func unmarshalRate(record []string) (rateRow, error) {
	date, err := time.Parse(dateFormat, strings.TrimSpace(record[colDate]))
	if err != nil {
		return rateRow{}, fmt.Errorf("date: %w", err)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(record[colRate]))
	if err != nil {
		return rateRow{}, fmt.Errorf("rate %q: %w", record[colRate], err)
	}
	return rateRow{
		Date: date,
		Code: strings.TrimSpace(record[colCurrency]),
		Rate: rate,
	}, nil
}

// importRates stores every rate of the CSV file at path and returns how
// many were written. Nothing is stored when a row is invalid.
func importRates(ctx context.Context, reg *currency.Registry, path string) (int, error) {
	timer := telemetry.StartTimer(ctx, "rate.import")
	defer timer.End()

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	rows, err := readRates(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	currencies := make([]*currency.Currency, len(rows))
	for i, row := range rows {
		cur, err := resolveCurrency(reg, row.Code)
		if err != nil {
			return 0, fmt.Errorf("%s: row %d: %w", path, i+1, err)
		}
		if !row.Rate.IsPositive() {
			return 0, fmt.Errorf("%s: row %d: %w", path, i+1,
				&currency.InvalidRateError{Code: cur.Code, Date: row.Date, Rate: row.Rate.String()})
		}
		currencies[i] = cur
	}

	logger := zerolog.Ctx(ctx)
	written := 0
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if currencies[i] == reg.Reference() {
			logger.Warn().Str("currency", row.Code).Msg("skipping rate of the reference currency")
			continue
		}
		if err := reg.SetRate(row.Date, currencies[i], row.Rate); err != nil {
			return written, err
		}
		written++
	}
	logger.Info().Str("file", path).Int("rates", written).Msg("rates imported")
	return written, nil
}

// watchFile calls onChange after path is written, debounced, until ctx is
// done. Calls never overlap, and watchFile returns only once the last one
// has finished.
func watchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	var (
		mu            sync.Mutex
		inFlight      sync.WaitGroup
		debounceTimer *time.Timer
	)
	defer func() {
		if debounceTimer != nil && debounceTimer.Stop() {
			inFlight.Done()
		}
		_ = watcher.Close()
		inFlight.Wait()
	}()

	reload := func() {
		defer inFlight.Done()
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		onChange()
	}

	// Editors often write files in multiple steps.
	const debounceDelay = 100 * time.Millisecond

	logger := zerolog.Ctx(ctx)
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// Atomic saves replace the file, dropping the watch.
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				_ = watcher.Add(path)
			}

			if debounceTimer != nil && debounceTimer.Stop() {
				inFlight.Done()
			}
			inFlight.Add(1)
			debounceTimer = time.AfterFunc(debounceDelay, reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}
