package currency

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS rates (
	date TEXT NOT NULL,
	currency TEXT NOT NULL,
	rate REAL NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_rate ON rates (date, currency);
`

// SQLiteStore is a RateStore backed by a single sqlite table. Dates are
// stored as YYYYMMDD text so lexical order is chronological.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the rate database at path. ":memory:" gives
// a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open rates db: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create rates schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Set(date time.Time, code string, rate decimal.Decimal) error {
	_, err := s.db.Exec(
		"REPLACE INTO rates (date, currency, rate) VALUES (?, ?, ?)",
		dateKey(date), code, rate.InexactFloat64(),
	)
	if err != nil {
		return fmt.Errorf("save rate %s on %s: %w", code, dateKey(date), err)
	}
	return nil
}

func (s *SQLiteStore) Lookup(date time.Time, code string) (decimal.Decimal, bool, error) {
	key := dateKey(date)
	rate, found, err := s.queryRate(
		"SELECT rate FROM rates WHERE currency = ? AND date <= ? ORDER BY date DESC LIMIT 1", code, key)
	if err != nil || found {
		return rate, found, err
	}
	return s.queryRate(
		"SELECT rate FROM rates WHERE currency = ? AND date >= ? ORDER BY date ASC LIMIT 1", code, key)
}

func (s *SQLiteStore) queryRate(query, code, key string) (decimal.Decimal, bool, error) {
	var rate float64
	err := s.db.QueryRow(query, code, key).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("lookup rate %s: %w", code, err)
	}
	return decimal.NewFromFloat(rate), true, nil
}

func (s *SQLiteStore) Range(code string) (time.Time, time.Time, bool, error) {
	var first, last sql.NullString
	err := s.db.QueryRow("SELECT MIN(date), MAX(date) FROM rates WHERE currency = ?", code).Scan(&first, &last)
	if err != nil {
		return time.Time{}, time.Time{}, false, fmt.Errorf("rate range %s: %w", code, err)
	}
	if !first.Valid || !last.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	start, err := parseDateKey(first.String)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	stop, err := parseDateKey(last.String)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	return start, stop, true, nil
}

func (s *SQLiteStore) History(code string) ([]Point, error) {
	rows, err := s.db.Query("SELECT date, rate FROM rates WHERE currency = ? ORDER BY date ASC", code)
	if err != nil {
		return nil, fmt.Errorf("rate history %s: %w", code, err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var key string
		var rate float64
		if err := rows.Scan(&key, &rate); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		date, err := parseDateKey(key)
		if err != nil {
			return nil, err
		}
		points = append(points, Point{Date: date, Rate: decimal.NewFromFloat(rate)})
	}
	return points, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
