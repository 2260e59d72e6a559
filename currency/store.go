package currency

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// RateStore persists reference values per (date, currency). Writes are
// upserts keyed by (date, code).
type RateStore interface {
	// Lookup returns the rate stored at the closest date on or before date,
	// else the closest date after it. found is false when the currency has
	// no stored rate at all.
	Lookup(date time.Time, code string) (rate decimal.Decimal, found bool, err error)
	Set(date time.Time, code string, rate decimal.Decimal) error
	// Range returns the first and last stored dates for code.
	Range(code string) (first, last time.Time, found bool, err error)
	History(code string) ([]Point, error)
	Close() error
}

// MemoryStore is a RateStore keeping a sorted series per currency in memory.
//
// Time complexity:
//   - Set: O(log n) search + O(n) insertion
//   - Lookup: O(log n)
type MemoryStore struct {
	series map[string][]Point
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{series: make(map[string][]Point)}
}

func comparePointDate(p Point, date time.Time) int {
	return p.Date.Compare(date)
}

func (s *MemoryStore) Set(date time.Time, code string, rate decimal.Decimal) error {
	date = day(date)
	points := s.series[code]
	i, found := slices.BinarySearchFunc(points, date, comparePointDate)
	if found {
		points[i].Rate = rate
		return nil
	}
	s.series[code] = slices.Insert(points, i, Point{Date: date, Rate: rate})
	return nil
}

func (s *MemoryStore) Lookup(date time.Time, code string) (decimal.Decimal, bool, error) {
	points := s.series[code]
	if len(points) == 0 {
		return decimal.Zero, false, nil
	}
	i, found := slices.BinarySearchFunc(points, day(date), comparePointDate)
	switch {
	case found:
		return points[i].Rate, true, nil
	case i > 0:
		return points[i-1].Rate, true, nil
	default:
		// Every stored date is after the target.
		return points[0].Rate, true, nil
	}
}

func (s *MemoryStore) Range(code string) (time.Time, time.Time, bool, error) {
	points := s.series[code]
	if len(points) == 0 {
		return time.Time{}, time.Time{}, false, nil
	}
	return points[0].Date, points[len(points)-1].Date, true, nil
}

func (s *MemoryStore) History(code string) ([]Point, error) {
	return slices.Clone(s.series[code]), nil
}

func (s *MemoryStore) Close() error {
	return nil
}
