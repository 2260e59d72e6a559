package currency

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func date(s string) time.Time {
	return mustDate(s)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func storesUnderTest(t *testing.T) map[string]RateStore {
	t.Helper()
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "rates.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]RateStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStoreLookup(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, store.Set(date("2024-01-10"), "USD", dec("1.30")))
			assert.NoError(t, store.Set(date("2024-01-20"), "USD", dec("1.35")))
			assert.NoError(t, store.Set(date("2024-01-15"), "EUR", dec("1.45")))

			tests := []struct {
				name string
				date string
				code string
				want string
				ok   bool
			}{
				{"exact", "2024-01-10", "USD", "1.3", true},
				{"closest earlier", "2024-01-15", "USD", "1.3", true},
				{"after last", "2024-03-01", "USD", "1.35", true},
				{"before first falls forward", "2023-12-01", "USD", "1.3", true},
				{"other currency", "2024-01-01", "EUR", "1.45", true},
				{"unknown currency", "2024-01-01", "GBP", "0", false},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					rate, found, err := store.Lookup(date(tt.date), tt.code)
					assert.NoError(t, err)
					assert.Equal(t, tt.ok, found)
					if found {
						assert.True(t, dec(tt.want).Equal(rate), "got %s", rate)
					}
				})
			}
		})
	}
}

func TestStoreSetIsUpsert(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, store.Set(date("2024-01-10"), "USD", dec("1.30")))
			assert.NoError(t, store.Set(date("2024-01-10"), "USD", dec("1.40")))

			points, err := store.History("USD")
			assert.NoError(t, err)
			assert.Equal(t, 1, len(points))
			assert.True(t, dec("1.4").Equal(points[0].Rate))
		})
	}
}

func TestStoreRange(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, _, found, err := store.Range("USD")
			assert.NoError(t, err)
			assert.False(t, found)

			assert.NoError(t, store.Set(date("2024-02-01"), "USD", dec("1.3")))
			assert.NoError(t, store.Set(date("2023-06-30"), "USD", dec("1.2")))
			first, last, found, err := store.Range("USD")
			assert.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, date("2023-06-30"), first)
			assert.Equal(t, date("2024-02-01"), last)
		})
	}
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.db")
	store, err := OpenSQLite(path)
	assert.NoError(t, err)
	assert.NoError(t, store.Set(date("2024-01-01"), "USD", dec("1.3")))
	assert.NoError(t, store.Close())

	store, err = OpenSQLite(path)
	assert.NoError(t, err)
	defer store.Close()
	rate, found, err := store.Lookup(date("2024-06-01"), "USD")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.True(t, dec("1.3").Equal(rate))
}
