package currency

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry(nil)
	defer r.Close()

	assert.Equal(t, []string{"CAD", "EUR", "USD"}, r.Codes())
	assert.Equal(t, "CAD", r.Reference().Code)

	usd, ok := r.Get("usd")
	assert.True(t, ok)
	assert.Equal(t, 2, usd.Exponent)
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry(nil)

	bhd, err := r.Register(Currency{Code: "bhd", Exponent: 3})
	assert.NoError(t, err)
	assert.Equal(t, "BHD", bhd.Code)

	again, err := r.Register(Currency{Code: "BHD", Exponent: 0})
	assert.NoError(t, err)
	assert.True(t, again == bhd)
	assert.Equal(t, 3, again.Exponent)

	tests := []struct {
		name string
		def  Currency
	}{
		{"empty code", Currency{Code: ""}},
		{"code too long", Currency{Code: "ABCDE"}},
		{"digits", Currency{Code: "AB1"}},
		{"negative exponent", Currency{Code: "NEG", Exponent: -1}},
		{"exponent too large", Currency{Code: "BIG", Exponent: 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Register(tt.def)
			var invalid *InvalidCurrencyError
			assert.True(t, errors.As(err, &invalid), "got %v", err)
		})
	}
}

func TestRegistryRegisterISO(t *testing.T) {
	r := NewRegistry(nil)

	jpy, err := r.RegisterISO("JPY")
	assert.NoError(t, err)
	assert.Equal(t, 0, jpy.Exponent)

	tnd, err := r.RegisterISO("tnd")
	assert.NoError(t, err)
	assert.Equal(t, 3, tnd.Exponent)

	_, err = r.RegisterISO("ZZZ")
	assert.IsError(t, err, ErrUnsupportedCurrency)
}

func TestRegistryLookupUnknown(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Lookup("xyz")
	assert.IsError(t, err, ErrUnsupportedCurrency)
	assert.EqualError(t, err, `unsupported currency "XYZ"`)
}

func TestRegistryRate(t *testing.T) {
	r := NewRegistry(nil)
	usd, _ := r.Get("USD")
	eur, _ := r.Get("EUR")
	cad, _ := r.Get("CAD")

	assert.NoError(t, r.SetRate(date("2024-01-01"), usd, dec("1.30")))
	assert.NoError(t, r.SetRate(date("2024-01-01"), eur, dec("1.50")))

	rate, err := r.Rate(date("2024-01-01"), usd, cad)
	assert.NoError(t, err)
	assert.True(t, dec("1.3").Equal(rate))

	rate, err = r.Rate(date("2024-01-01"), cad, usd)
	assert.NoError(t, err)
	assert.Equal(t, "0.77", rate.StringFixed(2))

	rate, err = r.Rate(date("2024-03-01"), eur, usd)
	assert.NoError(t, err)
	assert.Equal(t, "1.1538", rate.StringFixed(4))

	rate, err = r.Rate(date("2024-03-01"), usd, usd)
	assert.NoError(t, err)
	assert.True(t, one.Equal(rate))
}

func TestRegistryBoundaryRates(t *testing.T) {
	r := NewRegistry(nil)
	usd, _ := r.Get("USD")
	cad, _ := r.Get("CAD")

	rate, err := r.Rate(date("1990-05-05"), usd, cad)
	assert.NoError(t, err)
	assert.True(t, dec("1.425").Equal(rate))

	stopped, err := r.Register(Currency{
		Code:       "DEM",
		Exponent:   2,
		StopDate:   date("2001-12-31"),
		LatestRate: dec("0.75"),
	})
	assert.NoError(t, err)
	rate, err = r.Rate(date("2010-01-01"), stopped, cad)
	assert.NoError(t, err)
	assert.True(t, dec("0.75").Equal(rate))
}

func TestRegistryRateUnavailable(t *testing.T) {
	r := NewRegistry(nil)
	usd, _ := r.Get("USD")
	cad, _ := r.Get("CAD")

	_, err := r.Rate(date("2024-01-01"), usd, cad)
	assert.IsError(t, err, ErrRateUnavailable)
	var unavailable *RateUnavailableError
	assert.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "USD", unavailable.Code)
}

func TestRegistrySetRateFlushesCache(t *testing.T) {
	r := NewRegistry(nil)
	usd, _ := r.Get("USD")

	assert.NoError(t, r.SetRate(date("2024-01-01"), usd, dec("1.30")))
	value, err := r.ReferenceValue(date("2024-02-01"), usd)
	assert.NoError(t, err)
	assert.True(t, dec("1.3").Equal(value))

	assert.NoError(t, r.SetRate(date("2024-01-15"), usd, dec("1.40")))
	value, err = r.ReferenceValue(date("2024-02-01"), usd)
	assert.NoError(t, err)
	assert.True(t, dec("1.4").Equal(value))
}

func TestRegistrySetRateRejectsNonPositive(t *testing.T) {
	r := NewRegistry(nil)
	usd, _ := r.Get("USD")

	var invalid *InvalidRateError
	err := r.SetRate(date("2024-01-01"), usd, dec("0"))
	assert.True(t, errors.As(err, &invalid))
	err = r.SetRate(date("2024-01-01"), usd, dec("-1"))
	assert.True(t, errors.As(err, &invalid))
}

func TestRegistryCustomReference(t *testing.T) {
	r := NewRegistry(nil, WithReference("eur"))
	assert.Equal(t, "EUR", r.Reference().Code)

	usd, _ := r.Get("USD")
	// Boundary rates of the built-ins are expressed in CAD and do not apply.
	_, err := r.ReferenceValue(date("1990-01-01"), usd)
	assert.IsError(t, err, ErrRateUnavailable)

	r = NewRegistry(nil, WithReference("GBP"))
	assert.Equal(t, "GBP", r.Reference().Code)
	assert.Equal(t, 2, r.Reference().Exponent)
}
