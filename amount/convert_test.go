package amount

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/kasboek/currency"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestConvert(t *testing.T) {
	r := newRegistry(t)
	usd := mustGet(t, r, "USD")
	cad := mustGet(t, r, "CAD")
	jpy := mustGet(t, r, "JPY")
	assert.NoError(t, r.SetRate(day("2024-01-01"), usd, mustParseDec("1.30")))
	assert.NoError(t, r.SetRate(day("2024-01-01"), jpy, mustParseDec("0.0092")))

	got, err := Convert(New(100, usd), cad, day("2024-01-01"), r)
	assert.NoError(t, err)
	assert.Equal(t, New(130, cad), got)

	got, err = Convert(New(100, usd), usd, day("2024-01-01"), r)
	assert.NoError(t, err)
	assert.Equal(t, New(100, usd), got)

	got, err = Convert(Zero, usd, day("2024-01-01"), r)
	assert.NoError(t, err)
	assert.Equal(t, New(0, usd), got)

	// 100.00 USD is 130.00 CAD, which is 14130 JPY.
	got, err = Convert(New(10000, usd), jpy, day("2024-01-01"), r)
	assert.NoError(t, err)
	assert.Equal(t, New(14130, jpy), got)
}

func TestConvertInverseRecoversValue(t *testing.T) {
	r := newRegistry(t)
	usd := mustGet(t, r, "USD")
	eur := mustGet(t, r, "EUR")
	date := day("2024-05-05")
	assert.NoError(t, r.SetRate(date, usd, mustParseDec("1.3712")))
	assert.NoError(t, r.SetRate(date, eur, mustParseDec("1.4801")))

	for _, val := range []int64{1, 99, 12345, -98765, 100000000} {
		there, err := Convert(New(val, usd), eur, date, r)
		assert.NoError(t, err)
		back, err := Convert(there, usd, date, r)
		assert.NoError(t, err)
		diff := back.Val() - val
		assert.True(t, diff >= -1 && diff <= 1, "%d came back as %d", val, back.Val())
	}
}

func TestConvertRateUnavailable(t *testing.T) {
	r := newRegistry(t)
	bhd := mustGet(t, r, "BHD")
	cad := mustGet(t, r, "CAD")

	_, err := Convert(New(100, bhd), cad, day("2024-01-01"), r)
	assert.IsError(t, err, currency.ErrRateUnavailable)
}
