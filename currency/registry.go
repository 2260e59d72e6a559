package currency

import (
	"fmt"
	"sort"
	"strings"
	"time"

	money "github.com/Rhymond/go-money"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultReference is the currency rates are expressed in unless
// WithReference says otherwise.
const DefaultReference = "CAD"

var one = decimal.NewFromInt(1)

// Registry maps codes to currencies and resolves exchange rates through a
// RateStore. It is not safe for concurrent use.
type Registry struct {
	store     RateStore
	reference string
	byCode    map[string]*Currency
	values    *cache.Cache
	logger    zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithReference sets the currency stored rates are expressed in.
func WithReference(code string) Option {
	return func(r *Registry) {
		r.reference = strings.ToUpper(strings.TrimSpace(code))
	}
}

// WithLogger sets the logger used for rate writes and lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a registry reading and writing rates through store.
// A nil store gets an in-memory one. USD, EUR and CAD are always registered.
func NewRegistry(store RateStore, opts ...Option) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}
	r := &Registry{
		store:     store,
		reference: DefaultReference,
		byCode:    make(map[string]*Currency),
		values:    cache.New(cache.NoExpiration, 0),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, c := range builtins(r.reference) {
		r.byCode[c.Code] = &c
	}
	if _, ok := r.byCode[r.reference]; !ok {
		if _, err := r.RegisterISO(r.reference); err != nil {
			r.byCode[r.reference] = &Currency{Code: r.reference, Exponent: 2}
		}
	}

	r.logger.Debug().Str("reference", r.reference).Msg("currency registry opened")
	return r
}

// Reference returns the currency stored rates are expressed in.
func (r *Registry) Reference() *Currency {
	return r.byCode[r.reference]
}

// Register adds a currency. Registering a code twice returns the instance
// from the first registration.
func (r *Registry) Register(def Currency) (*Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(def.Code))
	if existing, ok := r.byCode[code]; ok {
		return existing, nil
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}
	if def.Exponent < 0 || def.Exponent > MaxExponent {
		return nil, &InvalidCurrencyError{Code: code, Reason: fmt.Sprintf("exponent must be between 0 and %d", MaxExponent)}
	}

	c := def
	c.Code = code
	if !c.StartDate.IsZero() {
		c.StartDate = day(c.StartDate)
	}
	if !c.StopDate.IsZero() {
		c.StopDate = day(c.StopDate)
	}
	r.byCode[code] = &c
	r.logger.Debug().Str("currency", code).Int("exponent", c.Exponent).Msg("currency registered")
	return &c, nil
}

// RegisterISO registers an ISO 4217 currency using its standard exponent.
func (r *Registry) RegisterISO(code string) (*Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if existing, ok := r.byCode[code]; ok {
		return existing, nil
	}
	exponent, ok := ISOExponent(code)
	if !ok {
		return nil, &UnsupportedCurrencyError{Code: code}
	}
	return r.Register(Currency{Code: code, Exponent: exponent})
}

// ISOExponent returns the ISO 4217 minor unit digits of code.
func ISOExponent(code string) (int, bool) {
	iso := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if iso == nil {
		return 0, false
	}
	return iso.Fraction, true
}

func validateCode(code string) error {
	if code == "" || len(code) > MaxCodeLength {
		return &InvalidCurrencyError{Code: code, Reason: fmt.Sprintf("code must have 1 to %d letters", MaxCodeLength)}
	}
	for _, ch := range code {
		if ch < 'A' || ch > 'Z' {
			return &InvalidCurrencyError{Code: code, Reason: "code must only contain letters"}
		}
	}
	return nil
}

// Get returns the currency registered under code, ignoring case.
func (r *Registry) Get(code string) (*Currency, bool) {
	c, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Lookup is Get returning an UnsupportedCurrencyError for unknown codes.
func (r *Registry) Lookup(code string) (*Currency, error) {
	if c, ok := r.Get(code); ok {
		return c, nil
	}
	return nil, &UnsupportedCurrencyError{Code: strings.ToUpper(strings.TrimSpace(code))}
}

// Codes returns every registered code in alphabetical order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.byCode))
	for code := range r.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// SetRate stores the value of one unit of c in the reference currency.
func (r *Registry) SetRate(date time.Time, c *Currency, value decimal.Decimal) error {
	if !value.IsPositive() {
		return &InvalidRateError{Code: c.Code, Date: date, Rate: value.String()}
	}
	if err := r.store.Set(day(date), c.Code, value); err != nil {
		return err
	}
	r.values.Flush()
	r.logger.Debug().Str("currency", c.Code).Str("date", date.Format("2006-01-02")).Stringer("rate", value).Msg("rate saved")
	return nil
}

// ReferenceValue returns the value of one unit of c in the reference
// currency at date.
func (r *Registry) ReferenceValue(date time.Time, c *Currency) (decimal.Decimal, error) {
	if c.Code == r.reference {
		return one, nil
	}
	date = day(date)
	if !c.StartDate.IsZero() && date.Before(c.StartDate) {
		return c.StartRate, nil
	}
	if !c.StopDate.IsZero() && date.After(c.StopDate) {
		return c.LatestRate, nil
	}

	key := c.Code + ":" + dateKey(date)
	if v, ok := r.values.Get(key); ok {
		return v.(decimal.Decimal), nil
	}
	value, found, err := r.store.Lookup(date, c.Code)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, &RateUnavailableError{Code: c.Code, Date: date}
	}
	r.values.Set(key, value, cache.NoExpiration)
	return value, nil
}

// Rate returns how many units of to one unit of from is worth at date.
func (r *Registry) Rate(date time.Time, from, to *Currency) (decimal.Decimal, error) {
	if from == to || from.Code == to.Code {
		return one, nil
	}
	fromValue, err := r.ReferenceValue(date, from)
	if err != nil {
		return decimal.Zero, err
	}
	toValue, err := r.ReferenceValue(date, to)
	if err != nil {
		return decimal.Zero, err
	}
	return fromValue.Div(toValue), nil
}

// DateRange returns the first and last dates with a stored rate for c.
func (r *Registry) DateRange(c *Currency) (first, last time.Time, found bool, err error) {
	return r.store.Range(c.Code)
}

// History returns every stored rate for c in date order.
func (r *Registry) History(c *Currency) ([]Point, error) {
	return r.store.History(c.Code)
}

// Close releases the rate store.
func (r *Registry) Close() error {
	r.values.Flush()
	r.logger.Debug().Msg("currency registry closed")
	return r.store.Close()
}
