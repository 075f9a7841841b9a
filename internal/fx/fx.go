package fx

import (
	"math/rand"
	"sync"
)

// Anchor is the currency the rate table is quoted against.
// Rates are units of QAR per one foreign unit.
const Anchor = "QAR"

// Currency describes one supported wallet currency.
type Currency struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	Region   string `json:"region"`
	Symbol   string `json:"symbol"`
}

// Registry lists the currencies wallets can be opened in.
var Registry = map[string]Currency{
	"QAR": {Code: "QAR", Name: "Qatari Riyal", Decimals: 2, Region: "GCC", Symbol: "ر.ق"},
	"SAR": {Code: "SAR", Name: "Saudi Riyal", Decimals: 2, Region: "GCC", Symbol: "﷼"},
	"AED": {Code: "AED", Name: "UAE Dirham", Decimals: 2, Region: "GCC", Symbol: "د.إ"},
	"KWD": {Code: "KWD", Name: "Kuwaiti Dinar", Decimals: 3, Region: "GCC", Symbol: "د.ك"},
	"OMR": {Code: "OMR", Name: "Omani Rial", Decimals: 3, Region: "GCC", Symbol: "ر.ع."},
	"BHD": {Code: "BHD", Name: "Bahraini Dinar", Decimals: 3, Region: "GCC", Symbol: "د.ب"},
	"USD": {Code: "USD", Name: "US Dollar", Decimals: 2, Region: "US", Symbol: "$"},
	"EUR": {Code: "EUR", Name: "Euro", Decimals: 2, Region: "EU", Symbol: "€"},
	"GBP": {Code: "GBP", Name: "British Pound", Decimals: 2, Region: "UK", Symbol: "£"},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Decimals: 0, Region: "Asia", Symbol: "¥"},
}

// Supported reports whether a wallet can be opened in the given currency.
func Supported(code string) bool {
	_, ok := Registry[code]
	return ok
}

// Rate quotes one foreign currency against the anchor.
type Rate struct {
	Ccy   string  `json:"ccy"`
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
}

// DefaultRates returns a fresh copy of the built-in rate table.
func DefaultRates() []Rate {
	rates := []Rate{
		{Ccy: "USD", Label: "US", Rate: 3.64},
		{Ccy: "EUR", Label: "EU", Rate: 3.95},
		{Ccy: "GBP", Label: "GB", Rate: 4.56},
		{Ccy: "SAR", Label: "SA", Rate: 0.97},
		{Ccy: "AED", Label: "AE", Rate: 1.00},
		{Ccy: "OMR", Label: "OM", Rate: 9.45},
		{Ccy: "KWD", Label: "KW", Rate: 11.75},
		{Ccy: "BHD", Label: "BH", Rate: 9.65},
		{Ccy: "JOD", Label: "JO", Rate: 5.15},
		{Ccy: "EGP", Label: "EG", Rate: 0.075},
		{Ccy: "MAD", Label: "MA", Rate: 0.37},
		{Ccy: "TND", Label: "TN", Rate: 1.17},
		{Ccy: "DZD", Label: "DZ", Rate: 0.027},
		{Ccy: "TRY", Label: "TR", Rate: 0.11},
		{Ccy: "INR", Label: "IN", Rate: 0.044},
		{Ccy: "PKR", Label: "PK", Rate: 0.013},
		{Ccy: "CNY", Label: "CN", Rate: 0.51},
		{Ccy: "JPY", Label: "JP", Rate: 0.025},
		{Ccy: "SGD", Label: "SG", Rate: 2.70},
		{Ccy: "HKD", Label: "HK", Rate: 0.47},
		{Ccy: "CHF", Label: "CH", Rate: 4.10},
		{Ccy: "CAD", Label: "CA", Rate: 2.65},
		{Ccy: "AUD", Label: "AU", Rate: 2.40},
		{Ccy: "NZD", Label: "NZ", Rate: 2.25},
		{Ccy: "RUB", Label: "RU", Rate: 0.04},
		{Ccy: "ZAR", Label: "ZA", Rate: 0.20},
	}
	out := make([]Rate, len(rates))
	copy(out, rates)
	return out
}

// Table holds the session rate table. Rates drift slightly when Jiggle is
// called (demo ticker behavior); lookups are safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	rates []Rate
}

// NewTable creates a table seeded with the default rates.
func NewTable() *Table {
	return &Table{rates: DefaultRates()}
}

// Snapshot returns a copy of the current rates.
func (t *Table) Snapshot() []Rate {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Rate, len(t.rates))
	copy(out, t.rates)
	return out
}

// Lookup returns the anchor rate for a currency, false when unknown.
func (t *Table) Lookup(ccy string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.rates {
		if r.Ccy == ccy {
			return r.Rate, true
		}
	}
	return 0, false
}

// Jiggle nudges every rate by a small random delta, never below zero.
func (t *Table) Jiggle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rates {
		delta := (rand.Float64() - 0.5) * 0.01
		r := t.rates[i].Rate + delta
		if r < 0 {
			r = 0
		}
		t.rates[i].Rate = r
	}
}

// Converter normalizes amounts to the base currency and renders base
// amounts in a display currency. The rate index is built once at
// construction; a Converter is valid for one computation pass.
//
// Conversion degrades instead of failing: when the base currency is not
// the anchor, or a rate is missing or non-positive, the input amount is
// returned unchanged. Multi-hop conversion (foreign base to foreign
// display) is deliberately unsupported.
type Converter struct {
	base    string
	display string
	index   map[string]float64
}

// NewConverter builds a converter over the given rate snapshot.
func NewConverter(base, display string, rates []Rate) *Converter {
	if base == "" {
		base = Anchor
	}
	if display == "" {
		display = base
	}
	index := make(map[string]float64, len(rates))
	for _, r := range rates {
		index[r.Ccy] = r.Rate
	}
	return &Converter{base: base, display: display, index: index}
}

// Base returns the converter's base currency.
func (cv *Converter) Base() string { return cv.base }

// Display returns the converter's display currency.
func (cv *Converter) Display() string { return cv.display }

// ToBase converts an amount in the given currency to the base currency.
func (cv *Converter) ToBase(amount float64, currency string) float64 {
	if amount == 0 {
		return 0
	}
	ccy := currency
	if ccy == "" {
		ccy = cv.base
	}
	if ccy == cv.base && cv.base == Anchor {
		return amount
	}
	if cv.base != Anchor {
		return amount
	}
	rate, ok := cv.index[ccy]
	if !ok || rate <= 0 {
		return amount
	}
	return amount * rate
}

// ToDisplay renders a base-currency amount in the display currency.
func (cv *Converter) ToDisplay(amountBase float64) float64 {
	if amountBase == 0 {
		return 0
	}
	if cv.display == Anchor || cv.display == cv.base {
		return amountBase
	}
	if cv.base != Anchor {
		return amountBase
	}
	rate, ok := cv.index[cv.display]
	if !ok || rate <= 0 {
		return amountBase
	}
	return amountBase / rate
}
