package rates

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedPair rejects conversions that do not reduce to the live
// pair. Raised before any I/O.
var ErrUnsupportedPair = errors.New("unsupported currency pair")

// Conversion is the result of converting an amount between currencies.
type Conversion struct {
	Converted decimal.Decimal
	Rate      decimal.Decimal
	IsStale   bool
}

// Converter converts amounts between the two supported currencies using
// the cached live rate: base→quote multiplies, quote→base divides.
type Converter struct {
	cache *Cache
	base  string
	quote string
}

func NewConverter(cache *Cache) *Converter {
	return &Converter{cache: cache, base: BaseCurrency, quote: QuoteCurrency}
}

func (cv *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (Conversion, error) {
	if from == to {
		return Conversion{Converted: amount, Rate: decimal.NewFromInt(1)}, nil
	}
	if !cv.supports(from, to) {
		return Conversion{}, ErrUnsupportedPair
	}
	info, err := cv.PairRate(ctx)
	if err != nil {
		return Conversion{}, err
	}
	return cv.Apply(amount, from, to, info)
}

// PairRate resolves the live pair once; callers converting many amounts
// in one request share the result through Apply.
func (cv *Converter) PairRate(ctx context.Context) (RateInfo, error) {
	return cv.cache.GetRate(ctx, cv.base, cv.quote)
}

// Apply converts with an already-resolved rate. Pure, no I/O.
func (cv *Converter) Apply(amount decimal.Decimal, from, to string, info RateInfo) (Conversion, error) {
	switch {
	case from == to:
		return Conversion{Converted: amount, Rate: decimal.NewFromInt(1)}, nil
	case from == cv.base && to == cv.quote:
		return Conversion{Converted: amount.Mul(info.Rate), Rate: info.Rate, IsStale: info.IsStale}, nil
	case from == cv.quote && to == cv.base:
		rec := decimal.NewFromInt(1).Div(info.Rate)
		return Conversion{Converted: amount.Div(info.Rate), Rate: rec, IsStale: info.IsStale}, nil
	}
	return Conversion{}, ErrUnsupportedPair
}

func (cv *Converter) supports(from, to string) bool {
	return (from == cv.base && to == cv.quote) || (from == cv.quote && to == cv.base)
}
