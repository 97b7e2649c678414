package portfolio

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cartera/internal/rates"
)

// Valuator prices a user's holdings into a single display currency.
type Valuator struct {
	holdings  HoldingsReader
	converter *rates.Converter
	log       *logrus.Logger
}

func NewValuator(h HoldingsReader, conv *rates.Converter, log *logrus.Logger) *Valuator {
	return &Valuator{holdings: h, converter: conv, log: log}
}

// GetSummary values every holding at quantity×price, converts foreign
// positions into displayCurrency and totals the priced ones. The live
// rate is resolved at most once per call and shared across positions.
// A failed rate resolution degrades to exchange_rate_info=null with
// foreign positions left unconverted; it never fails the summary.
func (v *Valuator) GetSummary(ctx context.Context, userID, displayCurrency string) (*Summary, error) {
	if displayCurrency == "" {
		displayCurrency = rates.QuoteCurrency
	}
	holdings, err := v.holdings.ListHoldings(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list holdings")
	}

	needsRate := false
	for _, h := range holdings {
		if h.Currency != displayCurrency {
			needsRate = true
			break
		}
	}

	var rateInfo *rates.RateInfo
	if needsRate {
		info, err := v.converter.PairRate(ctx)
		if err != nil {
			v.log.Warnf("exchange rate unavailable, returning unconverted values: %v", err)
		} else {
			rateInfo = &info
		}
	}

	positions := make([]Position, 0, len(holdings))
	total := decimal.Zero
	excluded := 0
	for _, h := range holdings {
		p := Position{
			AssetID:          h.AssetID,
			Ticker:           h.Ticker,
			Name:             h.Name,
			Category:         h.Category,
			Quantity:         h.Quantity,
			CurrentPrice:     h.CurrentPrice,
			OriginalCurrency: h.Currency,
			DisplayCurrency:  displayCurrency,
			TargetPercentage: h.TargetPercentage,
			PriceUpdatedAt:   h.PriceUpdatedAt,
			PriceStatus:      PriceSet,
		}
		if h.CurrentPrice == nil {
			p.PriceStatus = PriceMissing
			excluded++
			positions = append(positions, p)
			continue
		}

		orig := h.Quantity.Mul(*h.CurrentPrice).Round(2)
		p.OriginalValue = &orig

		display := orig
		if h.Currency != displayCurrency && rateInfo != nil {
			conv, err := v.converter.Apply(orig, h.Currency, displayCurrency, *rateInfo)
			if err != nil {
				v.log.Warnf("cannot convert %s from %s to %s: %v", h.Ticker, h.Currency, displayCurrency, err)
			} else {
				display = conv.Converted.Round(2)
			}
		}
		p.DisplayValue = &display
		total = total.Add(display)
		positions = append(positions, p)
	}

	var info *ExchangeRateInfo
	if rateInfo != nil {
		info = &ExchangeRateInfo{
			UsdToArs:  rateInfo.Rate,
			FetchedAt: rateInfo.FetchedAt,
			IsStale:   rateInfo.IsStale,
		}
	}
	return &Summary{
		TotalValue:       total.StringFixed(2),
		DisplayCurrency:  displayCurrency,
		ExchangeRateInfo: info,
		Positions:        positions,
		ExcludedCount:    excluded,
		total:            total,
	}, nil
}
