package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cartera/internal/rates"
)

var hundred = decimal.NewFromInt(100)

// AlertGenerator layers allocation percentages and threshold-driven
// alerts over the valuator's summary.
type AlertGenerator struct {
	valuator *Valuator
	settings SettingsReader
	log      *logrus.Logger
	now      func() time.Time
}

func NewAlertGenerator(v *Valuator, s SettingsReader, log *logrus.Logger) *AlertGenerator {
	return &AlertGenerator{valuator: v, settings: s, log: log, now: time.Now}
}

// GetDashboard returns the summary enriched with actual/deviation
// percentages per position plus alerts: one stale-rate alert for the
// pair when the cached rate is stale, then per-position missing-price,
// stale-price and rebalance alerts in position order.
func (g *AlertGenerator) GetDashboard(ctx context.Context, userID, displayCurrency string, override *ThresholdOverride) (*Dashboard, error) {
	th, err := g.effectiveThresholds(ctx, userID, override)
	if err != nil {
		return nil, err
	}
	summary, err := g.valuator.GetSummary(ctx, userID, displayCurrency)
	if err != nil {
		return nil, err
	}

	alerts := []Alert{}
	if summary.ExchangeRateInfo != nil && summary.ExchangeRateInfo.IsStale {
		alerts = append(alerts, Alert{
			Type:     AlertStalePrice,
			Ticker:   rates.BaseCurrency + "/" + rates.QuoteCurrency,
			Message:  fmt.Sprintf("exchange rate is stale, last fetched %s", summary.ExchangeRateInfo.FetchedAt.Format(time.RFC3339)),
			Severity: SeverityWarning,
		})
	}

	now := g.now()
	total := summary.Total()
	positions := make([]DashboardPosition, 0, len(summary.Positions))
	for _, p := range summary.Positions {
		dp := DashboardPosition{Position: p}
		if p.PriceStatus == PriceMissing {
			alerts = append(alerts, Alert{
				Type:     AlertMissingPrice,
				AssetID:  p.AssetID,
				Ticker:   p.Ticker,
				Message:  fmt.Sprintf("%s has no price set", p.Ticker),
				Severity: SeverityInfo,
			})
			positions = append(positions, dp)
			continue
		}

		value := decimal.Zero
		if p.DisplayValue != nil {
			value = *p.DisplayValue
		}
		actual := decimal.Zero
		if !total.IsZero() {
			actual = value.Div(total).Mul(hundred).Round(2)
		}
		target := decimal.Zero
		if p.TargetPercentage != nil {
			target = *p.TargetPercentage
		}
		deviation := actual.Sub(target)
		dp.ActualPercentage = &actual
		dp.Deviation = &deviation

		if p.PriceUpdatedAt == nil {
			alerts = append(alerts, Alert{
				Type:     AlertStalePrice,
				AssetID:  p.AssetID,
				Ticker:   p.Ticker,
				Message:  fmt.Sprintf("%s price has no update date", p.Ticker),
				Severity: SeverityWarning,
			})
		} else if daysOld := int(now.Sub(*p.PriceUpdatedAt).Hours() / 24); daysOld >= th.StaleDays {
			alerts = append(alerts, Alert{
				Type:     AlertStalePrice,
				AssetID:  p.AssetID,
				Ticker:   p.Ticker,
				Message:  fmt.Sprintf("%s price is %d days old", p.Ticker, daysOld),
				Severity: SeverityWarning,
				Data:     map[string]interface{}{"days_old": daysOld},
			})
		}

		// Strictly greater than: a deviation exactly at the threshold
		// does not alert.
		if p.TargetPercentage != nil && deviation.Abs().Cmp(th.DeviationPct) > 0 {
			direction := "underweight"
			if deviation.Sign() > 0 {
				direction = "overweight"
			}
			alerts = append(alerts, Alert{
				Type:     AlertRebalanceNeeded,
				AssetID:  p.AssetID,
				Ticker:   p.Ticker,
				Message:  fmt.Sprintf("%s is %s by %s%%", p.Ticker, direction, deviation.Abs().StringFixed(1)),
				Severity: SeverityWarning,
			})
		}
		positions = append(positions, dp)
	}

	return &Dashboard{TotalValue: summary.TotalValue, Positions: positions, Alerts: alerts}, nil
}

func (g *AlertGenerator) effectiveThresholds(ctx context.Context, userID string, override *ThresholdOverride) (Thresholds, error) {
	if override != nil && override.DeviationPct != nil && override.StaleDays != nil {
		return Thresholds{DeviationPct: *override.DeviationPct, StaleDays: *override.StaleDays}, nil
	}
	th, err := g.settings.GetSettings(ctx, userID)
	if err != nil {
		return Thresholds{}, errors.Wrap(err, "load settings")
	}
	if override != nil {
		if override.DeviationPct != nil {
			th.DeviationPct = *override.DeviationPct
		}
		if override.StaleDays != nil {
			th.StaleDays = *override.StaleDays
		}
	}
	return th, nil
}
