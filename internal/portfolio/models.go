package portfolio

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PriceStatus string

const (
	PriceSet     PriceStatus = "set"
	PriceMissing PriceStatus = "missing"
)

type AlertType string

const (
	AlertStalePrice      AlertType = "stale_price"
	AlertMissingPrice    AlertType = "missing_price"
	AlertRebalanceNeeded AlertType = "rebalance_needed"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Holding is one row of the holdings⋈assets read, ordered by ticker.
type Holding struct {
	AssetID          int64
	Ticker           string
	Name             string
	Category         string
	Currency         string
	Quantity         decimal.Decimal
	CurrentPrice     *decimal.Decimal
	PriceUpdatedAt   *time.Time
	TargetPercentage *decimal.Decimal
}

type HoldingsReader interface {
	ListHoldings(ctx context.Context, userID string) ([]Holding, error)
}

type SettingsReader interface {
	GetSettings(ctx context.Context, userID string) (Thresholds, error)
}

// Position is a valued holding. DisplayValue is denominated in the
// summary's display currency, OriginalValue in the asset's own currency;
// they match only when the currencies do.
type Position struct {
	AssetID          int64            `json:"asset_id"`
	Ticker           string           `json:"ticker"`
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Quantity         decimal.Decimal  `json:"quantity"`
	CurrentPrice     *decimal.Decimal `json:"current_price"`
	OriginalValue    *decimal.Decimal `json:"original_value"`
	OriginalCurrency string           `json:"original_currency"`
	DisplayValue     *decimal.Decimal `json:"display_value"`
	DisplayCurrency  string           `json:"display_currency"`
	TargetPercentage *decimal.Decimal `json:"target_percentage"`
	PriceUpdatedAt   *time.Time       `json:"price_updated_at"`
	PriceStatus      PriceStatus      `json:"price_status"`
}

type ExchangeRateInfo struct {
	UsdToArs  decimal.Decimal `json:"usd_to_ars"`
	FetchedAt time.Time       `json:"fetched_at"`
	IsStale   bool            `json:"is_stale"`
}

// Summary is the priced portfolio. TotalValue is a 2-decimal string so
// binary rounding artifacts never reach the API surface.
type Summary struct {
	TotalValue       string            `json:"total_value"`
	DisplayCurrency  string            `json:"display_currency"`
	ExchangeRateInfo *ExchangeRateInfo `json:"exchange_rate_info"`
	Positions        []Position        `json:"positions"`
	ExcludedCount    int               `json:"excluded_count,omitempty"`

	total decimal.Decimal
}

// Total is the exact decimal behind TotalValue.
func (s *Summary) Total() decimal.Decimal { return s.total }

type Alert struct {
	Type     AlertType              `json:"type"`
	AssetID  int64                  `json:"asset_id,omitempty"`
	Ticker   string                 `json:"ticker"`
	Message  string                 `json:"message"`
	Severity Severity               `json:"severity"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

type Thresholds struct {
	DeviationPct decimal.Decimal
	StaleDays    int
}

// ThresholdOverride takes precedence field-by-field over persisted
// settings; nil fields fall back.
type ThresholdOverride struct {
	DeviationPct *decimal.Decimal
	StaleDays    *int
}

type DashboardPosition struct {
	Position
	ActualPercentage *decimal.Decimal `json:"actual_percentage"`
	Deviation        *decimal.Decimal `json:"deviation"`
}

type Dashboard struct {
	TotalValue string              `json:"total_value"`
	Positions  []DashboardPosition `json:"positions"`
	Alerts     []Alert             `json:"alerts"`
}
