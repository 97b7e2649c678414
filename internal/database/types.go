package database

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type RateRow struct {
	BaseCurrency  string          `db:"base_currency"`
	QuoteCurrency string          `db:"quote_currency"`
	Rate          decimal.Decimal `db:"rate"`
	FetchedAt     time.Time       `db:"fetched_at"`
	Source        string          `db:"source"`
}

type HoldingRow struct {
	AssetID          int64               `db:"asset_id"`
	Ticker           string              `db:"ticker"`
	Name             string              `db:"name"`
	Category         string              `db:"category"`
	Currency         string              `db:"currency"`
	Quantity         decimal.Decimal     `db:"quantity"`
	CurrentPrice     decimal.NullDecimal `db:"current_price"`
	PriceUpdatedAt   sql.NullTime        `db:"price_updated_at"`
	TargetPercentage decimal.NullDecimal `db:"target_percentage"`
}

type SettingsRow struct {
	RebalanceThreshold decimal.Decimal `db:"rebalance_threshold"`
	PriceAlertDays     int             `db:"price_alert_days"`
}
