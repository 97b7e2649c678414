package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cartera/internal/portfolio"
	"cartera/internal/rates"
)

type Repo struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func New(db *sqlx.DB, log *logrus.Logger) *Repo {
	return &Repo{db: db, log: log}
}

func (r *Repo) FindRate(ctx context.Context, base, quote string) (*rates.StoredRate, error) {
	var row RateRow
	err := r.db.GetContext(ctx, &row,
		`SELECT base_currency, quote_currency, rate, fetched_at, source FROM exchange_rates WHERE base_currency = $1 AND quote_currency = $2`,
		base, quote)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rates.StoredRate{
		Base:      row.BaseCurrency,
		Quote:     row.QuoteCurrency,
		Rate:      row.Rate,
		FetchedAt: row.FetchedAt,
		Source:    row.Source,
	}, nil
}

func (r *Repo) UpsertRate(ctx context.Context, base, quote string, rate decimal.Decimal, fetchedAt time.Time, source string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exchange_rates (base_currency, quote_currency, rate, fetched_at, source) VALUES ($1, $2, $3::numeric, $4, $5)
		 ON CONFLICT (base_currency, quote_currency) DO UPDATE SET rate = EXCLUDED.rate, fetched_at = EXCLUDED.fetched_at, source = EXCLUDED.source`,
		base, quote, rate.String(), fetchedAt, source)
	return err
}

func (r *Repo) ListHoldings(ctx context.Context, userID string) ([]portfolio.Holding, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT a.id AS asset_id, a.ticker, a.name, a.category, a.currency, h.quantity, a.current_price, a.price_updated_at, a.target_percentage
		FROM holdings h
		JOIN assets a ON a.id = h.asset_id
		WHERE h.user_id = $1
		ORDER BY a.ticker ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []portfolio.Holding{}
	for rows.Next() {
		var row HoldingRow
		if err := rows.StructScan(&row); err != nil {
			r.log.Warnf("scan holding failed: %v", err)
			continue
		}
		h := portfolio.Holding{
			AssetID:  row.AssetID,
			Ticker:   row.Ticker,
			Name:     row.Name,
			Category: row.Category,
			Currency: row.Currency,
			Quantity: row.Quantity,
		}
		if row.CurrentPrice.Valid {
			p := row.CurrentPrice.Decimal
			h.CurrentPrice = &p
		}
		if row.PriceUpdatedAt.Valid {
			t := row.PriceUpdatedAt.Time
			h.PriceUpdatedAt = &t
		}
		if row.TargetPercentage.Valid {
			tp := row.TargetPercentage.Decimal
			h.TargetPercentage = &tp
		}
		res = append(res, h)
	}
	return res, nil
}

func (r *Repo) GetSettings(ctx context.Context, userID string) (portfolio.Thresholds, error) {
	var row SettingsRow
	err := r.db.GetContext(ctx, &row,
		`SELECT rebalance_threshold, price_alert_days FROM user_settings WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return portfolio.Thresholds{DeviationPct: decimal.NewFromInt(5), StaleDays: 7}, nil
	}
	if err != nil {
		return portfolio.Thresholds{}, err
	}
	return portfolio.Thresholds{DeviationPct: row.RebalanceThreshold, StaleDays: row.PriceAlertDays}, nil
}

func (r *Repo) EnsureUserExists(ctx context.Context, userID, name string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, userID, name)
	return err
}
