package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sqlx.DB {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL is not set; skipping integration tests")
	}
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	b, err := os.ReadFile("../../migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		t.Logf("exec migration: %v", err)
	}
	return db
}

func TestRateStore_FindAbsentReturnsNil(t *testing.T) {
	db := setupDB(t)
	defer db.Close()
	r := New(db, logrus.New())

	ctx := context.Background()
	_, _ = db.ExecContext(ctx, `DELETE FROM exchange_rates WHERE base_currency = 'XXX'`)

	entry, err := r.FindRate(ctx, "XXX", "YYY")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestRateStore_UpsertIsIdempotent(t *testing.T) {
	db := setupDB(t)
	defer db.Close()
	r := New(db, logrus.New())

	ctx := context.Background()
	_, _ = db.ExecContext(ctx, `DELETE FROM exchange_rates WHERE base_currency = 'USD' AND quote_currency = 'TST'`)

	first := decimal.RequireFromString("1000.50")
	t0 := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, r.UpsertRate(ctx, "USD", "TST", first, t0, "dolarapi"))

	second := decimal.RequireFromString("1010.25")
	t1 := t0.Add(time.Minute)
	require.NoError(t, r.UpsertRate(ctx, "USD", "TST", second, t1, "dolarapi"))

	entry, err := r.FindRate(ctx, "USD", "TST")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Rate.Equal(second), "upsert must replace in place")
	assert.True(t, entry.FetchedAt.Equal(t1))

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT count(*) FROM exchange_rates WHERE base_currency = 'USD' AND quote_currency = 'TST'`))
	assert.Equal(t, 1, count, "pair must stay unique")
}

func TestGetSettings_DefaultsWhenMissing(t *testing.T) {
	db := setupDB(t)
	defer db.Close()
	r := New(db, logrus.New())

	th, err := r.GetSettings(context.Background(), "no-such-user")
	require.NoError(t, err)
	assert.True(t, th.DeviationPct.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 7, th.StaleDays)
}

func TestListHoldings_OrderedByTicker(t *testing.T) {
	db := setupDB(t)
	defer db.Close()
	r := New(db, logrus.New())

	ctx := context.Background()
	userID := "holdings-order-user"
	require.NoError(t, r.EnsureUserExists(ctx, userID, "Holdings Order User"))
	_, _ = db.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = $1`, userID)

	for _, ticker := range []string{"ZETA", "ALFA", "MIDL"} {
		_, err := db.ExecContext(ctx, `
			INSERT INTO assets (ticker, name, category, currency, current_price, price_updated_at)
			VALUES ($1, $1, 'stocks', 'ARS', 100, now())
			ON CONFLICT (ticker) DO NOTHING`, ticker)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `
			INSERT INTO holdings (user_id, asset_id, quantity)
			SELECT $1, id, 1 FROM assets WHERE ticker = $2
			ON CONFLICT (user_id, asset_id) DO UPDATE SET quantity = EXCLUDED.quantity`, userID, ticker)
		require.NoError(t, err)
	}

	holdings, err := r.ListHoldings(ctx, userID)
	require.NoError(t, err)
	require.Len(t, holdings, 3)
	assert.Equal(t, "ALFA", holdings[0].Ticker)
	assert.Equal(t, "MIDL", holdings[1].Ticker)
	assert.Equal(t, "ZETA", holdings[2].Ticker)
}
