package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cartera/internal/database"
	"cartera/internal/rates"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("POSTGRES_URL")
	if dbURL == "" {
		log.Fatal("POSTGRES_URL is required")
	}

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := database.New(db, logrus.New())

	userID := "demo-user"
	if err := repo.EnsureUserExists(ctx, userID, "Demo User"); err != nil {
		log.Fatalf("create user failed: %v", err)
	}

	fmt.Printf("Seeding demo portfolio for %s...\n", userID)

	now := time.Now().UTC()
	weekAgo := now.AddDate(0, 0, -8)

	type asset struct {
		ticker, name, category, currency string
		price                            string // empty means no price yet
		pricedAt                         *time.Time
		target                           string // empty means no target
	}
	assets := []asset{
		{"AAPL", "Apple Inc.", "stocks", "USD", "232.50", &now, "40"},
		{"GGAL", "Grupo Galicia", "stocks", "ARS", "4265.00", &now, "30"},
		{"SPY", "SPDR S&P 500", "etf", "USD", "601.25", &weekAgo, "30"},
		{"BTC", "Bitcoin", "crypto", "USD", "", nil, ""},
	}

	for _, a := range assets {
		var priceArg, targetArg interface{}
		var pricedAtArg interface{}
		if a.price != "" {
			priceArg = a.price
			pricedAtArg = a.pricedAt
		}
		if a.target != "" {
			targetArg = a.target
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO assets (ticker, name, category, currency, current_price, price_updated_at, target_percentage)
			VALUES ($1, $2, $3, $4, $5::numeric, $6, $7::numeric)
			ON CONFLICT (ticker) DO UPDATE SET current_price = EXCLUDED.current_price, price_updated_at = EXCLUDED.price_updated_at, target_percentage = EXCLUDED.target_percentage`,
			a.ticker, a.name, a.category, a.currency, priceArg, pricedAtArg, targetArg)
		if err != nil {
			fmt.Printf("Warning: could not upsert asset %s: %v\n", a.ticker, err)
		}
	}

	quantities := map[string]string{"AAPL": "10", "GGAL": "100", "SPY": "2.5", "BTC": "0.05"}
	for ticker, qty := range quantities {
		_, err := db.ExecContext(ctx, `
			INSERT INTO holdings (user_id, asset_id, quantity, last_updated)
			SELECT $1, id, $3::numeric, now() FROM assets WHERE ticker = $2
			ON CONFLICT (user_id, asset_id) DO UPDATE SET quantity = EXCLUDED.quantity, last_updated = now()`,
			userID, ticker, qty)
		if err != nil {
			fmt.Printf("Warning: could not upsert holding %s: %v\n", ticker, err)
		}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, rebalance_threshold, price_alert_days) VALUES ($1, 5, 7)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		fmt.Printf("Warning: could not insert settings: %v\n", err)
	}

	seedRate, _ := decimal.NewFromString("1043.50")
	if err := repo.UpsertRate(ctx, rates.BaseCurrency, rates.QuoteCurrency, seedRate, now, "seed"); err != nil {
		fmt.Printf("Warning: could not seed exchange rate: %v\n", err)
	}

	fmt.Println("Successfully seeded demo data!")
	fmt.Printf("Now try: curl localhost:8080/dashboard/%s\n", userID)
}
