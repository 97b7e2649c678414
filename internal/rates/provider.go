package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const DolarAPISource = "dolarapi"

// Provider fetches the current quote-per-base rate for the live pair
// from an external source.
type Provider interface {
	FetchRate(ctx context.Context) (decimal.Decimal, string, error)
}

// DolarAPIClient reads the sell price from a public dólar rate aggregator.
// The payload carries several fields; only "venta" is consumed.
type DolarAPIClient struct {
	url    string
	client *http.Client
}

func NewDolarAPIClient(url string, timeout time.Duration) *DolarAPIClient {
	return &DolarAPIClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type dolarResponse struct {
	Venta decimal.Decimal `json:"venta"`
}

func (c *DolarAPIClient) FetchRate(ctx context.Context) (decimal.Decimal, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return decimal.Zero, "", errors.Wrap(err, "build rate request")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, "", errors.Wrap(err, "rate provider request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Zero, "", errors.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var body dolarResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, "", errors.Wrap(err, "decode rate response")
	}
	if !body.Venta.IsPositive() {
		return decimal.Zero, "", errors.Errorf("rate provider returned non-positive rate %s", body.Venta)
	}
	return body.Venta, DolarAPISource, nil
}
