package marketdata

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one coin's entry in the provider's simple-price payload.
type PricePoint struct {
	USD       decimal.Decimal `json:"usd"`
	Change24h decimal.Decimal `json:"usd_24h_change"`
}

// Quote is the oracle's view of a coin price. Stale means the last
// refresh failed and the value is the most recent successful fetch.
type Quote struct {
	CoinID       string          `json:"coin_id"`
	USD          decimal.Decimal `json:"usd"`
	ChangePct24h decimal.Decimal `json:"change_pct_24h"`
	AsOf         time.Time       `json:"as_of"`
	Stale        bool            `json:"stale"`
}

// PriceFetcher is the upstream market-data capability.
type PriceFetcher interface {
	SimplePrice(ctx context.Context, ids []string) (map[string]PricePoint, error)
}
