package settlement

import (
	"context"

	"moonex/internal/models"

	"github.com/shopspring/decimal"
)

// Service validates and settles paper trades against the wallet ledger.
type Service interface {
	Execute(ctx context.Context, userID uint, req Request) (*models.Trade, error)
	History(ctx context.Context, userID uint, limit, offset int) ([]models.Trade, int64, error)
	Holdings(ctx context.Context, userID uint) ([]models.Holding, error)
	Holding(ctx context.Context, userID uint, coinID string) (decimal.Decimal, error)

	// RecentTrades lists the newest trades across all users (admin only).
	RecentTrades(ctx context.Context, actorID uint, limit int) ([]models.Trade, error)
}

// AuthorizationChecker gates the admin-only operations.
type AuthorizationChecker interface {
	HasRole(ctx context.Context, userID uint, role string) (bool, error)
}

// Request describes an order to settle. PriceUSD is the reference price
// at the moment of submission; settlement never re-fetches it.
type Request struct {
	CoinID    string          `json:"coin_id"`
	TradeType string          `json:"trade_type"`
	Quantity  decimal.Decimal `json:"quantity"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
}
