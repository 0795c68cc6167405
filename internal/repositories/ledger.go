package repositories

import (
	"context"
	"time"

	"moonex/internal/models"

	"github.com/shopspring/decimal"
)

// LedgerRepository is the durable-store contract for wallets and trades.
//
// The non-negotiable part of this interface is that ApplyDelta and
// ClaimBonus are single conditional updates: the guard and the write
// happen in one statement at the store, so two concurrent callers can
// never both pass a check against the same stale balance.
type LedgerRepository interface {
	// Wallet operations
	GetOrCreateWallet(ctx context.Context, userID uint, startingBalance decimal.Decimal) (*models.Wallet, error)
	GetWalletByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	ApplyDelta(ctx context.Context, userID uint, delta decimal.Decimal) (*models.Wallet, error)
	SetBalance(ctx context.Context, userID uint, balance decimal.Decimal) (*models.Wallet, error)
	ClaimBonus(ctx context.Context, userID uint, amount decimal.Decimal, cooldown time.Duration, now time.Time) (*models.Wallet, error)
	ListWallets(ctx context.Context, limit, offset int) ([]models.Wallet, int64, error)
	CreditAllWallets(ctx context.Context, amount decimal.Decimal) (int64, error)

	// Trade operations (append-only)
	CreateTrade(ctx context.Context, trade *models.Trade) error
	ListTradesByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Trade, int64, error)
	ListRecentTrades(ctx context.Context, limit int) ([]models.Trade, error)
	Holding(ctx context.Context, userID uint, coinID string) (decimal.Decimal, error)
	Holdings(ctx context.Context, userID uint) ([]models.Holding, error)

	// ExecuteInTransaction runs fn against a repository bound to one
	// database transaction. Any error rolls back every write inside.
	ExecuteInTransaction(fn func(LedgerRepository) error) error
}
