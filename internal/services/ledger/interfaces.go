package ledger

import (
	"context"

	"moonex/internal/models"

	"github.com/shopspring/decimal"
)

// Service is the wallet ledger interface.
type Service interface {
	// Core wallet operations
	GetOrCreate(ctx context.Context, userID uint) (*models.Wallet, error)
	GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error)
	ApplyDelta(ctx context.Context, userID uint, delta decimal.Decimal) (*models.Wallet, error)

	// Bonus
	GrantDailyBonus(ctx context.Context, userID uint) (*BonusGrant, error)

	// Admin operations, gated on the authorization checker
	SetBalance(ctx context.Context, actorID, userID uint, balance decimal.Decimal) (*models.Wallet, error)
	DistributeBonus(ctx context.Context, actorID uint) (int64, error)
	ListWallets(ctx context.Context, actorID uint, limit, offset int) ([]models.Wallet, int64, error)
}

// AuthorizationChecker is the capability consumed by admin-only
// operations. Keeping it an interface lets authorization policy change
// without touching ledger logic.
type AuthorizationChecker interface {
	HasRole(ctx context.Context, userID uint, role string) (bool, error)
}
