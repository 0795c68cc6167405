package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	errs "moonex/internal/errors"
	"moonex/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetOrCreateWallet(ctx context.Context, userID uint, startingBalance decimal.Decimal) (*models.Wallet, error) {
	wallet := models.Wallet{
		UserID:     userID,
		BalanceUSD: startingBalance,
	}
	// Create-if-absent: the unique index on user_id arbitrates concurrent
	// first access, losers fall through to the fetch below.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&wallet).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	return r.GetWalletByUserID(ctx, userID)
}

func (r *ledgerRepository) GetWalletByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// ApplyDelta adds delta to the balance, conditioned on the result staying
// non-negative. Guard and write are one UPDATE, so the check can never
// run against a balance another caller has since changed.
func (r *ledgerRepository) ApplyDelta(ctx context.Context, userID uint, delta decimal.Decimal) (*models.Wallet, error) {
	res := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("user_id = ? AND balance_usd + ? >= 0", userID, delta).
		Updates(map[string]interface{}{
			"balance_usd": gorm.Expr("balance_usd + ?", delta),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to apply balance delta: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing wallet from a guard rejection.
		if _, err := r.GetWalletByUserID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, errs.ErrInsufficientFunds
	}
	return r.GetWalletByUserID(ctx, userID)
}

func (r *ledgerRepository) SetBalance(ctx context.Context, userID uint, balance decimal.Decimal) (*models.Wallet, error) {
	res := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance_usd": balance,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to set balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errs.ErrWalletNotFound
	}
	return r.GetWalletByUserID(ctx, userID)
}

// ClaimBonus credits the bonus and stamps last_bonus_at in one
// conditional UPDATE, so concurrent claims at the same instant cannot
// both pass the cooldown gate.
func (r *ledgerRepository) ClaimBonus(ctx context.Context, userID uint, amount decimal.Decimal, cooldown time.Duration, now time.Time) (*models.Wallet, error) {
	cutoff := now.Add(-cooldown)
	res := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("user_id = ? AND (last_bonus_at IS NULL OR last_bonus_at <= ?)", userID, cutoff).
		Updates(map[string]interface{}{
			"balance_usd":   gorm.Expr("balance_usd + ?", amount),
			"last_bonus_at": now,
			"updated_at":    now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to claim bonus: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetWalletByUserID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, errs.ErrBonusNotReady
	}
	return r.GetWalletByUserID(ctx, userID)
}

func (r *ledgerRepository) ListWallets(ctx context.Context, limit, offset int) ([]models.Wallet, int64, error) {
	var wallets []models.Wallet
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Wallet{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wallets: %w", err)
	}
	err := r.db.WithContext(ctx).
		Order("balance_usd DESC").
		Limit(limit).Offset(offset).
		Find(&wallets).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, total, nil
}

func (r *ledgerRepository) CreditAllWallets(ctx context.Context, amount decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("1 = 1").
		Updates(map[string]interface{}{
			"balance_usd": gorm.Expr("balance_usd + ?", amount),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to credit wallets: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ledgerRepository) CreateTrade(ctx context.Context, trade *models.Trade) error {
	if err := r.db.WithContext(ctx).Create(trade).Error; err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListTradesByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Trade, int64, error) {
	var trades []models.Trade
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Trade{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trades: %w", err)
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&trades).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trades: %w", err)
	}
	return trades, total, nil
}

func (r *ledgerRepository) ListRecentTrades(ctx context.Context, limit int) ([]models.Trade, error) {
	var trades []models.Trade
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&trades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent trades: %w", err)
	}
	return trades, nil
}

func (r *ledgerRepository) Holding(ctx context.Context, userID uint, coinID string) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Trade{}).
		Select("COALESCE(SUM(CASE WHEN trade_type = ? THEN quantity ELSE -quantity END), 0)", models.TradeTypeBuy).
		Where("user_id = ? AND coin_id = ?", userID, coinID).
		Scan(&qty).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute holding: %w", err)
	}
	return qty, nil
}

func (r *ledgerRepository) Holdings(ctx context.Context, userID uint) ([]models.Holding, error) {
	var holdings []models.Holding
	err := r.db.WithContext(ctx).Model(&models.Trade{}).
		Select("coin_id, coin_symbol, coin_name, COALESCE(SUM(CASE WHEN trade_type = ? THEN quantity ELSE -quantity END), 0) AS quantity", models.TradeTypeBuy).
		Where("user_id = ?", userID).
		Group("coin_id, coin_symbol, coin_name").
		Scan(&holdings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute holdings: %w", err)
	}
	return holdings, nil
}

func (r *ledgerRepository) ExecuteInTransaction(fn func(LedgerRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}
