package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	errs "moonex/internal/errors"
	"moonex/internal/logger"
	"moonex/internal/models"
	"moonex/internal/repositories"
	"moonex/internal/repositories/cache"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type service struct {
	repo    repositories.LedgerRepository
	cache   *cache.CacheService
	authz   AuthorizationChecker
	config  Config
	metrics MetricsCollector
	log     *logrus.Entry
	now     func() time.Time
}

// NewService creates a new wallet ledger service. The cache is optional;
// metrics default to a no-op collector.
func NewService(
	repo repositories.LedgerRepository,
	cacheSvc *cache.CacheService,
	authz AuthorizationChecker,
	config Config,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if authz == nil {
		panic("authorization checker is required")
	}

	if config.StartingBalance.IsZero() {
		config.StartingBalance = decimal.NewFromInt(DefaultStartingBalance)
	}
	if config.BonusAmount.IsZero() {
		config.BonusAmount = decimal.NewFromInt(DefaultBonusAmount)
	}
	if config.BonusCooldown == 0 {
		config.BonusCooldown = DefaultBonusCooldown
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		cache:   cacheSvc,
		authz:   authz,
		config:  config,
		metrics: metrics,
		log:     logger.WithComponent("ledger"),
		now:     time.Now,
	}
}

func (s *service) GetOrCreate(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet, err := s.repo.GetOrCreateWallet(ctx, userID, s.config.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create wallet: %w", err)
	}
	s.cacheWallet(ctx, wallet)
	return wallet, nil
}

func (s *service) GetBalance(ctx context.Context, userID uint) (decimal.Decimal, error) {
	key := s.walletKey(userID)
	if s.cache != nil {
		var cached models.Wallet
		if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
			s.metrics.RecordCacheHit(key)
			return cached.BalanceUSD, nil
		}
		s.metrics.RecordCacheMiss(key)
	}

	wallet, err := s.repo.GetWalletByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	s.cacheWallet(ctx, wallet)
	return wallet.BalanceUSD, nil
}

func (s *service) ApplyDelta(ctx context.Context, userID uint, delta decimal.Decimal) (*models.Wallet, error) {
	wallet, err := s.repo.ApplyDelta(ctx, userID, delta)
	if err != nil {
		if errors.Is(err, errs.ErrInsufficientFunds) {
			s.metrics.RecordError("apply_delta", errs.ErrInsufficientFunds.Code)
		}
		return nil, err
	}

	s.invalidateWallet(ctx, userID)
	s.metrics.RecordTransaction("apply_delta", delta)
	s.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"delta":       delta.String(),
		"new_balance": wallet.BalanceUSD.String(),
	}).Debug("balance delta applied")

	return wallet, nil
}

func (s *service) SetBalance(ctx context.Context, actorID, userID uint, balance decimal.Decimal) (*models.Wallet, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if balance.IsNegative() {
		return nil, errs.ErrInvalidInput
	}

	wallet, err := s.repo.SetBalance(ctx, userID, balance)
	if err != nil {
		return nil, err
	}

	s.invalidateWallet(ctx, userID)
	s.log.WithFields(logrus.Fields{
		"actor_id": actorID,
		"user_id":  userID,
		"balance":  balance.String(),
	}).Info("balance overwritten by admin")

	return wallet, nil
}

func (s *service) GrantDailyBonus(ctx context.Context, userID uint) (*BonusGrant, error) {
	now := s.now().UTC()

	wallet, err := s.repo.ClaimBonus(ctx, userID, s.config.BonusAmount, s.config.BonusCooldown, now)
	if err != nil {
		if !errors.Is(err, errs.ErrBonusNotReady) {
			return nil, err
		}
		// Rejected by the cooldown gate; report when the next claim opens.
		current, lookupErr := s.repo.GetWalletByUserID(ctx, userID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		next := now.Add(s.config.BonusCooldown)
		hours := int(math.Ceil(s.config.BonusCooldown.Hours()))
		if current.LastBonusAt != nil {
			next = current.LastBonusAt.Add(s.config.BonusCooldown)
			hours = int(math.Ceil(next.Sub(now).Hours()))
		}
		return &BonusGrant{
			Granted:        false,
			Amount:         s.config.BonusAmount,
			NewBalance:     current.BalanceUSD,
			NextEligibleAt: next,
			HoursUntilNext: hours,
		}, errs.ErrBonusNotReady
	}

	s.invalidateWallet(ctx, userID)
	s.metrics.RecordTransaction("daily_bonus", s.config.BonusAmount)
	s.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"amount":      s.config.BonusAmount.String(),
		"new_balance": wallet.BalanceUSD.String(),
	}).Info("daily bonus granted")

	return &BonusGrant{
		Granted:        true,
		Amount:         s.config.BonusAmount,
		NewBalance:     wallet.BalanceUSD,
		NextEligibleAt: now.Add(s.config.BonusCooldown),
	}, nil
}

func (s *service) DistributeBonus(ctx context.Context, actorID uint) (int64, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return 0, err
	}

	updated, err := s.repo.CreditAllWallets(ctx, s.config.BonusAmount)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"actor_id": actorID,
		"amount":   s.config.BonusAmount.String(),
		"wallets":  updated,
	}).Info("bonus distributed to all wallets")

	return updated, nil
}

func (s *service) ListWallets(ctx context.Context, actorID uint, limit, offset int) ([]models.Wallet, int64, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListWallets(ctx, limit, offset)
}

func (s *service) requireAdmin(ctx context.Context, actorID uint) error {
	ok, err := s.authz.HasRole(ctx, actorID, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}
	if !ok {
		s.metrics.RecordError("admin_op", errs.ErrUnauthorized.Code)
		return errs.ErrUnauthorized
	}
	return nil
}

func (s *service) walletKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", WalletCachePrefix, userID)
}

func (s *service) cacheWallet(ctx context.Context, wallet *models.Wallet) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, s.walletKey(wallet.UserID), wallet, s.config.CacheTTL); err != nil {
		s.log.WithError(err).Warn("failed to cache wallet")
	}
}

func (s *service) invalidateWallet(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.walletKey(userID)); err != nil {
		s.log.WithError(err).Warn("failed to invalidate wallet cache")
	}
}
