package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	errs "moonex/internal/errors"
	"moonex/internal/models"
	"moonex/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedgerRepo is an in-memory LedgerRepository that honors the same
// conditional-update contract as the real store: the guard and the write
// happen under one lock, so concurrent callers can never both pass a
// check against the same stale balance.
type fakeLedgerRepo struct {
	mu      sync.Mutex
	wallets map[uint]*models.Wallet
	trades  []models.Trade
	nextID  uint
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{wallets: make(map[uint]*models.Wallet), nextID: 1}
}

func (f *fakeLedgerRepo) GetOrCreateWallet(ctx context.Context, userID uint, startingBalance decimal.Decimal) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.wallets[userID]; ok {
		cp := *w
		return &cp, nil
	}
	w := &models.Wallet{ID: f.nextID, UserID: userID, BalanceUSD: startingBalance}
	f.nextID++
	f.wallets[userID] = w
	cp := *w
	return &cp, nil
}

func (f *fakeLedgerRepo) GetWalletByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		return nil, errs.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeLedgerRepo) ApplyDelta(ctx context.Context, userID uint, delta decimal.Decimal) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		return nil, errs.ErrWalletNotFound
	}
	next := w.BalanceUSD.Add(delta)
	if next.IsNegative() {
		return nil, errs.ErrInsufficientFunds
	}
	w.BalanceUSD = next
	cp := *w
	return &cp, nil
}

func (f *fakeLedgerRepo) SetBalance(ctx context.Context, userID uint, balance decimal.Decimal) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		return nil, errs.ErrWalletNotFound
	}
	w.BalanceUSD = balance
	cp := *w
	return &cp, nil
}

func (f *fakeLedgerRepo) ClaimBonus(ctx context.Context, userID uint, amount decimal.Decimal, cooldown time.Duration, now time.Time) (*models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		return nil, errs.ErrWalletNotFound
	}
	if w.LastBonusAt != nil && w.LastBonusAt.After(now.Add(-cooldown)) {
		return nil, errs.ErrBonusNotReady
	}
	w.BalanceUSD = w.BalanceUSD.Add(amount)
	stamp := now
	w.LastBonusAt = &stamp
	cp := *w
	return &cp, nil
}

func (f *fakeLedgerRepo) ListWallets(ctx context.Context, limit, offset int) ([]models.Wallet, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Wallet, 0, len(f.wallets))
	for _, w := range f.wallets {
		out = append(out, *w)
	}
	return out, int64(len(f.wallets)), nil
}

func (f *fakeLedgerRepo) CreditAllWallets(ctx context.Context, amount decimal.Decimal) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wallets {
		w.BalanceUSD = w.BalanceUSD.Add(amount)
	}
	return int64(len(f.wallets)), nil
}

func (f *fakeLedgerRepo) CreateTrade(ctx context.Context, trade *models.Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades = append(f.trades, *trade)
	return nil
}

func (f *fakeLedgerRepo) ListTradesByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Trade, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Trade, 0)
	for _, t := range f.trades {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeLedgerRepo) ListRecentTrades(ctx context.Context, limit int) ([]models.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Trade(nil), f.trades...), nil
}

func (f *fakeLedgerRepo) Holding(ctx context.Context, userID uint, coinID string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	for _, t := range f.trades {
		if t.UserID != userID || t.CoinID != coinID {
			continue
		}
		if t.TradeType == models.TradeTypeBuy {
			total = total.Add(t.Quantity)
		} else {
			total = total.Sub(t.Quantity)
		}
	}
	return total, nil
}

func (f *fakeLedgerRepo) Holdings(ctx context.Context, userID uint) ([]models.Holding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byCoin := make(map[string]*models.Holding)
	order := make([]string, 0)
	for _, t := range f.trades {
		if t.UserID != userID {
			continue
		}
		h, ok := byCoin[t.CoinID]
		if !ok {
			h = &models.Holding{CoinID: t.CoinID, CoinSymbol: t.CoinSymbol, CoinName: t.CoinName}
			byCoin[t.CoinID] = h
			order = append(order, t.CoinID)
		}
		if t.TradeType == models.TradeTypeBuy {
			h.Quantity = h.Quantity.Add(t.Quantity)
		} else {
			h.Quantity = h.Quantity.Sub(t.Quantity)
		}
	}
	out := make([]models.Holding, 0, len(order))
	for _, id := range order {
		out = append(out, *byCoin[id])
	}
	return out, nil
}

// ExecuteInTransaction snapshots state and restores it when fn fails,
// mirroring a rolled-back database transaction.
func (f *fakeLedgerRepo) ExecuteInTransaction(fn func(repositories.LedgerRepository) error) error {
	f.mu.Lock()
	walletSnap := make(map[uint]*models.Wallet, len(f.wallets))
	for id, w := range f.wallets {
		cp := *w
		walletSnap[id] = &cp
	}
	tradeSnap := append([]models.Trade(nil), f.trades...)
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.wallets = walletSnap
		f.trades = tradeSnap
		f.mu.Unlock()
		return err
	}
	return nil
}

// fakeAuthz grants the admin role to a fixed set of users.
type fakeAuthz struct {
	admins map[uint]bool
}

func (f *fakeAuthz) HasRole(ctx context.Context, userID uint, role string) (bool, error) {
	if role != models.RoleAdmin {
		return false, nil
	}
	return f.admins[userID], nil
}

func newTestService(repo repositories.LedgerRepository, admins ...uint) Service {
	authz := &fakeAuthz{admins: make(map[uint]bool)}
	for _, id := range admins {
		authz.admins[id] = true
	}
	return NewService(repo, nil, authz, Config{}, nil)
}

func TestGetOrCreate(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newTestService(repo)

	t.Run("first call seeds the starting balance", func(t *testing.T) {
		wallet, err := svc.GetOrCreate(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, wallet.BalanceUSD.Equal(decimal.NewFromInt(DefaultStartingBalance)))
	})

	t.Run("repeat calls return the same wallet", func(t *testing.T) {
		first, err := svc.GetOrCreate(context.Background(), 2)
		require.NoError(t, err)

		_, err = svc.ApplyDelta(context.Background(), 2, decimal.NewFromInt(-500))
		require.NoError(t, err)

		again, err := svc.GetOrCreate(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.True(t, again.BalanceUSD.Equal(decimal.NewFromInt(9500)))
	})

	t.Run("concurrent first calls create one wallet", func(t *testing.T) {
		var wg sync.WaitGroup
		ids := make([]uint, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				w, err := svc.GetOrCreate(context.Background(), 3)
				if assert.NoError(t, err) {
					ids[i] = w.ID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
		balance, err := svc.GetBalance(context.Background(), 3)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(DefaultStartingBalance)))
	})
}

func TestApplyDelta(t *testing.T) {
	t.Run("rejects overdraft", func(t *testing.T) {
		repo := newFakeLedgerRepo()
		svc := newTestService(repo)
		_, err := svc.GetOrCreate(context.Background(), 1)
		require.NoError(t, err)

		_, err = svc.ApplyDelta(context.Background(), 1, decimal.NewFromInt(-10001))
		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)

		balance, err := svc.GetBalance(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("missing wallet", func(t *testing.T) {
		repo := newFakeLedgerRepo()
		svc := newTestService(repo)
		_, err := svc.ApplyDelta(context.Background(), 99, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, errs.ErrWalletNotFound)
	})

	t.Run("concurrent debits never overdraw", func(t *testing.T) {
		repo := newFakeLedgerRepo()
		svc := newTestService(repo)
		_, err := repo.GetOrCreateWallet(context.Background(), 1, decimal.NewFromInt(500))
		require.NoError(t, err)

		// 100 workers each try to spend 10 from a balance of 500; exactly
		// 50 can succeed.
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded, rejected := 0, 0
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.ApplyDelta(context.Background(), 1, decimal.NewFromInt(-10))
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					succeeded++
				} else {
					assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
					rejected++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, succeeded)
		assert.Equal(t, 50, rejected)

		balance, err := svc.GetBalance(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})
}

func TestGrantDailyBonus(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newTestService(repo).(*service)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	_, err := svc.GetOrCreate(context.Background(), 1)
	require.NoError(t, err)

	t.Run("first claim succeeds", func(t *testing.T) {
		grant, err := svc.GrantDailyBonus(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, grant.Granted)
		assert.True(t, grant.Amount.Equal(decimal.NewFromInt(DefaultBonusAmount)))
		assert.True(t, grant.NewBalance.Equal(decimal.NewFromInt(11000)))
		assert.Equal(t, base.Add(DefaultBonusCooldown), grant.NextEligibleAt)
	})

	t.Run("second claim inside cooldown is rejected with countdown", func(t *testing.T) {
		svc.now = func() time.Time { return base.Add(1 * time.Hour) }

		grant, err := svc.GrantDailyBonus(context.Background(), 1)
		assert.ErrorIs(t, err, errs.ErrBonusNotReady)
		require.NotNil(t, grant)
		assert.False(t, grant.Granted)
		assert.Equal(t, 23, grant.HoursUntilNext)
		assert.Equal(t, base.Add(DefaultBonusCooldown), grant.NextEligibleAt)
		assert.True(t, grant.NewBalance.Equal(decimal.NewFromInt(11000)))
	})

	t.Run("claim after cooldown succeeds", func(t *testing.T) {
		svc.now = func() time.Time { return base.Add(25 * time.Hour) }

		grant, err := svc.GrantDailyBonus(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, grant.Granted)
		assert.True(t, grant.NewBalance.Equal(decimal.NewFromInt(12000)))
	})

	t.Run("concurrent claims grant exactly once", func(t *testing.T) {
		_, err := svc.GetOrCreate(context.Background(), 2)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var mu sync.Mutex
		granted := 0
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.GrantDailyBonus(context.Background(), 2); err == nil {
					mu.Lock()
					granted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, granted)
		balance, err := svc.GetBalance(context.Background(), 2)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(11000)))
	})
}

func TestSetBalance(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newTestService(repo, 100)

	_, err := svc.GetOrCreate(context.Background(), 1)
	require.NoError(t, err)

	t.Run("admin overwrites balance", func(t *testing.T) {
		wallet, err := svc.SetBalance(context.Background(), 100, 1, decimal.NewFromInt(250))
		require.NoError(t, err)
		assert.True(t, wallet.BalanceUSD.Equal(decimal.NewFromInt(250)))
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		_, err := svc.SetBalance(context.Background(), 1, 1, decimal.NewFromInt(999))
		assert.ErrorIs(t, err, errs.ErrUnauthorized)

		balance, err := svc.GetBalance(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(250)))
	})

	t.Run("negative balance is rejected", func(t *testing.T) {
		_, err := svc.SetBalance(context.Background(), 100, 1, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestDistributeBonus(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newTestService(repo, 100)

	for _, id := range []uint{1, 2, 3} {
		_, err := svc.GetOrCreate(context.Background(), id)
		require.NoError(t, err)
	}

	t.Run("credits every wallet", func(t *testing.T) {
		credited, err := svc.DistributeBonus(context.Background(), 100)
		require.NoError(t, err)
		assert.Equal(t, int64(3), credited)

		for _, id := range []uint{1, 2, 3} {
			balance, err := svc.GetBalance(context.Background(), id)
			require.NoError(t, err)
			assert.True(t, balance.Equal(decimal.NewFromInt(11000)))
		}
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		_, err := svc.DistributeBonus(context.Background(), 1)
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
	})
}

func TestListWallets(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newTestService(repo, 100)

	_, err := svc.GetOrCreate(context.Background(), 1)
	require.NoError(t, err)

	t.Run("admin lists wallets", func(t *testing.T) {
		wallets, total, err := svc.ListWallets(context.Background(), 100, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, wallets, 1)
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		_, _, err := svc.ListWallets(context.Background(), 1, 50, 0)
		assert.ErrorIs(t, err, errs.ErrUnauthorized)
	})
}
