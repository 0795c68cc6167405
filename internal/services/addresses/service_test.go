package addresses

import (
	"context"
	"strings"
	"sync"
	"testing"

	errs "moonex/internal/errors"
	"moonex/internal/models"
	"moonex/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addrKey struct {
	userID   uint
	currency string
}

// fakeAddressRepo enforces (user, currency) uniqueness under a lock the
// way the database unique index does.
type fakeAddressRepo struct {
	mu    sync.Mutex
	addrs map[addrKey]*models.DepositAddress
	next  uint
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{addrs: make(map[addrKey]*models.DepositAddress), next: 1}
}

func (f *fakeAddressRepo) GetByUserAndCurrency(ctx context.Context, userID uint, currency string) (*models.DepositAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	addr, ok := f.addrs[addrKey{userID, currency}]
	if !ok {
		return nil, repositories.ErrAddressNotFound
	}
	cp := *addr
	return &cp, nil
}

func (f *fakeAddressRepo) ListByUser(ctx context.Context, userID uint) ([]models.DepositAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.DepositAddress, 0)
	for _, addr := range f.addrs {
		if addr.UserID == userID {
			out = append(out, *addr)
		}
	}
	return out, nil
}

func (f *fakeAddressRepo) CreateIfAbsent(ctx context.Context, addr *models.DepositAddress) (*models.DepositAddress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := addrKey{addr.UserID, addr.Currency}
	if existing, ok := f.addrs[key]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *addr
	cp.ID = f.next
	f.next++
	f.addrs[key] = &cp
	out := cp
	return &out, nil
}

func TestGenerator(t *testing.T) {
	gen := NewGenerator()

	t.Run("bitcoin yields a bech32 address", func(t *testing.T) {
		asset, _ := models.AssetByID("bitcoin")
		addr, err := gen.Generate(asset)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(addr, "bc1"), "got %q", addr)
	})

	t.Run("ethereum yields a checksummed hex address", func(t *testing.T) {
		asset, _ := models.AssetByID("ethereum")
		addr, err := gen.Generate(asset)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(addr, "0x"))
		assert.Len(t, addr, 42)
	})

	t.Run("tether shares the ethereum network format", func(t *testing.T) {
		asset, _ := models.AssetByID("tether")
		addr, err := gen.Generate(asset)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(addr, "0x"))
		assert.Len(t, addr, 42)
	})

	t.Run("solana yields a base58 public key", func(t *testing.T) {
		asset, _ := models.AssetByID("solana")
		addr, err := gen.Generate(asset)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(addr), 32)
		assert.NotContains(t, addr, "0")
		assert.NotContains(t, addr, "O")
	})

	t.Run("fresh keys give fresh addresses", func(t *testing.T) {
		asset, _ := models.AssetByID("bitcoin")
		a, err := gen.Generate(asset)
		require.NoError(t, err)
		b, err := gen.Generate(asset)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestGetOrCreate(t *testing.T) {
	repo := newFakeAddressRepo()
	svc := NewService(repo, NewGenerator())
	ctx := context.Background()

	t.Run("unsupported currency", func(t *testing.T) {
		_, err := svc.GetOrCreate(ctx, 1, "dogecoin")
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("repeat calls return the same address", func(t *testing.T) {
		first, err := svc.GetOrCreate(ctx, 1, "bitcoin")
		require.NoError(t, err)

		second, err := svc.GetOrCreate(ctx, 1, "bitcoin")
		require.NoError(t, err)
		assert.Equal(t, first.Address, second.Address)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("different users get different addresses", func(t *testing.T) {
		a, err := svc.GetOrCreate(ctx, 2, "ethereum")
		require.NoError(t, err)
		b, err := svc.GetOrCreate(ctx, 3, "ethereum")
		require.NoError(t, err)
		assert.NotEqual(t, a.Address, b.Address)
	})

	t.Run("concurrent first calls agree on one address", func(t *testing.T) {
		results := make([]string, 10)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				addr, err := svc.GetOrCreate(ctx, 4, "solana")
				if assert.NoError(t, err) {
					results[i] = addr.Address
				}
			}(i)
		}
		wg.Wait()

		for _, addr := range results {
			assert.Equal(t, results[0], addr)
		}
	})
}

func TestGetOrCreateAll(t *testing.T) {
	repo := newFakeAddressRepo()
	svc := NewService(repo, NewGenerator())

	addrs, err := svc.GetOrCreateAll(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, addrs, len(models.SupportedAssets))

	byCurrency := make(map[string]string)
	for _, addr := range addrs {
		byCurrency[addr.Currency] = addr.Address
	}
	assert.Contains(t, byCurrency, "bitcoin")
	assert.Contains(t, byCurrency, "ethereum")
	assert.Contains(t, byCurrency, "solana")
	assert.Contains(t, byCurrency, "tether")
}
