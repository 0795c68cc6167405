package authz

import (
	"context"
	"sync"
	"testing"

	errs "moonex/internal/errors"
	"moonex/internal/models"
	"moonex/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleKey struct {
	userID uint
	role   string
}

// fakeRoleRepo spends codes under one lock, matching the conditional
// update the real store uses.
type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[roleKey]bool
	codes map[string]*models.AdminCode
}

func newFakeRoleRepo(codes ...string) *fakeRoleRepo {
	repo := &fakeRoleRepo{
		roles: make(map[roleKey]bool),
		codes: make(map[string]*models.AdminCode),
	}
	for i, code := range codes {
		id := string(rune('a' + i))
		repo.codes[code] = &models.AdminCode{ID: id, Code: code, IsActive: true}
	}
	return repo
}

func (f *fakeRoleRepo) HasRole(ctx context.Context, userID uint, role string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[roleKey{userID, role}], nil
}

func (f *fakeRoleRepo) GrantRole(ctx context.Context, userID uint, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[roleKey{userID, role}] = true
	return nil
}

func (f *fakeRoleRepo) GetActiveCode(ctx context.Context, code string) (*models.AdminCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[code]
	if !ok || !c.IsActive {
		return nil, repositories.ErrCodeNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRoleRepo) ConsumeCode(ctx context.Context, codeID string, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.ID == codeID && c.IsActive {
			c.IsActive = false
			c.UsedBy = &userID
			return nil
		}
	}
	return repositories.ErrCodeNotFound
}

func (f *fakeRoleRepo) ExecuteInTransaction(fn func(repositories.RoleRepository) error) error {
	return fn(f)
}

func TestRedeemCode(t *testing.T) {
	t.Run("valid code grants admin", func(t *testing.T) {
		repo := newFakeRoleRepo("MOON123")
		svc := NewService(repo)

		err := svc.RedeemCode(context.Background(), 1, "moon123")
		require.NoError(t, err)

		isAdmin, err := svc.HasRole(context.Background(), 1, models.RoleAdmin)
		require.NoError(t, err)
		assert.True(t, isAdmin)
	})

	t.Run("code input is trimmed and uppercased", func(t *testing.T) {
		repo := newFakeRoleRepo("MOON123")
		svc := NewService(repo)

		err := svc.RedeemCode(context.Background(), 1, "  Moon123 ")
		assert.NoError(t, err)
	})

	t.Run("empty code", func(t *testing.T) {
		svc := NewService(newFakeRoleRepo())
		err := svc.RedeemCode(context.Background(), 1, "   ")
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc := NewService(newFakeRoleRepo("MOON123"))
		err := svc.RedeemCode(context.Background(), 1, "WRONG")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("code is one-shot", func(t *testing.T) {
		repo := newFakeRoleRepo("MOON123")
		svc := NewService(repo)

		require.NoError(t, svc.RedeemCode(context.Background(), 1, "MOON123"))

		err := svc.RedeemCode(context.Background(), 2, "MOON123")
		assert.ErrorIs(t, err, ErrInvalidCode)

		isAdmin, err := svc.HasRole(context.Background(), 2, models.RoleAdmin)
		require.NoError(t, err)
		assert.False(t, isAdmin)
	})

	t.Run("existing admin cannot burn a code", func(t *testing.T) {
		repo := newFakeRoleRepo("FIRST", "SECOND")
		svc := NewService(repo)

		require.NoError(t, svc.RedeemCode(context.Background(), 1, "FIRST"))

		err := svc.RedeemCode(context.Background(), 1, "SECOND")
		assert.ErrorIs(t, err, ErrAlreadyAdmin)

		// The second code survives for someone else.
		err = svc.RedeemCode(context.Background(), 2, "SECOND")
		assert.NoError(t, err)
	})

	t.Run("concurrent redemptions spend the code once", func(t *testing.T) {
		repo := newFakeRoleRepo("MOON123")
		svc := NewService(repo)

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(userID uint) {
				defer wg.Done()
				if err := svc.RedeemCode(context.Background(), userID, "MOON123"); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}(uint(i + 1))
		}
		wg.Wait()

		assert.Equal(t, 1, succeeded)
	})
}
