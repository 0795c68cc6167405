package repositories

import (
	"context"
	"errors"
	"fmt"

	"moonex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrAddressNotFound = errors.New("deposit address not found")

// AddressRepository persists per-(user, currency) deposit addresses.
type AddressRepository interface {
	GetByUserAndCurrency(ctx context.Context, userID uint, currency string) (*models.DepositAddress, error)
	ListByUser(ctx context.Context, userID uint) ([]models.DepositAddress, error)
	// CreateIfAbsent inserts the address unless one already exists for the
	// (user, currency) pair and returns the surviving row either way.
	CreateIfAbsent(ctx context.Context, addr *models.DepositAddress) (*models.DepositAddress, error)
}

type addressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) GetByUserAndCurrency(ctx context.Context, userID uint, currency string) (*models.DepositAddress, error) {
	var addr models.DepositAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND currency = ?", userID, currency).
		First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get deposit address: %w", err)
	}
	return &addr, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID uint) ([]models.DepositAddress, error) {
	var addrs []models.DepositAddress
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&addrs).Error; err != nil {
		return nil, fmt.Errorf("failed to list deposit addresses: %w", err)
	}
	return addrs, nil
}

func (r *addressRepository) CreateIfAbsent(ctx context.Context, addr *models.DepositAddress) (*models.DepositAddress, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "currency"}},
			DoNothing: true,
		}).
		Create(addr).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create deposit address: %w", err)
	}
	// The insert may have lost the race; return whichever row survived.
	return r.GetByUserAndCurrency(ctx, addr.UserID, addr.Currency)
}
