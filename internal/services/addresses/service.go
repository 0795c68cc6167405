// Package addresses lazily provisions one deposit address per supported
// currency per user. Addresses are generated once and immutable; the
// (user, currency) uniqueness constraint at the store arbitrates
// concurrent first calls.
package addresses

import (
	"context"
	"errors"
	"fmt"

	errs "moonex/internal/errors"
	"moonex/internal/logger"
	"moonex/internal/models"
	"moonex/internal/repositories"

	"github.com/sirupsen/logrus"
)

type Service interface {
	GetOrCreate(ctx context.Context, userID uint, currency string) (*models.DepositAddress, error)
	GetOrCreateAll(ctx context.Context, userID uint) ([]models.DepositAddress, error)
}

type service struct {
	repo repositories.AddressRepository
	gen  Generator
	log  *logrus.Entry
}

func NewService(repo repositories.AddressRepository, gen Generator) Service {
	if repo == nil {
		panic("repo is required")
	}
	if gen == nil {
		panic("generator is required")
	}
	return &service{
		repo: repo,
		gen:  gen,
		log:  logger.WithComponent("addresses"),
	}
}

func (s *service) GetOrCreate(ctx context.Context, userID uint, currency string) (*models.DepositAddress, error) {
	asset, ok := models.AssetByID(currency)
	if !ok {
		return nil, errs.ErrInvalidInput
	}

	existing, err := s.repo.GetByUserAndCurrency(ctx, userID, asset.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrAddressNotFound) {
		return nil, err
	}

	addr, err := s.gen.Generate(asset)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s address: %w", asset.ID, err)
	}

	// A concurrent first call may win the insert; CreateIfAbsent returns
	// the surviving row either way.
	created, err := s.repo.CreateIfAbsent(ctx, &models.DepositAddress{
		UserID:   userID,
		Currency: asset.ID,
		Address:  addr,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"currency": asset.ID,
	}).Debug("deposit address provisioned")

	return created, nil
}

func (s *service) GetOrCreateAll(ctx context.Context, userID uint) ([]models.DepositAddress, error) {
	addrs := make([]models.DepositAddress, 0, len(models.SupportedAssets))
	for _, asset := range models.SupportedAssets {
		addr, err := s.GetOrCreate(ctx, userID, asset.ID)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, *addr)
	}
	return addrs, nil
}
