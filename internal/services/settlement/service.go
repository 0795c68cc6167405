// Package settlement executes paper buy/sell orders: validate, mutate
// the wallet through the ledger store, then append the immutable trade
// record. Orders are settled in arrival order at the store; a rejected
// order is terminal and must be resubmitted.
package settlement

import (
	"context"
	"fmt"

	errs "moonex/internal/errors"
	"moonex/internal/logger"
	"moonex/internal/models"
	"moonex/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type service struct {
	repo  repositories.LedgerRepository
	authz AuthorizationChecker
	log   *logrus.Entry
}

func NewService(repo repositories.LedgerRepository, authz AuthorizationChecker) Service {
	if repo == nil {
		panic("repo is required")
	}
	if authz == nil {
		panic("authorization checker is required")
	}
	return &service{
		repo:  repo,
		authz: authz,
		log:   logger.WithComponent("settlement"),
	}
}

func (s *service) Execute(ctx context.Context, userID uint, req Request) (*models.Trade, error) {
	asset, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	total := req.Quantity.Mul(req.PriceUSD).Round(2)

	var trade *models.Trade
	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		switch req.TradeType {
		case models.TradeTypeBuy:
			if _, err := tx.ApplyDelta(ctx, userID, total.Neg()); err != nil {
				return err
			}
		case models.TradeTypeSell:
			// Credit first: the wallet UPDATE locks the row, serializing
			// same-user settlement so the holding read below cannot race a
			// concurrent sell that has not committed its trade row yet. A
			// failed check rolls the credit back.
			if _, err := tx.ApplyDelta(ctx, userID, total); err != nil {
				return err
			}
			held, err := tx.Holding(ctx, userID, asset.ID)
			if err != nil {
				return err
			}
			if req.Quantity.GreaterThan(held) {
				return errs.ErrInsufficientHoldings
			}
		}

		t := &models.Trade{
			UserID:     userID,
			CoinID:     asset.ID,
			CoinSymbol: asset.Symbol,
			CoinName:   asset.Name,
			TradeType:  req.TradeType,
			Quantity:   req.Quantity,
			PriceUSD:   req.PriceUSD,
			TotalUSD:   total,
		}
		if err := tx.CreateTrade(ctx, t); err != nil {
			// A committed balance change without its trade record would be
			// unreconcilable; log everything needed to replay, then let the
			// transaction roll the delta back.
			s.log.WithFields(logrus.Fields{
				"user_id":    userID,
				"coin_id":    asset.ID,
				"trade_type": req.TradeType,
				"quantity":   req.Quantity.String(),
				"price_usd":  req.PriceUSD.String(),
				"total_usd":  total.String(),
			}).WithError(err).Error("trade append failed after balance mutation")
			return errs.ErrConsistency
		}
		trade = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    userID,
		"trade_id":   trade.ID,
		"coin_id":    asset.ID,
		"trade_type": req.TradeType,
		"total_usd":  total.String(),
	}).Info("trade settled")

	return trade, nil
}

func (s *service) History(ctx context.Context, userID uint, limit, offset int) ([]models.Trade, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListTradesByUser(ctx, userID, limit, offset)
}

func (s *service) Holdings(ctx context.Context, userID uint) ([]models.Holding, error) {
	all, err := s.repo.Holdings(ctx, userID)
	if err != nil {
		return nil, err
	}
	held := make([]models.Holding, 0, len(all))
	for _, h := range all {
		if h.Quantity.IsPositive() {
			held = append(held, h)
		}
	}
	return held, nil
}

func (s *service) Holding(ctx context.Context, userID uint, coinID string) (decimal.Decimal, error) {
	if _, ok := models.AssetByID(coinID); !ok {
		return decimal.Zero, errs.ErrInvalidInput
	}
	return s.repo.Holding(ctx, userID, coinID)
}

func (s *service) RecentTrades(ctx context.Context, actorID uint, limit int) ([]models.Trade, error) {
	ok, err := s.authz.HasRole(ctx, actorID, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to check role: %w", err)
	}
	if !ok {
		return nil, errs.ErrUnauthorized
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListRecentTrades(ctx, limit)
}

func (s *service) validate(req Request) (models.Asset, error) {
	asset, ok := models.AssetByID(req.CoinID)
	if !ok {
		return models.Asset{}, errs.ErrInvalidInput
	}
	if req.TradeType != models.TradeTypeBuy && req.TradeType != models.TradeTypeSell {
		return models.Asset{}, errs.ErrInvalidInput
	}
	if !req.Quantity.IsPositive() || !req.PriceUSD.IsPositive() {
		return models.Asset{}, errs.ErrInvalidInput
	}
	return asset, nil
}
