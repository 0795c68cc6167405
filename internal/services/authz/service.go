// Package authz is the authorization capability: role lookups plus
// one-shot admin-code redemption. Ledger and settlement consume it
// through their own narrow interfaces.
package authz

import (
	"context"
	"errors"
	"strings"

	errs "moonex/internal/errors"
	"moonex/internal/logger"
	"moonex/internal/models"
	"moonex/internal/repositories"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidCode  = errors.New("code is not valid or has already been used")
	ErrAlreadyAdmin = errors.New("user is already an administrator")
)

type Service interface {
	HasRole(ctx context.Context, userID uint, role string) (bool, error)
	RedeemCode(ctx context.Context, userID uint, code string) error
}

type service struct {
	repo repositories.RoleRepository
	log  *logrus.Entry
}

func NewService(repo repositories.RoleRepository) Service {
	if repo == nil {
		panic("repo is required")
	}
	return &service{
		repo: repo,
		log:  logger.WithComponent("authz"),
	}
}

func (s *service) HasRole(ctx context.Context, userID uint, role string) (bool, error) {
	return s.repo.HasRole(ctx, userID, role)
}

// RedeemCode grants the admin role in exchange for an unused code.
// Consumption and grant run in one transaction; the conditional update
// inside ConsumeCode makes sure a code is spent exactly once.
func (s *service) RedeemCode(ctx context.Context, userID uint, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return errs.ErrInvalidInput
	}

	adminCode, err := s.repo.GetActiveCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrCodeNotFound) {
			return ErrInvalidCode
		}
		return err
	}

	already, err := s.repo.HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return err
	}
	if already {
		return ErrAlreadyAdmin
	}

	err = s.repo.ExecuteInTransaction(func(tx repositories.RoleRepository) error {
		if err := tx.ConsumeCode(ctx, adminCode.ID, userID); err != nil {
			return err
		}
		return tx.GrantRole(ctx, userID, models.RoleAdmin)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrCodeNotFound) {
			return ErrInvalidCode
		}
		return err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"code_id": adminCode.ID,
	}).Info("admin code redeemed")

	return nil
}
