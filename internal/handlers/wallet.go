package handlers

import (
	"errors"

	errs "moonex/internal/errors"
	"moonex/internal/models"
	"moonex/internal/services/addresses"
	"moonex/internal/services/ledger"
	"moonex/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	ledgerService  ledger.Service
	addressService addresses.Service
}

func NewWalletHandler(ledgerService ledger.Service, addressService addresses.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService:  ledgerService,
		addressService: addressService,
	}
}

// extractUserClaims is a helper to pull the authenticated user from the
// request context.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// GetWallet returns the caller's wallet, creating it lazily with the
// starting balance.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallet, err := h.ledgerService.GetOrCreate(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "failed to get wallet")
	}

	return utils.Success(c, fiber.Map{"wallet": wallet})
}

// ClaimBonus applies the daily bonus if the cooldown has elapsed.
func (h *WalletHandler) ClaimBonus(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	grant, err := h.ledgerService.GrantDailyBonus(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrBonusNotReady) && grant != nil {
			return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{
				"error":            "already claimed today",
				"code":             errs.ErrBonusNotReady.Code,
				"hours_until_next": grant.HoursUntilNext,
				"can_claim_at":     grant.NextEligibleAt,
			})
		}
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"amount":        grant.Amount,
		"new_balance":   grant.NewBalance,
		"next_claim_at": grant.NextEligibleAt,
	})
}

// GetAddresses returns the caller's deposit addresses, provisioning any
// that do not exist yet.
func (h *WalletHandler) GetAddresses(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	addrs, err := h.addressService.GetOrCreateAll(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "failed to provision deposit addresses")
	}

	return utils.Success(c, fiber.Map{"addresses": addrs})
}
