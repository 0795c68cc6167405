package handlers

import (
	"strconv"

	"moonex/internal/services/ledger"
	"moonex/internal/services/settlement"
	"moonex/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AdminHandler exposes the operator surface. Every operation is also
// re-checked inside the services against the actor's live role, so a
// stale token can never reach ledger state.
type AdminHandler struct {
	ledgerService     ledger.Service
	settlementService settlement.Service
}

func NewAdminHandler(ledgerService ledger.Service, settlementService settlement.Service) *AdminHandler {
	return &AdminHandler{
		ledgerService:     ledgerService,
		settlementService: settlementService,
	}
}

// ListWallets returns a page of all wallets.
func (h *AdminHandler) ListWallets(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	wallets, total, err := h.ledgerService.ListWallets(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"wallets": wallets,
		"total":   total,
	})
}

type setBalanceRequest struct {
	BalanceUSD decimal.Decimal `json:"balance_usd"`
}

// SetBalance overwrites a user's cash balance.
func (h *AdminHandler) SetBalance(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	targetID, err := strconv.ParseUint(c.Params("userID"), 10, 64)
	if err != nil {
		return utils.BadRequest(c, "invalid user ID")
	}

	var req setBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	wallet, err := h.ledgerService.SetBalance(c.Context(), claims.UserID, uint(targetID), req.BalanceUSD)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{"wallet": wallet})
}

// ListAllTrades returns the newest trades across all users.
func (h *AdminHandler) ListAllTrades(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	trades, err := h.settlementService.RecentTrades(c.Context(), claims.UserID, limit)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{"trades": trades})
}

// DistributeBonus credits the bonus amount to every wallet at once.
func (h *AdminHandler) DistributeBonus(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	credited, err := h.ledgerService.DistributeBonus(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"message":          "bonus distributed",
		"wallets_credited": credited,
	})
}
