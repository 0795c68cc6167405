package handlers

import (
	"errors"

	"moonex/internal/services/authz"
	"moonex/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CodeHandler struct {
	authzService authz.Service
}

func NewCodeHandler(authzService authz.Service) *CodeHandler {
	return &CodeHandler{authzService: authzService}
}

type redeemCodeRequest struct {
	Code string `json:"code"`
}

// RedeemCode redeems a one-shot admin code for the caller.
func (h *CodeHandler) RedeemCode(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req redeemCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if req.Code == "" {
		return utils.BadRequest(c, "code is required")
	}

	if err := h.authzService.RedeemCode(c.Context(), claims.UserID, req.Code); err != nil {
		switch {
		case errors.Is(err, authz.ErrInvalidCode):
			return utils.BadRequest(c, "invalid or already used code")
		case errors.Is(err, authz.ErrAlreadyAdmin):
			return utils.Conflict(c, "user is already an administrator")
		default:
			return utils.InternalError(c, "failed to redeem code")
		}
	}

	return utils.Success(c, fiber.Map{
		"message": "admin access granted",
		"role":    "admin",
	})
}
