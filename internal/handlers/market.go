package handlers

import (
	"moonex/internal/services/marketdata"
	"moonex/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type MarketHandler struct {
	oracle *marketdata.Oracle
}

func NewMarketHandler(oracle *marketdata.Oracle) *MarketHandler {
	return &MarketHandler{oracle: oracle}
}

// ListPrices returns the latest quote for every supported coin.
func (h *MarketHandler) ListPrices(c *fiber.Ctx) error {
	quotes := h.oracle.Quotes(c.Context())
	return utils.Success(c, fiber.Map{"prices": quotes})
}

// GetPrice returns the latest quote for one coin.
func (h *MarketHandler) GetPrice(c *fiber.Ctx) error {
	coinID := c.Params("coinID")

	quote, err := h.oracle.Quote(c.Context(), coinID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{"price": quote})
}
