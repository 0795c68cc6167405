package handlers

import (
	"strconv"

	"moonex/internal/services/ledger"
	"moonex/internal/services/marketdata"
	"moonex/internal/services/settlement"
	"moonex/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type TradeHandler struct {
	settlementService settlement.Service
	ledgerService     ledger.Service
	oracle            *marketdata.Oracle
}

func NewTradeHandler(settlementService settlement.Service, ledgerService ledger.Service, oracle *marketdata.Oracle) *TradeHandler {
	return &TradeHandler{
		settlementService: settlementService,
		ledgerService:     ledgerService,
		oracle:            oracle,
	}
}

// ExecuteTrade settles a buy or sell order against the caller's wallet.
func (h *TradeHandler) ExecuteTrade(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var req settlement.Request
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	trade, err := h.settlementService.Execute(c.Context(), claims.UserID, req)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{"trade": trade})
}

// ListTrades returns the caller's trade history, newest first.
func (h *TradeHandler) ListTrades(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	trades, total, err := h.settlementService.History(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.InternalError(c, "failed to list trades")
	}

	return utils.Success(c, fiber.Map{
		"trades": trades,
		"total":  total,
	})
}

// portfolioPosition is a holding valued at the latest known price.
type portfolioPosition struct {
	CoinID     string           `json:"coin_id"`
	CoinSymbol string           `json:"coin_symbol"`
	CoinName   string           `json:"coin_name"`
	Quantity   decimal.Decimal  `json:"quantity"`
	PriceUSD   *decimal.Decimal `json:"price_usd,omitempty"`
	ValueUSD   *decimal.Decimal `json:"value_usd,omitempty"`
	Stale      bool             `json:"stale,omitempty"`
}

// GetPortfolio returns the caller's cash balance and derived holdings.
// Positions are valued with the latest oracle quote when one exists;
// valuation is best effort and never fails the request.
func (h *TradeHandler) GetPortfolio(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallet, err := h.ledgerService.GetOrCreate(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "failed to get wallet")
	}

	holdings, err := h.settlementService.Holdings(c.Context(), claims.UserID)
	if err != nil {
		return utils.InternalError(c, "failed to compute holdings")
	}

	positions := make([]portfolioPosition, 0, len(holdings))
	holdingsValue := decimal.Zero
	for _, holding := range holdings {
		pos := portfolioPosition{
			CoinID:     holding.CoinID,
			CoinSymbol: holding.CoinSymbol,
			CoinName:   holding.CoinName,
			Quantity:   holding.Quantity,
		}
		if h.oracle != nil {
			if quote, qerr := h.oracle.Quote(c.Context(), holding.CoinID); qerr == nil {
				price := quote.USD
				value := holding.Quantity.Mul(price).Round(2)
				pos.PriceUSD = &price
				pos.ValueUSD = &value
				pos.Stale = quote.Stale
				holdingsValue = holdingsValue.Add(value)
			}
		}
		positions = append(positions, pos)
	}

	return utils.Success(c, fiber.Map{
		"balance_usd":        wallet.BalanceUSD,
		"holdings":           positions,
		"holdings_value_usd": holdingsValue,
		"total_value_usd":    wallet.BalanceUSD.Add(holdingsValue),
	})
}
