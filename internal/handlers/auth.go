package handlers

import (
	"errors"

	"moonex/internal/logger"
	"moonex/internal/services/addresses"
	"moonex/internal/services/auth"
	"moonex/internal/services/ledger"
	"moonex/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService    auth.Service
	ledgerService  ledger.Service
	addressService addresses.Service
}

func NewAuthHandler(authService auth.Service, ledgerService ledger.Service, addressService addresses.Service) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		ledgerService:  ledgerService,
		addressService: addressService,
	}
}

// Register creates a user and eagerly provisions their wallet and
// deposit addresses. Provisioning failures are logged, not fatal: both
// are create-if-absent and retried on first access.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	user, err := h.authService.Register(c.Context(), input.Email, input.Password, input.FullName)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return utils.Conflict(c, "email already registered")
		}
		return utils.BadRequest(c, err.Error())
	}

	if _, err := h.ledgerService.GetOrCreate(c.Context(), user.ID); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("wallet provisioning deferred")
	}
	if _, err := h.addressService.GetOrCreateAll(c.Context(), user.ID); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("address provisioning deferred")
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{"user": user})
}

// Login authenticates and returns JWT tokens.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "email and password are required")
	}

	user, accessToken, refreshToken, err := h.authService.Login(c.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return utils.Unauthorized(c, "invalid email or password")
		}
		return utils.InternalError(c, "authentication failed")
	}

	return utils.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
		},
	})
}

// Refresh exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil || input.RefreshToken == "" {
		return utils.BadRequest(c, "refresh_token is required")
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(c.Context(), input.RefreshToken)
	if err != nil {
		return utils.Unauthorized(c, "invalid refresh token")
	}

	return utils.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}
