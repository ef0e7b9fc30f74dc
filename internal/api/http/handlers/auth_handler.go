package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-synth/internal/api/dto"
	"github.com/spec-kit/ticket-synth/internal/service"
	apperrors "github.com/spec-kit/ticket-synth/pkg/util"
)

// AuthHandler exposes the bot token endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ClientID == "" || req.APIKey == "" {
		return apperrors.NewValidationError("client_id and api_key required", nil)
	}

	token, meta, err := h.auth.IssueBotToken(c.UserContext(), req.ClientID, req.APIKey)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{Token: token, ExpiresAt: meta.ExpiresAt}})
}
