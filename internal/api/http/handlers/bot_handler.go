package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-synth/internal/api/dto"
	"github.com/spec-kit/ticket-synth/internal/chat"
	"github.com/spec-kit/ticket-synth/internal/service"
	apperrors "github.com/spec-kit/ticket-synth/pkg/util"
)

// BotHandler serves chat-formatted batches to the bot client. Generation
// failures come back as a chat message instead of a bare error body.
type BotHandler struct {
	service   *service.GenerationService
	formatter *chat.Formatter
	logger    *zap.Logger
}

// NewBotHandler constructs handler.
func NewBotHandler(generationService *service.GenerationService, formatter *chat.Formatter, logger *zap.Logger) *BotHandler {
	if formatter == nil {
		formatter = chat.NewFormatter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BotHandler{service: generationService, formatter: formatter, logger: logger}
}

// Generate POST /bot/generate.
func (h *BotHandler) Generate(c *fiber.Ctx) error {
	input, err := parseGenerateRequest(c, h.service.MaxRoundsLimit())
	if err != nil {
		return err
	}
	batch, err := h.service.Generate(c.UserContext(), input)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		h.logger.Warn("bot generation failed",
			zap.String("client_id", input.Actor.ClientID),
			zap.Int("count", input.Count),
			zap.String("code", domainErr.Code),
			zap.Error(err))
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"data": dto.BotGenerateResponse{
			Messages: []string{h.formatter.Error(err)},
		}})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.BotGenerateResponse{
		BatchID:  batch.ID,
		Messages: h.formatter.Format(batch),
	}})
}
