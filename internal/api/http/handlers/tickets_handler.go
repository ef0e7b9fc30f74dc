package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-synth/internal/api/dto"
	"github.com/spec-kit/ticket-synth/internal/auth"
	"github.com/spec-kit/ticket-synth/internal/domain"
	"github.com/spec-kit/ticket-synth/internal/events"
	"github.com/spec-kit/ticket-synth/internal/profile"
	"github.com/spec-kit/ticket-synth/internal/service"
	apperrors "github.com/spec-kit/ticket-synth/pkg/util"
)

// TicketsHandler serves batch generation and lookup.
type TicketsHandler struct {
	service  *service.GenerationService
	profiles *profile.Registry
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(generationService *service.GenerationService, profiles *profile.Registry) *TicketsHandler {
	return &TicketsHandler{service: generationService, profiles: profiles}
}

// Generate POST /tickets/generate.
func (h *TicketsHandler) Generate(c *fiber.Ctx) error {
	input, err := parseGenerateRequest(c, h.service.MaxRoundsLimit())
	if err != nil {
		return err
	}
	batch, err := h.service.Generate(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": batchResponse(batch)})
}

// GetBatch GET /batches/:id.
func (h *TicketsHandler) GetBatch(c *fiber.Ctx) error {
	batch, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": batchResponse(batch)})
}

// Profiles GET /profiles.
func (h *TicketsHandler) Profiles(c *fiber.Ctx) error {
	resp := dto.ProfilesResponse{Profiles: h.profiles.Names()}
	if p := h.profiles.Default(); p != nil {
		resp.Default = p.Name
	}
	return c.JSON(fiber.Map{"data": resp})
}

func parseGenerateRequest(c *fiber.Ctx, roundsLimit int) (service.GenerateInput, error) {
	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return service.GenerateInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.MaxRounds != nil && (*req.MaxRounds < 0 || *req.MaxRounds > roundsLimit) {
		return service.GenerateInput{}, apperrors.NewValidationError(
			fmt.Sprintf("max_rounds must be between 0 and %d", roundsLimit),
			map[string]any{"max_rounds": *req.MaxRounds, "limit": roundsLimit},
		)
	}
	return service.GenerateInput{
		Count:     req.Count,
		Profile:   req.Profile,
		Seed:      req.Seed,
		MaxRounds: req.MaxRounds,
		Actor:     actorFrom(c),
	}, nil
}

func actorFrom(c *fiber.Ctx) events.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return events.Actor{Type: domain.SubjectTypeBot, ClientID: auth.AnonymousClientID}
	}
	return events.Actor{Type: principal.SubjectType, ClientID: principal.ClientID}
}

func batchResponse(batch domain.Batch) dto.BatchResponse {
	resp := dto.BatchResponse{
		ID:          batch.ID,
		Seed:        batch.Seed,
		GeneratedAt: batch.GeneratedAt,
		Tickets:     make([]dto.TicketResponse, 0, len(batch.Tickets)),
	}
	for i, t := range batch.Tickets {
		item := dto.TicketResponse{Ticket: t, Messages: []domain.ConversationMessage{}, TimeEntries: []domain.TimeEntry{}}
		if i < len(batch.Conversations) {
			item.Rounds = batch.Conversations[i].Rounds
			if batch.Conversations[i].Messages != nil {
				item.Messages = batch.Conversations[i].Messages
			}
		}
		if i < len(batch.TimeEntries) && batch.TimeEntries[i] != nil {
			item.TimeEntries = batch.TimeEntries[i]
		}
		resp.Tickets = append(resp.Tickets, item)
	}
	return resp
}
