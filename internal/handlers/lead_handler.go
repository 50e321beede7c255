package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/services"
)

type LeadHandler struct {
	leadService *services.LeadService
}

func NewLeadHandler(leadService *services.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

func (h *LeadHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	lead, err := h.leadService.Create(c.UserContext(), req)
	if err != nil {
		slog.Error("lead capture failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to save lead"})
	}

	return c.JSON(dto.LeadResponse{Success: true, Data: *lead})
}
