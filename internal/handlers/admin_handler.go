package handlers

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/palpitesia/palpites-backend/internal/config"
	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/services"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Formato inválido"})
	}

	token, exp, err := h.adminService.Login(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAdminNotConfigured):
			slog.Error("admin login unavailable", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "ADMIN_PASSWORD não configurado"})
		case errors.Is(err, services.ErrInvalidPassword):
			slog.Warn("admin login rejected", "ip", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Senha inválida"})
		}
		slog.Error("admin login failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal server error"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     config.AdminCookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.OKResponse{OK: true})
}

func (h *AdminHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     config.AdminCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.OKResponse{OK: true})
}

func (h *AdminHandler) LoginPage(c *fiber.Ctx) error {
	next := c.Query("next")
	if !strings.HasPrefix(next, "/admin") {
		next = "/admin"
	}
	return c.Render("admin_login", fiber.Map{"Next": next}, layout)
}

func (h *AdminHandler) DashboardPage(c *fiber.Ctx) error {
	d, err := h.adminService.Dashboard(c.UserContext())
	if err != nil {
		slog.Error("dashboard load failed", "error", err)
		return fiber.ErrInternalServerError
	}
	return c.Render("admin", fiber.Map{"D": d, "Diag": h.adminService.Diag()}, layout)
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.adminService.Dashboard(c.UserContext())
	if err != nil {
		slog.Error("dashboard load failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to load dashboard"})
	}
	return c.JSON(d)
}

func (h *AdminHandler) Diag(c *fiber.Ctx) error {
	return c.JSON(h.adminService.Diag())
}

func (h *AdminHandler) SetPickResult(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid pick id"})
	}
	var req dto.SetPickResultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	pick, err := h.adminService.SetPickResult(c.UserContext(), id, req.Result)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidResult):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrPickNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		slog.Error("pick settlement failed", "pick_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to update pick"})
	}
	return c.JSON(pick)
}
