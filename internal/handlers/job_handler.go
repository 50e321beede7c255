package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/palpitesia/palpites-backend/internal/dto"
	"github.com/palpitesia/palpites-backend/internal/services"
)

// JobHandler exposes the scheduled jobs to an external scheduler.
type JobHandler struct {
	pickService      *services.PickService
	contentService   *services.ContentService
	broadcastService *services.BroadcastService
	reportService    *services.ReportService
	now              func() time.Time
}

func NewJobHandler(
	pickService *services.PickService,
	contentService *services.ContentService,
	broadcastService *services.BroadcastService,
	reportService *services.ReportService,
) *JobHandler {
	return &JobHandler{
		pickService:      pickService,
		contentService:   contentService,
		broadcastService: broadcastService,
		reportService:    reportService,
		now:              time.Now,
	}
}

func (h *JobHandler) GeneratePicks(c *fiber.Ctx) error {
	result, err := h.pickService.Generate(c.UserContext(), h.now())
	if err != nil {
		return jobFailed(c, "picks", err)
	}
	return c.JSON(result)
}

func (h *JobHandler) GenerateContent(c *fiber.Ctx) error {
	result, err := h.contentService.Generate(c.UserContext(), h.now())
	if errors.Is(err, services.ErrNoFixtures) || errors.Is(err, services.ErrNoPicks) {
		slog.Warn("content skipped", "job", "content", "reason", err)
		return c.JSON(dto.JobFailure{Success: false, Error: err.Error()})
	}
	if err != nil {
		return jobFailed(c, "content", err)
	}
	return c.JSON(result)
}

func (h *JobHandler) Broadcast(c *fiber.Ctx) error {
	result, err := h.broadcastService.Send(c.UserContext(), h.now())
	if err != nil {
		return jobFailed(c, "broadcast", err)
	}
	return c.JSON(result)
}

func (h *JobHandler) DailyReport(c *fiber.Ctx) error {
	result, err := h.reportService.Daily(c.UserContext(), h.now())
	if err != nil {
		return jobFailed(c, "daily_report", err)
	}
	return c.JSON(result)
}

func (h *JobHandler) MonthlyReport(c *fiber.Ctx) error {
	result, err := h.reportService.Monthly(c.UserContext(), h.now())
	if err != nil {
		return jobFailed(c, "monthly_report", err)
	}
	return c.JSON(result)
}

func jobFailed(c *fiber.Ctx, job string, err error) error {
	slog.Error("job failed", "job", job, "error", err)
	sentry.CaptureException(err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.JobFailure{Success: false, Error: err.Error()})
}
