package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-labs/support-bot/internal/api/dto"
	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/observability"
	"github.com/helpdesk-labs/support-bot/internal/service"
	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

// AdminHandler exposes operator endpoints.
type AdminHandler struct {
	admin   *service.AdminService
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{admin: admin, metrics: metrics}
}

// Login POST /admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.APIKey == "" {
		return apperrors.NewValidationError("api_key required", nil)
	}
	token, exp, err := h.admin.Login(c.UserContext(), req.APIKey)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TokenResponse{AccessToken: token, ExpiresAt: exp}})
}

// SetWebhook POST /admin/webhook and GET /set_webhook.
func (h *AdminHandler) SetWebhook(c *fiber.Ctx) error {
	var req dto.WebhookRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	url, err := h.admin.RegisterWebhook(c.UserContext(), strings.TrimSpace(req.URL))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.WebhookResponse{URL: url}})
}

// ListTickets GET /admin/tickets.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	var statuses []domain.TicketStatus
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			statuses = append(statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	tickets, err := h.admin.Tickets(c.UserContext(), statuses, parseInt(c.Query("limit"), 100))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /admin/tickets/:id.
func (h *AdminHandler) GetTicket(c *fiber.Ctx) error {
	detail, err := h.admin.TicketDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	resp := dto.TicketDetailResponse{
		TicketSummary: ticketSummary(detail.Ticket),
		History:       make([]dto.TicketHistoryResponse, 0, len(detail.History)),
	}
	if detail.Rating != nil {
		resp.Rating = &dto.RatingResponse{Score: detail.Rating.Score, CreatedAt: detail.Rating.CreatedAt}
	}
	for _, entry := range detail.History {
		resp.History = append(resp.History, dto.TicketHistoryResponse{
			ID:         entry.ID,
			ChangeType: entry.ChangeType,
			ActorID:    entry.ActorID,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Metrics GET /admin/metrics.
func (h *AdminHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                t.ID,
		UserID:            t.UserID,
		Username:          t.Username,
		ModeratorID:       t.ModeratorID,
		ModeratorUsername: t.ModeratorUsername,
		Status:            t.Status,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func parseInt(val string, fallback int) int {
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
