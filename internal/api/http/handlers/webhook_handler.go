package handlers

import (
	"bytes"
	"context"
	"encoding/json"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helpdesk-labs/support-bot/internal/policy"
	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

// UpdateProcessor runs the bot core for one update.
type UpdateProcessor interface {
	Process(ctx context.Context, update tgbotapi.Update) error
}

// WebhookHandler receives updates pushed by Telegram.
type WebhookHandler struct {
	processor UpdateProcessor
	policy    *policy.ContentPolicy
	logger    *zap.Logger
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(processor UpdateProcessor, contentPolicy *policy.ContentPolicy, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{processor: processor, policy: contentPolicy, logger: logger}
}

// Receive POST /webhook.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	body := c.Body()
	if err := h.policy.CheckRaw(body); err != nil {
		h.logger.Warn("webhook payload rejected by content policy", zap.Any("details", apperrors.ToDomainError(err).Details))
		return err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return apperrors.NewValidationError("empty update payload", nil)
	}
	var update tgbotapi.Update
	if err := json.Unmarshal(trimmed, &update); err != nil {
		return apperrors.NewValidationError("invalid update payload", nil)
	}
	if update.UpdateID <= 0 {
		return apperrors.NewValidationError("update_id is required", nil)
	}

	if err := h.processor.Process(c.UserContext(), update); err != nil {
		domainErr := apperrors.ToDomainError(err)
		if domainErr.HTTPStatus < fiber.StatusInternalServerError {
			return apperrors.NewInternalError(err)
		}
		return domainErr
	}
	return c.SendString("OK")
}
