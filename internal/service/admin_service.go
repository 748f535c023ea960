package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-labs/support-bot/internal/auth"
	"github.com/helpdesk-labs/support-bot/internal/config"
	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/gateway"
	"github.com/helpdesk-labs/support-bot/internal/repository"
	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

const adminSubject = "admin"

// AdminService authenticates operators and performs bot administration.
type AdminService struct {
	tokenMgr   *auth.TokenManager
	apiKeyHash string
	gateway    gateway.Gateway
	tickets    *TicketService
	history    repository.TicketHistoryRepository
	webhookURL string
	logger     *zap.Logger
}

// AdminDependencies encapsulates collaborators for the admin service.
type AdminDependencies struct {
	Gateway     gateway.Gateway
	Tickets     *TicketService
	HistoryRepo repository.TicketHistoryRepository
	Logger      *zap.Logger
}

// TicketDetail is a ticket with everything recorded about it.
type TicketDetail struct {
	Ticket  *domain.Ticket
	Rating  *domain.Rating
	History []domain.TicketHistory
}

// NewAdminService builds the service.
func NewAdminService(cfg config.Config, deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		apiKeyHash: cfg.Auth.AdminAPIKeyHash,
		gateway:    deps.Gateway,
		tickets:    deps.Tickets,
		history:    deps.HistoryRepo,
		webhookURL: cfg.Telegram.WebhookURL(),
		logger:     logger,
	}
}

// Login exchanges the admin API key for a short lived token.
func (s *AdminService) Login(_ context.Context, apiKey string) (string, time.Time, error) {
	if s.apiKeyHash == "" {
		return "", time.Time{}, apperrors.NewUnauthorized("admin access is disabled")
	}
	if err := auth.ComparePassword(s.apiKeyHash, apiKey); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(adminSubject, domain.SubjectTypeAdmin)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, exp, nil
}

// RegisterWebhook points Telegram at url, or at the configured public
// address when url is empty. It returns the registered address.
func (s *AdminService) RegisterWebhook(ctx context.Context, url string) (string, error) {
	if url == "" {
		url = s.webhookURL
	}
	if url == "" {
		return "", apperrors.NewValidationError("webhook url is not configured", nil)
	}
	if err := s.gateway.SetWebhook(ctx, url); err != nil {
		s.logger.Error("webhook registration failed", zap.String("url", url), zap.Error(err))
		return "", err
	}
	s.logger.Info("webhook registered", zap.String("url", url))
	return url, nil
}

// Tickets lists tickets in statuses, or every active ticket when statuses is empty.
func (s *AdminService) Tickets(ctx context.Context, statuses []domain.TicketStatus, limit int) ([]domain.Ticket, error) {
	for _, status := range statuses {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": status})
		}
	}
	if len(statuses) == 0 {
		statuses = domain.ActiveTicketStatuses
	}
	return s.tickets.List(ctx, statuses, limit)
}

// TicketDetail loads a ticket with its rating and audit trail.
func (s *AdminService) TicketDetail(ctx context.Context, ticketID string) (*TicketDetail, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	detail := &TicketDetail{Ticket: ticket}

	rating, err := s.tickets.Rating(ctx, ticketID)
	switch {
	case err == nil:
		detail.Rating = rating
	case !apperrors.HasCode(err, apperrors.CodeNotFound):
		return nil, err
	}

	if s.history != nil {
		history, err := s.history.ListByTicket(ctx, ticketID)
		if err != nil {
			return nil, apperrors.NewStoreFailure(err)
		}
		detail.History = history
	}
	return detail, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AdminService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
