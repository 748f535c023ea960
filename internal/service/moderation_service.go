package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/gateway"
)

// ModerationService handles the moderator side: claiming tickets and listing
// the ones still open.
type ModerationService struct {
	tickets         *TicketService
	gateway         gateway.Gateway
	moderatorChatID int64
	logger          *zap.Logger
}

// NewModerationService constructs the service.
func NewModerationService(tickets *TicketService, gw gateway.Gateway, moderatorChatID int64, logger *zap.Logger) *ModerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModerationService{
		tickets:         tickets,
		gateway:         gw,
		moderatorChatID: moderatorChatID,
		logger:          logger,
	}
}

// Claim assigns the ticket to moderator and tells both sides.
func (s *ModerationService) Claim(ctx context.Context, moderator domain.Participant, chatID int64, ticketID string) error {
	ticket, err := s.tickets.Claim(ctx, ticketID, moderator)
	if err != nil {
		return replyOnRecoverable(ctx, s.gateway, chatID, err)
	}

	if err := s.gateway.SendMessage(ctx, chatID, claimedText(ticket), nil); err != nil {
		return err
	}
	return s.gateway.SendMessage(ctx, ticket.UserID, moderatorAssignedText(ticket), nil)
}

// ActiveTickets lists open tickets. It only answers in the moderator chat.
func (s *ModerationService) ActiveTickets(ctx context.Context, chatID int64) error {
	if chatID != s.moderatorChatID {
		return s.gateway.SendMessage(ctx, chatID, textModeratorsOnly, nil)
	}

	tickets, err := s.tickets.ListActive(ctx)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		return s.gateway.SendMessage(ctx, chatID, textNoTickets, nil)
	}
	s.logger.Info("active tickets listed", zap.Int("count", len(tickets)))
	return s.gateway.SendMessage(ctx, chatID, ticketListText(tickets), nil)
}
