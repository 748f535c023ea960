package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/gateway"
	"github.com/helpdesk-labs/support-bot/internal/policy"
	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

// MessageRouter decides where an inbound chat message is delivered.
type MessageRouter struct {
	tickets         *TicketService
	gateway         gateway.Gateway
	policy          *policy.ContentPolicy
	moderatorChatID int64
	logger          *zap.Logger
}

// RouterDependencies bundles collaborators for the router.
type RouterDependencies struct {
	Tickets         *TicketService
	Gateway         gateway.Gateway
	Policy          *policy.ContentPolicy
	ModeratorChatID int64
	Logger          *zap.Logger
}

// NewMessageRouter constructs the router.
func NewMessageRouter(deps RouterDependencies) *MessageRouter {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageRouter{
		tickets:         deps.Tickets,
		gateway:         deps.Gateway,
		policy:          deps.Policy,
		moderatorChatID: deps.ModeratorChatID,
		logger:          logger,
	}
}

// Screen applies the content policy. It returns false after telling the
// sender why the message was dropped.
func (r *MessageRouter) Screen(ctx context.Context, msg domain.InboundMessage) (bool, error) {
	term, blocked := r.policy.Match(msg.Text)
	if !blocked {
		return true, nil
	}
	r.logger.Warn("message blocked by content policy",
		zap.Int64("sender_id", msg.Sender.ID),
		zap.Int64("chat_id", msg.ChatID),
		zap.String("term", term))
	return false, r.gateway.SendMessage(ctx, msg.ChatID, textContentRejected, nil)
}

// RouteFromUser delivers a user's message for ticketID: to the assigned
// moderator, or to the moderator group while the ticket is unclaimed.
func (r *MessageRouter) RouteFromUser(ctx context.Context, msg domain.InboundMessage, ticketID string) error {
	if ok, err := r.Screen(ctx, msg); !ok || err != nil {
		return err
	}

	ticket, err := r.tickets.Get(ctx, ticketID)
	if err != nil {
		return replyOnRecoverable(ctx, r.gateway, msg.ChatID, err)
	}

	if !ticket.HasModerator() {
		if err := r.gateway.SendMessage(ctx, msg.ChatID, textWaiting, nil); err != nil {
			return err
		}
		if err := r.gateway.ForwardMessage(ctx, r.moderatorChatID, msg.ChatID, msg.MessageID); err != nil {
			return err
		}
	} else if err := r.gateway.ForwardMessage(ctx, *ticket.ModeratorID, msg.ChatID, msg.MessageID); err != nil {
		return err
	}

	r.logger.Info("user message forwarded",
		zap.String("ticket_id", ticket.ID),
		zap.Int64("user_id", msg.Sender.ID),
		zap.Bool("assigned", ticket.HasModerator()))
	return nil
}

// RouteFromModerator delivers a moderator's reply to the owner of the ticket
// the moderator is working on, together with a finish button.
func (r *MessageRouter) RouteFromModerator(ctx context.Context, msg domain.InboundMessage) error {
	if ok, err := r.Screen(ctx, msg); !ok || err != nil {
		return err
	}

	ticket, err := r.tickets.ActiveForModerator(ctx, msg.Sender.ID)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return r.gateway.SendMessage(ctx, msg.ChatID, textNoActiveTickets, nil)
	}
	if err != nil {
		return err
	}

	if err := r.gateway.SendMessage(ctx, ticket.UserID, msg.Text, nil); err != nil {
		return err
	}
	finish := gateway.Row(gateway.Button{Text: textFinishButton, Data: finishData(ticket.ID)})
	if err := r.gateway.SendMessage(ctx, ticket.UserID, textFinishPrompt, finish); err != nil {
		return err
	}

	r.logger.Info("moderator reply delivered",
		zap.String("ticket_id", ticket.ID),
		zap.Int64("moderator_id", msg.Sender.ID))
	return nil
}

// replyOnRecoverable tells chatID what went wrong when err is recoverable and
// returns nil; other errors are returned unchanged.
func replyOnRecoverable(ctx context.Context, gw gateway.Gateway, chatID int64, err error) error {
	if !apperrors.IsRecoverable(err) {
		return err
	}
	return gw.SendMessage(ctx, chatID, explain(err), nil)
}
