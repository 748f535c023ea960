// Package bot classifies incoming Telegram updates and hands them to the
// conversation and moderation services.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/gateway"
	"github.com/helpdesk-labs/support-bot/internal/repository"
	"github.com/helpdesk-labs/support-bot/internal/service"
	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

const (
	commandStart         = "start"
	commandHelp          = "help"
	commandActiveTickets = "active_tickets"
)

// Dispatcher routes a single update to the service that owns it.
type Dispatcher struct {
	conversation    *service.ConversationService
	moderation      *service.ModerationService
	router          *service.MessageRouter
	gateway         gateway.Gateway
	updates         repository.UpdateLogRepository
	moderatorChatID int64
	logger          *zap.Logger
}

// Dependencies bundles collaborators for the dispatcher.
type Dependencies struct {
	Conversation    *service.ConversationService
	Moderation      *service.ModerationService
	Router          *service.MessageRouter
	Gateway         gateway.Gateway
	UpdateLog       repository.UpdateLogRepository
	ModeratorChatID int64
	Logger          *zap.Logger
}

// NewDispatcher constructs the dispatcher.
func NewDispatcher(deps Dependencies) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		conversation:    deps.Conversation,
		moderation:      deps.Moderation,
		router:          deps.Router,
		gateway:         deps.Gateway,
		updates:         deps.UpdateLog,
		moderatorChatID: deps.ModeratorChatID,
		logger:          logger,
	}
}

// Process handles update once. A redelivered update id is skipped; an update
// that fails is forgotten again so Telegram's retry gets processed.
func (d *Dispatcher) Process(ctx context.Context, update tgbotapi.Update) error {
	if d.updates != nil {
		acquired, err := d.updates.Acquire(ctx, update.UpdateID)
		if err != nil {
			d.logger.Warn("update log unavailable", zap.Int("update_id", update.UpdateID), zap.Error(err))
		} else if !acquired {
			d.logger.Info("duplicate update skipped", zap.Int("update_id", update.UpdateID))
			return nil
		}
	}

	err := d.HandleUpdate(ctx, update)
	if err != nil && d.updates != nil {
		if releaseErr := d.updates.Release(context.WithoutCancel(ctx), update.UpdateID); releaseErr != nil {
			d.logger.Warn("update release failed", zap.Int("update_id", update.UpdateID), zap.Error(releaseErr))
		}
	}
	return err
}

// HandleUpdate classifies update and runs the matching flow.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	var err error
	switch {
	case update.CallbackQuery != nil:
		err = d.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		err = d.handleMessage(ctx, update.Message)
	default:
		d.logger.Debug("update ignored", zap.Int("update_id", update.UpdateID))
	}

	if apperrors.IsRecoverable(err) {
		d.logger.Info("update rejected", zap.Int("update_id", update.UpdateID), zap.Error(err))
		return nil
	}
	return err
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}
	sender := participant(msg.From)

	if msg.IsCommand() {
		switch msg.Command() {
		case commandStart:
			if !msg.Chat.IsPrivate() {
				return nil
			}
			return d.conversation.Start(ctx, sender, msg.Chat.ID)
		case commandHelp:
			return d.conversation.Help(ctx, msg.Chat.ID)
		case commandActiveTickets:
			return d.moderation.ActiveTickets(ctx, msg.Chat.ID)
		}
	}

	inbound := domain.InboundMessage{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Sender:    sender,
		Text:      messageText(msg),
	}

	switch {
	case msg.Chat.ID == d.moderatorChatID:
		if inbound.Text == "" {
			return nil
		}
		return d.router.RouteFromModerator(ctx, inbound)
	case msg.Chat.IsPrivate():
		return d.conversation.UserText(ctx, inbound)
	}
	return nil
}

func (d *Dispatcher) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if err := d.gateway.AnswerAction(ctx, query.ID); err != nil {
		return err
	}
	if query.From == nil {
		return nil
	}

	action, err := service.ParseAction(query.Data)
	if err != nil {
		return err
	}

	user := participant(query.From)
	chatID := user.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}

	switch action.Kind {
	case service.ActionVerify:
		return d.conversation.Verify(ctx, user, chatID)
	case service.ActionTake:
		return d.moderation.Claim(ctx, user, chatID, action.TicketID)
	case service.ActionFinish:
		return d.conversation.Finish(ctx, user, chatID, action.TicketID)
	case service.ActionRate:
		return d.conversation.Rate(ctx, user, chatID, action.TicketID, action.Score)
	}
	return nil
}

func participant(u *tgbotapi.User) domain.Participant {
	return domain.Participant{ID: u.ID, Username: u.UserName, FirstName: u.FirstName}
}

func messageText(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}
