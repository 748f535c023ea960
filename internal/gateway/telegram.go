package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

// Telegram implements Gateway on top of the Bot API.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegram authenticates against the Bot API. Every call is bounded by timeout.
func NewTelegram(token string, timeout time.Duration, logger *zap.Logger) (*Telegram, error) {
	client := &http.Client{Timeout: timeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	logger.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))
	return &Telegram{bot: bot, logger: logger}, nil
}

// SendMessage sends text with an optional inline keyboard.
func (t *Telegram) SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewGatewayFailure(err)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(keyboard) > 0 {
		msg.ReplyMarkup = inlineMarkup(keyboard)
	}
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return apperrors.NewGatewayFailure(err)
	}
	return nil
}

// ForwardMessage forwards an existing message between chats.
func (t *Telegram) ForwardMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewGatewayFailure(err)
	}
	if _, err := t.bot.Send(tgbotapi.NewForward(chatID, fromChatID, messageID)); err != nil {
		t.logger.Warn("forward message failed",
			zap.Int64("chat_id", chatID),
			zap.Int64("from_chat_id", fromChatID),
			zap.Error(err))
		return apperrors.NewGatewayFailure(err)
	}
	return nil
}

// AnswerAction acknowledges a callback query so the client stops its spinner.
func (t *Telegram) AnswerAction(ctx context.Context, actionID string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewGatewayFailure(err)
	}
	if _, err := t.bot.Request(tgbotapi.NewCallback(actionID, "")); err != nil {
		return apperrors.NewGatewayFailure(err)
	}
	return nil
}

// SetWebhook registers url as the update destination.
func (t *Telegram) SetWebhook(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewGatewayFailure(err)
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return apperrors.NewValidationError("invalid webhook url", map[string]any{"url": url})
	}
	resp, err := t.bot.Request(wh)
	if err != nil {
		return apperrors.NewGatewayFailure(err)
	}
	if !resp.Ok {
		return apperrors.NewGatewayFailure(errors.New(resp.Description))
	}
	return nil
}

func inlineMarkup(keyboard Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
