// Package gateway sends messages through the chat platform.
package gateway

import "context"

// Button is an inline action attached to a message. Data is returned to the
// bot when the button is pressed.
type Button struct {
	Text string
	Data string
}

// Keyboard is a grid of buttons, one slice per row.
type Keyboard [][]Button

// Row builds a single-row keyboard.
func Row(buttons ...Button) Keyboard {
	return Keyboard{buttons}
}

// Gateway is the outbound side of the chat platform. Destinations are chat
// ids: a user's private chat, a moderator's private chat or the moderator group.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) error
	ForwardMessage(ctx context.Context, chatID, fromChatID int64, messageID int) error
	AnswerAction(ctx context.Context, actionID string) error
	SetWebhook(ctx context.Context, url string) error
}
