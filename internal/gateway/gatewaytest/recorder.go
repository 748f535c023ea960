// Package gatewaytest provides an in-memory Gateway for tests.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/helpdesk-labs/support-bot/internal/gateway"
)

// Sent is a recorded outbound message.
type Sent struct {
	ChatID   int64
	Text     string
	Keyboard gateway.Keyboard
}

// Forwarded is a recorded forward.
type Forwarded struct {
	ChatID     int64
	FromChatID int64
	MessageID  int
}

// Recorder records every gateway call. Set Err to make every call fail.
type Recorder struct {
	mu        sync.Mutex
	Err       error
	Sent      []Sent
	Forwarded []Forwarded
	Answered  []string
	Webhooks  []string
}

var _ gateway.Gateway = (*Recorder)(nil)

func (r *Recorder) SendMessage(_ context.Context, chatID int64, text string, keyboard gateway.Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Sent = append(r.Sent, Sent{ChatID: chatID, Text: text, Keyboard: keyboard})
	return nil
}

func (r *Recorder) ForwardMessage(_ context.Context, chatID, fromChatID int64, messageID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Forwarded = append(r.Forwarded, Forwarded{ChatID: chatID, FromChatID: fromChatID, MessageID: messageID})
	return nil
}

func (r *Recorder) AnswerAction(_ context.Context, actionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Answered = append(r.Answered, actionID)
	return nil
}

func (r *Recorder) SetWebhook(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Webhooks = append(r.Webhooks, url)
	return nil
}

// SentTo returns the messages sent to chatID.
func (r *Recorder) SentTo(chatID int64) []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sent
	for _, s := range r.Sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

// Last returns the most recent message, or the zero value.
func (r *Recorder) Last() Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return Sent{}
	}
	return r.Sent[len(r.Sent)-1]
}

// Reset clears recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = nil
	r.Forwarded = nil
	r.Answered = nil
	r.Webhooks = nil
}
