package service

import (
	"testing"
	"time"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/events"
	"github.com/helpdesk-labs/support-bot/internal/gateway/gatewaytest"
	"github.com/helpdesk-labs/support-bot/internal/policy"
	"github.com/helpdesk-labs/support-bot/internal/repository"
	"github.com/helpdesk-labs/support-bot/internal/session"
)

const moderatorChat int64 = -1001

var (
	alice = domain.Participant{ID: 1, Username: "alice", FirstName: "Alice"}
	bob   = domain.Participant{ID: 2, FirstName: "Bob"}
	mod   = domain.Participant{ID: 10, Username: "mod", FirstName: "Mo"}
	mod2  = domain.Participant{ID: 11, Username: "mod2"}
)

type harness struct {
	gw           *gatewaytest.Recorder
	ticketRepo   repository.TicketRepository
	history      repository.TicketHistoryRepository
	sessions     *session.LRUStore
	tickets      *TicketService
	router       *MessageRouter
	conversation *ConversationService
	moderation   *ModerationService
}

func newHarness(t *testing.T, strict bool) *harness {
	t.Helper()
	h := &harness{
		gw:         &gatewaytest.Recorder{},
		ticketRepo: repository.NewMemoryTicketRepository(),
		history:    repository.NewMemoryTicketHistoryRepository(),
		sessions:   session.NewLRUStore(100, time.Hour),
	}
	dispatcher := events.NewSyncDispatcher(nil)
	NewNotificationService(dispatcher, h.history, nil).RegisterHandlers()

	h.tickets = NewTicketService(TicketDependencies{
		TicketRepo:        h.ticketRepo,
		RatingRepo:        repository.NewMemoryRatingRepository(),
		Dispatcher:        dispatcher,
		StrictTransitions: strict,
	})
	h.router = NewMessageRouter(RouterDependencies{
		Tickets:         h.tickets,
		Gateway:         h.gw,
		Policy:          policy.NewContentPolicy([]string{"vpn"}),
		ModeratorChatID: moderatorChat,
	})
	h.conversation = NewConversationService(ConversationDependencies{
		Tickets:         h.tickets,
		Router:          h.router,
		Sessions:        h.sessions,
		Gateway:         h.gw,
		ModeratorChatID: moderatorChat,
		Brand:           "Acme",
	})
	h.moderation = NewModerationService(h.tickets, h.gw, moderatorChat, nil)
	return h
}

func userMessage(from domain.Participant, id int, text string) domain.InboundMessage {
	return domain.InboundMessage{ChatID: from.ID, MessageID: id, Sender: from, Text: text}
}

func moderatorMessage(from domain.Participant, id int, text string) domain.InboundMessage {
	return domain.InboundMessage{ChatID: moderatorChat, MessageID: id, Sender: from, Text: text}
}
