package events

import (
	"time"

	"github.com/helpdesk-labs/support-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketRated         EventType = "ticket_rated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldModeratorID    *int64 `json:"old_moderator_id,omitempty"`
	ModeratorID       int64  `json:"moderator_id"`
	ModeratorUsername string `json:"moderator_username"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketRatedPayload payload.
type TicketRatedPayload struct {
	Score       int    `json:"score"`
	ModeratorID *int64 `json:"moderator_id,omitempty"`
}
