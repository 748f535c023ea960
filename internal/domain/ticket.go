package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen           TicketStatus = "open"
	TicketStatusInProgress     TicketStatus = "in_progress"
	TicketStatusAwaitingRating TicketStatus = "awaiting_rating"
	TicketStatusClosed         TicketStatus = "closed"
)

// ActiveTicketStatuses lists every status except closed.
var ActiveTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusAwaitingRating,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusAwaitingRating, TicketStatusClosed:
		return true
	}
	return false
}

// Participant identifies a chat user or moderator.
type Participant struct {
	ID        int64
	Username  string
	FirstName string
}

// Name returns the username, falling back to the first name.
func (p Participant) Name() string {
	if p.Username != "" {
		return p.Username
	}
	return p.FirstName
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                string
	UserID            int64
	Username          string
	ModeratorID       *int64
	ModeratorUsername *string
	Status            TicketStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasModerator reports whether the ticket has been claimed.
func (t *Ticket) HasModerator() bool {
	return t.ModeratorID != nil
}

// ModeratorName returns the claiming moderator's username or an empty string.
func (t *Ticket) ModeratorName() string {
	if t.ModeratorUsername == nil {
		return ""
	}
	return *t.ModeratorUsername
}

// AssignModerator records the claiming moderator.
func (t *Ticket) AssignModerator(moderator Participant) {
	id := moderator.ID
	name := moderator.Name()
	t.ModeratorID = &id
	t.ModeratorUsername = &name
}

// Rating is the 1..5 score a user leaves once per ticket.
type Rating struct {
	TicketID  string
	Score     int
	CreatedAt time.Time
}

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)
