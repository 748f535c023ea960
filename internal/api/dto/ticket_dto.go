package dto

import (
	"time"

	"github.com/helpdesk-labs/support-bot/internal/domain"
)

// TicketSummary response.
type TicketSummary struct {
	ID                string              `json:"id"`
	UserID            int64               `json:"user_id"`
	Username          string              `json:"username"`
	ModeratorID       *int64              `json:"moderator_id"`
	ModeratorUsername *string             `json:"moderator_username"`
	Status            domain.TicketStatus `json:"status"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// RatingResponse represents a closed ticket's score.
type RatingResponse struct {
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketHistoryResponse is an audit trail entry.
type TicketHistoryResponse struct {
	ID         string                  `json:"id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	ActorID    *int64                  `json:"actor_id"`
	OldValue   map[string]any          `json:"old_value,omitempty"`
	NewValue   map[string]any          `json:"new_value,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Rating  *RatingResponse         `json:"rating"`
	History []TicketHistoryResponse `json:"history"`
}
