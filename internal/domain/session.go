package domain

import "time"

// SessionState is the position of a user in the support conversation.
type SessionState string

const (
	SessionChooseVerification SessionState = "CHOOSE_VERIFICATION"
	SessionAwaitingResponse   SessionState = "AWAITING_RESPONSE"
	SessionAwaitingRating     SessionState = "AWAITING_RATING"
	// SessionEnd is never stored; reaching it removes the session.
	SessionEnd SessionState = "END"
)

// Session is the ephemeral conversation state of one user. A finished
// conversation has no session at all.
type Session struct {
	UserID    int64
	State     SessionState
	TicketID  string
	UpdatedAt time.Time
}
