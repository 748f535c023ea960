package domain

// InboundMessage is a chat message received from the platform.
type InboundMessage struct {
	ChatID    int64
	MessageID int
	Sender    Participant
	Text      string
}
