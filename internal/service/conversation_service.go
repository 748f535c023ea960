package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/gateway"
	"github.com/helpdesk-labs/support-bot/internal/session"
	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

// ConversationService walks a user through start, verification, the
// conversation with a moderator, finishing and rating. The session is only
// advanced after every store and gateway step of a transition succeeded. A
// transition whose store step committed but whose reply failed is completed
// when the same action arrives again.
type ConversationService struct {
	tickets         *TicketService
	router          *MessageRouter
	sessions        session.Store
	gateway         gateway.Gateway
	moderatorChatID int64
	brand           string
	logger          *zap.Logger
	locks           userLocks
}

// userLocks serializes transitions of one user. Users share a stripe when
// their ids collide modulo the stripe count.
type userLocks [256]sync.Mutex

func (l *userLocks) lock(userID int64) func() {
	m := &l[uint64(userID)%uint64(len(l))]
	m.Lock()
	return m.Unlock
}

// ConversationDependencies bundles collaborators for the conversation flow.
type ConversationDependencies struct {
	Tickets         *TicketService
	Router          *MessageRouter
	Sessions        session.Store
	Gateway         gateway.Gateway
	ModeratorChatID int64
	Brand           string
	Logger          *zap.Logger
}

// NewConversationService constructs the service.
func NewConversationService(deps ConversationDependencies) *ConversationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		tickets:         deps.Tickets,
		router:          deps.Router,
		sessions:        deps.Sessions,
		gateway:         deps.Gateway,
		moderatorChatID: deps.ModeratorChatID,
		brand:           deps.Brand,
		logger:          logger,
	}
}

// Start greets the user and asks for verification.
func (s *ConversationService) Start(ctx context.Context, user domain.Participant, chatID int64) error {
	unlock := s.locks.lock(user.ID)
	defer unlock()

	if sess, ok := s.sessions.Get(user.ID); ok {
		switch sess.State {
		case domain.SessionAwaitingResponse:
			return s.gateway.SendMessage(ctx, chatID, textAlreadyOpen, nil)
		case domain.SessionAwaitingRating:
			return s.gateway.SendMessage(ctx, chatID, textRateFirst, nil)
		}
	}

	verify := gateway.Row(gateway.Button{Text: textVerifyButton, Data: verifyData()})
	if err := s.gateway.SendMessage(ctx, chatID, welcomeText(s.brand, user), verify); err != nil {
		return err
	}
	s.sessions.Put(domain.Session{UserID: user.ID, State: domain.SessionChooseVerification})
	s.logger.Info("conversation started", zap.Int64("user_id", user.ID))
	return nil
}

// Verify opens a ticket for a user who confirmed they are not a bot and
// offers it to the moderators. An unclaimed ticket left behind by a failed
// attempt is offered again instead of opening a second one.
func (s *ConversationService) Verify(ctx context.Context, user domain.Participant, chatID int64) error {
	unlock := s.locks.lock(user.ID)
	defer unlock()

	sess, ok := s.sessions.Get(user.ID)
	if !ok {
		return s.gateway.SendMessage(ctx, chatID, textStartFirst, nil)
	}
	if sess.State != domain.SessionChooseVerification {
		return s.gateway.SendMessage(ctx, chatID, textAlreadyOpen, nil)
	}

	ticket, err := s.openTicket(ctx, user)
	if err != nil {
		return err
	}

	take := gateway.Row(gateway.Button{Text: textTakeButton, Data: takeData(ticket.ID)})
	if err := s.gateway.SendMessage(ctx, s.moderatorChatID, claimOfferText(user), take); err != nil {
		return err
	}
	if err := s.gateway.SendMessage(ctx, chatID, textAskQuestion, nil); err != nil {
		return err
	}

	s.sessions.Put(domain.Session{UserID: user.ID, State: domain.SessionAwaitingResponse, TicketID: ticket.ID})
	s.logger.Info("user verified", zap.Int64("user_id", user.ID), zap.String("ticket_id", ticket.ID))
	return nil
}

func (s *ConversationService) openTicket(ctx context.Context, user domain.Participant) (*domain.Ticket, error) {
	existing, err := s.tickets.OpenForUser(ctx, user.ID)
	if err == nil {
		s.logger.Info("reusing open ticket", zap.Int64("user_id", user.ID), zap.String("ticket_id", existing.ID))
		return existing, nil
	}
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, err
	}
	return s.tickets.Create(ctx, user)
}

// UserText handles a message the user wrote in a private chat.
func (s *ConversationService) UserText(ctx context.Context, msg domain.InboundMessage) error {
	if ok, err := s.router.Screen(ctx, msg); !ok || err != nil {
		return err
	}

	sess, ok := s.sessions.Get(msg.Sender.ID)
	if !ok {
		return s.gateway.SendMessage(ctx, msg.ChatID, textStartFirst, nil)
	}
	switch sess.State {
	case domain.SessionChooseVerification:
		return s.gateway.SendMessage(ctx, msg.ChatID, textVerifyFirst, nil)
	case domain.SessionAwaitingRating:
		return s.gateway.SendMessage(ctx, msg.ChatID, textRateFirst, nil)
	}
	return s.router.RouteFromUser(ctx, msg, sess.TicketID)
}

// Finish asks for a rating once the ticket owner ends the dialogue. Pressing
// Finish again while the ticket awaits its rating re-sends the keyboard.
func (s *ConversationService) Finish(ctx context.Context, user domain.Participant, chatID int64, ticketID string) error {
	unlock := s.locks.lock(user.ID)
	defer unlock()

	ticket, err := s.tickets.RequestFinish(ctx, ticketID, user.ID)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeInvalidState) {
			return replyOnRecoverable(ctx, s.gateway, chatID, err)
		}
		current, getErr := s.tickets.Get(ctx, ticketID)
		if getErr != nil {
			return replyOnRecoverable(ctx, s.gateway, chatID, getErr)
		}
		if current.UserID != user.ID || current.Status != domain.TicketStatusAwaitingRating {
			return replyOnRecoverable(ctx, s.gateway, chatID, err)
		}
		ticket = current
	}

	if err := s.gateway.SendMessage(ctx, chatID, textRatePrompt, ratingKeyboard(ticket.ID)); err != nil {
		return err
	}
	s.sessions.Put(domain.Session{UserID: user.ID, State: domain.SessionAwaitingRating, TicketID: ticket.ID})
	return nil
}

// Rate closes the ticket with the user's score and reports it to the
// moderators. The session ends only once the report is delivered; until then a
// repeated rating replays the stored score.
func (s *ConversationService) Rate(ctx context.Context, user domain.Participant, chatID int64, ticketID string, score int) error {
	unlock := s.locks.lock(user.ID)
	defer unlock()

	current, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return replyOnRecoverable(ctx, s.gateway, chatID, err)
	}
	if current.UserID != user.ID {
		return s.gateway.SendMessage(ctx, chatID, textNotYourTicket, nil)
	}

	ticket, err := s.tickets.Rate(ctx, ticketID, score)
	if err != nil {
		sess, ok := s.sessions.Get(user.ID)
		pending := ok && sess.State == domain.SessionAwaitingRating && sess.TicketID == ticketID
		if !pending || current.Status != domain.TicketStatusClosed || !apperrors.HasCode(err, apperrors.CodeInvalidState) {
			return replyOnRecoverable(ctx, s.gateway, chatID, err)
		}
		rating, ratingErr := s.tickets.Rating(ctx, ticketID)
		if ratingErr != nil {
			return replyOnRecoverable(ctx, s.gateway, chatID, ratingErr)
		}
		ticket, score = current, rating.Score
	}

	if err := s.gateway.SendMessage(ctx, s.moderatorChatID, ratingSummaryText(ticket, score), nil); err != nil {
		return err
	}
	if sess, ok := s.sessions.Get(user.ID); ok && sess.TicketID == ticket.ID {
		s.sessions.Delete(user.ID)
	}
	return s.gateway.SendMessage(ctx, chatID, textRateThanks, nil)
}

// Help describes what the bot can do.
func (s *ConversationService) Help(ctx context.Context, chatID int64) error {
	return s.gateway.SendMessage(ctx, chatID, helpText(s.brand), nil)
}
