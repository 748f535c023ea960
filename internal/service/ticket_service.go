package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/events"
	"github.com/helpdesk-labs/support-bot/internal/repository"
	apperrors "github.com/helpdesk-labs/support-bot/pkg/util/errorutil"
)

// TicketService owns the ticket lifecycle and decides who may move a ticket
// between states. It never caches tickets; every transition re-reads the
// record under the store's per-ticket lock.
type TicketService struct {
	tickets      repository.TicketRepository
	ratings      repository.RatingRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	storeTimeout time.Duration
	strict       bool
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	RatingRepo   repository.RatingRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	StoreTimeout time.Duration
	// StrictTransitions makes Claim succeed only on unclaimed tickets and
	// Rate only on tickets awaiting a rating.
	StrictTransitions bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.StoreTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TicketService{
		tickets:      deps.TicketRepo,
		ratings:      deps.RatingRepo,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
		storeTimeout: timeout,
		strict:       deps.StrictTransitions,
	}
}

// Create opens a new ticket for user.
func (s *TicketService) Create(ctx context.Context, user domain.Participant) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	ticket := &domain.Ticket{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		Username: user.Name(),
		Status:   domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}

	s.logger.Info("ticket created", zap.String("ticket_id", ticket.ID), zap.Int64("user_id", user.ID))
	s.publish(ctx, events.EventTicketCreated, ticket.ID, user.ID, events.TicketCreatedPayload{
		UserID:   ticket.UserID,
		Username: ticket.Username,
	})
	return ticket, nil
}

// Claim assigns moderator to the ticket and moves it to in_progress.
func (s *TicketService) Claim(ctx context.Context, ticketID string, moderator domain.Participant) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var (
		oldModerator *int64
		oldStatus    domain.TicketStatus
	)
	ticket, err := s.tickets.Update(ctx, ticketID, func(_ context.Context, t *domain.Ticket) error {
		if err := s.checkClaim(t, moderator); err != nil {
			return err
		}
		oldModerator = t.ModeratorID
		oldStatus = t.Status
		t.AssignModerator(moderator)
		t.Status = domain.TicketStatusInProgress
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err, ticketID)
	}

	s.logger.Info("ticket claimed",
		zap.String("ticket_id", ticket.ID),
		zap.Int64("moderator_id", moderator.ID))
	s.publish(ctx, events.EventTicketAssigned, ticket.ID, moderator.ID, events.TicketAssignedPayload{
		OldModeratorID:    oldModerator,
		ModeratorID:       moderator.ID,
		ModeratorUsername: ticket.ModeratorName(),
	})
	if oldStatus != ticket.Status {
		s.publishStatusChange(ctx, ticket.ID, moderator.ID, oldStatus, ticket.Status)
	}
	return ticket, nil
}

// RequestFinish moves an in-progress ticket to awaiting_rating on behalf of its owner.
func (s *TicketService) RequestFinish(ctx context.Context, ticketID string, requesterID int64) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	ticket, err := s.tickets.Update(ctx, ticketID, func(_ context.Context, t *domain.Ticket) error {
		if t.UserID != requesterID {
			return apperrors.NewUnauthorized("you cannot finish this dialogue")
		}
		switch t.Status {
		case domain.TicketStatusInProgress:
		case domain.TicketStatusOpen:
			return apperrors.NewInvalidState("no moderator has taken this ticket yet", statusDetails(t))
		default:
			return apperrors.NewInvalidState("dialogue already finished", statusDetails(t))
		}
		t.Status = domain.TicketStatusAwaitingRating
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err, ticketID)
	}

	s.logger.Info("ticket finish requested", zap.String("ticket_id", ticket.ID), zap.Int64("user_id", requesterID))
	s.publishStatusChange(ctx, ticket.ID, requesterID, domain.TicketStatusInProgress, ticket.Status)
	return ticket, nil
}

// Rate records score for the ticket and closes it. The rating and the status
// change are committed together.
func (s *TicketService) Rate(ctx context.Context, ticketID string, score int) (*domain.Ticket, error) {
	if score < domain.MinRatingScore || score > domain.MaxRatingScore {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"score": score})
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var oldStatus domain.TicketStatus
	ticket, err := s.tickets.Update(ctx, ticketID, func(ctx context.Context, t *domain.Ticket) error {
		if err := s.checkRate(t); err != nil {
			return err
		}
		if err := s.ratings.Create(ctx, &domain.Rating{TicketID: t.ID, Score: score}); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewInvalidState("ticket already rated", statusDetails(t))
			}
			return err
		}
		oldStatus = t.Status
		t.Status = domain.TicketStatusClosed
		return nil
	})
	if err != nil {
		return nil, s.mapStoreError(err, ticketID)
	}

	s.logger.Info("ticket rated", zap.String("ticket_id", ticket.ID), zap.Int("score", score))
	s.publish(ctx, events.EventTicketRated, ticket.ID, ticket.UserID, events.TicketRatedPayload{
		Score:       score,
		ModeratorID: ticket.ModeratorID,
	})
	s.publishStatusChange(ctx, ticket.ID, ticket.UserID, oldStatus, ticket.Status)
	return ticket, nil
}

// Get returns the current ticket.
func (s *TicketService) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, s.mapStoreError(err, ticketID)
	}
	return ticket, nil
}

// Rating returns the rating of a ticket, or NOT_FOUND when it was never rated.
func (s *TicketService) Rating(ctx context.Context, ticketID string) (*domain.Rating, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	rating, err := s.ratings.GetByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("rating", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStoreFailure(err)
	}
	return rating, nil
}

// ListActive returns every ticket that is not closed, oldest first.
func (s *TicketService) ListActive(ctx context.Context) ([]domain.Ticket, error) {
	return s.List(ctx, domain.ActiveTicketStatuses, 0)
}

// List returns tickets in any of statuses, oldest first.
func (s *TicketService) List(ctx context.Context, statuses []domain.TicketStatus, limit int) ([]domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{Statuses: statuses, Limit: limit})
	if err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	return tickets, nil
}

// OpenForUser returns the newest unclaimed ticket opened by userID.
func (s *TicketService) OpenForUser(ctx context.Context, userID int64) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		UserID:      &userID,
		Statuses:    []domain.TicketStatus{domain.TicketStatusOpen},
		NewestFirst: true,
		Limit:       1,
	})
	if err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	if len(tickets) == 0 {
		return nil, apperrors.NewNotFound("open ticket", map[string]any{"user_id": userID})
	}
	return &tickets[0], nil
}

// ActiveForModerator returns the in-progress ticket held by moderatorID.
func (s *TicketService) ActiveForModerator(ctx context.Context, moderatorID int64) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		ModeratorID: &moderatorID,
		Statuses:    []domain.TicketStatus{domain.TicketStatusInProgress},
		NewestFirst: true,
		Limit:       1,
	})
	if err != nil {
		return nil, apperrors.NewStoreFailure(err)
	}
	if len(tickets) == 0 {
		return nil, apperrors.NewNotFound("active ticket", map[string]any{"moderator_id": moderatorID})
	}
	return &tickets[0], nil
}

func (s *TicketService) checkClaim(t *domain.Ticket, moderator domain.Participant) error {
	switch t.Status {
	case domain.TicketStatusOpen:
		return nil
	case domain.TicketStatusInProgress:
		if !s.strict || (t.ModeratorID != nil && *t.ModeratorID == moderator.ID) {
			return nil
		}
		return apperrors.NewInvalidState("ticket already taken by @"+t.ModeratorName(), statusDetails(t))
	default:
		return apperrors.NewInvalidState("ticket is already finished", statusDetails(t))
	}
}

func (s *TicketService) checkRate(t *domain.Ticket) error {
	if t.Status == domain.TicketStatusClosed {
		return apperrors.NewInvalidState("ticket already rated", statusDetails(t))
	}
	if s.strict && t.Status != domain.TicketStatusAwaitingRating {
		return apperrors.NewInvalidState("dialogue is not finished yet", statusDetails(t))
	}
	if !t.HasModerator() {
		return apperrors.NewInvalidState("no moderator has taken this ticket yet", statusDetails(t))
	}
	return nil
}

func (s *TicketService) mapStoreError(err error, ticketID string) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	s.logger.Error("ticket store failure", zap.String("ticket_id", ticketID), zap.Error(err))
	return apperrors.NewStoreFailure(err)
}

func (s *TicketService) publishStatusChange(ctx context.Context, ticketID string, actorID int64, oldStatus, newStatus domain.TicketStatus) {
	s.publish(ctx, events.EventTicketStatusChanged, ticketID, actorID, events.TicketStatusChangedPayload{
		OldStatus: oldStatus,
		NewStatus: newStatus,
	})
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID string, actorID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)),
			zap.String("ticket_id", ticketID),
			zap.Error(err))
	}
}

func statusDetails(t *domain.Ticket) map[string]any {
	return map[string]any{"ticket_id": t.ID, "status": t.Status}
}
