package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/events"
	"github.com/helpdesk-labs/support-bot/internal/repository"
)

// NotificationService turns ticket events into audit trail entries and log lines.
type NotificationService struct {
	dispatcher events.Dispatcher
	history    repository.TicketHistoryRepository
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, history repository.TicketHistoryRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		history:    history,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketRated, n.handleTicketRated)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Int64("user_id", payload.UserID))
	return n.record(ctx, event, domain.ChangeTypeCreated, nil, map[string]any{
		"status":   string(domain.TicketStatusOpen),
		"user_id":  payload.UserID,
		"username": payload.Username,
	})
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", event.TicketID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	return n.record(ctx, event, domain.ChangeTypeStatus,
		map[string]any{"status": string(payload.OldStatus)},
		map[string]any{"status": string(payload.NewStatus)})
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	n.logger.Info("TicketAssigned", zap.String("ticket_id", event.TicketID), zap.Int64("moderator_id", payload.ModeratorID))
	var old map[string]any
	if payload.OldModeratorID != nil {
		old = map[string]any{"moderator_id": *payload.OldModeratorID}
	}
	return n.record(ctx, event, domain.ChangeTypeAssignee, old, map[string]any{
		"moderator_id":       payload.ModeratorID,
		"moderator_username": payload.ModeratorUsername,
	})
}

func (n *NotificationService) handleTicketRated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketRatedPayload)
	if !ok {
		return unexpectedPayload(event)
	}
	n.logger.Info("TicketRated", zap.String("ticket_id", event.TicketID), zap.Int("score", payload.Score))
	return n.record(ctx, event, domain.ChangeTypeRated, nil, map[string]any{"score": payload.Score})
}

func (n *NotificationService) record(ctx context.Context, event events.Event, change domain.TicketChangeType, oldValue, newValue map[string]any) error {
	if n.history == nil {
		return nil
	}
	actor := event.ActorID
	return n.history.Create(ctx, &domain.TicketHistory{
		TicketID:   event.TicketID,
		ChangeType: change,
		ActorID:    &actor,
		OldValue:   oldValue,
		NewValue:   newValue,
		CreatedAt:  event.Timestamp,
	})
}

func unexpectedPayload(event events.Event) error {
	return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
}
