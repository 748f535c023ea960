package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-labs/support-bot/internal/domain"
)

// memoryTicketRepository keeps tickets in process memory. It is used when no
// Postgres DSN is configured and in tests.
type memoryTicketRepository struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	locks   map[string]*sync.Mutex
	seq     map[string]int64
	next    int64
	now     func() time.Time
}

// NewMemoryTicketRepository builds an in-memory ticket store.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		tickets: make(map[string]domain.Ticket),
		locks:   make(map[string]*sync.Mutex),
		seq:     make(map[string]int64),
		now:     time.Now,
	}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tickets[ticket.ID]; exists {
		return ErrDuplicate
	}
	now := r.now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = cloneTicket(*ticket)
	r.locks[ticket.ID] = &sync.Mutex{}
	r.next++
	r.seq[ticket.ID] = r.next
	return nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneTicket(ticket)
	return &out, nil
}

func (r *memoryTicketRepository) Update(ctx context.Context, id string, mutate TicketMutation) (*domain.Ticket, error) {
	r.mu.Lock()
	lock, ok := r.locks[id]
	r.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}

	lock.Lock()
	defer lock.Unlock()

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := mutate(ctx, current); err != nil {
		return nil, err
	}

	r.mu.Lock()
	current.UpdatedAt = r.now()
	r.tickets[id] = cloneTicket(*current)
	r.mu.Unlock()
	return current, nil
}

func (r *memoryTicketRepository) ListWithFilter(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if matchesFilter(ticket, filter) {
			result = append(result, cloneTicket(ticket))
		}
	}
	seq := make(map[string]int64, len(result))
	for _, ticket := range result {
		seq[ticket.ID] = r.seq[ticket.ID]
	}
	r.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		if filter.NewestFirst && !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		if filter.NewestFirst {
			return seq[result[i].ID] > seq[result[j].ID]
		}
		return seq[result[i].ID] < seq[result[j].ID]
	})

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func matchesFilter(ticket domain.Ticket, filter TicketFilter) bool {
	if filter.UserID != nil && ticket.UserID != *filter.UserID {
		return false
	}
	if filter.ModeratorID != nil && (ticket.ModeratorID == nil || *ticket.ModeratorID != *filter.ModeratorID) {
		return false
	}
	if len(filter.Statuses) == 0 {
		return true
	}
	for _, status := range filter.Statuses {
		if ticket.Status == status {
			return true
		}
	}
	return false
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.ModeratorID != nil {
		id := *t.ModeratorID
		t.ModeratorID = &id
	}
	if t.ModeratorUsername != nil {
		name := *t.ModeratorUsername
		t.ModeratorUsername = &name
	}
	return t
}

type memoryRatingRepository struct {
	mu      sync.Mutex
	ratings map[string]domain.Rating
}

// NewMemoryRatingRepository builds an in-memory rating store.
func NewMemoryRatingRepository() RatingRepository {
	return &memoryRatingRepository{ratings: make(map[string]domain.Rating)}
}

func (r *memoryRatingRepository) Create(_ context.Context, rating *domain.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ratings[rating.TicketID]; exists {
		return ErrDuplicate
	}
	rating.CreatedAt = time.Now()
	r.ratings[rating.TicketID] = *rating
	return nil
}

func (r *memoryRatingRepository) GetByTicket(_ context.Context, ticketID string) (*domain.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rating, ok := r.ratings[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &rating, nil
}

type memoryTicketHistoryRepository struct {
	mu      sync.Mutex
	entries map[string][]domain.TicketHistory
}

// NewMemoryTicketHistoryRepository builds an in-memory audit store.
func NewMemoryTicketHistoryRepository() TicketHistoryRepository {
	return &memoryTicketHistoryRepository{entries: make(map[string][]domain.TicketHistory)}
}

func (r *memoryTicketHistoryRepository) Create(_ context.Context, history *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	history.CreatedAt = time.Now()
	r.entries[history.TicketID] = append(r.entries[history.TicketID], *history)
	return nil
}

func (r *memoryTicketHistoryRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TicketHistory(nil), r.entries[ticketID]...), nil
}
