package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/persistence"
)

// ErrDuplicate is returned when a unique record already exists.
var ErrDuplicate = errors.New("duplicate record")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	UserID      *int64
	ModeratorID *int64
	Statuses    []domain.TicketStatus
	NewestFirst bool
	Limit       int
	Offset      int
}

// TicketMutation changes a locked ticket. ctx carries the surrounding
// transaction, so repositories called with it commit together with the ticket.
type TicketMutation func(ctx context.Context, ticket *domain.Ticket) error

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// Update applies mutate to the ticket while holding its row lock.
	Update(ctx context.Context, id string, mutate TicketMutation) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const selectTicketColumns = `
        SELECT id, user_id, username, moderator_id, moderator_username, status, created_at, updated_at
        FROM tickets`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, user_id, username, moderator_id, moderator_username, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`
	return persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query,
		ticket.ID,
		ticket.UserID,
		ticket.Username,
		ticket.ModeratorID,
		ticket.ModeratorUsername,
		ticket.Status,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return scanTicket(persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, selectTicketColumns+` WHERE id=$1`, id))
}

func (r *ticketRepository) Update(ctx context.Context, id string, mutate TicketMutation) (*domain.Ticket, error) {
	var updated *domain.Ticket
	err := persistence.InTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		ticket, err := scanTicket(tx.QueryRow(ctx, selectTicketColumns+` WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if err := mutate(ctx, ticket); err != nil {
			return err
		}

		const query = `
            UPDATE tickets SET moderator_id=$1, moderator_username=$2, status=$3, updated_at=NOW()
            WHERE id=$4
            RETURNING updated_at`
		if err := tx.QueryRow(ctx, query,
			ticket.ModeratorID,
			ticket.ModeratorUsername,
			ticket.Status,
			ticket.ID,
		).Scan(&ticket.UpdatedAt); err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.ModeratorID != nil {
		args = append(args, *filter.ModeratorID)
		clauses = append(clauses, fmt.Sprintf("moderator_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	order := "created_at ASC"
	if filter.NewestFirst {
		order = "updated_at DESC"
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		selectTicketColumns, strings.Join(clauses, " AND "), order, limit, offset)

	rows, err := persistence.QuerierFrom(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.Username,
		&ticket.ModeratorID,
		&ticket.ModeratorUsername,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
