package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-labs/support-bot/internal/domain"
	"github.com/helpdesk-labs/support-bot/internal/persistence"
)

const uniqueViolation = "23505"

// RatingRepository stores ticket ratings. A ticket has at most one rating.
type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.Rating, error)
}

type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository builds repository.
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

func (r *ratingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	const query = `
        INSERT INTO ratings (ticket_id, score)
        VALUES ($1,$2)
        RETURNING created_at`
	err := persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, rating.TicketID, rating.Score).Scan(&rating.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *ratingRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.Rating, error) {
	const query = `SELECT ticket_id, score, created_at FROM ratings WHERE ticket_id=$1`
	var rating domain.Rating
	if err := persistence.QuerierFrom(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(
		&rating.TicketID,
		&rating.Score,
		&rating.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rating, nil
}
