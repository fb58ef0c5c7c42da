package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
)

type PostgresTicketRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTicketRepository(db *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{
		db: db,
	}
}

// GetAllByUserId returns the tickets held by the user's reservations.
func (p *PostgresTicketRepository) GetAllByUserId(ctx context.Context, userId int) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s %s
		JOIN reservations r ON r.id = t.reservation_id
		WHERE r.user_id = $1
		ORDER BY t.id`, ticketColumns, ticketJoins)

	rows, err := p.db.Query(ctx, query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func (p *PostgresTicketRepository) GetByIdAndUserId(ctx context.Context, id, userId int) (*domain.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s %s
		JOIN reservations r ON r.id = t.reservation_id
		WHERE t.id = $1 AND r.user_id = $2`, ticketColumns, ticketJoins)

	ticket, err := scanTicket(p.db.QueryRow(ctx, query, id, userId))
	if err != nil {
		return nil, translateError(err)
	}

	return ticket, nil
}

func (p *PostgresTicketRepository) Delete(ctx context.Context, id int) error {
	result, err := p.db.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
