package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
)

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

func (p *PostgresReservationRepository) GetAllByUserId(
	ctx context.Context,
	userId int,
	pagination domain.Pagination) ([]domain.Reservation, *domain.Metadata, error) {

	query := `
		SELECT COUNT(*) OVER(), r.id, r.user_id, r.performance_id, r.created_at
		FROM reservations r
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userId, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	totalRecords := 0

	for rows.Next() {
		var r domain.Reservation

		err := rows.Scan(&totalRecords, &r.ID, &r.UserID, &r.PerformanceID, &r.CreatedAt)
		if err != nil {
			return nil, nil, err
		}

		r.Tickets = make([]domain.Ticket, 0)
		reservations = append(reservations, r)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	err = p.attachTickets(ctx, reservations)
	if err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return reservations, metadata, nil
}

func (p *PostgresReservationRepository) GetByIdAndUserId(
	ctx context.Context,
	id,
	userId int) (*domain.Reservation, error) {

	query := `
		SELECT r.id, r.user_id, r.performance_id, r.created_at
		FROM reservations r
		WHERE r.id = $1 AND r.user_id = $2
	`

	var r domain.Reservation

	err := p.db.QueryRow(ctx, query, id, userId).Scan(&r.ID, &r.UserID, &r.PerformanceID, &r.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}

	r.Tickets = make([]domain.Ticket, 0)
	reservations := []domain.Reservation{r}

	err = p.attachTickets(ctx, reservations)
	if err != nil {
		return nil, err
	}

	return &reservations[0], nil
}

// attachTickets loads the tickets of all given reservations with one query.
func (p *PostgresReservationRepository) attachTickets(ctx context.Context, reservations []domain.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	ids := make([]int, len(reservations))
	index := make(map[int]int, len(reservations))
	for i, r := range reservations {
		ids[i] = r.ID
		index[r.ID] = i
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE t.reservation_id = ANY($1) ORDER BY t.id`, ticketColumns, ticketJoins)

	rows, err := p.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	tickets, err := collectTickets(rows)
	if err != nil {
		return err
	}

	for _, t := range tickets {
		i := index[*t.ReservationID]
		reservations[i].Tickets = append(reservations[i].Tickets, t)
	}

	return nil
}
