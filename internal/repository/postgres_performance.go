package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
)

type PostgresPerformanceRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPerformanceRepository(db *pgxpool.Pool) *PostgresPerformanceRepository {
	return &PostgresPerformanceRepository{
		db: db,
	}
}

func (p *PostgresPerformanceRepository) GetAll(
	ctx context.Context,
	filters domain.PerformanceFilters) ([]domain.Performance, error) {

	query := fmt.Sprintf(`
		SELECT %s,
			h.rows * h.seats_in_row - (
				SELECT count(*) FROM tickets t
				WHERE t.performance_id = p.id AND t.reservation_id IS NOT NULL
			)
		%s
		WHERE (p.play_id = $1 OR $1 = 0)
			AND (p.theatre_hall_id = $2 OR $2 = 0)
			AND ($3::date IS NULL OR p.show_time::date = $3::date)
		ORDER BY p.show_time, p.id`, performanceColumns, performanceJoins)

	rows, err := p.db.Query(ctx, query, filters.PlayID, filters.HallID, filters.Date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	performances := make([]domain.Performance, 0)

	for rows.Next() {
		var perf domain.Performance

		err := rows.Scan(
			&perf.ID,
			&perf.PlayID,
			&perf.HallID,
			&perf.ShowTime,
			&perf.Image,
			&perf.PlayTitle,
			&perf.Hall.ID,
			&perf.Hall.Name,
			&perf.Hall.Rows,
			&perf.Hall.SeatsInRow,
			&perf.TicketsAvailable,
		)
		if err != nil {
			return nil, err
		}

		performances = append(performances, perf)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return performances, nil
}

// GetById returns the performance with its claimed places and the tickets
// still available for reservation.
func (p *PostgresPerformanceRepository) GetById(ctx context.Context, id int) (*domain.PerformanceDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE p.id = $1`, performanceColumns, performanceJoins)

	perf, err := scanPerformance(p.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}

	detail := &domain.PerformanceDetail{
		Performance:      *perf,
		TakenPlaces:      make([]domain.Place, 0),
		AvailableTickets: make([]domain.Ticket, 0),
	}

	query = fmt.Sprintf(`SELECT %s %s WHERE t.performance_id = $1 ORDER BY t.row_num, t.seat_num`, ticketColumns, ticketJoins)

	rows, err := p.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := collectTickets(rows)
	if err != nil {
		return nil, err
	}

	for _, t := range tickets {
		if t.Reserved() {
			detail.TakenPlaces = append(detail.TakenPlaces, t.Place())
			continue
		}

		detail.AvailableTickets = append(detail.AvailableTickets, t)
	}

	detail.TicketsAvailable = perf.Hall.Capacity() - len(detail.TakenPlaces)

	return detail, nil
}

func (p *PostgresPerformanceRepository) Delete(ctx context.Context, id int) error {
	result, err := p.db.Exec(ctx, `DELETE FROM performances WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresPerformanceRepository) UpdateImage(ctx context.Context, id int, image string) error {
	result, err := p.db.Exec(ctx, `UPDATE performances SET image = $2 WHERE id = $1`, id, image)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
