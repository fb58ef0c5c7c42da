package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
)

type PostgresBookingStore struct {
	db *pgxpool.Pool
}

func NewPostgresBookingStore(db *pgxpool.Pool) *PostgresBookingStore {
	return &PostgresBookingStore{
		db: db,
	}
}

func (p *PostgresBookingStore) RunInTx(ctx context.Context, fn func(tx domain.BookingTx) error) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		return fn(&pgBookingTx{tx: tx})
	})
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

type pgBookingTx struct {
	tx pgx.Tx
}

const performanceColumns = `
	p.id, p.play_id, p.theatre_hall_id, p.show_time, p.image, pl.title,
	h.id, h.name, h.rows, h.seats_in_row`

const performanceJoins = `
	FROM performances p
	JOIN plays pl ON pl.id = p.play_id
	JOIN theatre_halls h ON h.id = p.theatre_hall_id`

const ticketColumns = `t.id, t.row_num, t.seat_num, t.performance_id, t.reservation_id, pl.title`

const ticketJoins = `
	FROM tickets t
	JOIN performances p ON p.id = t.performance_id
	JOIN plays pl ON pl.id = p.play_id`

func (t *pgBookingTx) PlayExists(ctx context.Context, id int) (bool, error) {
	var exists bool

	err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM plays WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (t *pgBookingTx) GetHall(ctx context.Context, id int) (*domain.Hall, error) {
	query := `
		SELECT id, name, rows, seats_in_row
		FROM theatre_halls
		WHERE id = $1
		FOR SHARE`

	var hall domain.Hall

	err := t.tx.QueryRow(ctx, query, id).Scan(&hall.ID, &hall.Name, &hall.Rows, &hall.SeatsInRow)
	if err != nil {
		return nil, translateError(err)
	}

	return &hall, nil
}

func (t *pgBookingTx) GetPerformanceForUpdate(ctx context.Context, id int) (*domain.Performance, error) {
	return t.getPerformance(ctx, id, "FOR UPDATE OF p")
}

func (t *pgBookingTx) GetPerformanceForShare(ctx context.Context, id int) (*domain.Performance, error) {
	return t.getPerformance(ctx, id, "FOR SHARE OF p")
}

func (t *pgBookingTx) getPerformance(ctx context.Context, id int, lock string) (*domain.Performance, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE p.id = $1 %s`, performanceColumns, performanceJoins, lock)

	performance, err := scanPerformance(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}

	return performance, nil
}

func (t *pgBookingTx) CreatePerformance(ctx context.Context, performance *domain.Performance) error {
	query := `
		WITH inserted AS (
			INSERT INTO performances (play_id, theatre_hall_id, show_time)
			VALUES ($1, $2, $3)
			RETURNING id, play_id
		)
		SELECT i.id, pl.title
		FROM inserted i
		JOIN plays pl ON pl.id = i.play_id`

	err := t.tx.QueryRow(
		ctx,
		query,
		performance.PlayID,
		performance.HallID,
		performance.ShowTime).Scan(&performance.ID, &performance.PlayTitle)

	if err != nil {
		return translateError(err)
	}

	return nil
}

func (t *pgBookingTx) UpdatePerformance(ctx context.Context, performance *domain.Performance) error {
	query := `
		WITH updated AS (
			UPDATE performances
			SET play_id = $2, theatre_hall_id = $3, show_time = $4
			WHERE id = $1
			RETURNING play_id
		)
		SELECT pl.title
		FROM updated u
		JOIN plays pl ON pl.id = u.play_id`

	err := t.tx.QueryRow(
		ctx,
		query,
		performance.ID,
		performance.PlayID,
		performance.HallID,
		performance.ShowTime).Scan(&performance.PlayTitle)

	if err != nil {
		return translateError(err)
	}

	return nil
}

func (t *pgBookingTx) CountTickets(ctx context.Context, performanceID int) (int, error) {
	var count int

	err := t.tx.QueryRow(ctx, `SELECT count(*) FROM tickets WHERE performance_id = $1`, performanceID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (t *pgBookingTx) GetOccupiedPlaces(ctx context.Context, performanceID int) ([]domain.OccupiedPlace, error) {
	query := `
		SELECT id, row_num, seat_num
		FROM tickets
		WHERE performance_id = $1`

	rows, err := t.tx.Query(ctx, query, performanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occupied := make([]domain.OccupiedPlace, 0)

	for rows.Next() {
		var o domain.OccupiedPlace

		err = rows.Scan(&o.TicketID, &o.Row, &o.Seat)
		if err != nil {
			return nil, err
		}

		occupied = append(occupied, o)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return occupied, nil
}

func (t *pgBookingTx) GetTicketForUpdate(ctx context.Context, id int) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE t.id = $1 FOR UPDATE OF t`, ticketColumns, ticketJoins)

	ticket, err := scanTicket(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}

	return ticket, nil
}

// GetTicketsForUpdate locks the tickets in id order so that concurrent
// claimers of overlapping sets always wait on each other in the same order.
func (t *pgBookingTx) GetTicketsForUpdate(ctx context.Context, ids []int) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE t.id = ANY($1) ORDER BY t.id FOR UPDATE OF t`, ticketColumns, ticketJoins)

	rows, err := t.tx.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func (t *pgBookingTx) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (row_num, seat_num, performance_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := t.tx.QueryRow(ctx, query, ticket.Row, ticket.Seat, ticket.PerformanceID).Scan(&ticket.ID)
	if err != nil {
		return translateError(err)
	}

	return nil
}

func (t *pgBookingTx) UpdateTicket(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		UPDATE tickets
		SET row_num = $2, seat_num = $3, performance_id = $4
		WHERE id = $1`

	result, err := t.tx.Exec(ctx, query, ticket.ID, ticket.Row, ticket.Seat, ticket.PerformanceID)
	if err != nil {
		return translateError(err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (t *pgBookingTx) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (user_id, performance_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := t.tx.QueryRow(
		ctx,
		query,
		reservation.UserID,
		reservation.PerformanceID,
		reservation.CreatedAt).Scan(&reservation.ID, &reservation.CreatedAt)

	if err != nil {
		return translateError(err)
	}

	return nil
}

// AttachTicket claims the ticket only if it is still unreserved.
func (t *pgBookingTx) AttachTicket(ctx context.Context, ticketID, reservationID int) error {
	query := `
		UPDATE tickets
		SET reservation_id = $2
		WHERE id = $1 AND reservation_id IS NULL`

	result, err := t.tx.Exec(ctx, query, ticketID, reservationID)
	if err != nil {
		return translateError(err)
	}

	if result.RowsAffected() == 0 {
		return &domain.ConflictError{
			Field:  "tickets",
			Reason: fmt.Sprintf("ticket %d is already reserved", ticketID),
		}
	}

	return nil
}

func (t *pgBookingTx) GetReservationForUpdate(ctx context.Context, id int) (*domain.Reservation, error) {
	query := `
		SELECT id, user_id, performance_id, created_at
		FROM reservations
		WHERE id = $1
		FOR UPDATE`

	var r domain.Reservation

	err := t.tx.QueryRow(ctx, query, id).Scan(&r.ID, &r.UserID, &r.PerformanceID, &r.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}

	query = fmt.Sprintf(`SELECT %s %s WHERE t.reservation_id = $1 ORDER BY t.id FOR UPDATE OF t`, ticketColumns, ticketJoins)

	rows, err := t.tx.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	r.Tickets, err = collectTickets(rows)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func (t *pgBookingTx) DetachTickets(ctx context.Context, reservationID int) error {
	_, err := t.tx.Exec(ctx, `UPDATE tickets SET reservation_id = NULL WHERE reservation_id = $1`, reservationID)
	return err
}

func (t *pgBookingTx) DeleteReservation(ctx context.Context, id int) error {
	result, err := t.tx.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func scanPerformance(row pgx.Row) (*domain.Performance, error) {
	var p domain.Performance

	err := row.Scan(
		&p.ID,
		&p.PlayID,
		&p.HallID,
		&p.ShowTime,
		&p.Image,
		&p.PlayTitle,
		&p.Hall.ID,
		&p.Hall.Name,
		&p.Hall.Rows,
		&p.Hall.SeatsInRow,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket

	err := row.Scan(
		&t.ID,
		&t.Row,
		&t.Seat,
		&t.PerformanceID,
		&t.ReservationID,
		&t.PerformanceTitle,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func collectTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	tickets := make([]domain.Ticket, 0)

	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, *ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}
