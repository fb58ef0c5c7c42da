package domain

import (
	"context"
	"fmt"
)

type Place struct {
	Row  int
	Seat int
}

type Ticket struct {
	ID               int
	Row              int
	Seat             int
	PerformanceID    int
	ReservationID    *int
	PerformanceTitle string
}

func (t Ticket) Place() Place {
	return Place{Row: t.Row, Seat: t.Seat}
}

func (t Ticket) Reserved() bool {
	return t.ReservationID != nil
}

// OccupiedPlace is a place held by an existing ticket of a performance.
type OccupiedPlace struct {
	TicketID int
	Place
}

// ValidateSeat checks that row and seat fall inside the hall.
func ValidateSeat(row, seat int, hall Hall) error {
	if row < 1 || row > hall.Rows {
		return &RangeError{Field: "row", Value: row, Min: 1, Max: hall.Rows}
	}
	if seat < 1 || seat > hall.SeatsInRow {
		return &RangeError{Field: "seat", Value: seat, Min: 1, Max: hall.SeatsInRow}
	}

	return nil
}

// ValidateTicket checks the ticket against the hall of its performance and
// against the places already held by other tickets of that performance.
func ValidateTicket(t Ticket, hall Hall, occupied []OccupiedPlace) error {
	err := ValidateSeat(t.Row, t.Seat, hall)
	if err != nil {
		return err
	}

	for _, o := range occupied {
		if o.TicketID != t.ID && o.Place == t.Place() {
			return &ConflictError{
				Field:  "seat",
				Reason: fmt.Sprintf("row %d seat %d is already taken for this performance", t.Row, t.Seat),
			}
		}
	}

	return nil
}

type TicketRepository interface {
	GetAllByUserId(ctx context.Context, userId int) ([]Ticket, error)
	GetByIdAndUserId(ctx context.Context, id, userId int) (*Ticket, error)
	Delete(ctx context.Context, id int) error
}
