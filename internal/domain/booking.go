package domain

import (
	"context"
	"time"
)

// BookingStore runs fn inside a single database transaction. The
// transaction is committed when fn returns nil and rolled back otherwise.
type BookingStore interface {
	RunInTx(ctx context.Context, fn func(tx BookingTx) error) error
}

// BookingTx is the set of reads and writes the booking rules need. Reads
// ending in ForUpdate lock the returned rows until the transaction ends.
type BookingTx interface {
	PlayExists(ctx context.Context, id int) (bool, error)
	GetHall(ctx context.Context, id int) (*Hall, error)

	GetPerformanceForUpdate(ctx context.Context, id int) (*Performance, error)
	GetPerformanceForShare(ctx context.Context, id int) (*Performance, error)
	CreatePerformance(ctx context.Context, performance *Performance) error
	UpdatePerformance(ctx context.Context, performance *Performance) error
	CountTickets(ctx context.Context, performanceID int) (int, error)

	GetOccupiedPlaces(ctx context.Context, performanceID int) ([]OccupiedPlace, error)
	GetTicketForUpdate(ctx context.Context, id int) (*Ticket, error)
	GetTicketsForUpdate(ctx context.Context, ids []int) ([]Ticket, error)
	CreateTicket(ctx context.Context, ticket *Ticket) error
	UpdateTicket(ctx context.Context, ticket *Ticket) error

	CreateReservation(ctx context.Context, reservation *Reservation) error
	AttachTicket(ctx context.Context, ticketID, reservationID int) error
	GetReservationForUpdate(ctx context.Context, id int) (*Reservation, error)
	DetachTickets(ctx context.Context, reservationID int) error
	DeleteReservation(ctx context.Context, id int) error
}

type ReservationEventType string

const (
	ReservationCreated   ReservationEventType = "reservation.created"
	ReservationCancelled ReservationEventType = "reservation.cancelled"
)

type ReservationEvent struct {
	Type          ReservationEventType `json:"type"`
	ReservationID int                  `json:"reservation_id"`
	UserID        int                  `json:"user_id"`
	PerformanceID int                  `json:"performance_id"`
	TicketIDs     []int                `json:"ticket_ids"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
}
