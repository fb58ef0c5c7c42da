package domain

import (
	"context"
	"time"
)

type Reservation struct {
	ID            int
	UserID        int
	PerformanceID int
	Tickets       []Ticket
	CreatedAt     time.Time
}

type ReservationRepository interface {
	GetAllByUserId(ctx context.Context, userId int, pagination Pagination) ([]Reservation, *Metadata, error)
	GetByIdAndUserId(ctx context.Context, id, userId int) (*Reservation, error)
}
