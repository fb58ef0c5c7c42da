package domain

import (
	"context"
	"time"
)

type Performance struct {
	ID        int
	PlayID    int
	HallID    int
	ShowTime  time.Time
	Image     string
	PlayTitle string
	Hall      Hall

	// TicketsAvailable is only populated by list queries.
	TicketsAvailable int
}

type PerformanceFilters struct {
	PlayID int
	HallID int
	Date   *time.Time
}

// PerformanceDetail is a performance with its current seat occupancy.
type PerformanceDetail struct {
	Performance
	TakenPlaces      []Place
	AvailableTickets []Ticket
}

// CheckShowTime rejects show times that are already in the past at now.
func CheckShowTime(showTime, now time.Time) error {
	if showTime.Before(now) {
		return ErrPastTime
	}

	return nil
}

// CheckReservationWindow rejects reservations made less than cutoff before
// the show time.
func CheckReservationWindow(showTime, now time.Time, cutoff time.Duration) error {
	if showTime.Sub(now) < cutoff {
		return ErrTooLate
	}

	return nil
}

type PerformanceRepository interface {
	GetAll(ctx context.Context, filters PerformanceFilters) ([]Performance, error)
	GetById(ctx context.Context, id int) (*PerformanceDetail, error)
	Delete(ctx context.Context, id int) error
	UpdateImage(ctx context.Context, id int, image string) error
}
