// Package booking enforces the seat inventory and reservation rules. Every
// operation that can break an invariant runs inside one transaction of the
// underlying store, so a failed check leaves the store untouched.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultReservationCutoff = 15 * time.Minute
	meterName                = "github.com/metinatakli/theatre-reservation-system/internal/booking"
)

type Service struct {
	store     domain.BookingStore
	publisher domain.EventPublisher
	logger    *slog.Logger
	clock     domain.Clock
	cutoff    time.Duration

	reservationsCreated   metric.Int64Counter
	reservationsCancelled metric.Int64Counter
}

type Option func(*Service)

func WithClock(clock domain.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithReservationCutoff overrides how long before the show time
// reservations close. Non-positive values disable the cutoff.
func WithReservationCutoff(d time.Duration) Option {
	return func(s *Service) {
		s.cutoff = d
	}
}

func NewService(store domain.BookingStore, publisher domain.EventPublisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		clock:     domain.SystemClock{},
		cutoff:    DefaultReservationCutoff,
	}

	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(meterName)

	var err error
	s.reservationsCreated, err = meter.Int64Counter(
		"reservations.created",
		metric.WithDescription("Number of committed reservations"),
	)
	if err != nil {
		logger.Warn("failed to create reservations.created counter", "error", err)
	}

	s.reservationsCancelled, err = meter.Int64Counter(
		"reservations.cancelled",
		metric.WithDescription("Number of cancelled reservations"),
	)
	if err != nil {
		logger.Warn("failed to create reservations.cancelled counter", "error", err)
	}

	return s
}

func (s *Service) SchedulePerformance(ctx context.Context, performance *domain.Performance) error {
	return s.store.RunInTx(ctx, func(tx domain.BookingTx) error {
		err := s.checkPlay(ctx, tx, performance.PlayID)
		if err != nil {
			return err
		}

		hall, err := s.lookupHall(ctx, tx, performance.HallID)
		if err != nil {
			return err
		}
		performance.Hall = *hall

		err = domain.CheckShowTime(performance.ShowTime, s.clock.Now())
		if err != nil {
			return err
		}

		return tx.CreatePerformance(ctx, performance)
	})
}

// ReschedulePerformance updates the play, hall and show time of an existing
// performance. The show time is only re-checked when it changes, and the hall
// of a performance that already has tickets cannot change.
func (s *Service) ReschedulePerformance(ctx context.Context, performance *domain.Performance) error {
	return s.store.RunInTx(ctx, func(tx domain.BookingTx) error {
		current, err := tx.GetPerformanceForUpdate(ctx, performance.ID)
		if err != nil {
			return err
		}

		if performance.PlayID != current.PlayID {
			err = s.checkPlay(ctx, tx, performance.PlayID)
			if err != nil {
				return err
			}
		}

		performance.Hall = current.Hall
		if performance.HallID != current.HallID {
			count, err := tx.CountTickets(ctx, current.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return &domain.ValidationError{
					Field:  "theatreHall",
					Reason: "the hall cannot change once tickets exist for the performance",
				}
			}

			hall, err := s.lookupHall(ctx, tx, performance.HallID)
			if err != nil {
				return err
			}
			performance.Hall = *hall
		}

		if !performance.ShowTime.Equal(current.ShowTime) {
			err = domain.CheckShowTime(performance.ShowTime, s.clock.Now())
			if err != nil {
				return err
			}
		}

		performance.Image = current.Image

		return tx.UpdatePerformance(ctx, performance)
	})
}

// CreateTicket adds a ticket to the inventory of its performance.
func (s *Service) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	return s.store.RunInTx(ctx, func(tx domain.BookingTx) error {
		performance, err := s.lockPerformance(ctx, tx, ticket.PerformanceID)
		if err != nil {
			return err
		}

		occupied, err := tx.GetOccupiedPlaces(ctx, performance.ID)
		if err != nil {
			return err
		}

		err = domain.ValidateTicket(*ticket, performance.Hall, occupied)
		if err != nil {
			return err
		}

		ticket.ReservationID = nil
		ticket.PerformanceTitle = performance.PlayTitle

		return tx.CreateTicket(ctx, ticket)
	})
}

func (s *Service) UpdateTicket(ctx context.Context, ticket *domain.Ticket) error {
	return s.store.RunInTx(ctx, func(tx domain.BookingTx) error {
		// The performance is locked before the ticket, the same order
		// CreateReservation uses.
		performance, err := s.lockPerformance(ctx, tx, ticket.PerformanceID)
		if err != nil {
			return err
		}

		current, err := tx.GetTicketForUpdate(ctx, ticket.ID)
		if err != nil {
			return err
		}

		if current.Reserved() && current.PerformanceID != ticket.PerformanceID {
			return &domain.ValidationError{
				Field:  "performance",
				Reason: "a reserved ticket cannot move to another performance",
			}
		}

		occupied, err := tx.GetOccupiedPlaces(ctx, performance.ID)
		if err != nil {
			return err
		}

		err = domain.ValidateTicket(*ticket, performance.Hall, occupied)
		if err != nil {
			return err
		}

		ticket.ReservationID = current.ReservationID
		ticket.PerformanceTitle = performance.PlayTitle

		return tx.UpdateTicket(ctx, ticket)
	})
}

// CreateReservation claims the given tickets of one performance for the
// user. Either every ticket is attached to the new reservation or the
// transaction is rolled back and the first failure is returned.
func (s *Service) CreateReservation(
	ctx context.Context,
	userID int,
	performanceID int,
	ticketIDs []int) (*domain.Reservation, error) {

	err := validateTicketIDs(ticketIDs)
	if err != nil {
		return nil, err
	}

	var reservation *domain.Reservation

	err = s.store.RunInTx(ctx, func(tx domain.BookingTx) error {
		performance, err := tx.GetPerformanceForShare(ctx, performanceID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return &domain.ValidationError{Field: "performance", Reason: "performance does not exist"}
			}

			return err
		}

		now := s.clock.Now()
		if s.cutoff > 0 {
			err = domain.CheckReservationWindow(performance.ShowTime, now, s.cutoff)
			if err != nil {
				return err
			}
		}

		tickets, err := s.lockTickets(ctx, tx, ticketIDs)
		if err != nil {
			return err
		}

		for _, t := range tickets {
			if t.PerformanceID != performance.ID {
				return &domain.PerformanceMismatchError{
					TicketID:      t.ID,
					PerformanceID: t.PerformanceID,
					Expected:      performance.ID,
				}
			}
		}

		occupied, err := tx.GetOccupiedPlaces(ctx, performance.ID)
		if err != nil {
			return err
		}

		r := &domain.Reservation{
			UserID:        userID,
			PerformanceID: performance.ID,
			CreatedAt:     now,
		}

		err = tx.CreateReservation(ctx, r)
		if err != nil {
			return err
		}

		for _, t := range tickets {
			if t.Reserved() {
				return &domain.ConflictError{
					Field:  "tickets",
					Reason: fmt.Sprintf("ticket %d is already reserved", t.ID),
				}
			}

			err = domain.ValidateTicket(t, performance.Hall, occupied)
			if err != nil {
				return err
			}

			err = tx.AttachTicket(ctx, t.ID, r.ID)
			if err != nil {
				return err
			}

			t.ReservationID = &r.ID
			t.PerformanceTitle = performance.PlayTitle
			r.Tickets = append(r.Tickets, t)
		}

		reservation = r

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.count(ctx, s.reservationsCreated, performanceID)
	s.publish(ctx, domain.ReservationCreated, reservation)

	return reservation, nil
}

// CancelReservation deletes the user's reservation and returns its tickets
// to sale. Reservations of other users are reported as not found.
func (s *Service) CancelReservation(ctx context.Context, userID, reservationID int) error {
	var cancelled *domain.Reservation

	err := s.store.RunInTx(ctx, func(tx domain.BookingTx) error {
		r, err := tx.GetReservationForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}

		if r.UserID != userID {
			return domain.ErrRecordNotFound
		}

		err = tx.DetachTickets(ctx, r.ID)
		if err != nil {
			return err
		}

		err = tx.DeleteReservation(ctx, r.ID)
		if err != nil {
			return err
		}

		cancelled = r

		return nil
	})
	if err != nil {
		return err
	}

	s.count(ctx, s.reservationsCancelled, cancelled.PerformanceID)
	s.publish(ctx, domain.ReservationCancelled, cancelled)

	return nil
}

func validateTicketIDs(ticketIDs []int) error {
	if len(ticketIDs) == 0 {
		return &domain.ValidationError{Field: "tickets", Reason: "at least one ticket is required"}
	}

	seen := make(map[int]bool, len(ticketIDs))
	for _, id := range ticketIDs {
		if seen[id] {
			return &domain.ValidationError{
				Field:  "tickets",
				Reason: fmt.Sprintf("ticket %d is listed more than once", id),
			}
		}
		seen[id] = true
	}

	return nil
}

// lockTickets locks the tickets and returns them in the order of ids.
func (s *Service) lockTickets(ctx context.Context, tx domain.BookingTx, ids []int) ([]domain.Ticket, error) {
	locked, err := tx.GetTicketsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]domain.Ticket, len(locked))
	for _, t := range locked {
		byID[t.ID] = t
	}

	tickets := make([]domain.Ticket, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, &domain.ValidationError{
				Field:  "tickets",
				Reason: fmt.Sprintf("ticket %d does not exist", id),
			}
		}

		tickets = append(tickets, t)
	}

	return tickets, nil
}

func (s *Service) lockPerformance(ctx context.Context, tx domain.BookingTx, id int) (*domain.Performance, error) {
	performance, err := tx.GetPerformanceForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, &domain.ValidationError{Field: "performance", Reason: "performance does not exist"}
		}

		return nil, err
	}

	return performance, nil
}

func (s *Service) checkPlay(ctx context.Context, tx domain.BookingTx, id int) error {
	exists, err := tx.PlayExists(ctx, id)
	if err != nil {
		return err
	}

	if !exists {
		return &domain.ValidationError{Field: "play", Reason: "play does not exist"}
	}

	return nil
}

func (s *Service) lookupHall(ctx context.Context, tx domain.BookingTx, id int) (*domain.Hall, error) {
	hall, err := tx.GetHall(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, &domain.ValidationError{Field: "theatreHall", Reason: "theatre hall does not exist"}
		}

		return nil, err
	}

	return hall, nil
}

func (s *Service) count(ctx context.Context, counter metric.Int64Counter, performanceID int) {
	if counter == nil {
		return
	}

	counter.Add(ctx, 1, metric.WithAttributes(attribute.Int("performance.id", performanceID)))
}

func (s *Service) publish(ctx context.Context, eventType domain.ReservationEventType, r *domain.Reservation) {
	if s.publisher == nil {
		return
	}

	ticketIDs := make([]int, len(r.Tickets))
	for i, t := range r.Tickets {
		ticketIDs[i] = t.ID
	}

	event := domain.ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		UserID:        r.UserID,
		PerformanceID: r.PerformanceID,
		TicketIDs:     ticketIDs,
		OccurredAt:    s.clock.Now().UTC(),
	}

	err := s.publisher.Publish(ctx, event)
	if err != nil {
		s.logger.Warn("failed to publish reservation event",
			"type", eventType,
			"reservation_id", r.ID,
			"error", err,
		)
	}
}
