package mocks

import (
	"context"

	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockBookingStore runs every transaction against Tx and records whether
// it would have been committed or rolled back.
type MockBookingStore struct {
	Tx        *MockBookingTx
	Commits   int
	Rollbacks int
}

func NewMockBookingStore() *MockBookingStore {
	return &MockBookingStore{Tx: new(MockBookingTx)}
}

func (m *MockBookingStore) RunInTx(ctx context.Context, fn func(tx domain.BookingTx) error) error {
	err := fn(m.Tx)
	if err != nil {
		m.Rollbacks++
		return err
	}

	m.Commits++
	return nil
}

type MockBookingTx struct {
	mock.Mock
}

func (m *MockBookingTx) PlayExists(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingTx) GetHall(ctx context.Context, id int) (*domain.Hall, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hall), args.Error(1)
}

func (m *MockBookingTx) GetPerformanceForUpdate(ctx context.Context, id int) (*domain.Performance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Performance), args.Error(1)
}

func (m *MockBookingTx) GetPerformanceForShare(ctx context.Context, id int) (*domain.Performance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Performance), args.Error(1)
}

func (m *MockBookingTx) CreatePerformance(ctx context.Context, performance *domain.Performance) error {
	args := m.Called(ctx, performance)
	return args.Error(0)
}

func (m *MockBookingTx) UpdatePerformance(ctx context.Context, performance *domain.Performance) error {
	args := m.Called(ctx, performance)
	return args.Error(0)
}

func (m *MockBookingTx) CountTickets(ctx context.Context, performanceID int) (int, error) {
	args := m.Called(ctx, performanceID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingTx) GetOccupiedPlaces(ctx context.Context, performanceID int) ([]domain.OccupiedPlace, error) {
	args := m.Called(ctx, performanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OccupiedPlace), args.Error(1)
}

func (m *MockBookingTx) GetTicketForUpdate(ctx context.Context, id int) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBookingTx) GetTicketsForUpdate(ctx context.Context, ids []int) ([]domain.Ticket, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockBookingTx) CreateTicket(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockBookingTx) UpdateTicket(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockBookingTx) CreateReservation(ctx context.Context, reservation *domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockBookingTx) AttachTicket(ctx context.Context, ticketID, reservationID int) error {
	args := m.Called(ctx, ticketID, reservationID)
	return args.Error(0)
}

func (m *MockBookingTx) GetReservationForUpdate(ctx context.Context, id int) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockBookingTx) DetachTickets(ctx context.Context, reservationID int) error {
	args := m.Called(ctx, reservationID)
	return args.Error(0)
}

func (m *MockBookingTx) DeleteReservation(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.ReservationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
