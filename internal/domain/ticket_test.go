package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHallCapacity(t *testing.T) {
	hall := Hall{Name: "Main", Rows: 5, SeatsInRow: 10}

	assert.Equal(t, 50, hall.Capacity())
}

func TestValidateHall(t *testing.T) {
	tests := []struct {
		name      string
		hall      Hall
		wantField string
	}{
		{name: "valid hall", hall: Hall{Name: "Main", Rows: 2, SeatsInRow: 2}},
		{name: "blank name", hall: Hall{Name: "  ", Rows: 2, SeatsInRow: 2}, wantField: "name"},
		{name: "zero rows", hall: Hall{Name: "Main", Rows: 0, SeatsInRow: 2}, wantField: "rows"},
		{name: "negative seats", hall: Hall{Name: "Main", Rows: 2, SeatsInRow: -1}, wantField: "seatsInRow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHall(tt.hall)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidateSeat(t *testing.T) {
	hall := Hall{Name: "Small", Rows: 2, SeatsInRow: 3}

	tests := []struct {
		name      string
		row, seat int
		wantErr   *RangeError
	}{
		{name: "first seat", row: 1, seat: 1},
		{name: "last seat", row: 2, seat: 3},
		{name: "row zero", row: 0, seat: 1, wantErr: &RangeError{Field: "row", Value: 0, Min: 1, Max: 2}},
		{name: "row above hall", row: 3, seat: 1, wantErr: &RangeError{Field: "row", Value: 3, Min: 1, Max: 2}},
		{name: "seat zero", row: 1, seat: 0, wantErr: &RangeError{Field: "seat", Value: 0, Min: 1, Max: 3}},
		{name: "seat above row", row: 1, seat: 4, wantErr: &RangeError{Field: "seat", Value: 4, Min: 1, Max: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeat(tt.row, tt.seat, hall)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			var rErr *RangeError
			require.ErrorAs(t, err, &rErr)
			assert.Equal(t, tt.wantErr, rErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidateTicket(t *testing.T) {
	hall := Hall{Name: "Small", Rows: 2, SeatsInRow: 2}
	occupied := []OccupiedPlace{
		{TicketID: 1, Place: Place{Row: 1, Seat: 1}},
	}

	t.Run("free place", func(t *testing.T) {
		err := ValidateTicket(Ticket{Row: 1, Seat: 2}, hall, occupied)
		assert.NoError(t, err)
	})

	t.Run("place held by another ticket", func(t *testing.T) {
		err := ValidateTicket(Ticket{Row: 1, Seat: 1}, hall, occupied)

		var cErr *ConflictError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, "seat", cErr.Field)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("place held by the ticket itself", func(t *testing.T) {
		err := ValidateTicket(Ticket{ID: 1, Row: 1, Seat: 1}, hall, occupied)
		assert.NoError(t, err)
	})

	t.Run("bounds are checked before occupancy", func(t *testing.T) {
		err := ValidateTicket(Ticket{Row: 3, Seat: 1}, hall, occupied)
		assert.ErrorIs(t, err, ErrValidation)
		assert.False(t, errors.Is(err, ErrConflict))
	})
}

func TestCheckShowTime(t *testing.T) {
	now := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)

	assert.NoError(t, CheckShowTime(now, now), "show time equal to now")
	assert.NoError(t, CheckShowTime(now.Add(time.Hour), now))
	assert.ErrorIs(t, CheckShowTime(now.Add(-time.Second), now), ErrPastTime)
}

func TestCheckReservationWindow(t *testing.T) {
	now := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)
	cutoff := 15 * time.Minute

	assert.NoError(t, CheckReservationWindow(now.Add(time.Hour), now, cutoff))
	assert.NoError(t, CheckReservationWindow(now.Add(cutoff), now, cutoff))
	assert.ErrorIs(t, CheckReservationWindow(now.Add(cutoff-time.Second), now, cutoff), ErrTooLate)
	assert.ErrorIs(t, CheckReservationWindow(now.Add(-time.Hour), now, cutoff), ErrTooLate)
}

func TestPerformanceMismatchErrorIs(t *testing.T) {
	err := &PerformanceMismatchError{TicketID: 3, PerformanceID: 2, Expected: 1}

	assert.ErrorIs(t, err, ErrPerformanceMismatch)
	assert.Equal(t, "ticket 3 belongs to performance 2, not 1", err.Error())
}
