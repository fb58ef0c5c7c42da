package mailer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	Row  int
	Seat int
}

func TestRenderReservationConfirmation(t *testing.T) {
	data := map[string]any{
		"reservationID": 12,
		"playTitle":     "Hamlet",
		"showTime":      "2030-05-01 19:00",
		"places":        []place{{Row: 1, Seat: 2}, {Row: 1, Seat: 3}},
	}

	subject, plain, html, err := render("reservation_confirmation.tmpl", data)
	require.NoError(t, err)

	assert.Equal(t, "Your reservation #12 for Hamlet", subject)
	assert.Contains(t, plain, "row 1, seat 3")
	assert.Contains(t, html, "<strong>Hamlet</strong>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := render("missing.tmpl", nil)
	assert.Error(t, err)
}

func TestMockMailerWaitsForAsyncSend(t *testing.T) {
	m := NewMockMailer()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = m.Send("a@example.com", "user_welcome.tmpl", nil)
	}()

	emails := m.WaitForEmails(1, time.Second)
	require.Len(t, emails, 1)
	assert.Equal(t, "a@example.com", emails[0].Recipient)

	m.FailWith(errors.New("smtp down"))
	assert.Error(t, m.Send("b@example.com", "user_welcome.tmpl", nil))
	assert.Len(t, m.WaitForEmails(2, 20*time.Millisecond), 1)
}
