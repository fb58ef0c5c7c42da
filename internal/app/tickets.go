package app

import (
	"fmt"
	"net/http"

	"github.com/metinatakli/theatre-reservation-system/api"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"github.com/skip2/go-qrcode"
)

const qrCodeSize = 256

// ListTickets returns the tickets held by the caller's reservations.
func (app *Application) ListTickets(w http.ResponseWriter, r *http.Request) {
	identity := app.contextGetIdentity(r)

	tickets, err := app.ticketRepo.GetAllByUserId(r.Context(), identity.UserID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.TicketsResponse{
		Tickets: toTicketResponses(tickets),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := app.callerTicket(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, toTicketResponse(*ticket), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var input api.TicketRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ticket := domain.Ticket{
		Row:           input.Row,
		Seat:          input.Seat,
		PerformanceID: input.Performance,
	}

	err = app.booking.CreateTicket(r.Context(), &ticket)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toTicketResponse(ticket), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.TicketRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ticket := domain.Ticket{
		ID:            id,
		Row:           input.Row,
		Seat:          input.Seat,
		PerformanceID: input.Performance,
	}

	err = app.booking.UpdateTicket(r.Context(), &ticket)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toTicketResponse(ticket), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.ticketRepo.Delete(r.Context(), id)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTicketQRCode renders one of the caller's tickets as a PNG QR code that
// identifies the ticket, its performance and its place.
func (app *Application) GetTicketQRCode(w http.ResponseWriter, r *http.Request) {
	ticket, ok := app.callerTicket(w, r)
	if !ok {
		return
	}

	png, err := qrcode.Encode(ticketQRPayload(*ticket), qrcode.Medium, qrCodeSize)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// callerTicket loads the ticket named by the path if it belongs to one of
// the caller's reservations.
func (app *Application) callerTicket(w http.ResponseWriter, r *http.Request) (*domain.Ticket, bool) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return nil, false
	}

	ticket, err := app.ticketRepo.GetByIdAndUserId(r.Context(), id, app.contextGetIdentity(r).UserID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return nil, false
	}

	return ticket, true
}

func ticketQRPayload(t domain.Ticket) string {
	reservation := 0
	if t.ReservationID != nil {
		reservation = *t.ReservationID
	}

	return fmt.Sprintf("ticket:%d;performance:%d;reservation:%d;row:%d;seat:%d",
		t.ID, t.PerformanceID, reservation, t.Row, t.Seat)
}

func toTicketResponse(t domain.Ticket) api.Ticket {
	return api.Ticket{
		Id:               t.ID,
		Row:              t.Row,
		Seat:             t.Seat,
		Performance:      t.PerformanceID,
		PerformanceTitle: t.PerformanceTitle,
		Reservation:      t.ReservationID,
	}
}

func toTicketResponses(tickets []domain.Ticket) []api.Ticket {
	resp := make([]api.Ticket, 0, len(tickets))
	for _, t := range tickets {
		resp = append(resp, toTicketResponse(t))
	}

	return resp
}
