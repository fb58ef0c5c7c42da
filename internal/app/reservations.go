package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/metinatakli/theatre-reservation-system/api"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"github.com/oapi-codegen/runtime"
)

// listReservations binds the pagination parameters of GET /reservations.
func (app *Application) listReservations(w http.ResponseWriter, r *http.Request) {
	var params api.GetReservationsParams

	query := r.URL.Query()

	err := runtime.BindQueryParameter("form", true, false, "page", query, &params.Page)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid page parameter"))
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "pageSize", query, &params.PageSize)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid pageSize parameter"))
		return
	}

	app.GetReservations(w, r, params)
}

func (app *Application) GetReservations(w http.ResponseWriter, r *http.Request, params api.GetReservationsParams) {
	identity := app.contextGetIdentity(r)

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	pagination := domain.Pagination{
		Page:     domain.DefaultPage,
		PageSize: domain.DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	reservations, metadata, err := app.reservationRepo.GetAllByUserId(r.Context(), identity.UserID, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ReservationsResponse{
		Reservations: make([]api.Reservation, 0, len(reservations)),
		Metadata: api.Metadata{
			CurrentPage:  metadata.CurrentPage,
			FirstPage:    metadata.FirstPage,
			LastPage:     metadata.LastPage,
			PageSize:     metadata.PageSize,
			TotalRecords: metadata.TotalRecords,
		},
	}

	for _, res := range reservations {
		resp.Reservations = append(resp.Reservations, toReservationResponse(res))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	reservation, err := app.reservationRepo.GetByIdAndUserId(r.Context(), id, app.contextGetIdentity(r).UserID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toReservationResponse(*reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CreateReservation claims every requested ticket for the caller or none of
// them.
func (app *Application) CreateReservation(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)
	identity := app.contextGetIdentity(r)

	var input api.ReservationRequest

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

	reservation, err := app.booking.CreateReservation(r.Context(), identity.UserID, input.Performance, input.Tickets)
	if err != nil {
		logger.Info("reservation rejected", "performance_id", input.Performance, "error", err)
		app.domainErrorResponse(w, r, err)
		return
	}

	logger.Info("reservation created", "reservation_id", reservation.ID, "tickets", len(reservation.Tickets))

	app.sendReservationConfirmation(r, *reservation)

	err = app.writeJSON(w, http.StatusCreated, toReservationResponse(*reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.booking.CancelReservation(r.Context(), app.contextGetIdentity(r).UserID, id)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	app.contextGetLogger(r).Info("reservation cancelled", "reservation_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// sendReservationConfirmation mails the reservation summary to its owner in
// the background. Lookup failures only skip the email.
func (app *Application) sendReservationConfirmation(r *http.Request, reservation domain.Reservation) {
	logger := app.contextGetLogger(r).With("reservation_id", reservation.ID)
	ctx := context.WithoutCancel(r.Context())

	go func() {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic occurred during sending reservation confirmation", "panic", err)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		user, err := app.userRepo.GetById(ctx, reservation.UserID)
		if err != nil {
			logger.Error("failed to load user for reservation confirmation", "error", err)
			return
		}

		performance, err := app.performanceRepo.GetById(ctx, reservation.PerformanceID)
		if err != nil {
			logger.Error("failed to load performance for reservation confirmation", "error", err)
			return
		}

		places := make([]domain.Place, 0, len(reservation.Tickets))
		for _, t := range reservation.Tickets {
			places = append(places, t.Place())
		}

		data := map[string]any{
			"reservationID": reservation.ID,
			"playTitle":     performance.PlayTitle,
			"showTime":      performance.ShowTime.Format("Mon, 02 Jan 2006 15:04 MST"),
			"places":        places,
		}

		err = app.mailer.Send(user.Email, "reservation_confirmation.tmpl", data)
		if err != nil {
			logger.Error("failed to send reservation confirmation", "error", err)
			return
		}

		logger.Info("reservation confirmation sent")
	}()
}

func toReservationResponse(r domain.Reservation) api.Reservation {
	return api.Reservation{
		Id:          r.ID,
		Performance: r.PerformanceID,
		Tickets:     toTicketResponses(r.Tickets),
		CreatedAt:   r.CreatedAt,
	}
}
