package app

import (
	"errors"
	"net/http"
	"path"
	"time"

	"github.com/metinatakli/theatre-reservation-system/api"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"github.com/metinatakli/theatre-reservation-system/internal/storage"
	"github.com/oapi-codegen/runtime"
)

const (
	dateLayout        = "2006-01-02"
	mediaPrefix       = "/media/"
	performanceImages = "performance"
)

// listPerformances binds the query parameters of GET /performances.
func (app *Application) listPerformances(w http.ResponseWriter, r *http.Request) {
	var params api.GetPerformancesParams

	query := r.URL.Query()

	err := runtime.BindQueryParameter("form", true, false, "play", query, &params.Play)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid play parameter"))
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "theatreHall", query, &params.TheatreHall)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid theatreHall parameter"))
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "date", query, &params.Date)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid date parameter"))
		return
	}

	app.GetPerformances(w, r, params)
}

func (app *Application) GetPerformances(w http.ResponseWriter, r *http.Request, params api.GetPerformancesParams) {
	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	var filters domain.PerformanceFilters

	if params.Play != nil {
		filters.PlayID = *params.Play
	}
	if params.TheatreHall != nil {
		filters.HallID = *params.TheatreHall
	}
	if params.Date != nil {
		date, err := time.Parse(dateLayout, *params.Date)
		if err != nil {
			app.badRequestResponse(w, r, errors.New("Invalid date format."))
			return
		}
		filters.Date = &date
	}

	performances, err := app.performanceRepo.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.PerformancesResponse{
		Performances: make([]api.PerformanceListItem, 0, len(performances)),
	}

	for _, p := range performances {
		resp.Performances = append(resp.Performances, api.PerformanceListItem{
			Id:                  p.ID,
			PlayId:              p.PlayID,
			PlayTitle:           p.PlayTitle,
			TheatreHallId:       p.HallID,
			TheatreHallName:     p.Hall.Name,
			TheatreHallCapacity: p.Hall.Capacity(),
			ShowTime:            p.ShowTime,
			Image:               imageURL(p.Image),
			TicketsAvailable:    p.TicketsAvailable,
		})
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetPerformance(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	detail, err := app.performanceRepo.GetById(r.Context(), id)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := api.PerformanceDetail{
		Id: detail.ID,
		Play: api.PlayReference{
			Id:    detail.PlayID,
			Title: detail.PlayTitle,
		},
		TheatreHall:      toTheatreHallResponse(detail.Hall),
		ShowTime:         detail.ShowTime,
		Image:            imageURL(detail.Image),
		TicketsAvailable: detail.TicketsAvailable,
		TakenPlaces:      make([]api.Place, 0, len(detail.TakenPlaces)),
		AvailableTickets: make([]api.AvailableTicket, 0, len(detail.AvailableTickets)),
	}

	for _, p := range detail.TakenPlaces {
		resp.TakenPlaces = append(resp.TakenPlaces, api.Place{Row: p.Row, Seat: p.Seat})
	}

	for _, t := range detail.AvailableTickets {
		resp.AvailableTickets = append(resp.AvailableTickets, api.AvailableTicket{Id: t.ID, Row: t.Row, Seat: t.Seat})
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreatePerformance(w http.ResponseWriter, r *http.Request) {
	var input api.PerformanceRequest

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

	performance := domain.Performance{
		PlayID:   input.Play,
		HallID:   input.TheatreHall,
		ShowTime: input.ShowTime,
	}

	err = app.booking.SchedulePerformance(r.Context(), &performance)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toPerformanceResponse(performance), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdatePerformance(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.PerformanceRequest

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

	performance := domain.Performance{
		ID:       id,
		PlayID:   input.Play,
		HallID:   input.TheatreHall,
		ShowTime: input.ShowTime,
	}

	err = app.booking.ReschedulePerformance(r.Context(), &performance)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toPerformanceResponse(performance), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// DeletePerformance removes the performance together with its tickets and
// reservations.
func (app *Application) DeletePerformance(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.performanceRepo.Delete(r.Context(), id)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) UploadPerformanceImage(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	id, err := app.readIDParam(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// room for the multipart envelope on top of the image itself
	r.Body = http.MaxBytesReader(w, r.Body, app.config.Storage.MaxImageSize+maxBodyBytes)

	file, _, err := r.FormFile("image")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("multipart field image is required"))
		return
	}
	defer file.Close()

	detail, err := app.performanceRepo.GetById(r.Context(), id)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	image, err := app.images.SaveImage(performanceImages, file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrTooLarge):
			app.fieldValidationResponse(w, r, api.ValidationError{Field: "image", Issue: err.Error()})
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.performanceRepo.UpdateImage(r.Context(), id, image)
	if err != nil {
		if delErr := app.images.Delete(image); delErr != nil {
			logger.Warn("failed to remove orphaned image", "image", image, "error", delErr)
		}

		app.domainErrorResponse(w, r, err)
		return
	}

	if detail.Image != "" {
		err = app.images.Delete(detail.Image)
		if err != nil && !errors.Is(err, storage.ErrFileNotFound) {
			logger.Warn("failed to remove replaced image", "image", detail.Image, "error", err)
		}
	}

	err = app.writeJSON(w, http.StatusOK, api.ImageResponse{Id: id, Image: imageURL(image)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toPerformanceResponse(p domain.Performance) api.Performance {
	return api.Performance{
		Id:          p.ID,
		Play:        p.PlayID,
		TheatreHall: p.HallID,
		ShowTime:    p.ShowTime,
		Image:       imageURL(p.Image),
	}
}

// imageURL maps a stored image path to the URL it is served from.
func imageURL(image string) string {
	if image == "" {
		return ""
	}

	return path.Join(mediaPrefix, image)
}
