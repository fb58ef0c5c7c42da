package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.Logger)
	r.Use(app.logRequest)
	r.Use(app.recoverPanic)
	r.Use(app.rateLimit)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.authenticate)

	r.Get("/healthcheck", app.GetHealth)
	r.Get("/openapi.json", app.GetOpenAPI)

	if app.images != nil {
		r.Handle(mediaPrefix+"*", http.StripPrefix(mediaPrefix, http.FileServer(http.Dir(app.images.BasePath()))))
	}

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", app.RegisterUser)
		r.Post("/login", app.Login)
		r.Post("/logout", app.Logout)

		r.Post("/token", app.CreateToken)
		r.Post("/token/refresh", app.RefreshToken)
		r.Post("/token/verify", app.VerifyToken)

		r.With(app.requireAuthentication).Get("/me", app.GetCurrentUser)
		r.With(app.requireAuthentication).Patch("/me", app.UpdateUser)
	})

	r.Route("/theatre-halls", func(r chi.Router) {
		r.With(app.requireAuthentication).Get("/", app.ListTheatreHalls)
		r.With(app.requireStaff).Post("/", app.CreateTheatreHall)
	})

	r.Route("/actors", func(r chi.Router) {
		r.With(app.requireAuthentication).Get("/", app.ListActors)
		r.With(app.requireStaff).Post("/", app.CreateActor)
	})

	r.Route("/genres", func(r chi.Router) {
		r.With(app.requireAuthentication).Get("/", app.ListGenres)
		r.With(app.requireStaff).Post("/", app.CreateGenre)
	})

	r.Route("/plays", func(r chi.Router) {
		r.With(app.requireAuthentication).Get("/", app.ListPlays)
		r.With(app.requireStaff).Post("/", app.CreatePlay)
	})

	r.Route("/performances", func(r chi.Router) {
		r.With(app.requireAuthentication).Get("/", app.listPerformances)
		r.With(app.requireStaff).Post("/", app.CreatePerformance)

		r.Route("/{id}", func(r chi.Router) {
			r.With(app.requireAuthentication).Get("/", app.GetPerformance)
			r.With(app.requireStaff).Put("/", app.UpdatePerformance)
			r.With(app.requireStaff).Delete("/", app.DeletePerformance)
			r.With(app.requireStaff).Post("/upload-image", app.UploadPerformanceImage)
		})
	})

	r.Route("/tickets", func(r chi.Router) {
		r.With(app.requireAuthentication).Get("/", app.ListTickets)
		r.With(app.requireStaff).Post("/", app.CreateTicket)

		r.Route("/{id}", func(r chi.Router) {
			r.With(app.requireAuthentication).Get("/", app.GetTicket)
			r.With(app.requireStaff).Put("/", app.UpdateTicket)
			r.With(app.requireStaff).Delete("/", app.DeleteTicket)
			r.With(app.requireAuthentication).Get("/qr", app.GetTicketQRCode)
		})
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Use(app.requireAuthentication)

		r.Get("/", app.listReservations)
		r.Post("/", app.CreateReservation)
		r.Get("/{id}", app.GetReservation)
		r.Delete("/{id}", app.CancelReservation)
	})

	return r
}
