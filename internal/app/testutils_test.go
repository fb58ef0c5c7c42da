package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/theatre-reservation-system/api"
	"github.com/metinatakli/theatre-reservation-system/internal/auth"
	"github.com/metinatakli/theatre-reservation-system/internal/booking"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"github.com/metinatakli/theatre-reservation-system/internal/mailer"
	"github.com/metinatakli/theatre-reservation-system/internal/mocks"
	"github.com/metinatakli/theatre-reservation-system/internal/validator"
)

var testNow = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

var testJWTConfig = auth.Config{
	Secret:     "test-secret",
	Issuer:     "theatre-test",
	AccessTTL:  5 * time.Minute,
	RefreshTTL: time.Hour,
}

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config:         Config{Env: "test"},
		validator:      validator.NewValidator(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		userRepo:       &mocks.MockUserRepo{},
		mailer:         mailer.NewMockMailer(),
		sessionManager: scs.New(),
		tokens:         auth.NewTokenIssuer(testJWTConfig, domain.FixedClock(testNow)),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// withBooking wires a booking service running its transactions against
// store. A nil publisher disables events.
func withBooking(store *mocks.MockBookingStore, publisher domain.EventPublisher) func(*Application) {
	return func(a *Application) {
		a.booking = booking.NewService(store, publisher, a.logger, booking.WithClock(domain.FixedClock(testNow)))
	}
}

func setupTestSession(t *testing.T, app *Application, r *http.Request, userId int) *http.Request {
	return setupSession(t, app, r, userId, false)
}

func setupStaffSession(t *testing.T, app *Application, r *http.Request, userId int) *http.Request {
	return setupSession(t, app, r, userId, true)
}

func setupSession(t *testing.T, app *Application, r *http.Request, userId int, isStaff bool) *http.Request {
	ctx, err := app.sessionManager.Load(r.Context(), "session")
	if err != nil {
		t.Errorf("Failed to load session: %v", err)
	}

	app.sessionManager.Put(ctx, SessionKeyUserId.String(), userId)
	app.sessionManager.Put(ctx, SessionKeyIsStaff.String(), isStaff)

	return r.WithContext(ctx)
}

// withURLParam makes chi.URLParam resolve key to value for a handler
// invoked directly rather than through the router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serve runs the handler behind the session and authentication middleware
// and the given access guard.
func serve(app *Application, guard func(http.Handler) http.Handler, handler http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	var h http.Handler = handler
	if guard != nil {
		h = guard(h)
	}

	h = app.sessionManager.LoadAndSave(app.authenticate(h))
	h.ServeHTTP(w, r)
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	var reader io.Reader = bytes.NewReader(jsonData)
	if body == nil {
		reader = nil
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response %+v", tt.wantErrMessage, validationResp.ValidationErrors)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
