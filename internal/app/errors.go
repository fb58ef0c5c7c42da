package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/theatre-reservation-system/api"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	appvalidator "github.com/metinatakli/theatre-reservation-system/internal/validator"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrMethodNotAllowed   = "The requested method is not supported for this resource"
	ErrUnauthorizedAccess = "You must be authenticated to access this resource"
	ErrForbidden          = "You do not have permission to perform this action"
	ErrInvalidCredentials = "Invalid email or password"
	ErrInvalidToken       = "Token is invalid or expired"
	ErrEditConflict       = "Unable to update the record due to an edit conflict, please try again"
	ErrFailedValidation   = "One or more fields have invalid values"
	ErrRateLimitExceeded  = "Rate limit exceeded"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.contextGetLogger(r).Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorizedAccess)
}

func (app *Application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrInvalidCredentials)
}

func (app *Application) invalidTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.errorResponse(w, r, http.StatusUnauthorized, ErrInvalidToken)
}

func (app *Application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, ErrForbidden)
}

func (app *Application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusConflict, ErrEditConflict)
}

func (app *Application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusTooManyRequests, ErrRateLimitExceeded)
}

// failedValidationResponse turns validator errors into a 422 listing every
// offending field. Any other error is treated as a bad request.
func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	fieldErrs := make([]api.ValidationError, 0, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrs = append(fieldErrs, api.ValidationError{
			Field: e.Field(),
			Issue: appvalidator.ValidationMessage(e),
		})
	}

	app.fieldValidationResponse(w, r, fieldErrs...)
}

func (app *Application) fieldValidationResponse(w http.ResponseWriter, r *http.Request, fieldErrs ...api.ValidationError) {
	resp := api.ValidationErrorResponse{
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: fieldErrs,
	}

	err := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

// domainErrorResponse maps the errors returned by the booking rules and the
// repositories to their HTTP representation.
func (app *Application) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		rangeErr      *domain.RangeError
		conflictErr   *domain.ConflictError
		mismatchErr   *domain.PerformanceMismatchError
	)

	switch {
	case errors.As(err, &validationErr):
		app.fieldValidationResponse(w, r, api.ValidationError{Field: validationErr.Field, Issue: validationErr.Reason})
	case errors.As(err, &rangeErr):
		app.fieldValidationResponse(w, r, api.ValidationError{Field: rangeErr.Field, Issue: rangeErr.Error()})
	case errors.As(err, &mismatchErr):
		app.fieldValidationResponse(w, r, api.ValidationError{Field: "tickets", Issue: domain.ErrPerformanceMismatch.Error()})
	case errors.Is(err, domain.ErrPastTime):
		app.fieldValidationResponse(w, r, api.ValidationError{Field: "showTime", Issue: err.Error()})
	case errors.Is(err, domain.ErrTooLate):
		app.fieldValidationResponse(w, r, api.ValidationError{Field: "performance", Issue: err.Error()})
	case errors.As(err, &conflictErr):
		app.errorResponse(w, r, http.StatusConflict, conflictErr.Reason)
	case errors.Is(err, domain.ErrEditConflict):
		app.editConflictResponse(w, r)
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, domain.ErrPermission):
		app.forbiddenResponse(w, r)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
