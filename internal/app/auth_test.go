package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/metinatakli/theatre-reservation-system/api"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"github.com/metinatakli/theatre-reservation-system/internal/mailer"
	"github.com/metinatakli/theatre-reservation-system/internal/mocks"
	"github.com/metinatakli/theatre-reservation-system/internal/validator"
	"github.com/stretchr/testify/suite"
)

const testPassword = "Pass123!@#"

func newTestUser(t testing.TB, id int, isStaff bool) *domain.User {
	user := &domain.User{
		ID:        id,
		Email:     "freddie@example.com",
		FirstName: "Freddie",
		LastName:  "Mercury",
		IsStaff:   isStaff,
		CreatedAt: testNow,
		Version:   1,
	}

	err := user.Password.Set(testPassword)
	if err != nil {
		t.Fatal(err)
	}

	return user
}

func TestRegisterUser(t *testing.T) {
	tests := []struct {
		name           string
		input          any
		userRepoFunc   func(context.Context, *domain.User) error
		wantStatus     int
		wantErrMessage string
		wantEmail      bool
	}{
		{
			name: "successful registration",
			input: api.RegisterRequest{
				FirstName: "Freddie",
				LastName:  "Mercury",
				Email:     "freddie@example.com",
				Password:  testPassword,
			},
			userRepoFunc: func(ctx context.Context, u *domain.User) error {
				u.ID = 1
				u.Version = 1
				return nil
			},
			wantStatus: http.StatusCreated,
			wantEmail:  true,
		},
		{
			name: "invalid password format",
			input: api.RegisterRequest{
				FirstName: "Freddie",
				LastName:  "Mercury",
				Email:     "freddie@example.com",
				Password:  "weak",
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: validator.ErrPassword,
		},
		{
			name: "blank first name",
			input: api.RegisterRequest{
				FirstName: "   ",
				LastName:  "Mercury",
				Email:     "freddie@example.com",
				Password:  testPassword,
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: validator.ErrNotBlank,
		},
		{
			name:           "unknown field",
			input:          map[string]any{"email": "freddie@example.com", "isStaff": true},
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: `body contains unknown key "isStaff"`,
		},
		{
			name: "duplicate email",
			input: api.RegisterRequest{
				FirstName: "Freddie",
				LastName:  "Mercury",
				Email:     "existing@example.com",
				Password:  testPassword,
			},
			userRepoFunc: func(ctx context.Context, u *domain.User) error {
				return domain.ErrUserAlreadyExists
			},
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "invalid input data",
		},
		{
			name: "database error",
			input: api.RegisterRequest{
				FirstName: "Freddie",
				LastName:  "Mercury",
				Email:     "freddie@example.com",
				Password:  testPassword,
			},
			userRepoFunc: func(ctx context.Context, u *domain.User) error {
				return fmt.Errorf("connection refused")
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockMailer := mailer.NewMockMailer()
			app := newTestApplication(func(a *Application) {
				a.userRepo = &mocks.MockUserRepo{CreateFunc: tt.userRepoFunc}
				a.mailer = mockMailer
			})

			w, r := executeRequest(t, http.MethodPost, "/users/register", tt.input)

			app.RegisterUser(w, r)

			if got := w.Code; got != tt.wantStatus {
				t.Errorf("RegisterUser() status = %v, want %v", got, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusCreated {
				var response api.UserResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				if err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if response.Id != 1 {
					t.Errorf("Expected id=1 in response, got %v", response.Id)
				}
				if response.IsStaff {
					t.Error("Expected a registered user not to be staff")
				}
			}

			if tt.wantEmail {
				emails := mockMailer.WaitForEmails(1, time.Second)
				if len(emails) != 1 || emails[0].TemplateFile != "user_welcome.tmpl" {
					t.Errorf("Expected one welcome email, got %+v", emails)
				}
			}

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

type LoginTestSuite struct {
	suite.Suite
	app  *Application
	user *domain.User
}

func (s *LoginTestSuite) SetupSuite() {
	s.user = newTestUser(s.T(), 1, true)
}

func (s *LoginTestSuite) SetupTest() {
	s.app = newTestApplication()
}

func TestLoginSuite(t *testing.T) {
	suite.Run(t, new(LoginTestSuite))
}

func (s *LoginTestSuite) getByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email != s.user.Email {
		return nil, domain.ErrRecordNotFound
	}

	u := *s.user
	return &u, nil
}

func (s *LoginTestSuite) TestLogin() {
	tests := []struct {
		name           string
		input          api.LoginRequest
		getByEmailFunc func(context.Context, string) (*domain.User, error)
		setupSession   bool
		wantStatus     int
		wantErrMessage string
		wantResponse   *api.AlreadyLoggedInResponse
	}{
		{
			name:         "user already is logged in",
			input:        api.LoginRequest{Email: "freddie@example.com", Password: testPassword},
			setupSession: true,
			wantStatus:   http.StatusOK,
			wantResponse: &api.AlreadyLoggedInResponse{Message: "You are already logged in"},
		},
		{
			name:           "malformed email",
			input:          api.LoginRequest{Email: "freddie", Password: testPassword},
			wantStatus:     http.StatusUnauthorized,
			wantErrMessage: ErrInvalidCredentials,
		},
		{
			name:           "user not found",
			input:          api.LoginRequest{Email: "nonexistent@example.com", Password: testPassword},
			getByEmailFunc: s.getByEmail,
			wantStatus:     http.StatusUnauthorized,
			wantErrMessage: ErrInvalidCredentials,
		},
		{
			name:           "incorrect password",
			input:          api.LoginRequest{Email: "freddie@example.com", Password: "WrongPass123!@#"},
			getByEmailFunc: s.getByEmail,
			wantStatus:     http.StatusUnauthorized,
			wantErrMessage: ErrInvalidCredentials,
		},
		{
			name:  "database error",
			input: api.LoginRequest{Email: "freddie@example.com", Password: testPassword},
			getByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
				return nil, fmt.Errorf("database connection error")
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
		{
			name:           "successful login",
			input:          api.LoginRequest{Email: "freddie@example.com", Password: testPassword},
			getByEmailFunc: s.getByEmail,
			wantStatus:     http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.app.userRepo = &mocks.MockUserRepo{
				GetByEmailFunc: tt.getByEmailFunc,
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/users/login", tt.input)

			if tt.setupSession {
				r = setupTestSession(s.T(), s.app, r, 1)
			}

			handler := s.app.sessionManager.LoadAndSave(http.HandlerFunc(s.app.Login))
			handler.ServeHTTP(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantResponse != nil {
				var response api.AlreadyLoggedInResponse
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&response))
				s.Equal(*tt.wantResponse, response)
			}

			if tt.wantStatus == http.StatusNoContent {
				var sessionCookie *http.Cookie
				for _, cookie := range w.Result().Cookies() {
					if cookie.Name == s.app.sessionManager.Cookie.Name {
						sessionCookie = cookie
						break
					}
				}

				s.Require().NotNil(sessionCookie, "No session cookie found in response")

				ctx, err := s.app.sessionManager.Load(r.Context(), sessionCookie.Value)
				s.Require().NoError(err)

				s.Equal(1, s.app.sessionManager.GetInt(ctx, SessionKeyUserId.String()))
				s.True(s.app.sessionManager.GetBool(ctx, SessionKeyIsStaff.String()))
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *LoginTestSuite) TestTokenLifecycle() {
	s.app.userRepo = &mocks.MockUserRepo{GetByEmailFunc: s.getByEmail}

	w, r := executeRequest(s.T(), http.MethodPost, "/users/token", api.LoginRequest{
		Email:    "freddie@example.com",
		Password: testPassword,
	})
	s.app.CreateToken(w, r)
	s.Require().Equal(http.StatusOK, w.Code)

	var pair api.TokenPairResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&pair))
	s.NotEmpty(pair.Access)
	s.NotEmpty(pair.Refresh)

	claims, err := s.app.tokens.Parse(pair.Access, "")
	s.Require().NoError(err)
	s.Equal(domain.Identity{UserID: 1, IsStaff: true}, claims.Identity())

	// a refresh token exchanges for a new access token
	w, r = executeRequest(s.T(), http.MethodPost, "/users/token/refresh", api.RefreshTokenRequest{Refresh: pair.Refresh})
	s.app.RefreshToken(w, r)
	s.Require().Equal(http.StatusOK, w.Code)

	var access api.AccessTokenResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&access))
	s.NotEmpty(access.Access)

	// an access token is not a refresh token
	w, r = executeRequest(s.T(), http.MethodPost, "/users/token/refresh", api.RefreshTokenRequest{Refresh: pair.Access})
	s.app.RefreshToken(w, r)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, r = executeRequest(s.T(), http.MethodPost, "/users/token/verify", api.VerifyTokenRequest{Token: pair.Refresh})
	s.app.VerifyToken(w, r)
	s.Equal(http.StatusOK, w.Code)

	w, r = executeRequest(s.T(), http.MethodPost, "/users/token/verify", api.VerifyTokenRequest{Token: "garbage"})
	s.app.VerifyToken(w, r)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *LoginTestSuite) TestCreateTokenRejectsWrongPassword() {
	s.app.userRepo = &mocks.MockUserRepo{GetByEmailFunc: s.getByEmail}

	w, r := executeRequest(s.T(), http.MethodPost, "/users/token", api.LoginRequest{
		Email:    "freddie@example.com",
		Password: "WrongPass123!@#",
	})
	s.app.CreateToken(w, r)

	s.Equal(http.StatusUnauthorized, w.Code)
	checkErrorResponse(s.T(), w, struct {
		wantStatus     int
		wantErrMessage string
	}{
		wantStatus:     http.StatusUnauthorized,
		wantErrMessage: ErrInvalidCredentials,
	})
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name           string
		setupSession   bool
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:         "successful logout",
			setupSession: true,
			wantStatus:   http.StatusNoContent,
		},
		{
			name:           "no active session",
			setupSession:   false,
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApplication()

			w, r := executeRequest(t, http.MethodPost, "/users/logout", nil)

			if tt.setupSession {
				r = setupTestSession(t, app, r, 1)
			}

			handler := app.sessionManager.LoadAndSave(http.HandlerFunc(app.Logout))
			handler.ServeHTTP(w, r)

			if got := w.Code; got != tt.wantStatus {
				t.Errorf("Logout() status = %v, want %v", got, tt.wantStatus)
			}

			if tt.setupSession {
				userId := app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())
				if userId != 0 {
					t.Error("Session was not destroyed")
				}
			}

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}
