package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	var expected any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	actual = clean(actual)
	expected = clean(expected)

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func clean(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k := range v {
			if _, ok := keysToIgnore[k]; ok {
				delete(v, k)
				continue
			}
			v[k] = clean(v[k])
		}
	case []any:
		for i := range v {
			v[i] = clean(v[i])
		}
	}

	return v
}

func executeSQLFile(t testing.TB, db *pgxpool.Pool, path string) {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(), string(content))
	require.NoError(t, err, "failed to execute %s", path)
}

// resetState empties every table and loads the theatre fixtures with a
// customer and a staff member.
func resetState(t testing.TB, app *TestApp) {
	t.Helper()

	executeSQLFile(t, app.DB, "testdata/theatre_down.sql")

	createTestUser(t, app, TestUserEmail, false)
	createTestUser(t, app, TestStaffEmail, true)

	executeSQLFile(t, app.DB, "testdata/theatre_up.sql")
}

func createTestUser(t testing.TB, app *TestApp, email string, isStaff bool) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:     email,
		FirstName: TestUserFirstName,
		LastName:  TestUserLastName,
		IsStaff:   isStaff,
	}

	require.NoError(t, user.Password.Set(TestUserPassword))
	require.NoError(t, app.Users.Create(context.Background(), user))

	return user
}

// loginCookies logs the user in through the API and returns the session
// cookies set by the response.
func (app *TestApp) loginCookies(t testing.TB, email string) []*http.Cookie {
	t.Helper()

	body := fmt.Sprintf(`{"email": %q, "password": %q}`, email, TestUserPassword)
	req, err := prepareRequest(http.MethodPost, "/users/login", strings.NewReader(body), nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)

	res := rec.Result()
	defer res.Body.Close()

	require.Equal(t, http.StatusNoContent, res.StatusCode)

	cookies := res.Cookies()
	require.NotEmpty(t, cookies)

	return cookies
}

func (app *TestApp) authenticatedUserCookies(t testing.TB) []*http.Cookie {
	return app.loginCookies(t, TestUserEmail)
}

func (app *TestApp) staffCookies(t testing.TB) []*http.Cookie {
	return app.loginCookies(t, TestStaffEmail)
}

// do sends a request through the router and returns the recorded response.
func (app *TestApp) do(t testing.TB, method, path, body string, cookies []*http.Cookie, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := prepareRequest(method, path, reader, headers, cookies)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.App.Routes().ServeHTTP(rec, req)

	return rec.Result()
}

func countRows(t testing.TB, db *pgxpool.Pool, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(context.Background(), query, args...).Scan(&n))

	return n
}
