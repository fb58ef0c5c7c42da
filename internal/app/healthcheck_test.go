package app

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/metinatakli/theatre-reservation-system/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	app := newTestApplication()

	w, r := executeRequest(t, http.MethodGet, "/healthcheck", nil)
	app.GetHealth(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var got api.HealthcheckResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "UP", got.Status)
	assert.Equal(t, "test", got.SystemInfo.Environment)
}

func TestGetOpenAPI(t *testing.T) {
	app := newTestApplication()

	w, r := executeRequest(t, http.MethodGet, "/openapi.json", nil)
	app.GetOpenAPI(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&doc))
	assert.Contains(t, doc["paths"], "/reservations")
}
