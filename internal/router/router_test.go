package router

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/signbridge/signbridge-api/docs"
)

func newTestRouter() http.Handler {
	return SetupRouter(&Config{
		Logger: slog.Default(),
		Authenticate: func(next http.Handler) http.Handler {
			return next
		},
	})
}

func TestPing(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "pong", rr.Body.String())
}

// The swagger UI is configured to fetch /swagger/doc.json, so the registered
// doc must resolve there.
func TestSwaggerDocServed(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))

	info, ok := doc["info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SignBridge API", info["title"])
	assert.Equal(t, "/api/v1", doc["basePath"])

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/auth/register")
	assert.Contains(t, paths, "/gestures/classify")
}
