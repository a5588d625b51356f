package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myautoimport/site-api/internal/leads"
	"github.com/myautoimport/site-api/internal/ratelimit"
	"github.com/myautoimport/site-api/internal/site"
	"github.com/myautoimport/site-api/pkg/logging"
)

const testAdminSecret = "router-test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	limiter := ratelimit.NewMemoryLimiter(ratelimit.DefaultConfig())
	t.Cleanup(limiter.Close)

	leadsHandler := leads.NewHandler(leads.NewInMemoryRepository(), limiter, nil, logging.Default(), nil)
	return New(&Config{
		Logger:          logging.Default(),
		LeadsHandler:    leadsHandler,
		SiteHandler:     site.NewHandler("https://data.example.com", "anon", "https://myautoimport.example"),
		AdminAuthSecret: testAdminSecret,
	})
}

func TestRouterLeadRoutes(t *testing.T) {
	r := newTestRouter(t)
	body := `{"name":"Ana","email":"ana@example.com","message":"Looking for a family SUV"}`

	for _, path := range []string{"/api/leads", "/api/notify-lead"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "path=%s", path)
	}
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouterSiteRoutes(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public-config", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "window.__APP_CONFIG__")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/manifest", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "manifest+json")
}

func TestRouterUnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"error":"method_not_allowed"`)
}

func TestRouterAdminRequiresJWT(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/test-ratelimit?email=x@example.com", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterAdminWithJWT(t *testing.T) {
	r := newTestRouter(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testAdminSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/test-ratelimit?email=x@example.com", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.DefaultConfig())
	t.Cleanup(limiter.Close)
	r := New(&Config{
		LeadsHandler:       leads.NewHandler(leads.NewInMemoryRepository(), limiter, nil, logging.Default(), nil),
		CORSAllowedOrigins: []string{"https://myautoimport.example"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/leads", nil)
	req.Header.Set("Origin", "https://myautoimport.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://myautoimport.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
