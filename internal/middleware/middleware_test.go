package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ratethem-backend/internal/config"
	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitJWT("middleware-test-secret", time.Minute, time.Hour)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetUint("userID"),
			"email":   c.GetString("email"),
			"role":    c.GetString("role"),
		})
	}
	r.GET("/ping", handler)
	r.GET("/users/:id", handler)
	return r
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, userID uint, role string) map[string]string {
	t.Helper()
	token, err := utils.GenerateAccessToken(userID, "someone@example.com", role)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(AuthMiddleware(nil))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := perform(r, http.MethodGet, "/ping", headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		})
	}

	t.Run("valid token", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/ping", bearer(t, 7, "user"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":7,"email":"someone@example.com","role":"user"}`, w.Body.String())
	})
}

type accountSet map[uint]bool

func (a accountSet) UserExists(_ context.Context, id uint) (bool, error) {
	if id == 0 {
		return false, errors.New("lookup failed")
	}
	return a[id], nil
}

func TestAuthMiddleware_RejectsDeletedAccounts(t *testing.T) {
	r := newEngine(AuthMiddleware(accountSet{7: true}))

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping", bearer(t, 7, "user")).Code)

	w := perform(r, http.MethodGet, "/ping", bearer(t, 8, "admin"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	assert.Equal(t, http.StatusInternalServerError, perform(r, http.MethodGet, "/ping", bearer(t, 0, "user")).Code)
}

func TestRequireAdmin(t *testing.T) {
	r := newEngine(AuthMiddleware(nil), RequireAdmin())

	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/ping", bearer(t, 1, "user")).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ping", bearer(t, 1, "admin")).Code)

	bare := newEngine(RequireAdmin())
	assert.Equal(t, http.StatusUnauthorized, perform(bare, http.MethodGet, "/ping", nil).Code)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	r := newEngine(AuthMiddleware(nil), RequireSelfOrAdmin("id"))

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/users/3", bearer(t, 3, "user")).Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/users/4", bearer(t, 3, "user")).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/users/4", bearer(t, 1, "admin")).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/users/abc", bearer(t, 3, "user")).Code)
}

func TestCORS(t *testing.T) {
	t.Run("wildcard", func(t *testing.T) {
		r := newEngine(CORS(&config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}}))

		w := perform(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://app.example.com"})
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("allow list", func(t *testing.T) {
		r := newEngine(CORS(&config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}}))

		w := perform(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://app.example.com"})
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

		w = perform(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://evil.example.com"})
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		r := newEngine(CORS(&config.Config{CORS: config.CORSConfig{AllowedOrigins: []string{"*"}}}))
		r.OPTIONS("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := perform(r, http.MethodOptions, "/ping", map[string]string{"Origin": "https://app.example.com"})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	})
}

func TestRateLimit_PassesThroughWithoutRedis(t *testing.T) {
	r := newEngine(RateLimit(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil))

	for range 3 {
		w := perform(r, http.MethodGet, "/ping", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := newEngine(RequestLogger())

	w := perform(r, http.MethodGet, "/ping", nil)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)

	w = perform(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRequestLogger_LogsRouteTemplate(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	r := newEngine(RequestLogger())

	perform(r, http.MethodGet, "/users/42?token=secret", nil)
	assert.Contains(t, buf.String(), `"route":"/users/:id"`)
	assert.NotContains(t, buf.String(), "/users/42")
	assert.NotContains(t, buf.String(), "secret")

	buf.Reset()
	perform(r, http.MethodGet, "/missing", nil)
	assert.Contains(t, buf.String(), `"route":"/missing"`)
}

func TestMetrics_CountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := newEngine(m.Handler())

	perform(r, http.MethodGet, "/users/1", nil)
	perform(r, http.MethodGet, "/users/2", nil)
	perform(r, http.MethodGet, "/missing", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/users/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
