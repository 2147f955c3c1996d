package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"ratethem-backend/internal/config"
	"ratethem-backend/internal/database"
	"ratethem-backend/internal/models"
	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitJWT("router-test-secret", 15*time.Minute, 24*time.Hour)
	utils.SetBcryptCost(4)
	os.Exit(m.Run())
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{
		App:     config.AppConfig{Name: "ratethem-backend", Version: "test"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		Metrics: config.MetricsConfig{Enabled: true},
	}

	return &testServer{t: t, db: db, engine: New(cfg, db, nil, prometheus.NewRegistry())}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(email, password string) *httptest.ResponseRecorder {
	s.t.Helper()

	form := url.Values{"grant_type": {"password"}, "username": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(name, email string) uint {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/register", "", map[string]any{"name": name, "email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	decodeData(s.t, w, &user)
	return user.ID
}

func (s *testServer) tokens(email string) tokenResponse {
	s.t.Helper()
	w := s.login(email, "secret123")
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var pair tokenResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &pair))
	return pair
}

// seedAdmin inserts an administrator directly and returns its access token
func (s *testServer) seedAdmin() string {
	s.t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Create(&models.User{
		Name: "Admin", Email: "boss@example.com", PasswordHash: hash, Role: models.RoleAdmin,
	}).Error)
	return s.tokens("boss@example.com").AccessToken
}

func (s *testServer) createItem(token, name string, body map[string]any) uint {
	s.t.Helper()
	if body == nil {
		body = map[string]any{}
	}
	body["name"] = name
	w := s.do(http.MethodPost, "/items", token, body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var item models.ItemWithStats
	decodeData(s.t, w, &item)
	return item.ID
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func idPath(prefix string, id uint, suffix string) string {
	return prefix + "/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]string
	decodeData(t, w, &health)
	assert.Equal(t, "healthy", health["status"])

	w = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ratethem_http_requests_total")

	w = s.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "alice@example.com")

	w := s.do(http.MethodPost, "/auth/register", "", map[string]any{"name": "Again", "email": "alice@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/auth/register", "", map[string]any{"name": "", "email": "not-an-email", "password": "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Contains(t, env.Details, "email")
	assert.Contains(t, env.Details, "password")
	assert.Contains(t, env.Details, "name")

	w = s.login("alice@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	form := url.Values{"grant_type": {"client_credentials"}, "username": {"alice@example.com"}, "password": {"secret123"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	pair := s.tokens("alice@example.com")
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	w = s.do(http.MethodGet, "/auth/me", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "hashed_password")
	var me map[string]any
	decodeData(t, w, &me)
	assert.Equal(t, "alice@example.com", me["email"])
	assert.Equal(t, "user", me["role"])

	w = s.do(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "alice@example.com")
	first := s.tokens("alice@example.com")

	w := s.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": first.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var second tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	w = s.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": first.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/logout", "", map[string]string{"refresh_token": second.RefreshToken})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": second.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutAll(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "alice@example.com")
	a := s.tokens("alice@example.com")
	b := s.tokens("alice@example.com")

	w := s.do(http.MethodPost, "/auth/logout-all", a.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	for _, refresh := range []string{a.RefreshToken, b.RefreshToken} {
		w = s.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": refresh})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestProfileEditAndRemove(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "alice@example.com")
	s.register("Bob", "bob@example.com")
	token := s.tokens("alice@example.com").AccessToken

	w := s.do(http.MethodPut, "/auth/edit", token, map[string]any{"name": "Alicia", "role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	var user models.User
	decodeData(t, w, &user)
	assert.Equal(t, "Alicia", user.Name)
	assert.Equal(t, models.RoleUser, user.Role)

	w = s.do(http.MethodPut, "/auth/edit", token, map[string]any{"email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/auth/remove", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.login("alice@example.com", "secret123")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminEndpointsRejectUsers(t *testing.T) {
	s := newTestServer(t)
	s.register("Alice", "alice@example.com")
	token := s.tokens("alice@example.com").AccessToken

	requests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/users", nil},
		{http.MethodPost, "/users", map[string]any{"name": "X", "email": "x@example.com", "password": "secret123"}},
		{http.MethodGet, "/users/stats", nil},
		{http.MethodGet, "/users/growth", nil},
		{http.MethodGet, "/users/engagement", nil},
		{http.MethodPut, "/users/1", map[string]any{"name": "X"}},
		{http.MethodDelete, "/users/1", nil},
		{http.MethodPut, "/items/1", map[string]any{"name": "X"}},
		{http.MethodPut, "/items/1/categories", map[string]any{"category_ids": []uint{}}},
		{http.MethodPut, "/items/1/tags", map[string]any{"tags": []string{}}},
		{http.MethodDelete, "/items/1", nil},
		{http.MethodPost, "/categories", map[string]any{"name": "X"}},
		{http.MethodPut, "/categories/1", map[string]any{"name": "X"}},
		{http.MethodDelete, "/categories/1", nil},
		{http.MethodPost, "/tags", map[string]any{"name": "X"}},
		{http.MethodPut, "/tags/1", map[string]any{"name": "X"}},
		{http.MethodDelete, "/tags/1", nil},
		{http.MethodGet, "/ratings", nil},
	}

	for _, r := range requests {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			w := s.do(r.method, r.path, token, r.body)
			assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
		})
	}
}

func TestItemsAndCatalog(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedAdmin()
	s.register("Alice", "alice@example.com")
	user := s.tokens("alice@example.com").AccessToken

	w := s.do(http.MethodPost, "/categories", admin, map[string]any{"name": "Food", "description": "Dishes"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var food models.Category
	decodeData(t, w, &food)

	w = s.do(http.MethodPost, "/categories", admin, map[string]any{"name": "Food"})
	assert.Equal(t, http.StatusConflict, w.Code)

	sushi := s.createItem(user, "Sushi", map[string]any{"category_ids": []uint{food.ID}, "tags": []string{"fresh", "fish"}})
	s.createItem(user, "Curry", map[string]any{"tags": []string{"spicy"}})

	w = s.do(http.MethodPost, "/items", user, map[string]any{"name": "Ghost", "category_ids": []uint{999}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/items", user, map[string]any{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/items", "", map[string]any{"name": "Anon"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var items []models.ItemWithStats
	decodeData(t, s.do(http.MethodGet, "/items", "", nil), &items)
	assert.Len(t, items, 2)

	decodeData(t, s.do(http.MethodGet, "/items?category_id="+strconv.FormatUint(uint64(food.ID), 10), "", nil), &items)
	require.Len(t, items, 1)
	assert.Equal(t, sushi, items[0].ID)

	decodeData(t, s.do(http.MethodGet, "/items?tags=spicy,fish", "", nil), &items)
	assert.Len(t, items, 2)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/items?category_id=abc", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/items/999", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/items/abc", "", nil).Code)

	w = s.do(http.MethodPut, idPath("/items", sushi, ""), admin, map[string]any{"description": "Rice and fish"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.ItemWithStats
	decodeData(t, w, &updated)
	assert.Equal(t, "Sushi", updated.Name)
	assert.Equal(t, "Rice and fish", updated.Description)

	w = s.do(http.MethodPut, idPath("/items", sushi, "/tags"), admin, map[string]any{"tags": []string{"raw"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodPut, idPath("/items", sushi, "/categories"), admin, map[string]any{"category_ids": []uint{}})
	assert.Equal(t, http.StatusNoContent, w.Code)

	var item models.ItemWithStats
	decodeData(t, s.do(http.MethodGet, idPath("/items", sushi, ""), "", nil), &item)
	assert.Empty(t, item.Categories)
	require.Len(t, item.Tags, 1)
	assert.Equal(t, "raw", item.Tags[0].Name)

	var tags []models.Tag
	decodeData(t, s.do(http.MethodGet, "/tags", "", nil), &tags)
	assert.Len(t, tags, 4)

	w = s.do(http.MethodDelete, idPath("/categories", food.ID, ""), admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, idPath("/categories", food.ID, ""), "", nil).Code)

	w = s.do(http.MethodDelete, idPath("/items", sushi, ""), admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, idPath("/items", sushi, ""), "", nil).Code)
}

func TestRatingsFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedAdmin()
	s.register("Alice", "alice@example.com")
	s.register("Bob", "bob@example.com")
	alice := s.tokens("alice@example.com").AccessToken
	bob := s.tokens("bob@example.com").AccessToken

	item := s.createItem(admin, "Sushi", nil)

	w := s.do(http.MethodPost, "/ratings", alice, map[string]any{"item_id": item, "value": 4, "comment": "Great"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var rating models.Rating
	decodeData(t, w, &rating)

	w = s.do(http.MethodPost, "/ratings", alice, map[string]any{"item_id": item, "value": 2})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/ratings", bob, map[string]any{"item_id": item, "value": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/ratings", bob, map[string]any{"item_id": item})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/ratings", bob, map[string]any{"item_id": 999, "value": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/ratings", bob, map[string]any{"item_id": item, "value": 0})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var mine models.Rating
	decodeData(t, s.do(http.MethodGet, idPath("/ratings", item, "/my-rating"), alice, nil), &mine)
	assert.Equal(t, rating.ID, mine.ID)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPut, idPath("/ratings", rating.ID, ""), bob, map[string]any{"value": 1}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, idPath("/ratings", rating.ID, "/comment"), bob, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, idPath("/ratings", rating.ID, ""), bob, nil).Code)

	w = s.do(http.MethodDelete, idPath("/ratings", rating.ID, "/comment"), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cleared models.Rating
	decodeData(t, w, &cleared)
	assert.Nil(t, cleared.Comment)
	assert.Equal(t, 4.0, cleared.Value)

	w = s.do(http.MethodPut, idPath("/ratings", rating.ID, ""), alice, map[string]any{"value": 5})
	require.Equal(t, http.StatusOK, w.Code)

	var withStats models.ItemWithStats
	decodeData(t, s.do(http.MethodGet, idPath("/items", item, ""), "", nil), &withStats)
	assert.InDelta(t, 2.5, withStats.AvgRating, 1e-9)
	assert.Equal(t, int64(2), withStats.CountRating)

	var stats models.RatingStats
	decodeData(t, s.do(http.MethodGet, "/ratings/stats", alice, nil), &stats)
	assert.Equal(t, 2.5, stats.Average)
	assert.Equal(t, int64(2), stats.TotalCount)

	var distribution []models.RatingDistribution
	decodeData(t, s.do(http.MethodGet, "/ratings/distribution", alice, nil), &distribution)
	require.Len(t, distribution, 6)
	assert.Equal(t, int64(1), distribution[0].Count)
	assert.Equal(t, int64(1), distribution[5].Count)

	var recent []models.RecentRating
	decodeData(t, s.do(http.MethodGet, "/ratings/recent?limit=1", alice, nil), &recent)
	assert.Len(t, recent, 1)

	var itemRatings []models.Rating
	decodeData(t, s.do(http.MethodGet, idPath("/items", item, "/ratings"), "", nil), &itemRatings)
	assert.Len(t, itemRatings, 2)

	var all []models.Rating
	decodeData(t, s.do(http.MethodGet, "/ratings", admin, nil), &all)
	assert.Len(t, all, 2)

	w = s.do(http.MethodDelete, idPath("/ratings", rating.ID, ""), admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, idPath("/ratings", rating.ID, ""), alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, idPath("/ratings", item, "/my-rating"), alice, nil).Code)
}

func TestUserRatingsAndRecommendations(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedAdmin()
	aliceID := s.register("Alice", "alice@example.com")
	bobID := s.register("Bob", "bob@example.com")
	alice := s.tokens("alice@example.com").AccessToken

	rated := s.createItem(admin, "Rated", nil)
	unrated := s.createItem(admin, "Unrated", nil)
	w := s.do(http.MethodPost, "/ratings", alice, map[string]any{"item_id": rated, "value": 3})
	require.Equal(t, http.StatusCreated, w.Code)

	var ratings []models.Rating
	decodeData(t, s.do(http.MethodGet, idPath("/users", aliceID, "/ratings"), alice, nil), &ratings)
	assert.Len(t, ratings, 1)

	var recommended []models.ItemWithStats
	decodeData(t, s.do(http.MethodGet, idPath("/users", aliceID, "/recommendations"), alice, nil), &recommended)
	require.Len(t, recommended, 1)
	assert.Equal(t, unrated, recommended[0].ID)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, idPath("/users", bobID, "/ratings"), alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, idPath("/users", bobID, "/recommendations"), alice, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, idPath("/users", bobID, "/ratings"), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/users/999/ratings", admin, nil).Code)

	var bob models.User
	decodeData(t, s.do(http.MethodGet, idPath("/users", bobID, ""), alice, nil), &bob)
	assert.Equal(t, "Bob", bob.Name)
}

func TestDeleteUserCascades(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedAdmin()
	aliceID := s.register("Alice", "alice@example.com")
	pair := s.tokens("alice@example.com")

	item := s.createItem(admin, "Sushi", nil)
	w := s.do(http.MethodPost, "/ratings", pair.AccessToken, map[string]any{"item_id": item, "value": 4})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodDelete, idPath("/users", aliceID, ""), admin, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	var ratingCount, tokenCount int64
	require.NoError(t, s.db.Model(&models.Rating{}).Where("user_id = ?", aliceID).Count(&ratingCount).Error)
	require.NoError(t, s.db.Model(&models.RefreshToken{}).Where("user_id = ?", aliceID).Count(&tokenCount).Error)
	assert.Zero(t, ratingCount)
	assert.Zero(t, tokenCount)

	w = s.do(http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, idPath("/users", aliceID, ""), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, idPath("/users", aliceID, ""), admin, nil).Code)
}

func TestDeletedAccountTokenIsRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedAdmin()
	aliceID := s.register("Alice", "alice@example.com")
	access := s.tokens("alice@example.com").AccessToken
	item := s.createItem(admin, "Sushi", nil)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, idPath("/users", aliceID, ""), admin, nil).Code)

	w := s.do(http.MethodPost, "/ratings", access, map[string]any{"item_id": item, "value": 4})
	assert.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = s.do(http.MethodPost, "/items", access, map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	var items []models.ItemWithStats
	decodeData(t, s.do(http.MethodGet, "/items", "", nil), &items)
	assert.Len(t, items, 1)
}

func TestAdminUserManagementAndStats(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedAdmin()

	w := s.do(http.MethodPost, "/users", admin, map[string]any{"name": "Carol", "email": "carol@example.com", "password": "secret123", "role": "admin"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var carol models.User
	decodeData(t, w, &carol)
	assert.Equal(t, models.RoleAdmin, carol.Role)

	w = s.do(http.MethodPost, "/users", admin, map[string]any{"name": "Dan", "email": "dan@example.com", "password": "secret123", "role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, idPath("/users", carol.ID, ""), admin, map[string]any{"role": "user"})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &carol)
	assert.Equal(t, models.RoleUser, carol.Role)

	var users []models.User
	decodeData(t, s.do(http.MethodGet, "/users", admin, nil), &users)
	assert.Len(t, users, 2)

	var stats models.UserStats
	decodeData(t, s.do(http.MethodGet, "/users/stats", admin, nil), &stats)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.NewUsersToday)

	var growth []models.UserGrowthPoint
	decodeData(t, s.do(http.MethodGet, "/users/growth?days=3", admin, nil), &growth)
	require.Len(t, growth, 3)
	assert.Equal(t, int64(2), growth[2].Count)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/users/growth?days=x", admin, nil).Code)

	var engagement []models.UserEngagement
	decodeData(t, s.do(http.MethodGet, "/users/engagement?limit=1", admin, nil), &engagement)
	assert.Len(t, engagement, 1)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/users/engagement?limit=1000", admin, nil).Code)
}
