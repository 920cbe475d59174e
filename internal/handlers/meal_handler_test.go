package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dailydiet/internal/database"
	"dailydiet/internal/repository"
	"dailydiet/internal/security"
	"dailydiet/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler  http.Handler
	identity *security.IdentityManager
	registry *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "handlers_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations("../../migrations"))

	repo := repository.NewMealRepository(db)
	identity := security.NewIdentityManager("test-secret", 7*24*time.Hour)
	registry := prometheus.NewRegistry()
	monitor := NewMonitor(registry)

	mw := NewMiddleware(identity, security.NewRateLimiter(1000, 1000, time.Minute))
	mealHandler := NewMealHandler(service.NewMealService(repo, time.UTC), service.NewMetricsService(repo, time.UTC), identity, monitor)
	mux := NewRouter(mw, mealHandler, NewHealthHandler(db), MetricsHandler(registry, "", ""))

	return &testServer{
		handler:  monitor.Middleware(mux),
		identity: identity,
		registry: registry,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func userCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == security.UserCookieName {
			return c
		}
	}
	t.Fatalf("response did not set %s cookie", security.UserCookieName)
	return nil
}

type mealResponse struct {
	Meal struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Date       time.Time `json:"date"`
		IsDietMeal bool      `json:"is_diet_meal"`
	} `json:"meal"`
}

func TestCreateMealIssuesCookie(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/meals", `{"name":"Salad","description":"greens","date":"2024-01-01T12:00:00Z","is_diet_meal":true}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cookie := userCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	userID, err := srv.identity.Verify(cookie.Value)
	require.NoError(t, err)
	assert.NotEmpty(t, userID)

	var created mealResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Salad", created.Meal.Name)
	assert.True(t, created.Meal.IsDietMeal)

	// A known client keeps its identity
	rec = srv.do(t, http.MethodPost, "/meals", `{"name":"Soup","is_diet_meal":"false"}`, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())

	rec = srv.do(t, http.MethodGet, "/meals", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Meals []json.RawMessage `json:"meals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Meals, 2)
}

func TestCreateMealRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"malformed json", `{"name":`, http.StatusBadRequest, ErrInvalidBody},
		{"uncoercible flag", `{"name":"Salad","is_diet_meal":"maybe"}`, http.StatusBadRequest, ErrInvalidBody},
		{"missing name", `{"is_diet_meal":true}`, http.StatusBadRequest, "name: name is required"},
		{"bad date", `{"name":"Salad","date":"yesterday"}`, http.StatusBadRequest, "date:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/meals", tt.body, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantError)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestProtectedRoutesRequireIdentity(t *testing.T) {
	srv := newTestServer(t)
	forged := &http.Cookie{Name: security.UserCookieName, Value: "not-a-token"}

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/meals"},
		{http.MethodGet, "/meals/metrics"},
		{http.MethodGet, "/meals/6f1c2a9e-0000-4000-8000-000000000000"},
		{http.MethodPut, "/meals/6f1c2a9e-0000-4000-8000-000000000000"},
		{http.MethodDelete, "/meals/6f1c2a9e-0000-4000-8000-000000000000"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := srv.do(t, route.method, route.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Unauthorized."}`, rec.Body.String())

			rec = srv.do(t, route.method, route.path, "", forged)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			cleared := userCookie(t, rec)
			assert.Equal(t, -1, cleared.MaxAge)
		})
	}
}

func TestMealLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/meals", `{"name":"Oats","date":"2024-03-01T08:00:00Z","is_diet_meal":true}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	owner := userCookie(t, rec)

	var created mealResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	mealPath := "/meals/" + created.Meal.ID

	rec = srv.do(t, http.MethodPost, "/meals", `{"name":"Toast"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	stranger := userCookie(t, rec)

	t.Run("owner reads meal", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, mealPath, "", owner)
		require.Equal(t, http.StatusOK, rec.Code)

		var got mealResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, created.Meal.ID, got.Meal.ID)
	})

	t.Run("stranger gets not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, mealPath, "", stranger).Code)
		assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodPut, mealPath, `{"name":"Mine"}`, stranger).Code)
		assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodDelete, mealPath, "", stranger).Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/meals/42", "", owner)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("partial update", func(t *testing.T) {
		rec := srv.do(t, http.MethodPut, mealPath, `{"is_diet_meal":0}`, owner)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = srv.do(t, http.MethodGet, mealPath, "", owner)
		var got mealResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Oats", got.Meal.Name)
		assert.False(t, got.Meal.IsDietMeal)
	})

	t.Run("empty update", func(t *testing.T) {
		rec := srv.do(t, http.MethodPut, mealPath, `{}`, owner)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, srv.do(t, http.MethodDelete, mealPath, "", owner).Code)
		assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, mealPath, "", owner).Code)
	})
}

func TestGetMetrics(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/meals", `{"name":"a","date":"2024-01-01","is_diet_meal":true}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cookie := userCookie(t, rec)

	for _, body := range []string{
		`{"name":"b","date":"2024-01-02","is_diet_meal":true}`,
		`{"name":"c","date":"2024-01-02 19:00:00","is_diet_meal":false}`,
		`{"name":"d","date":"2024-01-04","is_diet_meal":true}`,
	} {
		require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/meals", body, cookie).Code)
	}

	rec = srv.do(t, http.MethodGet, "/meals/metrics", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"metrics":{"mealsAmount":4,"dietMealsAmount":3,"nonDietMealsAmount":1,"bestSequenceWithinDiet":2}}`, rec.Body.String())

	families, err := srv.registry.Gather()
	require.NoError(t, err)

	var observed uint64
	for _, family := range families {
		if family.GetName() == "diet_best_sequence_days" {
			observed = family.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(1), observed)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	srv.do(t, http.MethodGet, "/meals", "", nil)
	srv.do(t, http.MethodGet, "/meals/6f1c2a9e-0000-4000-8000-000000000000", "", nil)
	srv.do(t, http.MethodGet, "/nowhere", "", nil)

	rec = srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",pattern="GET /meals",status="401"} 1`)
	// Meal ids collapse into the route pattern
	assert.Contains(t, body, `http_requests_total{method="GET",pattern="GET /meals/{id}",status="401"} 1`)
	assert.NotContains(t, body, "6f1c2a9e")
	assert.Contains(t, body, `http_requests_total{method="GET",pattern="unmatched",status="404"} 1`)
	assert.Contains(t, body, "auth_rejections_total 2")
}
