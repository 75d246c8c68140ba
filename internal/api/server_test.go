package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gmsas95/nutritrack/internal/auth"
	"github.com/gmsas95/nutritrack/internal/config"
	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/metrics"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gmsas95/nutritrack/internal/store/storetest"
	"github.com/gmsas95/nutritrack/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	srv   *Server
	store *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := storetest.New(t)
	logger := zap.NewNop()

	uc := usecase.NewSet(usecase.Repositories{
		Users:     st,
		Intakes:   st,
		Meals:     st,
		Favorites: st,
		Menu:      st,
	}, usecase.NewHealthCalculator(0))

	authSvc := auth.NewService(auth.Config{
		Secret:     "test-secret",
		BcryptCost: bcrypt.MinCost,
	}, st, st, logger)

	cfg := &config.Config{}
	cfg.Security.AllowOrigins = []string{"*"}

	srv := New(cfg, Deps{
		Auth:     authSvc,
		UseCases: uc,
		Metrics:  metrics.New(),
		Storage:  st,
		Version:  "test",
	}, logger)

	return &testEnv{srv: srv, store: st}
}

// call issues a request and decodes the JSON body into out when out is non-nil.
func (e *testEnv) call(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	var sess auth.Session
	status := e.call(t, http.MethodPost, "/api/auth/register", "", jsonMap{
		"email":        email,
		"password":     "password123",
		"display_name": "Tester",
	}, &sess)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, sess.Token)
	return sess.Token
}

type jsonMap = map[string]any

func (e *testEnv) seedMeal(t *testing.T, id string, calories float64) {
	t.Helper()
	_, err := e.store.UpsertMeals(context.Background(), []store.Meal{
		{ID: id, Name: "Meal " + id, Category: "LUNCH", Calories: calories, Source: "seed"},
	})
	require.NoError(t, err)
}

func maintainProfile() jsonMap {
	return jsonMap{
		"weight_kg":      70,
		"height_cm":      175,
		"age":            30,
		"gender":         "MALE",
		"activity_level": "SEDENTARY",
		"goal":           "MAINTAIN",
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var body map[string]any
	status := env.call(t, http.MethodGet, "/api/health", "", nil, &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	status := env.call(t, http.MethodPost, "/api/auth/register", "", jsonMap{
		"email": "ada@example.com", "password": "password123",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)

	status = env.call(t, http.MethodPost, "/api/auth/login", "", jsonMap{
		"email": "ada@example.com", "password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var sess auth.Session
	status = env.call(t, http.MethodPost, "/api/auth/login", "", jsonMap{
		"email": "ADA@example.com", "password": "password123",
	}, &sess)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, sess.Token)

	var me store.User
	status = env.call(t, http.MethodGet, "/api/me", token, nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ada@example.com", me.Email)

	status = env.call(t, http.MethodPost, "/api/auth/logout", token, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status = env.call(t, http.MethodGet, "/api/me", token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// the second session is unaffected
	status = env.call(t, http.MethodGet, "/api/me", sess.Token, nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/me", "/api/meals", "/api/intake/2024-05-01", "/api/progress/2024-05-01"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodGet, path, "", nil, nil))
			assert.Equal(t, http.StatusUnauthorized, env.call(t, http.MethodGet, path, "not-a-jwt", nil, nil))
		})
	}
}

func TestUpdateProfileRecomputesMetrics(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "bob@example.com")

	var user store.User
	status := env.call(t, http.MethodPut, "/api/me/profile", token, maintainProfile(), &user)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, user.HealthMetrics)
	assert.InDelta(t, 1648.75, user.HealthMetrics.BMR, 1e-9)
	assert.Equal(t, 1979, user.HealthMetrics.DailyCalorieTarget)

	var health healthResponse
	status = env.call(t, http.MethodGet, "/api/me/health", token, nil, &health)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, health.Stale)
	assert.Equal(t, "normal", health.BMICategory)
	assert.Equal(t, 792, health.MealCalories["LUNCH"])

	status = env.call(t, http.MethodPut, "/api/me/profile", token, jsonMap{"age": -1}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = env.call(t, http.MethodPost, "/api/me/health/recompute", token, nil, &user)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1979, user.HealthMetrics.DailyCalorieTarget)
}

func TestHealthWithoutMetricsIsStale(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "new@example.com")

	var health healthResponse
	status := env.call(t, http.MethodGet, "/api/me/health", token, nil, &health)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, health.Stale)
	assert.Nil(t, health.Metrics)
}

func TestIntakeLifecycleAndProgress(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "eve@example.com")
	env.seedMeal(t, "pasta", 600)

	require.Equal(t, http.StatusOK, env.call(t, http.MethodPut, "/api/me/profile", token, maintainProfile(), nil))

	var intake store.MealIntake
	status := env.call(t, http.MethodPost, "/api/intake", token, jsonMap{
		"meal_id":     "pasta",
		"date":        "2024-05-01",
		"category":    "lunch",
		"is_consumed": true,
	}, &intake)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Meal pasta", intake.MealName)
	assert.Equal(t, 600.0, intake.Calories)
	assert.Equal(t, 1.0, intake.PortionSize)

	var progress map[string]any
	status = env.call(t, http.MethodGet, "/api/progress/2024-05-01", token, nil, &progress)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1979), progress["target_calories"])
	assert.Equal(t, float64(600), progress["consumed_calories"])
	assert.Equal(t, float64(1379), progress["remaining_calories"])

	status = env.call(t, http.MethodGet, "/api/progress/2024-05-01?target=500", token, nil, &progress)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, progress["is_over_target"])
	assert.Equal(t, float64(-100), progress["remaining_calories"])

	var consumed consumedResponse
	status = env.call(t, http.MethodPatch, "/api/intake/"+intake.ID+"/consumed", token, jsonMap{"is_consumed": false}, &consumed)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, consumed.IsConsumed)

	status = env.call(t, http.MethodGet, "/api/progress/2024-05-01", token, nil, &progress)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), progress["consumed_calories"])
	assert.Equal(t, float64(600), progress["planned_calories"])

	other := env.register(t, "mallory@example.com")
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodDelete, "/api/intake/"+intake.ID, other, nil, nil))

	assert.Equal(t, http.StatusNoContent, env.call(t, http.MethodDelete, "/api/intake/"+intake.ID, token, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodDelete, "/api/intake/"+intake.ID, token, nil, nil))

	var list []store.MealIntake
	status = env.call(t, http.MethodGet, "/api/intake/2024-05-01", token, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list)
}

func TestCreateIntakeValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "val@example.com")

	tests := []struct {
		name   string
		body   jsonMap
		status int
	}{
		{"no name or meal", jsonMap{"date": "2024-05-01", "category": "LUNCH", "calories": 100}, http.StatusBadRequest},
		{"unknown meal", jsonMap{"meal_id": "nope", "date": "2024-05-01", "category": "LUNCH"}, http.StatusNotFound},
		{"bad category", jsonMap{"meal_name": "Soup", "date": "2024-05-01", "category": "BRUNCH", "calories": 100}, http.StatusBadRequest},
		{"bad date", jsonMap{"meal_name": "Soup", "date": "05/01/2024", "category": "LUNCH", "calories": 100}, http.StatusBadRequest},
		{"negative calories", jsonMap{"meal_name": "Soup", "date": "2024-05-01", "category": "LUNCH", "calories": -5}, http.StatusBadRequest},
		{"control characters", jsonMap{"meal_name": "Soup\x1b[2J", "date": "2024-05-01", "category": "LUNCH", "calories": 100}, http.StatusBadRequest},
		{"free text", jsonMap{"meal_name": "Soup", "date": "2024-05-01", "category": "DINNER", "calories": 250}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, env.call(t, http.MethodPost, "/api/intake", token, tt.body, nil))
		})
	}
}

func TestProgressWithoutMetricsUsesZeroTarget(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "zero@example.com")

	var progress map[string]any
	status := env.call(t, http.MethodGet, "/api/progress/2024-05-01", token, nil, &progress)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), progress["target_calories"])
	assert.Equal(t, float64(0), progress["progress"])

	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodGet, "/api/progress/yesterday", token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodGet, "/api/progress/2024-05-01?target=-3", token, nil, nil))
}

func TestMealsAndFavorites(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "fav@example.com")
	env.seedMeal(t, "salad", 300)

	var meals []store.Meal
	status := env.call(t, http.MethodGet, "/api/meals?q=salad", token, nil, &meals)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, meals, 1)

	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodGet, "/api/meals?category=SNACK", token, nil, nil))
	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodGet, "/api/meals/missing", token, nil, nil))

	var fav favoriteResponse
	status = env.call(t, http.MethodPut, "/api/favorites/salad", token, nil, &fav)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, fav.Favorite)

	status = env.call(t, http.MethodGet, "/api/favorites", token, nil, &meals)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, meals, 1)
	assert.Equal(t, "salad", meals[0].ID)

	status = env.call(t, http.MethodDelete, "/api/favorites/salad", token, nil, &fav)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, fav.Favorite)

	assert.Equal(t, http.StatusNotFound, env.call(t, http.MethodPut, "/api/favorites/missing", token, nil, nil))
}

func TestMenuPlanning(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "menu@example.com")
	env.seedMeal(t, "stew", 550)

	var item store.DailyMenuItem
	status := env.call(t, http.MethodPost, "/api/menu/items", token, jsonMap{
		"date": "2024-05-01", "category": "DINNER", "meal_id": "stew",
	}, &item)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 550.0, item.Calories)

	var day store.DailyMenuDay
	status = env.call(t, http.MethodGet, "/api/menu/day/2024-05-01", token, nil, &day)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, day.Dinner, 1)

	var week store.DailyMenuWeek
	status = env.call(t, http.MethodGet, "/api/menu/week/2024-05-01", token, nil, &week)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2024-04-29", week.StartDate)
	assert.Len(t, week.Days, 7)

	var planned []store.MealIntake
	status = env.call(t, http.MethodPost, "/api/menu/day/2024-05-01/plan", token, nil, &planned)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, planned, 1)
	assert.False(t, planned[0].IsConsumed)

	status = env.call(t, http.MethodPost, "/api/menu/day/2024-05-01/plan", token, nil, &planned)
	require.Equal(t, http.StatusCreated, status)
	assert.Empty(t, planned)

	assert.Equal(t, http.StatusNoContent, env.call(t, http.MethodDelete, "/api/menu/items/"+item.ID, token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodGet, "/api/menu/day/not-a-date", token, nil, nil))
	assert.Equal(t, http.StatusBadRequest, env.call(t, http.MethodPost, "/api/menu/items", token, jsonMap{
		"date": "2024-05-01", "category": "DINNER",
	}, nil))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.call(t, http.MethodGet, "/api/health", "", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := env.srv.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `nutritrack_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestProgressSocketRequiresUpgrade(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusUpgradeRequired, env.call(t, http.MethodGet, "/ws/progress", "", nil, nil))
}

func TestHubWithoutSubscribers(t *testing.T) {
	hub := NewHub(nil, zap.NewNop())

	assert.False(t, hub.HasSubscribers("u1"))
	assert.Equal(t, 0, hub.Publish("u1", progressEvent{Type: "progress"}))
	assert.Equal(t, 0, hub.Count())
	hub.CloseAll()
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.ErrUserNotFound, http.StatusNotFound},
		{apperrors.WrapAs(apperrors.ErrMealNotFound, io.EOF), http.StatusNotFound},
		{apperrors.ErrIntakeInvalid, http.StatusBadRequest},
		{apperrors.ErrProfileInvalid, http.StatusBadRequest},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperrors.ErrSessionExpired, http.StatusUnauthorized},
		{apperrors.ErrForbidden, http.StatusForbidden},
		{apperrors.ErrUserExists, http.StatusConflict},
		{apperrors.ErrRemoteUnavailable, http.StatusServiceUnavailable},
		{apperrors.ErrRemoteRejected, http.StatusBadGateway},
		{apperrors.ErrIntakeStorage, http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
