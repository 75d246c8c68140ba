package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/gmsas95/nutritrack/internal/nutrition"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gmsas95/nutritrack/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorded struct {
	mu    sync.Mutex
	calls map[string][]bool
}

func (r *recorded) RecordRemoteCall(operation string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string][]bool{}
	}
	r.calls[operation] = append(r.calls[operation], ok)
}

func newTestClient(url string, rec Recorder) *Client {
	return NewClient(Options{
		BaseURL:         url + "/",
		APIKey:          "key-123",
		Timeout:         2 * time.Second,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	}, rec, zap.NewNop())
}

func TestFetchMeals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/meals", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"m1","name":"Greek yogurt","category":"BREAKFAST","calories":150,"protein":15},
			{"id":"","name":"nameless"},
			{"id":"m2","name":"Tuna wrap","category":"LUNCH","calories":430}
		]`))
	}))
	defer srv.Close()

	rec := &recorded{}
	meals, err := newTestClient(srv.URL, rec).FetchMeals(context.Background())
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "Greek yogurt", meals[0].Name)
	assert.Equal(t, nutrition.Breakfast, meals[0].Category)
	assert.Equal(t, "remote", meals[1].Source)
	assert.Equal(t, []bool{true}, rec.calls["fetch_meals"])
}

func TestPushUser(t *testing.T) {
	var got UserDTO
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/users/u-1", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	user := &store.User{ID: "u-1", Email: "x@example.com", PasswordHash: "secret-hash", WeightKg: 70}
	require.NoError(t, newTestClient(srv.URL, nil).PushUser(context.Background(), user))
	assert.Equal(t, "x@example.com", got.Email)
	assert.Equal(t, 70.0, got.Profile.WeightKg)
}

func TestRejectedRequestsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad profile"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	for i := 0; i < 5; i++ {
		err := c.PushUser(context.Background(), &store.User{ID: "u"})
		assert.ErrorIs(t, err, apperrors.ErrRemoteRejected)
	}
	assert.Equal(t, "closed", c.State())
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rec := &recorded{}
	c := newTestClient(srv.URL, rec)
	for i := 0; i < 2; i++ {
		_, err := c.FetchMeals(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrRemoteUnavailable)
	}
	assert.Equal(t, "open", c.State())

	_, err := c.FetchMeals(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrRemoteUnavailable)
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the server")
	assert.Equal(t, []bool{false, false, false}, rec.calls["fetch_meals"])
}

func TestRateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, RequestsPerSec: 0.001, Burst: 1}, nil, zap.NewNop())
	_, err := c.FetchMeals(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.FetchMeals(ctx)
	assert.ErrorIs(t, err, apperrors.ErrRemoteUnavailable)
}

type fakePusher struct {
	pushed []string
	err    error
}

func (f *fakePusher) PushUser(_ context.Context, u *store.User) error {
	f.pushed = append(f.pushed, u.ID)
	return f.err
}

func TestMirroredUserRepository(t *testing.T) {
	st := storetest.New(t)
	pusher := &fakePusher{}
	repo := NewMirroredUserRepository(st, pusher, zap.NewNop())
	ctx := context.Background()

	user := &store.User{Email: "mirror@example.com"}
	require.NoError(t, repo.CreateUser(ctx, user))

	pusher.err = apperrors.ErrRemoteUnavailable
	user.WeightKg = 81
	saved, err := repo.UpdateUser(ctx, user)
	require.NoError(t, err, "remote failure must not fail the local write")
	assert.Equal(t, 81.0, saved.WeightKg)
	assert.Equal(t, []string{user.ID, user.ID}, pusher.pushed)

	got, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 81.0, got.WeightKg)
}
