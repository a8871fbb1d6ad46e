package handlers_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectwise/advisor/internal/api/handlers"
	"github.com/collectwise/advisor/internal/store"
	domain "github.com/collectwise/advisor/pkg/types"
)

func newWatchedAPI(t *testing.T, s *fakeStore) humatest.TestAPI {
	t.Helper()

	_, api := humatest.New(t)
	handlers.RegisterWatchedRoutes(api, handlers.NewWatchedHandler(s))
	return api
}

func TestWatchedList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		store      *fakeStore
		wantStatus int
		wantBody   string
	}{
		{
			name:   "returns items",
			target: "/api/v1/watched",
			store: &fakeStore{watched: []domain.WatchedItem{
				{ID: "w1", Query: "amazing spider-man 300", Enabled: true},
			}},
			wantStatus: http.StatusOK,
			wantBody:   `"id":"w1"`,
		},
		{
			name:       "empty result is an empty array",
			target:     "/api/v1/watched?enabled=true",
			store:      &fakeStore{},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name:       "store failure maps to 500",
			target:     "/api/v1/watched",
			store:      &fakeStore{watchedErr: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "listing watched items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newWatchedAPI(t, tt.store)

			resp := api.Get(tt.target)
			require.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantBody != "" {
				assert.Contains(t, resp.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestWatchedCreate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		store      *fakeStore
		wantStatus int
		wantBody   string
	}{
		{
			name: "creates watched item",
			body: map[string]any{
				"item":  map[string]any{"title": "Batman #1", "publisher": "DC"},
				"query": "batman 1 1940",
			},
			store:      &fakeStore{},
			wantStatus: http.StatusCreated,
			wantBody:   `"query":"batman 1 1940"`,
		},
		{
			name:       "query falls back to item title",
			body:       map[string]any{"item": map[string]any{"title": "Batman #1"}},
			store:      &fakeStore{},
			wantStatus: http.StatusCreated,
			wantBody:   `"query":"Batman #1"`,
		},
		{
			name:       "missing query and title",
			body:       map[string]any{"item": map[string]any{"publisher": "DC"}},
			store:      &fakeStore{},
			wantStatus: http.StatusBadRequest,
			wantBody:   "query or item.title is required",
		},
		{
			name:       "store failure maps to 500",
			body:       map[string]any{"query": "batman 1"},
			store:      &fakeStore{createErr: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "creating watched item",
		},
		{
			name:       "malformed body",
			body:       strings.NewReader(`{"query":`),
			store:      &fakeStore{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newWatchedAPI(t, tt.store)

			resp := api.Post("/api/v1/watched", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantBody != "" {
				assert.Contains(t, resp.Body.String(), tt.wantBody)
			}

			if resp.Code == http.StatusCreated {
				require.Len(t, tt.store.created, 1)
				assert.NotEmpty(t, tt.store.created[0].ID, "server assigns the ID")
				assert.True(t, tt.store.created[0].Enabled, "new items start enabled")
			}
		})
	}
}

func TestWatchedGet(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		api := newWatchedAPI(t, &fakeStore{getWatched: &domain.WatchedItem{
			ID: "w1", Query: "hulk 181", Enabled: true,
		}})

		resp := api.Get("/api/v1/watched/w1")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"query":"hulk 181"`)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		api := newWatchedAPI(t, &fakeStore{})

		resp := api.Get("/api/v1/watched/missing")
		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), "watched item not found")
	})
}

func TestWatchedSetEnabled(t *testing.T) {
	t.Parallel()

	t.Run("updates", func(t *testing.T) {
		t.Parallel()

		api := newWatchedAPI(t, &fakeStore{})

		resp := api.Put("/api/v1/watched/w1/enabled", map[string]any{"enabled": false})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"status":"ok"`)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		api := newWatchedAPI(t, &fakeStore{enableErr: store.ErrNotFound})

		resp := api.Put("/api/v1/watched/missing/enabled", map[string]any{"enabled": true})
		require.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestWatchedDelete(t *testing.T) {
	t.Parallel()

	t.Run("deletes", func(t *testing.T) {
		t.Parallel()

		api := newWatchedAPI(t, &fakeStore{})

		resp := api.Delete("/api/v1/watched/w1")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"status":"ok"`)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		api := newWatchedAPI(t, &fakeStore{deleteErr: store.ErrNotFound})

		resp := api.Delete("/api/v1/watched/missing")
		require.Equal(t, http.StatusNotFound, resp.Code)
	})
}
