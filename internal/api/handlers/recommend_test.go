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
	"github.com/collectwise/advisor/internal/collector"
	domain "github.com/collectwise/advisor/pkg/types"
)

func sampleRecommendation() *domain.Recommendation {
	return &domain.Recommendation{
		ID:      "rec-1",
		ItemKey: "Amazing Spider-Man #300|Marvel",
		Primary: domain.RecommendedAction{Action: domain.ActionHold, Score: 0.7},
	}
}

func newRecommendAPI(t *testing.T, a *fakeAdviser, s *fakeStore) humatest.TestAPI {
	t.Helper()

	_, api := humatest.New(t)
	handlers.RegisterRecommendationRoutes(api, handlers.NewRecommendHandler(a, s))
	return api
}

func TestRecommendCreate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		adviser    *fakeAdviser
		wantStatus int
		wantBody   string
	}{
		{
			name: "produces recommendation",
			body: map[string]any{
				"item":  map[string]any{"title": "Amazing Spider-Man #300", "publisher": "Marvel"},
				"query": "amazing spider-man 300",
			},
			adviser:    &fakeAdviser{rec: sampleRecommendation()},
			wantStatus: http.StatusOK,
			wantBody:   `"id":"rec-1"`,
		},
		{
			name:       "query falls back to item title",
			body:       map[string]any{"item": map[string]any{"title": "Amazing Spider-Man #300"}},
			adviser:    &fakeAdviser{rec: sampleRecommendation()},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing query and title",
			body:       map[string]any{"item": map[string]any{"publisher": "Marvel"}},
			adviser:    &fakeAdviser{},
			wantStatus: http.StatusBadRequest,
			wantBody:   "query or item.title is required",
		},
		{
			name:       "invalid query maps to 400",
			body:       map[string]any{"query": "drop table listings"},
			adviser:    &fakeAdviser{err: collector.ErrInvalidQuery},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "pipeline failure maps to 500",
			body:       map[string]any{"query": "amazing spider-man 300"},
			adviser:    &fakeAdviser{err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "producing recommendation",
		},
		{
			name:       "malformed body",
			body:       strings.NewReader(`{"item":`),
			adviser:    &fakeAdviser{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newRecommendAPI(t, tt.adviser, &fakeStore{})

			resp := api.Post("/api/v1/recommendations", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantBody != "" {
				assert.Contains(t, resp.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRecommendGet(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		api := newRecommendAPI(t, &fakeAdviser{}, &fakeStore{getRec: sampleRecommendation()})

		resp := api.Get("/api/v1/recommendations/rec-1")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"id":"rec-1"`)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		api := newRecommendAPI(t, &fakeAdviser{}, &fakeStore{})

		resp := api.Get("/api/v1/recommendations/missing")
		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Contains(t, resp.Body.String(), "recommendation not found")
	})
}

func TestRecommendList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		store      *fakeStore
		wantStatus int
		wantBody   string
	}{
		{
			name:       "lists recommendations",
			target:     "/api/v1/recommendations?item_key=asm-300",
			store:      &fakeStore{recs: []domain.Recommendation{*sampleRecommendation()}},
			wantStatus: http.StatusOK,
			wantBody:   `"id":"rec-1"`,
		},
		{
			name:       "empty result is an empty array",
			target:     "/api/v1/recommendations?item_key=asm-300",
			store:      &fakeStore{},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name:       "missing item_key returns 422",
			target:     "/api/v1/recommendations",
			store:      &fakeStore{},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "invalid limit returns 422",
			target:     "/api/v1/recommendations?item_key=asm-300&limit=zero",
			store:      &fakeStore{},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "store failure maps to 500",
			target:     "/api/v1/recommendations?item_key=asm-300",
			store:      &fakeStore{listErr: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newRecommendAPI(t, &fakeAdviser{}, tt.store)

			resp := api.Get(tt.target)
			require.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantBody != "" {
				assert.Contains(t, resp.Body.String(), tt.wantBody)
			}
		})
	}
}
