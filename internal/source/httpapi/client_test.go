package httpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectwise/advisor/internal/source"
	"github.com/collectwise/advisor/internal/source/httpapi"
	domain "github.com/collectwise/advisor/pkg/types"
)

func TestClient_Search(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "amazing spider-man 300", r.URL.Query().Get("q"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"results": [
				{"id": "l1", "title": "Amazing Spider-Man #300", "price": 450.0,
				 "currency": "USD", "condition": "nm", "url": "https://x.test/l1", "seller": "bob"},
				{"id": "l2", "title": "Amazing Spider-Man #300 CGC", "price": 1200.0,
				 "currency": "USD", "condition": "vf", "url": "https://x.test/l2", "seller": "alice"}
			],
			"total": 2
		}`))
	}))
	defer srv.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := httpapi.New("testmarket", srv.URL,
		httpapi.WithAPIKey("sekrit"),
		httpapi.WithNowFunc(func() time.Time { return now }),
	)

	listings, err := c.Search(context.Background(), "amazing spider-man 300",
		domain.SearchOptions{MaxResults: 25})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "l1", listings[0].ID)
	assert.Equal(t, "testmarket", listings[0].Source)
	assert.Equal(t, now, listings[0].FetchedAt)
	assert.Equal(t, 450.0, listings[0].Price)
}

func TestClient_SearchFilters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10.00", r.URL.Query().Get("min_price"))
		assert.Equal(t, "500.00", r.URL.Query().Get("max_price"))
		assert.Equal(t, "nm", r.URL.Query().Get("condition"))
		_, _ = w.Write([]byte(`{"results": [], "total": 0}`))
	}))
	defer srv.Close()

	minP, maxP := 10.0, 500.0
	c := httpapi.New("testmarket", srv.URL)

	listings, err := c.Search(context.Background(), "hulk 181", domain.SearchOptions{
		Condition: "nm",
		MinPrice:  &minP,
		MaxPrice:  &maxP,
	})
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestClient_SearchErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "upstream down", http.StatusBadGateway)
			},
			wantMsg: "status 502",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			wantMsg: "parsing search response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := httpapi.New("testmarket", srv.URL)
			_, err := c.Search(context.Background(), "x", domain.SearchOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var srcErr *source.Error
			require.ErrorAs(t, err, &srcErr)
			assert.Equal(t, "testmarket", srcErr.Source)
		})
	}
}
