package collector_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectwise/advisor/internal/collector"
	domain "github.com/collectwise/advisor/pkg/types"
)

func fptr(f float64) *float64 { return &f }

func TestValidateQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		opts    domain.SearchOptions
		wantErr string
	}{
		{
			name:  "valid query",
			query: "amazing spider-man 300",
		},
		{
			name:  "valid with bounds",
			query: "hulk 181",
			opts:  domain.SearchOptions{MinPrice: fptr(10), MaxPrice: fptr(500)},
		},
		{
			name:    "empty query",
			query:   "   ",
			wantErr: "must not be empty",
		},
		{
			name:    "too long",
			query:   strings.Repeat("x", 201),
			wantErr: "exceeds 200 characters",
		},
		{
			name:  "multibyte under limit",
			query: strings.Repeat("é", 150),
		},
		{
			name:    "multibyte over limit",
			query:   strings.Repeat("é", 201),
			wantErr: "exceeds 200 characters",
		},
		{
			name:    "script injection",
			query:   "<script>alert(1)</script>",
			wantErr: "disallowed pattern",
		},
		{
			name:    "javascript url",
			query:   "javascript:alert(1)",
			wantErr: "disallowed pattern",
		},
		{
			name:    "sql injection",
			query:   "batman; DROP TABLE listings",
			wantErr: "disallowed pattern",
		},
		{
			name:    "inverted bounds",
			query:   "batman 1",
			opts:    domain.SearchOptions{MinPrice: fptr(500), MaxPrice: fptr(10)},
			wantErr: "exceeds max_price",
		},
		{
			name:    "negative min",
			query:   "batman 1",
			opts:    domain.SearchOptions{MinPrice: fptr(-1)},
			wantErr: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := collector.ValidateQuery(tt.query, tt.opts)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, collector.ErrInvalidQuery)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "amazing spider-man 300",
		collector.NormalizeQuery("  Amazing   Spider-Man\t300 "))
	assert.Equal(t, collector.NormalizeQuery("Hulk 181"),
		collector.NormalizeQuery("hulk   181"))
}

func TestCleanListing(t *testing.T) {
	t.Parallel()

	valid := domain.RawListing{
		ID:        "l1",
		Title:     "  Amazing   Spider-Man  #300 ",
		Price:     449.999,
		Currency:  "usd",
		Condition: "NM",
		URL:       "https://market.test/l1",
		Seller:    "comic  vault",
		Source:    "testmarket",
	}

	cl, err := collector.CleanListing(valid)
	require.NoError(t, err)
	assert.Equal(t, "Amazing Spider-Man #300", cl.Title)
	assert.Equal(t, 450.0, cl.Price)
	assert.Equal(t, "USD", cl.Currency)
	assert.Equal(t, domain.ConditionNearMint, cl.Condition)
	assert.Equal(t, "comic vault", cl.Seller)

	tests := []struct {
		name    string
		mutate  func(*domain.RawListing)
		wantMsg string
	}{
		{"missing id", func(r *domain.RawListing) { r.ID = "" }, "missing id"},
		{"missing title", func(r *domain.RawListing) { r.Title = " " }, "missing title"},
		{"zero price", func(r *domain.RawListing) { r.Price = 0 }, "outside"},
		{"negative price", func(r *domain.RawListing) { r.Price = -5 }, "outside"},
		{"price over cap", func(r *domain.RawListing) { r.Price = 100001 }, "outside"},
		{"bad url scheme", func(r *domain.RawListing) { r.URL = "ftp://x.test/a" }, "malformed url"},
		{"no url host", func(r *domain.RawListing) { r.URL = "https://" }, "malformed url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw := valid
			tt.mutate(&raw)
			_, err := collector.CleanListing(raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCleanListing_PriceCapBoundary(t *testing.T) {
	t.Parallel()

	raw := domain.RawListing{
		ID: "l1", Title: "x", Price: 100000, URL: "https://x.test/a", Source: "s",
	}
	_, err := collector.CleanListing(raw)
	require.NoError(t, err, "exactly 100000 is within (0, 100000]")
}

func TestCanonicalCondition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want domain.Condition
	}{
		{"nm", domain.ConditionNearMint},
		{"NM", domain.ConditionNearMint},
		{" vf ", domain.ConditionVeryFine},
		{"Fine", domain.ConditionFine},
		{"vg", domain.ConditionVeryGood},
		{"mint", domain.ConditionMint},
		{"poor", domain.ConditionPoor},
		{"slabbed 9.8", domain.ConditionUnknown},
		{"", domain.ConditionUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, collector.CanonicalCondition(tt.raw), "raw=%q", tt.raw)
	}
}
