package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/collectwise/advisor/pkg/types"
)

func testItem() domain.ItemMetadata {
	return domain.ItemMetadata{
		Title:     "Amazing Spider-Man #300",
		Publisher: "Marvel",
	}
}

func testRecommendation(action domain.Action) *domain.Recommendation {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return &domain.Recommendation{
		ID:      "rec-1",
		ItemKey: "Amazing Spider-Man #300|Marvel",
		Primary: domain.RecommendedAction{
			Action:  action,
			Score:   0.72,
			Urgency: domain.UrgencyHigh,
		},
		Reasoning:     []string{"strong upward price trend (strength 0.80)"},
		Confidence:    domain.Confidence{Overall: 0.65},
		MarketSummary: "current price $450.00",
		GeneratedAt:   now,
		ExpiresAt:     now.Add(6 * time.Hour),
	}
}

func TestDiscordNotifier_SendRecommendation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		action     domain.Action
		statusCode int
		wantErr    string
		wantColor  int
	}{
		{
			name:       "list now uses red",
			action:     domain.ActionListNow,
			statusCode: http.StatusNoContent,
			wantColor:  colorRed,
		},
		{
			name:       "hold uses green",
			action:     domain.ActionHold,
			statusCode: http.StatusNoContent,
			wantColor:  colorGreen,
		},
		{
			name:       "grade uses blue",
			action:     domain.ActionGrade,
			statusCode: http.StatusNoContent,
			wantColor:  colorBlue,
		},
		{
			name:       "monitor uses yellow",
			action:     domain.ActionMonitor,
			statusCode: http.StatusNoContent,
			wantColor:  colorYellow,
		},
		{
			name:       "rate limited",
			action:     domain.ActionHold,
			statusCode: http.StatusTooManyRequests,
			wantErr:    "rate limited",
		},
		{
			name:       "server error",
			action:     domain.ActionHold,
			statusCode: http.StatusInternalServerError,
			wantErr:    "discord returned 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got discordWebhookPayload
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			n := NewDiscordNotifier(srv.URL, WithHTTPClient(srv.Client()))
			err := n.SendRecommendation(context.Background(), testItem(), testRecommendation(tt.action))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, got.Embeds, 1)
			embed := got.Embeds[0]
			assert.Equal(t, "Recommendation: Amazing Spider-Man #300", embed.Title)
			assert.Equal(t, tt.wantColor, embed.Color)
			require.NotEmpty(t, embed.Fields)
			assert.Equal(t, string(tt.action), embed.Fields[0].Value)
		})
	}
}

func TestDiscordNotifier_FallbackNote(t *testing.T) {
	t.Parallel()

	rec := testRecommendation(domain.ActionMonitor)
	rec.Fallback = true

	embed := buildEmbed(testItem(), rec)

	var found bool
	for _, f := range embed.Fields {
		if f.Name == "Note" {
			found = true
			assert.Contains(t, f.Value, "insufficient data")
		}
	}
	assert.True(t, found, "fallback recommendations carry a note field")
}
