package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	domain "github.com/collectwise/advisor/pkg/types"
)

const (
	colorRed    = 0xE74C3C // list_now: act quickly
	colorGreen  = 0x2ECC71 // hold
	colorBlue   = 0x3498DB // grade
	colorYellow = 0xF1C40F // monitor, fallback
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendRecommendation sends one recommendation as a Discord embed.
func (d *DiscordNotifier) SendRecommendation(
	ctx context.Context,
	item domain.ItemMetadata,
	rec *domain.Recommendation,
) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(item, rec)},
	}
	return d.post(ctx, payload)
}

func buildEmbed(item domain.ItemMetadata, rec *domain.Recommendation) discordEmbed {
	title := item.Title
	if title == "" {
		title = rec.ItemKey
	}

	embed := discordEmbed{
		Title:       fmt.Sprintf("Recommendation: %s", title),
		Color:       actionColor(rec.Primary.Action),
		Description: rec.MarketSummary,
		Fields: []discordEmbedField{
			{Name: "Action", Value: string(rec.Primary.Action), Inline: true},
			{Name: "Score", Value: fmt.Sprintf("%.2f", rec.Primary.Score), Inline: true},
			{Name: "Confidence", Value: fmt.Sprintf("%.0f%%", rec.Confidence.Overall*100), Inline: true},
			{Name: "Urgency", Value: string(rec.Primary.Urgency), Inline: true},
			{Name: "Valid Until", Value: rec.ExpiresAt.Format("2006-01-02 15:04 MST"), Inline: true},
		},
	}

	if len(rec.Reasoning) > 0 {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:  "Why",
			Value: strings.Join(rec.Reasoning, "\n"),
		})
	}
	if rec.Fallback {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:  "Note",
			Value: "produced with insufficient data",
		})
	}

	return embed
}

func actionColor(a domain.Action) int {
	switch a {
	case domain.ActionListNow:
		return colorRed
	case domain.ActionHold:
		return colorGreen
	case domain.ActionGrade:
		return colorBlue
	default:
		return colorYellow
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
