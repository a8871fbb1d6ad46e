package triggers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/collectwise/advisor/pkg/types"
)

// HTTPFeed implements Fetcher against a JSON event feed. One instance
// serves one category; the feed endpoint is queried with the extracted
// entity names and returns dated, relevance-scored events.
type HTTPFeed struct {
	category domain.TriggerCategory
	baseURL  string
	apiKey   string
	client   *http.Client
}

// HTTPFeedOption configures the HTTPFeed.
type HTTPFeedOption func(*HTTPFeed)

// WithFeedHTTPClient overrides the default HTTP client.
func WithFeedHTTPClient(hc *http.Client) HTTPFeedOption {
	return func(f *HTTPFeed) {
		f.client = hc
	}
}

// WithFeedAPIKey sets the bearer token sent with each request.
func WithFeedAPIKey(key string) HTTPFeedOption {
	return func(f *HTTPFeed) {
		f.apiKey = key
	}
}

// NewHTTPFeed creates a fetcher for one category backed by the feed at
// baseURL.
func NewHTTPFeed(
	category domain.TriggerCategory,
	baseURL string,
	opts ...HTTPFeedOption,
) *HTTPFeed {
	f := &HTTPFeed{
		category: category,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Category implements Fetcher.
func (f *HTTPFeed) Category() domain.TriggerCategory { return f.category }

type feedResponse struct {
	Events []feedEvent `json:"events"`
}

type feedEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Relevance   float64   `json:"relevance"`
}

// Fetch implements Fetcher by querying the feed for events mentioning
// any of the extracted entities.
func (f *HTTPFeed) Fetch(
	ctx context.Context,
	entities domain.EntityExtraction,
) ([]domain.TriggerEvent, error) {
	subjects := feedSubjects(entities)
	if len(subjects) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("subjects", strings.Join(subjects, ","))

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, f.baseURL+"?"+params.Encode(), http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("creating feed request: %w", err)
	}

	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing feed request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed error (status %d): %s", resp.StatusCode, string(body))
	}

	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing feed response: %w", err)
	}

	events := make([]domain.TriggerEvent, 0, len(feed.Events))
	for _, ev := range feed.Events {
		events = append(events, domain.TriggerEvent{
			ID:          ev.ID,
			Category:    f.category,
			Type:        ev.Type,
			Title:       ev.Title,
			Description: ev.Description,
			Date:        ev.Date,
			Relevance:   ev.Relevance,
		})
	}

	return events, nil
}

// feedSubjects flattens the entities a feed can be queried by.
// Characters and creators drive the query; series disambiguate.
func feedSubjects(entities domain.EntityExtraction) []string {
	var out []string
	out = append(out, entities.Characters...)
	out = append(out, entities.Creators...)
	out = append(out, entities.Series...)
	return out
}
