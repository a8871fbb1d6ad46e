// Package httpapi implements the source.Adapter contract against a
// JSON search API. It is the reference adapter: marketplace-specific
// adapters follow the same shape.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/collectwise/advisor/internal/source"
	domain "github.com/collectwise/advisor/pkg/types"
)

const defaultMaxResults = 50

// Client queries a JSON search endpoint and maps its records to raw
// listings.
type Client struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	nowFunc func() time.Time
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithRateLimit applies a token-bucket limit to outgoing calls.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = f
	}
}

// New creates a Client named name querying baseURL.
func New(name, baseURL string, opts ...Option) *Client {
	c := &Client{
		name:    name,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements source.Adapter.
func (c *Client) Name() string { return c.name }

type searchAPIResponse struct {
	Results []searchAPIRecord `json:"results"`
	Total   int               `json:"total"`
}

type searchAPIRecord struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	Condition string  `json:"condition"`
	URL       string  `json:"url"`
	Seller    string  `json:"seller"`
}

// Search implements source.Adapter by querying the search endpoint.
func (c *Client) Search(
	ctx context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.RawListing, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, source.NewError(c.name, fmt.Errorf("rate limit: %w", err))
		}
	}

	u := c.buildSearchURL(query, opts)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, source.NewError(c.name, fmt.Errorf("creating HTTP request: %w", err))
	}

	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, source.NewError(c.name, fmt.Errorf("executing search request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, source.NewError(c.name, fmt.Errorf("reading response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, source.NewError(c.name, fmt.Errorf(
			"search API error (status %d): %s", resp.StatusCode, string(body),
		))
	}

	var apiResp searchAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, source.NewError(c.name, fmt.Errorf("parsing search response: %w", err))
	}

	fetchedAt := c.nowFunc()
	listings := make([]domain.RawListing, 0, len(apiResp.Results))
	for _, rec := range apiResp.Results {
		listings = append(listings, domain.RawListing{
			ID:        rec.ID,
			Title:     rec.Title,
			Price:     rec.Price,
			Currency:  rec.Currency,
			Condition: rec.Condition,
			URL:       rec.URL,
			Seller:    rec.Seller,
			Source:    c.name,
			FetchedAt: fetchedAt,
		})
	}

	return listings, nil
}

func (c *Client) buildSearchURL(query string, opts domain.SearchOptions) string {
	params := url.Values{}
	params.Set("q", query)

	limit := opts.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}
	params.Set("limit", strconv.Itoa(limit))

	if opts.Condition != "" {
		params.Set("condition", opts.Condition)
	}
	if opts.MinPrice != nil {
		params.Set("min_price", strconv.FormatFloat(*opts.MinPrice, 'f', 2, 64))
	}
	if opts.MaxPrice != nil {
		params.Set("max_price", strconv.FormatFloat(*opts.MaxPrice, 'f', 2, 64))
	}

	return c.baseURL + "?" + params.Encode()
}
