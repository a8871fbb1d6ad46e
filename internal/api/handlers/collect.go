package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/collectwise/advisor/internal/collector"
	domain "github.com/collectwise/advisor/pkg/types"
)

// Collector aggregates marketplace data for a query.
type Collector interface {
	Collect(ctx context.Context, query string, opts domain.SearchOptions) (*domain.CollectionResult, error)
	Stats() map[string]domain.SourceStats
}

// CollectHandler runs on-demand collection queries.
type CollectHandler struct {
	collector Collector
}

// NewCollectHandler creates a new CollectHandler.
func NewCollectHandler(c Collector) *CollectHandler {
	return &CollectHandler{collector: c}
}

// CollectInput is the request body for an on-demand collection run.
type CollectInput struct {
	Body struct {
		Query   string               `json:"query" minLength:"1" doc:"Marketplace search query" example:"Amazing Spider-Man #300"`
		Options domain.SearchOptions `json:"options,omitempty" doc:"Result filters"`
	}
}

// CollectOutput is the aggregate collection result.
type CollectOutput struct {
	Body domain.CollectionResult
}

// StatsOutput is the per-marketplace statistics response.
type StatsOutput struct {
	Body map[string]domain.SourceStats
}

// Create fans a query out to every configured marketplace and returns
// the aggregate result.
func (h *CollectHandler) Create(ctx context.Context, input *CollectInput) (*CollectOutput, error) {
	res, err := h.collector.Collect(ctx, input.Body.Query, input.Body.Options)
	if err != nil {
		var agg *collector.AggregateError
		switch {
		case errors.Is(err, collector.ErrInvalidQuery):
			return nil, huma.Error400BadRequest(err.Error())
		case errors.As(err, &agg):
			return nil, huma.Error502BadGateway(err.Error())
		default:
			return nil, huma.Error500InternalServerError("collecting: " + err.Error())
		}
	}

	return &CollectOutput{Body: *res}, nil
}

// Stats returns running per-marketplace search counters and error rates.
func (h *CollectHandler) Stats(_ context.Context, _ *struct{}) (*StatsOutput, error) {
	return &StatsOutput{Body: h.collector.Stats()}, nil
}

// RegisterCollectionRoutes registers collection endpoints with the Huma API.
func RegisterCollectionRoutes(api huma.API, h *CollectHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "create-collection",
		Method:      http.MethodPost,
		Path:        "/api/v1/collections",
		Summary:     "Collect market data",
		Description: "Fans a query out to every configured marketplace and returns " +
			"the aggregate result with normalized intelligence.",
		Tags:   []string{"collections"},
		Errors: []int{http.StatusBadRequest, http.StatusBadGateway, http.StatusInternalServerError},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "collection-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/stats",
		Summary:     "Per-source collection statistics",
		Description: "Returns running per-marketplace search counters and error rates.",
		Tags:        []string{"collections"},
	}, h.Stats)
}
