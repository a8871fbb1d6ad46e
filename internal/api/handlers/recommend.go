package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/collectwise/advisor/internal/collector"
	"github.com/collectwise/advisor/internal/store"
	domain "github.com/collectwise/advisor/pkg/types"
)

const defaultListLimit = 20

// Adviser runs the advisory pipeline for one item.
type Adviser interface {
	Advise(
		ctx context.Context,
		item domain.ItemMetadata,
		query string,
		prefs *domain.UserPreferences,
	) (*domain.Recommendation, error)
}

// RecommendHandler produces and serves recommendations.
type RecommendHandler struct {
	adviser Adviser
	store   store.Store
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(a Adviser, s store.Store) *RecommendHandler {
	return &RecommendHandler{adviser: a, store: s}
}

// --- Input/Output types ---

// RecommendInput is the request body for producing a recommendation.
type RecommendInput struct {
	Body struct {
		Item        domain.ItemMetadata     `json:"item,omitempty" doc:"Item metadata"`
		Query       string                  `json:"query,omitempty" doc:"Marketplace search query; defaults to the item title" example:"Amazing Spider-Man #300"`
		Preferences *domain.UserPreferences `json:"preferences,omitempty" doc:"Risk tolerance and holding horizon"`
	}
}

// RecommendOutput is the response for producing or fetching a recommendation.
type RecommendOutput struct {
	Body domain.Recommendation
}

// GetRecommendationInput identifies one archived recommendation.
type GetRecommendationInput struct {
	ID string `path:"id" doc:"Recommendation UUID"`
}

// ListRecommendationsInput filters the archived recommendation list.
type ListRecommendationsInput struct {
	ItemKey string `query:"item_key" required:"true" doc:"Item key" example:"Amazing Spider-Man #300|Marvel"`
	Limit   int    `query:"limit"    doc:"Maximum results (default 20)"                                     minimum:"1"`
}

// ListRecommendationsOutput is the response for listing archived recommendations.
type ListRecommendationsOutput struct {
	Body []domain.Recommendation
}

// --- Handlers ---

// Create runs the full advisory pipeline for one item and returns the
// scored recommendation.
func (h *RecommendHandler) Create(
	ctx context.Context,
	input *RecommendInput,
) (*RecommendOutput, error) {
	query := input.Body.Query
	if query == "" {
		query = input.Body.Item.Title
	}
	if query == "" {
		return nil, huma.Error400BadRequest("query or item.title is required")
	}

	rec, err := h.adviser.Advise(ctx, input.Body.Item, query, input.Body.Preferences)
	if err != nil {
		if errors.Is(err, collector.ErrInvalidQuery) {
			return nil, huma.Error400BadRequest(err.Error())
		}
		return nil, huma.Error500InternalServerError("producing recommendation: " + err.Error())
	}

	return &RecommendOutput{Body: *rec}, nil
}

// Get returns a single archived recommendation by ID.
func (h *RecommendHandler) Get(
	ctx context.Context,
	input *GetRecommendationInput,
) (*RecommendOutput, error) {
	rec, err := h.store.GetRecommendation(ctx, input.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, huma.Error404NotFound("recommendation not found")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("fetching recommendation: " + err.Error())
	}

	return &RecommendOutput{Body: *rec}, nil
}

// List returns archived recommendations for an item key, newest first.
func (h *RecommendHandler) List(
	ctx context.Context,
	input *ListRecommendationsInput,
) (*ListRecommendationsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	recs, err := h.store.ListRecommendations(ctx, input.ItemKey, limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing recommendations: " + err.Error())
	}

	if recs == nil {
		recs = []domain.Recommendation{}
	}

	return &ListRecommendationsOutput{Body: recs}, nil
}

// RegisterRecommendationRoutes registers recommendation endpoints with the Huma API.
func RegisterRecommendationRoutes(api huma.API, h *RecommendHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "create-recommendation",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations",
		Summary:     "Produce a recommendation",
		Description: "Runs the full advisory pipeline for one item: collects market data, " +
			"scores trigger events, and returns the scored recommendation.",
		Tags:   []string{"recommendations"},
		Errors: []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "get-recommendation",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/{id}",
		Summary:     "Get a recommendation by ID",
		Description: "Returns a single archived recommendation by its UUID.",
		Tags:        []string{"recommendations"},
		Errors:      []int{http.StatusNotFound},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID: "list-recommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations",
		Summary:     "List recommendations for an item",
		Description: "Returns archived recommendations for an item key, newest first.",
		Tags:        []string{"recommendations"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.List)
}
