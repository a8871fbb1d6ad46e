package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domain "github.com/collectwise/advisor/pkg/types"
)

// TriggerScorer scores external trigger events for an item.
type TriggerScorer interface {
	Score(ctx context.Context, item domain.ItemMetadata) *domain.TriggerResult
}

// TriggerHandler scores trigger events on demand.
type TriggerHandler struct {
	scorer TriggerScorer
}

// NewTriggerHandler creates a new TriggerHandler.
func NewTriggerHandler(s TriggerScorer) *TriggerHandler {
	return &TriggerHandler{scorer: s}
}

// ScoreTriggersInput is the request body for scoring trigger events.
type ScoreTriggersInput struct {
	Body struct {
		Item domain.ItemMetadata `json:"item" doc:"Item to score"`
	}
}

// ScoreTriggersOutput is the categorized trigger impact bundle.
type ScoreTriggersOutput struct {
	Body domain.TriggerResult
}

// Create extracts entities from the item, fetches external events and
// returns the ranked trigger impact.
func (h *TriggerHandler) Create(
	ctx context.Context,
	input *ScoreTriggersInput,
) (*ScoreTriggersOutput, error) {
	if input.Body.Item.Title == "" && input.Body.Item.ID == "" {
		return nil, huma.Error400BadRequest("item.title or item.id is required")
	}

	return &ScoreTriggersOutput{Body: *h.scorer.Score(ctx, input.Body.Item)}, nil
}

// RegisterTriggerRoutes registers trigger endpoints with the Huma API.
func RegisterTriggerRoutes(api huma.API, h *TriggerHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "score-triggers",
		Method:      http.MethodPost,
		Path:        "/api/v1/triggers",
		Summary:     "Score trigger events for an item",
		Description: "Extracts entities, fetches external events across categories and " +
			"returns the ranked, time-bucketed trigger impact.",
		Tags:   []string{"triggers"},
		Errors: []int{http.StatusBadRequest},
	}, h.Create)
}
