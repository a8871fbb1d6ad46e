package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/collectwise/advisor/internal/store"
	domain "github.com/collectwise/advisor/pkg/types"
)

// WatchedHandler handles watched item CRUD operations.
type WatchedHandler struct {
	store store.Store
}

// NewWatchedHandler creates a new WatchedHandler.
func NewWatchedHandler(s store.Store) *WatchedHandler {
	return &WatchedHandler{store: s}
}

// --- Input/Output types ---

// ListWatchedInput filters the watched item list.
type ListWatchedInput struct {
	Enabled bool `query:"enabled" doc:"Return only enabled items"`
}

// ListWatchedOutput is the response for listing watched items.
type ListWatchedOutput struct {
	Body []domain.WatchedItem
}

// WatchedItemInput identifies one watched item.
type WatchedItemInput struct {
	ID string `path:"id" doc:"Watched item UUID"`
}

// WatchedItemOutput is the response for a single watched item.
type WatchedItemOutput struct {
	Body domain.WatchedItem
}

// CreateWatchedInput is the request body for watching an item. The ID
// and enabled flag are server-assigned.
type CreateWatchedInput struct {
	Body struct {
		Item        domain.ItemMetadata     `json:"item,omitempty" doc:"Item metadata"`
		Query       string                  `json:"query,omitempty" doc:"Collection query; defaults to the item title"`
		Preferences *domain.UserPreferences `json:"preferences,omitempty" doc:"Risk tolerance and holding horizon"`
	}
}

// SetWatchedEnabledInput toggles whether the scheduler re-advises an item.
type SetWatchedEnabledInput struct {
	ID   string `path:"id" doc:"Watched item UUID"`
	Body struct {
		Enabled bool `json:"enabled" doc:"Whether scheduled re-advising runs for this item"`
	}
}

// --- Handlers ---

// List returns all watched items, optionally filtered to enabled ones.
func (h *WatchedHandler) List(
	ctx context.Context,
	input *ListWatchedInput,
) (*ListWatchedOutput, error) {
	items, err := h.store.ListWatchedItems(ctx, input.Enabled)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing watched items: " + err.Error())
	}

	if items == nil {
		items = []domain.WatchedItem{}
	}

	return &ListWatchedOutput{Body: items}, nil
}

// Get returns a single watched item by ID.
func (h *WatchedHandler) Get(
	ctx context.Context,
	input *WatchedItemInput,
) (*WatchedItemOutput, error) {
	w, err := h.store.GetWatchedItem(ctx, input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("watched item not found")
	}

	return &WatchedItemOutput{Body: *w}, nil
}

// Create registers an item for scheduled re-advising. New items start
// enabled.
func (h *WatchedHandler) Create(
	ctx context.Context,
	input *CreateWatchedInput,
) (*WatchedItemOutput, error) {
	query := input.Body.Query
	if query == "" {
		query = input.Body.Item.Title
	}
	if query == "" {
		return nil, huma.Error400BadRequest("query or item.title is required")
	}

	w := domain.WatchedItem{
		ID:          uuid.NewString(),
		Item:        input.Body.Item,
		Query:       query,
		Preferences: input.Body.Preferences,
		Enabled:     true,
	}

	if err := h.store.CreateWatchedItem(ctx, &w); err != nil {
		return nil, huma.Error500InternalServerError("creating watched item: " + err.Error())
	}

	return &WatchedItemOutput{Body: w}, nil
}

// SetEnabled flips whether the scheduler re-advises this item.
func (h *WatchedHandler) SetEnabled(
	ctx context.Context,
	input *SetWatchedEnabledInput,
) (*StatusOutput, error) {
	err := h.store.SetWatchedItemEnabled(ctx, input.ID, input.Body.Enabled)
	if errors.Is(err, store.ErrNotFound) {
		return nil, huma.Error404NotFound("watched item not found")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("updating watched item: " + err.Error())
	}

	return statusOK(), nil
}

// Delete removes a watched item.
func (h *WatchedHandler) Delete(
	ctx context.Context,
	input *WatchedItemInput,
) (*StatusOutput, error) {
	err := h.store.DeleteWatchedItem(ctx, input.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, huma.Error404NotFound("watched item not found")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("deleting watched item: " + err.Error())
	}

	return statusOK(), nil
}

// RegisterWatchedRoutes registers watched item endpoints with the Huma API.
func RegisterWatchedRoutes(api huma.API, h *WatchedHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-watched",
		Method:      http.MethodGet,
		Path:        "/api/v1/watched",
		Summary:     "List watched items",
		Description: "Returns all watched items, optionally filtered by enabled status.",
		Tags:        []string{"watched"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID: "get-watched",
		Method:      http.MethodGet,
		Path:        "/api/v1/watched/{id}",
		Summary:     "Get a watched item by ID",
		Description: "Returns a single watched item.",
		Tags:        []string{"watched"},
		Errors:      []int{http.StatusNotFound},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID:   "create-watched",
		Method:        http.MethodPost,
		Path:          "/api/v1/watched",
		DefaultStatus: http.StatusCreated,
		Summary:       "Watch an item",
		Description:   "Registers an item for scheduled re-advising. New items start enabled.",
		Tags:          []string{"watched"},
		Errors:        []int{http.StatusBadRequest, http.StatusInternalServerError},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "set-watched-enabled",
		Method:      http.MethodPut,
		Path:        "/api/v1/watched/{id}/enabled",
		Summary:     "Enable or disable a watched item",
		Description: "Flips whether the scheduler re-advises this item.",
		Tags:        []string{"watched"},
		Errors:      []int{http.StatusNotFound},
	}, h.SetEnabled)

	huma.Register(api, huma.Operation{
		OperationID: "delete-watched",
		Method:      http.MethodDelete,
		Path:        "/api/v1/watched/{id}",
		Summary:     "Stop watching an item",
		Description: "Removes a watched item.",
		Tags:        []string{"watched"},
		Errors:      []int{http.StatusNotFound},
	}, h.Delete)
}
