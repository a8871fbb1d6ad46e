package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/collectwise/advisor/internal/store"
	domain "github.com/collectwise/advisor/pkg/types"
)

// fakeStore implements store.Store with overridable hooks; unhooked
// methods return zero values.
type fakeStore struct {
	pingErr error

	getRec  *domain.Recommendation
	recErr  error
	recs    []domain.Recommendation
	listErr error

	watched    []domain.WatchedItem
	watchedErr error
	created    []*domain.WatchedItem
	createErr  error
	getWatched *domain.WatchedItem
	deleteErr  error
	enableErr  error
}

func (f *fakeStore) SaveCollectionResult(context.Context, *domain.CollectionResult) error {
	return nil
}

func (f *fakeStore) ListCollectionResults(context.Context, string, int) ([]domain.CollectionResult, error) {
	return nil, nil
}

func (f *fakeStore) SaveRecommendation(context.Context, *domain.Recommendation) error {
	return nil
}

func (f *fakeStore) GetRecommendation(context.Context, string) (*domain.Recommendation, error) {
	if f.recErr != nil {
		return nil, f.recErr
	}
	if f.getRec == nil {
		return nil, store.ErrNotFound
	}
	return f.getRec, nil
}

func (f *fakeStore) ListRecommendations(context.Context, string, int) ([]domain.Recommendation, error) {
	return f.recs, f.listErr
}

func (f *fakeStore) CreateWatchedItem(_ context.Context, w *domain.WatchedItem) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, w)
	return nil
}

func (f *fakeStore) GetWatchedItem(context.Context, string) (*domain.WatchedItem, error) {
	if f.getWatched == nil {
		return nil, store.ErrNotFound
	}
	return f.getWatched, nil
}

func (f *fakeStore) ListWatchedItems(context.Context, bool) ([]domain.WatchedItem, error) {
	return f.watched, f.watchedErr
}

func (f *fakeStore) DeleteWatchedItem(context.Context, string) error {
	return f.deleteErr
}

func (f *fakeStore) SetWatchedItemEnabled(context.Context, string, bool) error {
	return f.enableErr
}

func (f *fakeStore) MarkWatchedItemAdvised(context.Context, string) error { return nil }

func (f *fakeStore) Migrate(context.Context) ([]string, error) { return nil, nil }

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

type fakeAdviser struct {
	rec  *domain.Recommendation
	err  error
	item domain.ItemMetadata
}

func (f *fakeAdviser) Advise(
	_ context.Context,
	item domain.ItemMetadata,
	_ string,
	_ *domain.UserPreferences,
) (*domain.Recommendation, error) {
	f.item = item
	return f.rec, f.err
}

type fakeCollector struct {
	res   *domain.CollectionResult
	err   error
	stats map[string]domain.SourceStats
}

func (f *fakeCollector) Collect(
	context.Context,
	string,
	domain.SearchOptions,
) (*domain.CollectionResult, error) {
	return f.res, f.err
}

func (f *fakeCollector) Stats() map[string]domain.SourceStats { return f.stats }

type fakeTriggerScorer struct {
	res *domain.TriggerResult
}

func (f *fakeTriggerScorer) Score(context.Context, domain.ItemMetadata) *domain.TriggerResult {
	return f.res
}

// newJSONContext builds an echo context for a JSON request body.
func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
