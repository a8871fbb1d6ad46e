package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/collectwise/advisor/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled
// PostgreSQL). Collection results and recommendations are archived as
// JSONB documents with a few extracted columns for indexed lookups.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations and returns the
// versions it applied.
func (s *PostgresStore) Migrate(ctx context.Context) ([]string, error) {
	return RunMigrations(ctx, s.pool)
}

// SaveCollectionResult archives a collection result as a JSONB document.
func (s *PostgresStore) SaveCollectionResult(ctx context.Context, res *domain.CollectionResult) error {
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling collection result: %w", err)
	}

	args := pgx.NamedArgs{
		"query":        res.Query,
		"collected_at": res.CollectedAt,
		"result":       body,
	}
	if _, err := s.pool.Exec(ctx, queryInsertCollectionResult, args); err != nil {
		return fmt.Errorf("inserting collection result: %w", err)
	}
	return nil
}

// ListCollectionResults returns archived results for a query, newest
// first.
func (s *PostgresStore) ListCollectionResults(
	ctx context.Context,
	query string,
	limit int,
) ([]domain.CollectionResult, error) {
	rows, err := s.pool.Query(ctx, queryListCollectionResults, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying collection results: %w", err)
	}
	defer rows.Close()

	var results []domain.CollectionResult
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning collection result: %w", err)
		}
		var res domain.CollectionResult
		if err := json.Unmarshal(body, &res); err != nil {
			return nil, fmt.Errorf("unmarshaling collection result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection results: %w", err)
	}

	return results, nil
}

// SaveRecommendation archives a recommendation.
func (s *PostgresStore) SaveRecommendation(ctx context.Context, rec *domain.Recommendation) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling recommendation: %w", err)
	}

	args := pgx.NamedArgs{
		"id":           rec.ID,
		"item_key":     rec.ItemKey,
		"action":       string(rec.Primary.Action),
		"score":        rec.Primary.Score,
		"confidence":   rec.Confidence.Overall,
		"generated_at": rec.GeneratedAt,
		"expires_at":   rec.ExpiresAt,
		"body":         body,
	}
	if _, err := s.pool.Exec(ctx, queryInsertRecommendation, args); err != nil {
		return fmt.Errorf("inserting recommendation: %w", err)
	}
	return nil
}

// GetRecommendation retrieves one recommendation by ID.
func (s *PostgresStore) GetRecommendation(ctx context.Context, id string) (*domain.Recommendation, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, queryGetRecommendation, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying recommendation: %w", err)
	}

	rec := &domain.Recommendation{}
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, fmt.Errorf("unmarshaling recommendation: %w", err)
	}
	return rec, nil
}

// ListRecommendations returns recommendations for an item, newest first.
func (s *PostgresStore) ListRecommendations(
	ctx context.Context,
	itemKey string,
	limit int,
) ([]domain.Recommendation, error) {
	rows, err := s.pool.Query(ctx, queryListRecommendations, itemKey, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recommendations: %w", err)
	}
	defer rows.Close()

	var recs []domain.Recommendation
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		var rec domain.Recommendation
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recommendations: %w", err)
	}

	return recs, nil
}

// CreateWatchedItem inserts a new watched item.
func (s *PostgresStore) CreateWatchedItem(ctx context.Context, w *domain.WatchedItem) error {
	item, err := json.Marshal(w.Item)
	if err != nil {
		return fmt.Errorf("marshaling item metadata: %w", err)
	}

	var prefs []byte
	if w.Preferences != nil {
		if prefs, err = json.Marshal(w.Preferences); err != nil {
			return fmt.Errorf("marshaling preferences: %w", err)
		}
	}

	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}

	args := pgx.NamedArgs{
		"id":          w.ID,
		"query":       w.Query,
		"enabled":     w.Enabled,
		"item":        item,
		"preferences": prefs,
		"created_at":  w.CreatedAt,
	}
	if _, err := s.pool.Exec(ctx, queryInsertWatchedItem, args); err != nil {
		return fmt.Errorf("inserting watched item: %w", err)
	}
	return nil
}

// GetWatchedItem retrieves one watched item by ID.
func (s *PostgresStore) GetWatchedItem(ctx context.Context, id string) (*domain.WatchedItem, error) {
	w, err := scanWatchedItem(s.pool.QueryRow(ctx, queryGetWatchedItem, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying watched item: %w", err)
	}
	return w, nil
}

// ListWatchedItems returns watched items, optionally only enabled ones.
func (s *PostgresStore) ListWatchedItems(ctx context.Context, enabledOnly bool) ([]domain.WatchedItem, error) {
	rows, err := s.pool.Query(ctx, queryListWatchedItems, enabledOnly)
	if err != nil {
		return nil, fmt.Errorf("querying watched items: %w", err)
	}
	defer rows.Close()

	var items []domain.WatchedItem
	for rows.Next() {
		w, err := scanWatchedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning watched item: %w", err)
		}
		items = append(items, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating watched items: %w", err)
	}

	return items, nil
}

// DeleteWatchedItem removes a watched item.
func (s *PostgresStore) DeleteWatchedItem(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryDeleteWatchedItem, id)
	if err != nil {
		return fmt.Errorf("deleting watched item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetWatchedItemEnabled flips the enabled flag.
func (s *PostgresStore) SetWatchedItemEnabled(ctx context.Context, id string, enabled bool) error {
	tag, err := s.pool.Exec(ctx, querySetWatchedItemEnabled, id, enabled)
	if err != nil {
		return fmt.Errorf("updating watched item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkWatchedItemAdvised records that the scheduler just advised this
// item.
func (s *PostgresStore) MarkWatchedItemAdvised(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, queryMarkWatchedItemAdvised, id)
	if err != nil {
		return fmt.Errorf("updating watched item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWatchedItem(row pgx.Row) (*domain.WatchedItem, error) {
	var (
		w     domain.WatchedItem
		item  []byte
		prefs []byte
	)
	err := row.Scan(&w.ID, &w.Query, &w.Enabled, &item, &prefs, &w.CreatedAt, &w.LastAdvisedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(item, &w.Item); err != nil {
		return nil, fmt.Errorf("unmarshaling item metadata: %w", err)
	}
	if len(prefs) > 0 {
		w.Preferences = &domain.UserPreferences{}
		if err := json.Unmarshal(prefs, w.Preferences); err != nil {
			return nil, fmt.Errorf("unmarshaling preferences: %w", err)
		}
	}

	return &w, nil
}
