package store

// SQL query constants organized by entity.
// All SQL lives here — PostgresStore methods reference these constants.

// Collection archive queries. Results are stored whole as JSONB; the
// query column is duplicated out of the document for indexed lookups.
const (
	queryInsertCollectionResult = `
		INSERT INTO collection_results (query, collected_at, result)
		VALUES (@query, @collected_at, @result)`

	queryListCollectionResults = `
		SELECT result
		FROM collection_results
		WHERE query = $1
		ORDER BY collected_at DESC
		LIMIT $2`
)

// Recommendation queries.
const (
	queryInsertRecommendation = `
		INSERT INTO recommendations (id, item_key, action, score, confidence, generated_at, expires_at, body)
		VALUES (@id, @item_key, @action, @score, @confidence, @generated_at, @expires_at, @body)`

	queryGetRecommendation = `
		SELECT body
		FROM recommendations
		WHERE id = $1`

	queryListRecommendations = `
		SELECT body
		FROM recommendations
		WHERE item_key = $1
		ORDER BY generated_at DESC
		LIMIT $2`
)

// Watched item queries.
const (
	queryInsertWatchedItem = `
		INSERT INTO watched_items (id, query, enabled, item, preferences, created_at)
		VALUES (@id, @query, @enabled, @item, @preferences, @created_at)`

	queryGetWatchedItem = `
		SELECT id, query, enabled, item, preferences, created_at, last_advised_at
		FROM watched_items
		WHERE id = $1`

	queryListWatchedItems = `
		SELECT id, query, enabled, item, preferences, created_at, last_advised_at
		FROM watched_items
		WHERE NOT $1::boolean OR enabled
		ORDER BY created_at`

	queryDeleteWatchedItem = `
		DELETE FROM watched_items
		WHERE id = $1`

	querySetWatchedItemEnabled = `
		UPDATE watched_items
		SET enabled = $2
		WHERE id = $1`

	queryMarkWatchedItemAdvised = `
		UPDATE watched_items
		SET last_advised_at = now()
		WHERE id = $1`
)
