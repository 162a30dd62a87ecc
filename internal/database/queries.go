package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Tries multiple formats and returns the zero time if parsing fails.
func parseTimestamp(ns sql.NullString) time.Time {
	if !ns.Valid || ns.String == "" {
		return time.Time{}
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999",
	} {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return t
		}
	}

	return time.Time{}
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	return string(data), nil
}

func unmarshalTags(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

// scanRecord scans one novena_definitions row.
func scanRecord(scan func(dest ...any) error) (*NovenaRecord, error) {
	var rec NovenaRecord
	var feastRule string
	var startRule sql.NullString
	var tagsJSON string
	var createdAt, updatedAt sql.NullString

	err := scan(
		&rec.ID,
		&rec.Title,
		&feastRule,
		&startRule,
		&rec.DurationDays,
		&rec.Category,
		&tagsJSON,
		&rec.Patronage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.FeastRule = RuleJSON(feastRule)
	if startRule.Valid && startRule.String != "" {
		sr := RuleJSON(startRule.String)
		rec.StartRule = &sr
	}

	tags, err := unmarshalTags(tagsJSON)
	if err != nil {
		return nil, err
	}
	rec.Tags = tags

	rec.CreatedAt = parseTimestamp(createdAt)
	rec.UpdatedAt = parseTimestamp(updatedAt)

	return &rec, nil
}

const recordColumns = `
	id, title, feast_rule, start_rule, duration_days,
	category, tags, patronage, created_at, updated_at
`

// =============================================================================
// Definition Queries
// =============================================================================

// GetDefinition retrieves one definition by id.
// Returns ErrNotFound if the id doesn't exist.
func (db *DB) GetDefinition(ctx context.Context, id string) (*NovenaRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM novena_definitions WHERE id = ?`

	row := db.QueryRowContext(ctx, query, id)
	rec, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query definition by id: %w", err)
	}

	return rec, nil
}

// ListDefinitions retrieves all definitions ordered by id.
// Returns an empty slice when the store is empty.
func (db *DB) ListDefinitions(ctx context.Context) ([]NovenaRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM novena_definitions ORDER BY id ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query definitions: %w", err)
	}
	defer rows.Close()

	var records []NovenaRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan definition row: %w", err)
		}
		records = append(records, *rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate definition rows: %w", err)
	}

	return records, nil
}

// UpsertDefinition inserts or updates a definition.
//
// IDEMPOTENT: INSERT ... ON CONFLICT ... DO UPDATE, so the importer can be
// re-run with the same file without a separate existence check.
func (db *DB) UpsertDefinition(ctx context.Context, rec *NovenaRecord) error {
	return upsertDefinition(ctx, db.DB, rec)
}

// UpsertDefinition is the transaction-scoped variant used by the importer.
func (tx *Tx) UpsertDefinition(ctx context.Context, rec *NovenaRecord) error {
	return upsertDefinition(ctx, tx.Tx, rec)
}

// execer covers *sql.DB and *sql.Tx for shared statements.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertDefinition(ctx context.Context, ex execer, rec *NovenaRecord) error {
	if rec.DurationDays < 1 || rec.DurationDays > 4000 {
		return fmt.Errorf("definition %s: duration_days %d outside [1, 4000]", rec.ID, rec.DurationDays)
	}

	tagsJSON, err := marshalTags(rec.Tags)
	if err != nil {
		return fmt.Errorf("definition %s: %w", rec.ID, err)
	}

	var startRule any
	if rec.StartRule != nil {
		startRule = string(*rec.StartRule)
	}

	query := `
		INSERT INTO novena_definitions (
			id, title, feast_rule, start_rule, duration_days,
			category, tags, patronage, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			feast_rule = excluded.feast_rule,
			start_rule = excluded.start_rule,
			duration_days = excluded.duration_days,
			category = excluded.category,
			tags = excluded.tags,
			patronage = excluded.patronage,
			updated_at = datetime('now')
	`

	_, err = ex.ExecContext(ctx, query,
		rec.ID,
		rec.Title,
		string(rec.FeastRule),
		startRule,
		rec.DurationDays,
		rec.Category,
		tagsJSON,
		rec.Patronage,
	)
	if err != nil {
		return fmt.Errorf("upsert definition %s: %w", rec.ID, err)
	}

	return nil
}

// DeleteDefinition removes a definition by id.
// Returns ErrNotFound if the id doesn't exist.
func (db *DB) DeleteDefinition(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM novena_definitions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete definition: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DefinitionStats summarizes the definition store for health/admin views.
type DefinitionStats struct {
	TotalDefinitions int        `json:"total_definitions"`
	WithStartHint    int        `json:"with_start_hint"`
	LastUpdatedAt    *time.Time `json:"last_updated_at,omitempty"`
}

// GetDefinitionStats returns statistics about the stored definitions.
func (db *DB) GetDefinitionStats(ctx context.Context) (*DefinitionStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(start_rule) AS with_hint,
			MAX(updated_at) AS last_updated
		FROM novena_definitions
	`

	var stats DefinitionStats
	var lastUpdated sql.NullString

	err := db.QueryRowContext(ctx, query).Scan(
		&stats.TotalDefinitions,
		&stats.WithStartHint,
		&lastUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("query definition stats: %w", err)
	}

	if t := parseTimestamp(lastUpdated); !t.IsZero() {
		stats.LastUpdatedAt = &t
	}

	return &stats, nil
}
