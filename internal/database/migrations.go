package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1NovenaDefinitions,
}

// migrationV1NovenaDefinitions creates the definition store.
//
// Design notes:
//
//  1. RULES AS JSON
//     feast_rule and start_rule hold the flat wire form of a rule
//     (the same "type"-discriminated object the API speaks). The engine
//     decodes and validates them on read; the store does not interpret
//     them beyond requiring feast_rule to be present.
//
//  2. DEFINITIONS NOT INSTANCES
//     Only declarative definitions are persisted. Resolved instances are
//     recomputed per requested year; they are pure outputs and caching
//     them is the caller's business.
//
//  3. METADATA PASS-THROUGH
//     category, tags, and patronage ride along for presentation and are
//     never consulted by the resolution engine.
const migrationV1NovenaDefinitions = `
-- Migration 001: novena definition store

CREATE TABLE IF NOT EXISTS novena_definitions (
    -- Stable slug identifier, e.g. "sts-peter-and-paul"
    id TEXT PRIMARY KEY,

    title TEXT NOT NULL,

    -- Rule wire forms (JSON objects with a "type" discriminator)
    feast_rule TEXT NOT NULL,
    start_rule TEXT,

    -- Inclusive span in days, counting both start and feast day
    duration_days INTEGER NOT NULL DEFAULT 9
        CHECK (duration_days BETWEEN 1 AND 4000),

    -- Presentation metadata, unused by the engine
    category TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    patronage TEXT NOT NULL DEFAULT '',

    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_novena_definitions_category
    ON novena_definitions(category);
`
