package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema. Safe to call once per fresh database;
// production deployments should manage schema via a migration tool.
func (db *DB) RunMigrations() error {
	migration := `
-- Rundown documents
CREATE TABLE documents (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    title TEXT NOT NULL,
    start_time TEXT NOT NULL DEFAULT '00:00:00',
    numbering_locked INTEGER NOT NULL DEFAULT 0,
    locked_numbers TEXT NOT NULL DEFAULT '{}',
    tick INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    modified_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX idx_tenant_documents ON documents(tenant_id);

-- Rundown items, ordered by position within a document
CREATE TABLE items (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    document_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    kind TEXT NOT NULL CHECK(kind IN ('regular', 'header')),
    name TEXT NOT NULL DEFAULT '',
    talent TEXT NOT NULL DEFAULT '',
    script TEXT NOT NULL DEFAULT '',
    graphics_ref TEXT NOT NULL DEFAULT '',
    video_ref TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    duration TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '',
    floated INTEGER NOT NULL DEFAULT 0,
    custom_fields TEXT NOT NULL DEFAULT '{}',
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);
CREATE INDEX idx_tenant_items ON items(tenant_id);
CREATE INDEX idx_document_items ON items(document_id, position);

-- Append-only field change feed
CREATE TABLE change_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tenant_id TEXT NOT NULL,
    document_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    field TEXT NOT NULL,
    value TEXT NOT NULL,
    author_id TEXT,
    tick INTEGER NOT NULL,
    modified_at TIMESTAMP NOT NULL,
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);
CREATE INDEX idx_tenant_changes ON change_log(tenant_id);
CREATE INDEX idx_document_changes ON change_log(document_id, tick);

-- Editing sessions
CREATE TABLE sessions (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    document_id TEXT NOT NULL,
    client_id TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('active', 'closed')),
    last_sync_tick INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    last_activity TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    closed_at TIMESTAMP,
    FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
);
CREATE INDEX idx_tenant_sessions ON sessions(tenant_id);
CREATE INDEX idx_document_sessions ON sessions(document_id);
CREATE INDEX idx_status ON sessions(status);
`

	_, err := db.Exec(migration)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
