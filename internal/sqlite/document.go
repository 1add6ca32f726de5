package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/repository"
)

// DocumentRepository implements repository.DocumentRepository for SQLite
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new rundown document
func (r *DocumentRepository) Create(ctx context.Context, tenantID string, doc *rundown.Document) error {
	lockedJSON, err := marshalStringMap(doc.LockedNumbers)
	if err != nil {
		return fmt.Errorf("failed to encode locked numbers: %w", err)
	}

	query := `
		INSERT INTO documents (id, tenant_id, title, start_time, numbering_locked, locked_numbers, tick, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		doc.ID,
		tenantID,
		doc.Title,
		doc.StartTime,
		doc.NumberingLocked,
		lockedJSON,
		doc.Tick,
		doc.CreatedAt,
		doc.ModifiedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// Get retrieves a document by ID, including its ordered items
func (r *DocumentRepository) Get(ctx context.Context, tenantID, id string) (*rundown.Document, error) {
	query := `
		SELECT id, tenant_id, title, start_time, numbering_locked, locked_numbers, tick, created_at, modified_at
		FROM documents
		WHERE id = ? AND tenant_id = ?
	`

	var doc rundown.Document
	var lockedJSON string
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.Title,
		&doc.StartTime,
		&doc.NumberingLocked,
		&lockedJSON,
		&doc.Tick,
		&doc.CreatedAt,
		&doc.ModifiedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.LockedNumbers, err = unmarshalStringMap(lockedJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode locked numbers: %w", err)
	}

	doc.Items, err = r.loadItems(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// List returns all documents for a tenant with summary information
func (r *DocumentRepository) List(ctx context.Context, tenantID string) ([]rundown.DocumentSummary, error) {
	query := `
		SELECT
			d.id,
			d.title,
			d.start_time,
			d.tick,
			d.created_at,
			d.modified_at,
			COUNT(i.id) AS item_count
		FROM documents d
		LEFT JOIN items i ON i.document_id = d.id
		WHERE d.tenant_id = ?
		GROUP BY d.id
		ORDER BY d.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var summaries []rundown.DocumentSummary
	for rows.Next() {
		var s rundown.DocumentSummary
		if err := rows.Scan(
			&s.ID,
			&s.Title,
			&s.StartTime,
			&s.Tick,
			&s.CreatedAt,
			&s.ModifiedAt,
			&s.ItemCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return summaries, nil
}

// Delete removes a document; items, changes and sessions cascade
func (r *DocumentRepository) Delete(ctx context.Context, tenantID, id string) error {
	query := `DELETE FROM documents WHERE id = ? AND tenant_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateMeta writes document-level state with optimistic concurrency control
func (r *DocumentRepository) UpdateMeta(ctx context.Context, tenantID string, doc *rundown.Document, expectedTick int64) error {
	lockedJSON, err := marshalStringMap(doc.LockedNumbers)
	if err != nil {
		return fmt.Errorf("failed to encode locked numbers: %w", err)
	}

	query := `
		UPDATE documents
		SET title = ?, start_time = ?, numbering_locked = ?, locked_numbers = ?,
		    tick = ?, modified_at = ?
		WHERE id = ? AND tenant_id = ? AND tick = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		doc.Title,
		doc.StartTime,
		doc.NumberingLocked,
		lockedJSON,
		doc.Tick,
		doc.ModifiedAt,
		doc.ID,
		tenantID,
		expectedTick,
	)

	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing document from a stale tick
		var tick int64
		err := r.db.QueryRowContext(ctx,
			`SELECT tick FROM documents WHERE id = ? AND tenant_id = ?`,
			doc.ID, tenantID,
		).Scan(&tick)
		if err == sql.ErrNoRows {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to check document: %w", err)
		}
		return repository.ErrConflict
	}

	return nil
}

// IncrementTick atomically increments the document tick and returns the new value
func (r *DocumentRepository) IncrementTick(ctx context.Context, tenantID, documentID string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE documents
		SET tick = tick + 1, modified_at = CURRENT_TIMESTAMP
		WHERE id = ? AND tenant_id = ?
	`

	result, err := tx.ExecContext(ctx, updateQuery, documentID, tenantID)
	if err != nil {
		return 0, fmt.Errorf("failed to increment tick: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return 0, repository.ErrNotFound
	}

	var tick int64
	selectQuery := `SELECT tick FROM documents WHERE id = ? AND tenant_id = ?`
	if err := tx.QueryRowContext(ctx, selectQuery, documentID, tenantID).Scan(&tick); err != nil {
		return 0, fmt.Errorf("failed to read tick: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tick, nil
}

func (r *DocumentRepository) loadItems(ctx context.Context, tenantID, documentID string) ([]rundown.Item, error) {
	query := `
		SELECT id, kind, name, talent, script, graphics_ref, video_ref, notes, duration, color, floated, custom_fields
		FROM items
		WHERE document_id = ? AND tenant_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, documentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	var items []rundown.Item
	for rows.Next() {
		var it rundown.Item
		var customJSON string
		if err := rows.Scan(
			&it.ID,
			&it.Kind,
			&it.Name,
			&it.Talent,
			&it.Script,
			&it.GraphicsRef,
			&it.VideoRef,
			&it.Notes,
			&it.Duration,
			&it.Color,
			&it.Floated,
			&customJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		it.CustomFields, err = unmarshalStringMap(customJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode custom fields: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

func marshalStringMap(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalStringMap(s string) (map[string]string, error) {
	if s == "" || s == "{}" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return m, nil
}
