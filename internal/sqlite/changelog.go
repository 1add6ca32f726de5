package sqlite

import (
	"context"
	"fmt"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/repository"
)

// ChangeLogRepository implements repository.ChangeLogRepository for SQLite
type ChangeLogRepository struct {
	db *DB
}

// NewChangeLogRepository creates a new ChangeLogRepository
func NewChangeLogRepository(db *DB) *ChangeLogRepository {
	return &ChangeLogRepository{db: db}
}

// Append records a field change in the feed
func (r *ChangeLogRepository) Append(ctx context.Context, tenantID string, change *rundown.FieldChange) error {
	query := `
		INSERT INTO change_log (tenant_id, document_id, item_id, field, value, author_id, tick, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		tenantID,
		change.DocumentID,
		change.ItemID,
		change.Field,
		change.Value,
		change.AuthorID,
		change.Tick,
		change.ModifiedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to append change: %w", err)
	}

	return nil
}

// ListSince returns changes with tick greater than afterTick, oldest first
func (r *ChangeLogRepository) ListSince(ctx context.Context, tenantID, documentID string, afterTick int64, limit int) ([]rundown.FieldChange, error) {
	query := `
		SELECT document_id, item_id, field, value, author_id, tick, modified_at
		FROM change_log
		WHERE document_id = ? AND tenant_id = ? AND tick > ?
		ORDER BY tick ASC, id ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, documentID, tenantID, afterTick, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	defer rows.Close()

	var changes []rundown.FieldChange
	for rows.Next() {
		var c rundown.FieldChange
		if err := rows.Scan(
			&c.DocumentID,
			&c.ItemID,
			&c.Field,
			&c.Value,
			&c.AuthorID,
			&c.Tick,
			&c.ModifiedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate changes: %w", err)
	}

	return changes, nil
}
