package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/repository"
)

// ItemRepository implements repository.ItemRepository for SQLite
type ItemRepository struct {
	db *DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Insert adds an item at the given position, shifting later items down
func (r *ItemRepository) Insert(ctx context.Context, tenantID, documentID string, item *rundown.Item, position int) error {
	customJSON, err := marshalStringMap(item.CustomFields)
	if err != nil {
		return fmt.Errorf("failed to encode custom fields: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	shiftQuery := `
		UPDATE items
		SET position = position + 1
		WHERE document_id = ? AND tenant_id = ? AND position >= ?
	`
	if _, err := tx.ExecContext(ctx, shiftQuery, documentID, tenantID, position); err != nil {
		return fmt.Errorf("failed to shift items: %w", err)
	}

	insertQuery := `
		INSERT INTO items (id, tenant_id, document_id, position, kind, name, talent, script,
		                   graphics_ref, video_ref, notes, duration, color, floated, custom_fields)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, insertQuery,
		item.ID,
		tenantID,
		documentID,
		position,
		item.Kind,
		item.Name,
		item.Talent,
		item.Script,
		item.GraphicsRef,
		item.VideoRef,
		item.Notes,
		item.Duration,
		item.Color,
		item.Floated,
		customJSON,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update rewrites an item's fields in place
func (r *ItemRepository) Update(ctx context.Context, tenantID, documentID string, item *rundown.Item) error {
	customJSON, err := marshalStringMap(item.CustomFields)
	if err != nil {
		return fmt.Errorf("failed to encode custom fields: %w", err)
	}

	query := `
		UPDATE items
		SET kind = ?, name = ?, talent = ?, script = ?, graphics_ref = ?, video_ref = ?,
		    notes = ?, duration = ?, color = ?, floated = ?, custom_fields = ?
		WHERE id = ? AND document_id = ? AND tenant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		item.Kind,
		item.Name,
		item.Talent,
		item.Script,
		item.GraphicsRef,
		item.VideoRef,
		item.Notes,
		item.Duration,
		item.Color,
		item.Floated,
		customJSON,
		item.ID,
		documentID,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
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

// Move repositions an item, closing the gap it leaves behind
func (r *ItemRepository) Move(ctx context.Context, tenantID, documentID, itemID string, position int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT position FROM items WHERE id = ? AND document_id = ? AND tenant_id = ?`,
		itemID, documentID, tenantID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get item position: %w", err)
	}

	if position == current {
		return tx.Commit()
	}

	if position > current {
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET position = position - 1
			 WHERE document_id = ? AND tenant_id = ? AND position > ? AND position <= ?`,
			documentID, tenantID, current, position,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE items SET position = position + 1
			 WHERE document_id = ? AND tenant_id = ? AND position >= ? AND position < ?`,
			documentID, tenantID, position, current,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to shift items: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET position = ? WHERE id = ? AND document_id = ? AND tenant_id = ?`,
		position, itemID, documentID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to move item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes an item and closes the gap in positions
func (r *ItemRepository) Delete(ctx context.Context, tenantID, documentID, itemID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT position FROM items WHERE id = ? AND document_id = ? AND tenant_id = ?`,
		itemID, documentID, tenantID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get item position: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND document_id = ? AND tenant_id = ?`,
		itemID, documentID, tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE items SET position = position - 1
		 WHERE document_id = ? AND tenant_id = ? AND position > ?`,
		documentID, tenantID, current,
	)
	if err != nil {
		return fmt.Errorf("failed to shift items: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
