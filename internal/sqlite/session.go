package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/morgantremaine/cuer-live/internal/domain/session"
	"github.com/morgantremaine/cuer-live/internal/repository"
)

// SessionRepository implements repository.SessionRepository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new editing session
func (r *SessionRepository) Create(ctx context.Context, tenantID string, sess *session.Session) error {
	query := `
		INSERT INTO sessions (id, tenant_id, document_id, client_id, status, last_sync_tick, created_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		sess.ID,
		tenantID,
		sess.DocumentID,
		sess.ClientID,
		sess.Status,
		sess.LastSyncTick,
		sess.CreatedAt,
		sess.LastActivity,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, tenantID, id string) (*session.Session, error) {
	query := `
		SELECT id, tenant_id, document_id, client_id, status, last_sync_tick, created_at, last_activity, closed_at
		FROM sessions
		WHERE id = ? AND tenant_id = ?
	`

	var sess session.Session
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(
		&sess.ID,
		&sess.TenantID,
		&sess.DocumentID,
		&sess.ClientID,
		&sess.Status,
		&sess.LastSyncTick,
		&sess.CreatedAt,
		&sess.LastActivity,
		&sess.ClosedAt,
	)

	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &sess, nil
}

// Update rewrites a session's mutable state
func (r *SessionRepository) Update(ctx context.Context, tenantID string, sess *session.Session) error {
	query := `
		UPDATE sessions
		SET status = ?, last_sync_tick = ?, last_activity = ?, closed_at = ?
		WHERE id = ? AND tenant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		sess.Status,
		sess.LastSyncTick,
		sess.LastActivity,
		sess.ClosedAt,
		sess.ID,
		tenantID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
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

// Close marks a session closed and stamps the close time
func (r *SessionRepository) Close(ctx context.Context, tenantID, id string) error {
	query := `
		UPDATE sessions
		SET status = 'closed', closed_at = CURRENT_TIMESTAMP
		WHERE id = ? AND tenant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
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

// ListActive returns the active sessions on a document, oldest first
func (r *SessionRepository) ListActive(ctx context.Context, tenantID, documentID string) ([]session.SessionInfo, error) {
	query := `
		SELECT id, client_id, last_sync_tick, created_at, last_activity
		FROM sessions
		WHERE document_id = ? AND tenant_id = ? AND status = 'active'
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, documentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var infos []session.SessionInfo
	for rows.Next() {
		var info session.SessionInfo
		if err := rows.Scan(
			&info.SessionID,
			&info.ClientID,
			&info.LastSyncTick,
			&info.CreatedAt,
			&info.LastActivity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return infos, nil
}
