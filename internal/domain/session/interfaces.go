package session

import (
	"context"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
)

// SessionRepository provides persistence for editing sessions.
type SessionRepository interface {
	Create(ctx context.Context, tenantID string, sess *Session) error
	Get(ctx context.Context, tenantID, id string) (*Session, error)
	Update(ctx context.Context, tenantID string, sess *Session) error
	Close(ctx context.Context, tenantID, id string) error
	ListActive(ctx context.Context, tenantID, documentID string) ([]SessionInfo, error)
}

// DocumentRepository provides the document tick for sync bookkeeping.
type DocumentRepository interface {
	Get(ctx context.Context, tenantID, id string) (*rundown.Document, error)
}

// ChangeLogRepository reads field change events for the sync feed.
type ChangeLogRepository interface {
	ListSince(ctx context.Context, tenantID, documentID string, afterTick int64, limit int) ([]rundown.FieldChange, error)
}
