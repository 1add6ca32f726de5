package contracts

import (
	"context"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/session"
)

// DocumentRepository manages rundown document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, tenantID string, doc *rundown.Document) error
	Get(ctx context.Context, tenantID, id string) (*rundown.Document, error)
	List(ctx context.Context, tenantID string) ([]rundown.DocumentSummary, error)
	Delete(ctx context.Context, tenantID, id string) error
	// UpdateMeta writes document-level state (title, start time, numbering
	// lock) with an optimistic tick check.
	UpdateMeta(ctx context.Context, tenantID string, doc *rundown.Document, expectedTick int64) error
	IncrementTick(ctx context.Context, tenantID, documentID string) (int64, error)
}

// ItemRepository manages the ordered items of a rundown.
type ItemRepository interface {
	Insert(ctx context.Context, tenantID, documentID string, item *rundown.Item, position int) error
	Update(ctx context.Context, tenantID, documentID string, item *rundown.Item) error
	Move(ctx context.Context, tenantID, documentID, itemID string, position int) error
	Delete(ctx context.Context, tenantID, documentID, itemID string) error
}

// ChangeLogRepository stores the append-only field change feed.
type ChangeLogRepository interface {
	Append(ctx context.Context, tenantID string, change *rundown.FieldChange) error
	ListSince(ctx context.Context, tenantID, documentID string, afterTick int64, limit int) ([]rundown.FieldChange, error)
}

// SessionRepository manages editing session persistence.
type SessionRepository interface {
	Create(ctx context.Context, tenantID string, sess *session.Session) error
	Get(ctx context.Context, tenantID, id string) (*session.Session, error)
	Update(ctx context.Context, tenantID string, sess *session.Session) error
	Close(ctx context.Context, tenantID, id string) error
	ListActive(ctx context.Context, tenantID, documentID string) ([]session.SessionInfo, error)
}
