package rundown

import "context"

// DocumentRepository provides persistence for rundown documents.
type DocumentRepository interface {
	Create(ctx context.Context, tenantID string, doc *Document) error
	Get(ctx context.Context, tenantID, id string) (*Document, error)
	List(ctx context.Context, tenantID string) ([]DocumentSummary, error)
	Delete(ctx context.Context, tenantID, id string) error
	UpdateMeta(ctx context.Context, tenantID string, doc *Document, expectedTick int64) error
	IncrementTick(ctx context.Context, tenantID, documentID string) (int64, error)
}

// ItemRepository provides persistence for ordered rundown items.
type ItemRepository interface {
	Insert(ctx context.Context, tenantID, documentID string, item *Item, position int) error
	Update(ctx context.Context, tenantID, documentID string, item *Item) error
	Move(ctx context.Context, tenantID, documentID, itemID string, position int) error
	Delete(ctx context.Context, tenantID, documentID, itemID string) error
}

// ChangeLogger records accepted field writes onto the change feed.
type ChangeLogger interface {
	Append(ctx context.Context, tenantID string, change *FieldChange) error
}
