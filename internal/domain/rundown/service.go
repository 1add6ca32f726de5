package rundown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/numbering"
	"github.com/morgantremaine/cuer-live/internal/repository"
	"github.com/google/uuid"
)

// Service handles rundown document business logic.
type Service struct {
	documents DocumentRepository
	items     ItemRepository
	changes   ChangeLogger
	logger    *slog.Logger
}

// NewService creates a new rundown service.
func NewService(
	documents DocumentRepository,
	items ItemRepository,
	changes ChangeLogger,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		documents: documents,
		items:     items,
		changes:   changes,
		logger:    logger,
	}
}

// CreateRequest describes a rundown creation request.
type CreateRequest struct {
	Title     string
	StartTime string
}

// AddItemRequest describes an item insertion request.
type AddItemRequest struct {
	DocumentID  string
	Kind        ItemKind
	Name        string
	Talent      string
	Script      string
	GraphicsRef string
	VideoRef    string
	Notes       string
	Duration    string
	Color       string
	// Position is the insertion index; -1 appends.
	Position int
}

// UpdateFieldRequest describes one field write.
type UpdateFieldRequest struct {
	DocumentID string
	ItemID     string
	Field      Field
	Value      string
	AuthorID   string
}

// Create creates an empty rundown.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateRequest) (*Document, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	startTime := req.StartTime
	if startTime == "" {
		startTime = "00:00:00"
	}

	now := time.Now()
	doc := &Document{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		Title:      req.Title,
		StartTime:  startTime,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	if err := s.documents.Create(ctx, tenantID, doc); err != nil {
		return nil, fmt.Errorf("creating rundown: %w", err)
	}
	s.logger.Info("rundown created", "rundown", doc.ID, "title", doc.Title)
	return doc, nil
}

// Get returns a rundown with its items in document order.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Document, error) {
	doc, err := s.documents.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("loading rundown: %w", err)
	}
	return doc, nil
}

// List returns summaries of every rundown for the tenant.
func (s *Service) List(ctx context.Context, tenantID string) ([]DocumentSummary, error) {
	return s.documents.List(ctx, tenantID)
}

// Delete removes a rundown and its items.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	if err := s.documents.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("deleting rundown: %w", err)
	}
	return nil
}

// AddItem inserts a segment or header and bumps the document tick.
func (s *Service) AddItem(ctx context.Context, tenantID string, req AddItemRequest) (*Item, error) {
	if err := ValidateAddItemInput(req); err != nil {
		return nil, err
	}

	doc, err := s.Get(ctx, tenantID, req.DocumentID)
	if err != nil {
		return nil, err
	}

	position := req.Position
	if position < 0 || position > len(doc.Items) {
		position = len(doc.Items)
	}

	item := &Item{
		ID:          uuid.NewString(),
		Kind:        req.Kind,
		Name:        req.Name,
		Talent:      req.Talent,
		Script:      req.Script,
		GraphicsRef: req.GraphicsRef,
		VideoRef:    req.VideoRef,
		Notes:       req.Notes,
		Duration:    req.Duration,
		Color:       req.Color,
	}

	if err := s.items.Insert(ctx, tenantID, doc.ID, item, position); err != nil {
		return nil, fmt.Errorf("inserting item: %w", err)
	}
	if _, err := s.documents.IncrementTick(ctx, tenantID, doc.ID); err != nil {
		return nil, fmt.Errorf("incrementing tick: %w", err)
	}
	return item, nil
}

// UpdateField writes one field value, bumps the tick, and appends the
// change to the feed. The write is optimistic: it lands immediately and
// remote clients reconcile through their own concurrency guards.
func (s *Service) UpdateField(ctx context.Context, tenantID string, req UpdateFieldRequest) (*FieldChange, error) {
	if req.DocumentID == "" || req.ItemID == "" {
		return nil, ErrInvalidInput
	}

	doc, err := s.Get(ctx, tenantID, req.DocumentID)
	if err != nil {
		return nil, err
	}

	item := doc.Item(req.ItemID)
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, req.ItemID)
	}
	if err := ValidateFieldWrite(item, req.Field); err != nil {
		return nil, err
	}
	if err := SetFieldValue(item, req.Field, req.Value); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, tenantID, doc.ID, item); err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	tick, err := s.documents.IncrementTick(ctx, tenantID, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("incrementing tick: %w", err)
	}

	change := &FieldChange{
		DocumentID: doc.ID,
		ItemID:     item.ID,
		Field:      req.Field,
		Value:      req.Value,
		AuthorID:   req.AuthorID,
		Tick:       tick,
		ModifiedAt: time.Now(),
	}
	if s.changes != nil {
		if err := s.changes.Append(ctx, tenantID, change); err != nil {
			return nil, fmt.Errorf("appending change: %w", err)
		}
	}
	return change, nil
}

// MoveItem reorders an item to a new position.
func (s *Service) MoveItem(ctx context.Context, tenantID, documentID, itemID string, position int) error {
	doc, err := s.Get(ctx, tenantID, documentID)
	if err != nil {
		return err
	}
	if doc.ItemIndex(itemID) < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if position < 0 || position >= len(doc.Items) {
		position = len(doc.Items) - 1
	}
	if err := s.items.Move(ctx, tenantID, documentID, itemID, position); err != nil {
		return fmt.Errorf("moving item: %w", err)
	}
	if _, err := s.documents.IncrementTick(ctx, tenantID, documentID); err != nil {
		return fmt.Errorf("incrementing tick: %w", err)
	}
	return nil
}

// DeleteItem removes an item. A locked base number belonging to the
// deleted item is retired with it; neighbouring numbers never shift.
func (s *Service) DeleteItem(ctx context.Context, tenantID, documentID, itemID string) error {
	doc, err := s.Get(ctx, tenantID, documentID)
	if err != nil {
		return err
	}
	if doc.ItemIndex(itemID) < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if err := s.items.Delete(ctx, tenantID, documentID, itemID); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if _, err := s.documents.IncrementTick(ctx, tenantID, documentID); err != nil {
		return fmt.Errorf("incrementing tick: %w", err)
	}
	return nil
}

// SetFloated floats or unfloats an item. A floated item keeps its place
// and duration but stops advancing the timeline.
func (s *Service) SetFloated(ctx context.Context, tenantID, documentID, itemID string, floated bool) error {
	doc, err := s.Get(ctx, tenantID, documentID)
	if err != nil {
		return err
	}
	item := doc.Item(itemID)
	if item == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if item.Floated == floated {
		return nil
	}
	item.Floated = floated
	if err := s.items.Update(ctx, tenantID, documentID, item); err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if _, err := s.documents.IncrementTick(ctx, tenantID, documentID); err != nil {
		return fmt.Errorf("incrementing tick: %w", err)
	}
	return nil
}

// SetStartTime moves the rundown's wall-clock anchor.
func (s *Service) SetStartTime(ctx context.Context, tenantID, documentID, startTime string) (*Document, error) {
	doc, err := s.Get(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	expected := doc.Tick
	doc.StartTime = startTime
	doc.Tick = expected + 1
	doc.ModifiedAt = time.Now()
	if err := s.documents.UpdateMeta(ctx, tenantID, doc, expected); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("updating rundown: %w", err)
	}
	return doc, nil
}

// LockNumbering freezes the currently displayed row numbers. On an
// unlocked rundown that is the fresh sequential numbering; on an already
// locked one it re-freezes the computed numbers, promoting decimal
// insertions to locked numbers of their own.
func (s *Service) LockNumbering(ctx context.Context, tenantID, documentID string) (*Document, error) {
	doc, err := s.Get(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	rows := numberingRows(doc)
	var labels map[string]string
	if doc.NumberingLocked {
		labels, err = numbering.Locked(rows, doc.LockedNumbers)
		if err != nil {
			return nil, err
		}
	} else {
		labels = numbering.Sequential(rows)
	}

	expected := doc.Tick
	doc.NumberingLocked = true
	doc.LockedNumbers = labels
	doc.Tick = expected + 1
	doc.ModifiedAt = time.Now()
	if err := s.documents.UpdateMeta(ctx, tenantID, doc, expected); err != nil {
		return nil, fmt.Errorf("locking numbering: %w", err)
	}
	s.logger.Info("numbering locked", "rundown", doc.ID, "rows", len(labels))
	return doc, nil
}

// UnlockNumbering returns the rundown to sequential numbering.
func (s *Service) UnlockNumbering(ctx context.Context, tenantID, documentID string) (*Document, error) {
	doc, err := s.Get(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.NumberingLocked {
		return nil, ErrNumberingUnlocked
	}

	expected := doc.Tick
	doc.NumberingLocked = false
	doc.LockedNumbers = nil
	doc.Tick = expected + 1
	doc.ModifiedAt = time.Now()
	if err := s.documents.UpdateMeta(ctx, tenantID, doc, expected); err != nil {
		return nil, fmt.Errorf("unlocking numbering: %w", err)
	}
	return doc, nil
}

func numberingRows(doc *Document) []numbering.Row {
	rows := make([]numbering.Row, len(doc.Items))
	for i := range doc.Items {
		rows[i] = numbering.Row{
			ID:      doc.Items[i].ID,
			Header:  doc.Items[i].IsHeader(),
			Floated: doc.Items[i].Floated,
		}
	}
	return rows
}
