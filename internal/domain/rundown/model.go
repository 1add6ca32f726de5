package rundown

import "time"

// ItemKind distinguishes timed segments from section headers.
type ItemKind string

const (
	KindRegular ItemKind = "regular"
	KindHeader  ItemKind = "header"
)

// Item is the atomic unit of a rundown.
type Item struct {
	ID           string            `json:"id"`
	Kind         ItemKind          `json:"kind"`
	Name         string            `json:"name,omitempty"`
	Talent       string            `json:"talent,omitempty"`
	Script       string            `json:"script,omitempty"`
	GraphicsRef  string            `json:"graphics_ref,omitempty"`
	VideoRef     string            `json:"video_ref,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Duration     string            `json:"duration,omitempty"`
	Color        string            `json:"color,omitempty"`
	Floated      bool              `json:"floated,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// IsHeader reports whether the item is a section header.
func (it Item) IsHeader() bool {
	return it.Kind == KindHeader
}

// Timed reports whether the item advances the timeline: a regular,
// non-floated segment.
func (it Item) Timed() bool {
	return it.Kind == KindRegular && !it.Floated
}

// Document is an ordered rundown with its wall-clock anchor and
// numbering state.
type Document struct {
	ID              string            `json:"id"`
	TenantID        string            `json:"tenant_id"`
	Title           string            `json:"title"`
	StartTime       string            `json:"start_time"`
	NumberingLocked bool              `json:"numbering_locked"`
	LockedNumbers   map[string]string `json:"locked_numbers,omitempty"`
	Items           []Item            `json:"items"`
	Tick            int64             `json:"tick"`
	CreatedAt       time.Time         `json:"created_at"`
	ModifiedAt      time.Time         `json:"modified_at"`
}

// ItemIndex returns the position of an item by id, or -1.
func (d *Document) ItemIndex(id string) int {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Item returns the item with the given id, or nil.
func (d *Document) Item(id string) *Item {
	if i := d.ItemIndex(id); i >= 0 {
		return &d.Items[i]
	}
	return nil
}

// DocumentSummary is a lightweight representation for listing.
type DocumentSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	StartTime  string    `json:"start_time"`
	ItemCount  int       `json:"item_count"`
	Tick       int64     `json:"tick"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// FieldChange is a field-level delta as delivered by the change feed.
type FieldChange struct {
	DocumentID string    `json:"document_id"`
	ItemID     string    `json:"item_id"`
	Field      Field     `json:"field"`
	Value      string    `json:"value"`
	AuthorID   string    `json:"author_id,omitempty"`
	Tick       int64     `json:"tick"`
	ModifiedAt time.Time `json:"modified_at"`
}
