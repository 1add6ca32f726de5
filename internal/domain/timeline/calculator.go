package timeline

import (
	"fmt"

	"github.com/morgantremaine/cuer-live/internal/domain/numbering"
	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
)

// ResolvedItem is the computed timeline projection for one item. It is
// derived on every call and never persisted.
type ResolvedItem struct {
	ItemID         string `json:"item_id"`
	RowNumber      string `json:"row_number,omitempty"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	ElapsedTime    string `json:"elapsed_time"`
	HeaderDuration string `json:"header_duration,omitempty"`
}

// Resolve walks the document once and produces the full projection:
// per-item start/end wall-clock times, cumulative elapsed time, row
// numbers, and aggregate durations for headers.
//
// Only timed items (regular, non-floated) advance the running wall clock
// and the cumulative total. Floated items keep their own duration visible
// but never push later items. Headers occupy an instant on the timeline.
func Resolve(doc *rundown.Document) ([]ResolvedItem, error) {
	labels, err := rowLabels(doc)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedItem, 0, len(doc.Items))
	wallClock := FromSeconds(ToSeconds(doc.StartTime))
	cumulative := 0

	for i := range doc.Items {
		it := &doc.Items[i]

		entry := ResolvedItem{
			ItemID:    it.ID,
			RowNumber: labels[it.ID],
			StartTime: wallClock,
		}

		if it.IsHeader() {
			entry.EndTime = wallClock
			entry.HeaderDuration = FromSecondsNoWrap(sectionSeconds(doc.Items, i))
		} else {
			entry.EndTime = AddDuration(wallClock, it.Duration)
			if it.Timed() {
				cumulative += ToSeconds(it.Duration)
				wallClock = entry.EndTime
			}
		}

		entry.ElapsedTime = FromSecondsNoWrap(cumulative)
		resolved = append(resolved, entry)
	}

	return resolved, nil
}

// TotalRuntime sums every timed item's duration, formatted without the
// 24-hour wrap so marathon shows still read correctly.
func TotalRuntime(doc *rundown.Document) string {
	total := 0
	for i := range doc.Items {
		if doc.Items[i].Timed() {
			total += ToSeconds(doc.Items[i].Duration)
		}
	}
	return FromSecondsNoWrap(total)
}

// HeaderDuration returns the aggregate duration of the section following
// the header at headerIndex, up to the next header or end of document.
func HeaderDuration(doc *rundown.Document, headerIndex int) (string, error) {
	if headerIndex < 0 || headerIndex >= len(doc.Items) {
		return "", fmt.Errorf("%w: %d", ErrIndexOutOfRange, headerIndex)
	}
	if !doc.Items[headerIndex].IsHeader() {
		return "", fmt.Errorf("%w: index %d", ErrNotHeader, headerIndex)
	}
	return FromSecondsNoWrap(sectionSeconds(doc.Items, headerIndex)), nil
}

// PlannedElapsed returns the cumulative timed duration in seconds of all
// items strictly before the given item: the planned position of that item
// on the show clock. The showcaller compares this against real elapsed
// time for schedule adherence.
func PlannedElapsed(doc *rundown.Document, itemID string) (int, error) {
	elapsed := 0
	for i := range doc.Items {
		if doc.Items[i].ID == itemID {
			return elapsed, nil
		}
		if doc.Items[i].Timed() {
			elapsed += ToSeconds(doc.Items[i].Duration)
		}
	}
	return 0, fmt.Errorf("%w: %s", rundown.ErrItemNotFound, itemID)
}

func sectionSeconds(items []rundown.Item, headerIndex int) int {
	total := 0
	for i := headerIndex + 1; i < len(items); i++ {
		if items[i].IsHeader() {
			break
		}
		if items[i].Timed() {
			total += ToSeconds(items[i].Duration)
		}
	}
	return total
}

func rowLabels(doc *rundown.Document) (map[string]string, error) {
	rows := make([]numbering.Row, len(doc.Items))
	for i := range doc.Items {
		rows[i] = numbering.Row{
			ID:      doc.Items[i].ID,
			Header:  doc.Items[i].IsHeader(),
			Floated: doc.Items[i].Floated,
		}
	}
	if doc.NumberingLocked {
		return numbering.Locked(rows, doc.LockedNumbers)
	}
	return numbering.Sequential(rows), nil
}
