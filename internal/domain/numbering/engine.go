package numbering

import "fmt"

// Row is the engine's view of one rundown item, in document order.
type Row struct {
	ID      string
	Header  bool
	Floated bool
}

// Sequential numbers every regular, non-floated row 1..n from the top of
// the document. Headers and floated rows carry no number. The result is
// recomputed from scratch on every call; nothing about it is persisted.
func Sequential(rows []Row) map[string]string {
	labels := make(map[string]string, len(rows))
	next := 1
	for _, row := range rows {
		if row.Header || row.Floated {
			continue
		}
		labels[row.ID] = Base(next).String()
		next++
	}
	return labels
}

// Locked numbers a document whose base numbers are frozen. Rows present
// in frozen keep their number verbatim; rows that are new since the lock
// receive a decimal suffix on the nearest preceding frozen number, with
// the suffix counter restarting at each frozen row. A new row before the
// first frozen row suffixes base 0.
//
// The pass is strictly left to right and incremental; no neighbour
// searching. Exceeding MaxDepth aborts with ErrDepthExceeded.
func Locked(rows []Row, frozen map[string]string) (map[string]string, error) {
	labels := make(map[string]string, len(rows))
	prev := Base(0)
	inserted := 0

	for _, row := range rows {
		if row.Header {
			continue
		}
		if label, ok := frozen[row.ID]; ok {
			n, err := Parse(label)
			if err != nil {
				return nil, fmt.Errorf("locked number for item %s: %w", row.ID, err)
			}
			labels[row.ID] = label
			prev = n
			inserted = 0
			continue
		}
		inserted++
		child, err := prev.Child(inserted)
		if err != nil {
			return nil, err
		}
		labels[row.ID] = child.String()
	}
	return labels, nil
}
