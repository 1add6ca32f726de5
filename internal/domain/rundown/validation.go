package rundown

import "strings"

// ValidateCreateInput validates fields required to create a rundown.
func ValidateCreateInput(req CreateRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return ErrInvalidInput
	}
	return nil
}

// ValidateAddItemInput validates fields required to add an item.
func ValidateAddItemInput(req AddItemRequest) error {
	if strings.TrimSpace(req.DocumentID) == "" {
		return ErrInvalidInput
	}
	switch req.Kind {
	case KindRegular:
	case KindHeader:
		// Header durations are derived from the section below them.
		if req.Duration != "" {
			return ErrHeaderDuration
		}
	default:
		return ErrInvalidInput
	}
	return nil
}

// ValidateFieldWrite validates a field update against the registry and
// the item it targets.
func ValidateFieldWrite(it *Item, field Field) error {
	if !field.Known() {
		return ErrUnknownField
	}
	if field == FieldDuration && it.IsHeader() {
		return ErrHeaderDuration
	}
	return nil
}
