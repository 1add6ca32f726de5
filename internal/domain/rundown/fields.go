package rundown

import "strings"

// Field names an editable item field. Custom fields are addressed as
// "custom:<name>". The registry is static: callers pass explicit field
// keys rather than inferring them from the rendering surface.
type Field string

const (
	FieldName        Field = "name"
	FieldTalent      Field = "talent"
	FieldScript      Field = "script"
	FieldGraphicsRef Field = "graphics_ref"
	FieldVideoRef    Field = "video_ref"
	FieldNotes       Field = "notes"
	FieldDuration    Field = "duration"
	FieldColor       Field = "color"
)

const customPrefix = "custom:"

// CustomField builds the field key for a named custom column.
func CustomField(name string) Field {
	return Field(customPrefix + name)
}

// IsCustom reports whether the field addresses the custom-field map.
func (f Field) IsCustom() bool {
	return strings.HasPrefix(string(f), customPrefix)
}

// CustomName returns the column name of a custom field key.
func (f Field) CustomName() string {
	return strings.TrimPrefix(string(f), customPrefix)
}

// Known reports whether the field is in the registry.
func (f Field) Known() bool {
	if f.IsCustom() {
		return f.CustomName() != ""
	}
	switch f {
	case FieldName, FieldTalent, FieldScript, FieldGraphicsRef,
		FieldVideoRef, FieldNotes, FieldDuration, FieldColor:
		return true
	}
	return false
}

// FieldKey addresses one editable cell: an item plus a field.
type FieldKey struct {
	ItemID string `json:"item_id"`
	Field  Field  `json:"field"`
}

// FieldValue reads a field from an item.
func FieldValue(it *Item, f Field) string {
	if f.IsCustom() {
		return it.CustomFields[f.CustomName()]
	}
	switch f {
	case FieldName:
		return it.Name
	case FieldTalent:
		return it.Talent
	case FieldScript:
		return it.Script
	case FieldGraphicsRef:
		return it.GraphicsRef
	case FieldVideoRef:
		return it.VideoRef
	case FieldNotes:
		return it.Notes
	case FieldDuration:
		return it.Duration
	case FieldColor:
		return it.Color
	}
	return ""
}

// SetFieldValue writes a field on an item.
func SetFieldValue(it *Item, f Field, value string) error {
	if f.IsCustom() {
		if f.CustomName() == "" {
			return ErrUnknownField
		}
		if it.CustomFields == nil {
			it.CustomFields = make(map[string]string)
		}
		it.CustomFields[f.CustomName()] = value
		return nil
	}
	switch f {
	case FieldName:
		it.Name = value
	case FieldTalent:
		it.Talent = value
	case FieldScript:
		it.Script = value
	case FieldGraphicsRef:
		it.GraphicsRef = value
	case FieldVideoRef:
		it.VideoRef = value
	case FieldNotes:
		it.Notes = value
	case FieldDuration:
		it.Duration = value
	case FieldColor:
		it.Color = value
	default:
		return ErrUnknownField
	}
	return nil
}
