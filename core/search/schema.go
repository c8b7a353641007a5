package search

import (
	"goldwatch/core/apperror"
)

// FieldType drives value coercion and operator compatibility checks.
type FieldType int

const (
	// FieldString values match exactly under EQUAL and case-insensitively
	// under LIKE.
	FieldString FieldType = iota
	// FieldNumber values are parsed as floats; ordering operators apply.
	FieldNumber
	// FieldTime values are parsed as timestamps; ordering operators apply.
	FieldTime
	// FieldEnum values resolve through the field's Parse function.
	FieldEnum
)

// Field describes one searchable field of an entity.
type Field struct {
	// Column is the database column the field maps to.
	Column string
	// Type selects coercion and operator rules.
	Type FieldType
	// Parse resolves enum tokens to their canonical stored value.
	// Required for FieldEnum, ignored otherwise.
	Parse func(string) (string, error)
}

// Schema is the whitelist of searchable fields for one entity kind,
// keyed by the external field name.
type Schema map[string]Field

// SortColumn validates a "field,direction" sort expression against the schema
// and returns the ORDER BY clause it maps to.
func (s Schema) SortColumn(sort string) (string, error) {
	if sort == "" {
		return "", nil
	}
	field, dir := sort, "asc"
	for i := 0; i < len(sort); i++ {
		if sort[i] == ',' {
			field, dir = sort[:i], sort[i+1:]
			break
		}
	}
	f, ok := s[field]
	if !ok {
		return "", apperror.NewValidation("unknown sort field %q", field)
	}
	switch dir {
	case "asc", "desc":
		return f.Column + " " + dir, nil
	default:
		return "", apperror.NewValidation("invalid sort direction %q", dir)
	}
}
