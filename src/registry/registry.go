// Package registry enumerates the allowed field kinds and maps each one to
// the storage column type used when the live companies table is altered.
package registry

import "strings"

// The canonical field kinds, in seed/display order.
var FieldKinds = []string{
	"text",
	"number",
	"dropdown",
	"date",
	"email",
	"phone",
	"url",
	"textarea",
	"checkbox",
}

var columnTypes = map[string]string{
	"text":     "VARCHAR(255)",
	"number":   "NUMERIC",
	"dropdown": "VARCHAR(255)",
	"date":     "DATE",
	"email":    "VARCHAR(255)",
	"phone":    "VARCHAR(20)",
	"url":      "VARCHAR(500)",
	"textarea": "TEXT",
	"checkbox": "BOOLEAN",
}

// ColumnType maps a field kind to its storage column type. Unknown kinds
// fall back to unbounded text.
func ColumnType(fieldKind string) string {
	if t, ok := columnTypes[strings.ToLower(fieldKind)]; ok {
		return t
	}
	return "TEXT"
}

// IsKnownKind reports whether the kind is one of the allowed field kinds.
func IsKnownKind(fieldKind string) bool {
	_, ok := columnTypes[strings.ToLower(fieldKind)]
	return ok
}

// IsDropdown reports whether the kind carries an embedded value list.
func IsDropdown(fieldKind string) bool {
	return strings.EqualFold(fieldKind, "dropdown")
}
