package engine

// Add custom error definitions here
import "errors"

// ErrDefinitionNotFound is returned when a field definition id does not
// exist in the store.
var ErrDefinitionNotFound = errors.New("field definition not found")

// ErrFieldTypeNotFound is returned when a field type id does not resolve.
var ErrFieldTypeNotFound = errors.New("field type not found")

// ErrDimensionNotFound is returned when a dimension table name is not one
// of the seeded taxonomy tables.
var ErrDimensionNotFound = errors.New("dimension table not found")
