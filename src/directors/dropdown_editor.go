package directors

import (
	"fmt"
	"strings"

	"fieldadmin/src/engine"
	"fieldadmin/src/models"
)

// DropdownEditor manages the transient, ordered value list of one dropdown
// field during an editing session. Nothing touches the store until the
// caller commits through the field service; removing a value only strikes
// it from the in-memory list.
type DropdownEditor struct {
	factory engine.FieldFactory
	values  []models.DropdownValue
}

// NewDropdownEditor starts an editing session. For a new field pass nil;
// for an existing dropdown field pass its current embedded list.
func NewDropdownEditor(factory engine.FieldFactory, existing []models.DropdownValue) *DropdownEditor {
	values := make([]models.DropdownValue, len(existing))
	copy(values, existing)
	return &DropdownEditor{
		factory: factory,
		values:  values,
	}
}

// AddValue appends a fresh active entry with an empty name, ordered after
// the current entries.
func (e *DropdownEditor) AddValue() models.DropdownValue {
	value := e.factory.NewDropdownValue(len(e.values) + 1)
	e.values = append(e.values, value)
	return value
}

// UpdateValue replaces one attribute of one entry by id. No validation
// happens here; empty names are filtered out at commit time.
func (e *DropdownEditor) UpdateValue(id, field string, value any) error {
	for i := range e.values {
		if e.values[i].ID != id {
			continue
		}
		switch field {
		case "display_name":
			name, ok := value.(string)
			if !ok {
				return fmt.Errorf("display_name must be a string")
			}
			e.values[i].DisplayName = name
		case "display_order":
			order, ok := value.(int)
			if !ok {
				return fmt.Errorf("display_order must be an integer")
			}
			e.values[i].DisplayOrder = order
		case "is_active":
			active, ok := value.(bool)
			if !ok {
				return fmt.Errorf("is_active must be a boolean")
			}
			e.values[i].IsActive = active
		default:
			return fmt.Errorf("unknown dropdown value field %q", field)
		}
		return nil
	}
	return fmt.Errorf("dropdown value %s not found", id)
}

// RemoveValue strikes the entry from the list. No confirmation step here,
// unlike a field definition delete.
func (e *DropdownEditor) RemoveValue(id string) error {
	for i := range e.values {
		if e.values[i].ID == id {
			e.values = append(e.values[:i], e.values[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("dropdown value %s not found", id)
}

// Values returns the current session list in order.
func (e *DropdownEditor) Values() []models.DropdownValue {
	out := make([]models.DropdownValue, len(e.values))
	copy(out, e.values)
	return out
}

// ActiveValues returns the entries shown in "available options" views.
func (e *DropdownEditor) ActiveValues() []models.DropdownValue {
	out := make([]models.DropdownValue, 0, len(e.values))
	for _, v := range e.values {
		if v.IsActive {
			out = append(out, v)
		}
	}
	return out
}

// CommitFilter produces the persistable payload: entries with blank names
// are dropped, the rest pass through verbatim. Display orders are not
// renumbered, so filtered-out entries leave gaps.
func (e *DropdownEditor) CommitFilter() []models.DropdownValue {
	kept := make([]models.DropdownValue, 0, len(e.values))
	for _, v := range e.values {
		if strings.TrimSpace(v.DisplayName) == "" {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// SaveAll replaces the whole embedded list on the parent definition in one
// update, for the inline edit mode on an already persisted dropdown field.
func (e *DropdownEditor) SaveAll(service *FieldService, fieldID string) (*models.FieldDefinition, error) {
	values := e.CommitFilter()
	return service.Update(fieldID, models.FieldDefinitionPatch{
		DropdownValues: &values,
	})
}
