package directors

import (
	"strings"

	"fieldadmin/src/engine"
	"fieldadmin/src/helpers"
	"fieldadmin/src/models"
	"fieldadmin/src/registry"
	"fieldadmin/src/settings"

	"go.uber.org/zap"
)

// ColumnSynchronizer keeps the live companies table's columns in step with
// the definition set. Implemented by the schemasync client; faked in tests.
type ColumnSynchronizer interface {
	AddColumn(fieldName, fieldKind string) error
	RemoveColumn(fieldName string) error
}

// FieldService is the single source of truth for the set of custom field
// definitions. All create/update/delete flows go through it; reads come
// back ordered by display_order.
type FieldService struct {
	store    engine.FieldStore
	factory  engine.FieldFactory
	sync     ColumnSynchronizer
	settings *settings.Arguments
	logger   *zap.SugaredLogger
}

func NewFieldService(store engine.FieldStore, factory engine.FieldFactory,
	sync ColumnSynchronizer,
	logger *zap.SugaredLogger,
	settings *settings.Arguments) *FieldService {
	return &FieldService{
		store:    store,
		factory:  factory,
		sync:     sync,
		settings: settings,
		logger:   logger,
	}
}

// List returns every definition joined with its type name and embedded
// dropdown values, sorted by display order ascending. Either the full
// ordered list comes back or an error; never partial data.
func (s *FieldService) List() ([]models.FieldDefinition, error) {
	defs, err := s.store.ListFieldDefinitions()
	if err != nil {
		return nil, &FetchError{Op: "field definitions", Hint: storeHint(err), Err: err}
	}
	return defs, nil
}

// Get returns one definition by id.
func (s *FieldService) Get(id string) (*models.FieldDefinition, error) {
	def, err := s.store.GetFieldDefinition(id)
	if err != nil {
		return nil, &FetchError{Op: "field definition", Hint: storeHint(err), Err: err}
	}
	return def, nil
}

// ListFieldTypes exposes the field type registry rows.
func (s *FieldService) ListFieldTypes() ([]models.FieldType, error) {
	types, err := s.store.ListFieldTypes()
	if err != nil {
		return nil, &FetchError{Op: "field types", Hint: storeHint(err), Err: err}
	}
	return types, nil
}

// Create validates and persists a new definition, then asks the schema
// synchronizer to add the matching column on the live table. A failing
// synchronizer is logged and does not roll back or fail the create.
func (s *FieldService) Create(input models.FieldDefinitionInput) (*models.FieldDefinition, error) {
	args := settings.GetSettings()

	if strings.TrimSpace(input.FieldName) == "" {
		return nil, &ValidationError{Field: "field_name", Reason: "field name is required"}
	}

	fieldType, err := s.store.GetFieldType(input.FieldTypeID)
	if err != nil {
		return nil, &ValidationError{Field: "field_type_id", Reason: "field type does not exist"}
	}

	displayOrder := 0
	if input.DisplayOrder != nil {
		displayOrder = *input.DisplayOrder
	} else {
		displayOrder, err = s.store.NextDisplayOrder()
		if err != nil {
			return nil, &PersistenceError{Op: "field definition", Hint: storeHint(err), Err: err}
		}
	}

	if registry.IsDropdown(fieldType.FieldTypeName) {
		input.DropdownValues = commitFilter(input.DropdownValues)
		for i := range input.DropdownValues {
			if input.DropdownValues[i].ID == "" {
				input.DropdownValues[i].ID = helpers.GenerateUUID()
			}
		}
	} else if len(input.DropdownValues) > 0 {
		return nil, &ValidationError{Field: "dropdown_values", Reason: "only dropdown fields carry values"}
	}

	def := s.factory.NewFieldDefinition(input, fieldType.FieldTypeName, displayOrder)

	if err := s.store.InsertFieldDefinition(def); err != nil {
		return nil, &PersistenceError{Op: "field definition", Hint: storeHint(err), Err: err}
	}

	if args.Debug {
		s.logger.Infof("Created field definition '%s' (%s)", def.FieldName, def.FieldTypeName)
	}

	// Best effort: the definition write already succeeded. A failed column
	// add leaves the live table out of sync until an operator reconciles.
	if err := s.sync.AddColumn(def.FieldName, def.FieldTypeName); err != nil {
		s.logger.Warnw("Schema sync failed after create, live table column missing",
			"field", def.FieldName,
			"type", def.FieldTypeName,
			"error", err)
	}

	return def, nil
}

// Update applies the patch to an existing definition. The field type is
// immutable after creation; a patch trying to change it is ignored and the
// stored value stays untouched.
func (s *FieldService) Update(id string, patch models.FieldDefinitionPatch) (*models.FieldDefinition, error) {
	def, err := s.store.GetFieldDefinition(id)
	if err != nil {
		return nil, &FetchError{Op: "field definition", Hint: storeHint(err), Err: err}
	}

	if patch.FieldTypeID != nil && *patch.FieldTypeID != def.FieldTypeID {
		s.logger.Warnf("Ignoring attempt to change field type of '%s' from %d to %d",
			def.FieldName, def.FieldTypeID, *patch.FieldTypeID)
	}

	if patch.FieldName != nil {
		if strings.TrimSpace(*patch.FieldName) == "" {
			return nil, &ValidationError{Field: "field_name", Reason: "field name is required"}
		}
		def.FieldName = *patch.FieldName
	}
	if patch.DisplayOrder != nil {
		def.DisplayOrder = *patch.DisplayOrder
	}
	if patch.IsMandatory != nil {
		def.IsMandatory = *patch.IsMandatory
	}
	if patch.IsEdit != nil {
		def.IsEdit = *patch.IsEdit
	}
	if patch.IsDelete != nil {
		def.IsDelete = *patch.IsDelete
	}
	if patch.DropdownValues != nil {
		if !registry.IsDropdown(def.FieldTypeName) && len(*patch.DropdownValues) > 0 {
			return nil, &ValidationError{Field: "dropdown_values", Reason: "only dropdown fields carry values"}
		}
		def.DropdownValues = *patch.DropdownValues
		for i := range def.DropdownValues {
			if def.DropdownValues[i].ID == "" {
				def.DropdownValues[i].ID = helpers.GenerateUUID()
			}
		}
	}

	if err := s.store.UpdateFieldDefinition(def); err != nil {
		return nil, &PersistenceError{Op: "field definition", Hint: storeHint(err), Err: err}
	}

	return def, nil
}

// Delete removes the definition and then asks the synchronizer to drop the
// column named after it. The column drop is best effort; the delete stands
// even when it fails.
func (s *FieldService) Delete(id string) error {
	def, err := s.store.GetFieldDefinition(id)
	if err != nil {
		return &FetchError{Op: "field definition", Hint: storeHint(err), Err: err}
	}

	if err := s.store.DeleteFieldDefinition(id); err != nil {
		return &PersistenceError{Op: "field definition delete", Hint: storeHint(err), Err: err}
	}

	if err := s.sync.RemoveColumn(def.FieldName); err != nil {
		s.logger.Warnw("Schema sync failed after delete, live table column left behind",
			"field", def.FieldName,
			"error", err)
	}

	return nil
}

// commitFilter drops entries whose display name trims to empty. Surviving
// entries keep their display_order verbatim; gaps are not renumbered.
func commitFilter(values []models.DropdownValue) []models.DropdownValue {
	kept := make([]models.DropdownValue, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v.DisplayName) == "" {
			continue
		}
		kept = append(kept, v)
	}
	return kept
}
