package engine

import (
	"time"

	"fieldadmin/src/helpers"
	"fieldadmin/src/models"
)

// FieldFactory builds new definition and dropdown value structs with fresh
// identifiers.
type FieldFactory interface {
	NewFieldDefinition(input models.FieldDefinitionInput, fieldTypeName string, displayOrder int) *models.FieldDefinition
	NewDropdownValue(displayOrder int) models.DropdownValue
}

type FieldFactoryImpl struct {
}

func NewFieldFactory() FieldFactory {
	return &FieldFactoryImpl{}
}

func (f *FieldFactoryImpl) NewFieldDefinition(input models.FieldDefinitionInput, fieldTypeName string, displayOrder int) *models.FieldDefinition {
	return &models.FieldDefinition{
		ID:             helpers.GenerateUUID(),
		FieldName:      input.FieldName,
		FieldTypeID:    input.FieldTypeID,
		FieldTypeName:  fieldTypeName,
		DisplayOrder:   displayOrder,
		IsMandatory:    input.IsMandatory,
		IsEdit:         input.IsEdit,
		IsDelete:       input.IsDelete,
		DropdownValues: input.DropdownValues,
		CreatedAt:      time.Now().UTC(),
	}
}

func (f *FieldFactoryImpl) NewDropdownValue(displayOrder int) models.DropdownValue {
	return models.DropdownValue{
		ID:           helpers.GenerateUUID(),
		DisplayName:  "",
		DisplayOrder: displayOrder,
		IsActive:     true,
	}
}
