package models

import "time"

// FieldType is a reference entity seeded at startup. Read-only lookup.
type FieldType struct {
	ID            int    `json:"id"`
	FieldTypeName string `json:"field_type_name"`
}

// DropdownValue is one selectable option embedded in a dropdown-typed
// field definition. IDs are generated client-side when the value is first
// created in an editing session, not by the store.
type DropdownValue struct {
	ID           string `json:"id" bson:"id"`
	DisplayName  string `json:"display_name" bson:"display_name"`
	DisplayOrder int    `json:"display_order" bson:"display_order"`
	IsActive     bool   `json:"is_active" bson:"is_active"`
}

// FieldDefinition is the central entity: one custom field on the live
// companies table.
type FieldDefinition struct {
	// ID is assigned by the store on creation; empty before persistence.
	ID string `json:"id"`

	FieldName string `json:"field_name"`

	// FieldTypeID never changes after creation.
	FieldTypeID int `json:"field_type_id"`

	// FieldTypeName is the joined dim_field_types name, filled on reads.
	FieldTypeName string `json:"field_type_name"`

	DisplayOrder int  `json:"display_order"`
	IsMandatory  bool `json:"is_mandatory"`

	// Legacy record-level permission flags. Stored and returned verbatim.
	IsEdit   bool `json:"is_edit"`
	IsDelete bool `json:"is_delete"`

	// DropdownValues is populated only when the field type is "dropdown".
	DropdownValues []DropdownValue `json:"dropdown_values,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// FieldDefinitionInput is the payload for creating a definition.
type FieldDefinitionInput struct {
	FieldName   string `json:"field_name"`
	FieldTypeID int    `json:"field_type_id"`

	// DisplayOrder defaults to max(existing)+1 when nil.
	DisplayOrder *int `json:"display_order,omitempty"`

	IsMandatory bool `json:"is_mandatory"`
	IsEdit      bool `json:"is_edit"`
	IsDelete    bool `json:"is_delete"`

	DropdownValues []DropdownValue `json:"dropdown_values,omitempty"`
}

// FieldDefinitionPatch carries the updatable subset of a definition.
// A nil field means "leave unchanged". FieldTypeID is present only so the
// store can detect and ignore attempts to change it.
type FieldDefinitionPatch struct {
	FieldName    *string `json:"field_name,omitempty"`
	FieldTypeID  *int    `json:"field_type_id,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
	IsMandatory  *bool   `json:"is_mandatory,omitempty"`
	IsEdit       *bool   `json:"is_edit,omitempty"`
	IsDelete     *bool   `json:"is_delete,omitempty"`

	// DropdownValues replaces the embedded list wholesale when non-nil.
	DropdownValues *[]DropdownValue `json:"dropdown_values,omitempty"`
}

// DimensionValue is one row of a seeded dropdown taxonomy table
// (dim_company_status, dim_lead_source, ...).
type DimensionValue struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
	Color        string `json:"color,omitempty"`
}

// AuditEntry records one admin action.
type AuditEntry struct {
	ID        string    `json:"id"`
	Datetime  time.Time `json:"datetime"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
}

// AdminRole describes a role assignable to admin users.
type AdminRole struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	UserType    string   `json:"user_type"`
	Status      string   `json:"status"`
	UserCount   int      `json:"user_count"`
	Permissions []string `json:"permissions"`
	CreatedAt   string   `json:"created_at"`
}

// SystemStats is the small dashboard summary derived from the companies
// table.
type SystemStats struct {
	TotalCompanies  int    `json:"total_companies"`
	ActiveCompanies int    `json:"active_companies"`
	TotalUsers      int    `json:"total_users"`
	SystemUptime    string `json:"system_uptime"`
}
