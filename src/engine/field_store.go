package engine

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fieldadmin/src/models"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// FieldStore is the storage contract for custom field definitions and the
// field type reference table.
type FieldStore interface {
	ListFieldTypes() ([]models.FieldType, error)
	GetFieldType(id int) (*models.FieldType, error)

	ListFieldDefinitions() ([]models.FieldDefinition, error)
	GetFieldDefinition(id string) (*models.FieldDefinition, error)
	NextDisplayOrder() (int, error)
	InsertFieldDefinition(def *models.FieldDefinition) error
	UpdateFieldDefinition(def *models.FieldDefinition) error
	DeleteFieldDefinition(id string) error
}

// DimensionStore reads the seeded dropdown taxonomy tables.
type DimensionStore interface {
	ListDimensionValues(table string) ([]models.DimensionValue, error)
}

// AuditStore persists admin action records.
type AuditStore interface {
	InsertAuditEntry(entry *models.AuditEntry) error
	ListAuditEntries(limit int) ([]models.AuditEntry, error)
}

// StatsStore derives dashboard numbers from the companies table.
type StatsStore interface {
	CompanyStats() (*models.SystemStats, error)
}

// AdminStorageEngine implements the store interfaces on top of a SQLite
// database standing in for the hosted relational store.
type AdminStorageEngine struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewAdminStore opens (or creates) the database file, ensures the admin
// tables exist and seeds the reference data.
func NewAdminStore(dbFile string, logger *zap.SugaredLogger) (*AdminStorageEngine, error) {
	db, err := sql.Open("sqlite", "file:"+dbFile)
	if err != nil {
		return nil, fmt.Errorf("error opening database file %s: %w", dbFile, err)
	}

	store := &AdminStorageEngine{
		db:     db,
		logger: logger,
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating admin tables: %w", err)
	}
	if err := SeedReferenceData(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("error seeding reference data: %w", err)
	}

	return store, nil
}

// DB exposes the underlying handle so the schema engine can share it.
func (s *AdminStorageEngine) DB() *sql.DB {
	return s.db
}

func (s *AdminStorageEngine) Close() error {
	return s.db.Close()
}

func (s *AdminStorageEngine) ListFieldTypes() ([]models.FieldType, error) {
	rows, err := s.db.Query(`SELECT id, field_type FROM dim_field_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying field types: %w", err)
	}
	defer rows.Close()

	types := []models.FieldType{}
	for rows.Next() {
		var ft models.FieldType
		if err := rows.Scan(&ft.ID, &ft.FieldTypeName); err != nil {
			return nil, fmt.Errorf("error scanning field type row: %w", err)
		}
		types = append(types, ft)
	}
	return types, rows.Err()
}

func (s *AdminStorageEngine) GetFieldType(id int) (*models.FieldType, error) {
	var ft models.FieldType
	err := s.db.QueryRow(`SELECT id, field_type FROM dim_field_types WHERE id = ?`, id).
		Scan(&ft.ID, &ft.FieldTypeName)
	if err == sql.ErrNoRows {
		return nil, ErrFieldTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying field type %d: %w", id, err)
	}
	return &ft, nil
}

// ListFieldDefinitions returns every definition joined with its field type
// name, ordered by display_order ascending. An empty definition set yields
// an empty slice, not an error.
func (s *AdminStorageEngine) ListFieldDefinitions() ([]models.FieldDefinition, error) {
	rows, err := s.db.Query(`
		SELECT m.id, m.field_name, m.field_type, t.field_type,
		       m.display_order, m.is_mandatory, m.is_edit, m.is_delete,
		       m.dropdown_values, m.created_at
		FROM company_management m
		JOIN dim_field_types t ON t.id = m.field_type
		ORDER BY m.display_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying field definitions: %w", err)
	}
	defer rows.Close()

	defs := []models.FieldDefinition{}
	for rows.Next() {
		def, err := scanFieldDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, rows.Err()
}

func (s *AdminStorageEngine) GetFieldDefinition(id string) (*models.FieldDefinition, error) {
	row := s.db.QueryRow(`
		SELECT m.id, m.field_name, m.field_type, t.field_type,
		       m.display_order, m.is_mandatory, m.is_edit, m.is_delete,
		       m.dropdown_values, m.created_at
		FROM company_management m
		JOIN dim_field_types t ON t.id = m.field_type
		WHERE m.id = ?`, id)

	def, err := scanFieldDefinition(row)
	if err == sql.ErrNoRows {
		return nil, ErrDefinitionNotFound
	}
	if err != nil {
		return nil, err
	}
	return def, nil
}

// NextDisplayOrder returns max(existing)+1.
func (s *AdminStorageEngine) NextDisplayOrder() (int, error) {
	var next int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(display_order), 0) + 1 FROM company_management`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("error computing next display order: %w", err)
	}
	return next, nil
}

func (s *AdminStorageEngine) InsertFieldDefinition(def *models.FieldDefinition) error {
	valuesJSON, err := marshalDropdownValues(def.DropdownValues)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO company_management
			(id, field_name, field_type, display_order, is_mandatory, is_edit, is_delete, dropdown_values, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.ID, def.FieldName, def.FieldTypeID, def.DisplayOrder,
		def.IsMandatory, def.IsEdit, def.IsDelete, valuesJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error inserting field definition %q: %w", def.FieldName, err)
	}
	return nil
}

// UpdateFieldDefinition writes the mutable columns of a definition. The
// field_type column is deliberately absent from the statement; it never
// changes after creation.
func (s *AdminStorageEngine) UpdateFieldDefinition(def *models.FieldDefinition) error {
	valuesJSON, err := marshalDropdownValues(def.DropdownValues)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE company_management
		SET field_name = ?, display_order = ?, is_mandatory = ?, is_edit = ?, is_delete = ?, dropdown_values = ?
		WHERE id = ?`,
		def.FieldName, def.DisplayOrder, def.IsMandatory, def.IsEdit, def.IsDelete, valuesJSON, def.ID)
	if err != nil {
		return fmt.Errorf("error updating field definition %s: %w", def.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading update result for %s: %w", def.ID, err)
	}
	if affected == 0 {
		return ErrDefinitionNotFound
	}
	return nil
}

func (s *AdminStorageEngine) DeleteFieldDefinition(id string) error {
	res, err := s.db.Exec(`DELETE FROM company_management WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting field definition %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading delete result for %s: %w", id, err)
	}
	if affected == 0 {
		return ErrDefinitionNotFound
	}
	return nil
}

// ListDimensionValues returns the active values of one taxonomy table in
// display order. Inactive values stay stored but are excluded here.
func (s *AdminStorageEngine) ListDimensionValues(table string) ([]models.DimensionValue, error) {
	if !IsDimensionTable(table) {
		return nil, ErrDimensionNotFound
	}

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT id, name, display_order, is_active, COALESCE(color, '')
		FROM %s
		WHERE is_active = 1
		ORDER BY display_order ASC`, table))
	if err != nil {
		return nil, fmt.Errorf("error querying dimension table %s: %w", table, err)
	}
	defer rows.Close()

	values := []models.DimensionValue{}
	for rows.Next() {
		var v models.DimensionValue
		if err := rows.Scan(&v.ID, &v.Name, &v.DisplayOrder, &v.IsActive, &v.Color); err != nil {
			return nil, fmt.Errorf("error scanning dimension row from %s: %w", table, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *AdminStorageEngine) InsertAuditEntry(entry *models.AuditEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO audit_logs (id, datetime, user, action, details, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Datetime, entry.User, entry.Action, entry.Details, entry.IPAddress, entry.UserAgent)
	if err != nil {
		return fmt.Errorf("error inserting audit entry: %w", err)
	}
	return nil
}

func (s *AdminStorageEngine) ListAuditEntries(limit int) ([]models.AuditEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, datetime, user, action, details, ip_address, user_agent
		FROM audit_logs
		ORDER BY datetime DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying audit log: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Datetime, &e.User, &e.Action, &e.Details, &e.IPAddress, &e.UserAgent); err != nil {
			return nil, fmt.Errorf("error scanning audit row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *AdminStorageEngine) CompanyStats() (*models.SystemStats, error) {
	stats := &models.SystemStats{SystemUptime: "99.9%"}

	err := s.db.QueryRow(`SELECT COUNT(*) FROM companies`).Scan(&stats.TotalCompanies)
	if err != nil {
		return nil, fmt.Errorf("error counting companies: %w", err)
	}
	err = s.db.QueryRow(`SELECT COUNT(*) FROM companies WHERE company_status = 'client'`).Scan(&stats.ActiveCompanies)
	if err != nil {
		return nil, fmt.Errorf("error counting active companies: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFieldDefinition(row rowScanner) (*models.FieldDefinition, error) {
	var def models.FieldDefinition
	var valuesJSON sql.NullString

	err := row.Scan(&def.ID, &def.FieldName, &def.FieldTypeID, &def.FieldTypeName,
		&def.DisplayOrder, &def.IsMandatory, &def.IsEdit, &def.IsDelete,
		&valuesJSON, &def.CreatedAt)
	if err != nil {
		return nil, err
	}

	if valuesJSON.Valid && valuesJSON.String != "" {
		if err := json.Unmarshal([]byte(valuesJSON.String), &def.DropdownValues); err != nil {
			return nil, fmt.Errorf("error decoding dropdown values for field %q: %w", def.FieldName, err)
		}
	}
	return &def, nil
}

// marshalDropdownValues encodes the embedded value list as the JSON array
// column, or NULL when the definition carries no values.
func marshalDropdownValues(values []models.DropdownValue) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("error encoding dropdown values: %w", err)
	}
	return string(data), nil
}
