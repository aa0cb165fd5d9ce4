package engine

import (
	"database/sql"
	"fmt"
	"strings"

	"fieldadmin/src/registry"

	"go.uber.org/zap"
)

// SchemaEngine holds the privileged capability to alter the live companies
// table. It is reached only through the internal schema-mutation endpoint,
// never from the UI tier directly.
type SchemaEngine struct {
	db     *sql.DB
	table  string
	logger *zap.SugaredLogger
}

func NewSchemaEngine(db *sql.DB, logger *zap.SugaredLogger) *SchemaEngine {
	return &SchemaEngine{
		db:     db,
		table:  "companies",
		logger: logger,
	}
}

// WithTable overrides the target table
func (e *SchemaEngine) WithTable(table string) *SchemaEngine {
	e.table = table
	return e
}

// ColumnExists checks the live table for a column of the given name.
func (e *SchemaEngine) ColumnExists(columnName string) (bool, error) {
	var count int
	err := e.db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		e.table, columnName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("error checking column %q on table %s: %w", columnName, e.table, err)
	}
	return count > 0, nil
}

// AddColumn adds a column for the field, translating the field kind into a
// storage column type. A no-op if the column already exists.
func (e *SchemaEngine) AddColumn(fieldName, fieldKind string) error {
	if err := validateColumnName(fieldName); err != nil {
		return err
	}

	exists, err := e.ColumnExists(fieldName)
	if err != nil {
		return err
	}
	if exists {
		e.logger.Infof("Column %q already exists on %s, nothing to add", fieldName, e.table)
		return nil
	}

	columnType := registry.ColumnType(fieldKind)
	stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN "%s" %s`, e.table, fieldName, columnType)
	if _, err := e.db.Exec(stmt); err != nil {
		return fmt.Errorf("error adding column %q (%s) to table %s: %w", fieldName, columnType, e.table, err)
	}

	e.logger.Infow("Added column to live table",
		"table", e.table,
		"column", fieldName,
		"type", columnType)
	return nil
}

// RemoveColumn drops the field's column. A no-op if the column does not
// exist.
func (e *SchemaEngine) RemoveColumn(fieldName string) error {
	if err := validateColumnName(fieldName); err != nil {
		return err
	}

	exists, err := e.ColumnExists(fieldName)
	if err != nil {
		return err
	}
	if !exists {
		e.logger.Infof("Column %q does not exist on %s, nothing to remove", fieldName, e.table)
		return nil
	}

	stmt := fmt.Sprintf(`ALTER TABLE %s DROP COLUMN "%s"`, e.table, fieldName)
	if _, err := e.db.Exec(stmt); err != nil {
		return fmt.Errorf("error dropping column %q from table %s: %w", fieldName, e.table, err)
	}

	e.logger.Infow("Dropped column from live table",
		"table", e.table,
		"column", fieldName)
	return nil
}

// validateColumnName keeps quoted identifiers well formed. Field names are
// free text, so only the characters that would break the quoting are
// rejected.
func validateColumnName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if strings.ContainsAny(name, `"`+"`;") {
		return fmt.Errorf("column name %q contains invalid characters", name)
	}
	return nil
}
