package engine

import (
	"database/sql"
	"fmt"

	"fieldadmin/src/registry"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// EnsureSchema creates the admin tables if they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS dim_field_types (
			id INTEGER PRIMARY KEY,
			field_type TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS company_management (
			id TEXT PRIMARY KEY,
			field_name TEXT NOT NULL,
			field_type INTEGER NOT NULL REFERENCES dim_field_types(id),
			display_order INTEGER NOT NULL,
			is_mandatory INTEGER NOT NULL DEFAULT 0,
			is_edit INTEGER NOT NULL DEFAULT 1,
			is_delete INTEGER NOT NULL DEFAULT 1,
			dropdown_values TEXT,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS companies (
			id TEXT PRIMARY KEY,
			company_name TEXT NOT NULL,
			company_status TEXT,
			created_date TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			datetime TIMESTAMP NOT NULL,
			user TEXT NOT NULL,
			action TEXT NOT NULL,
			details TEXT,
			ip_address TEXT,
			user_agent TEXT
		);`,
	}

	for _, table := range dimensionTables {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			display_order INTEGER NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			color TEXT
		);`, table))
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("error executing schema statement: %w", err)
		}
	}
	return nil
}

type dimensionSeed struct {
	name         string
	displayOrder int
	color        string
}

// dimensionSeeds holds the startup rows for each taxonomy table.
var dimensionSeeds = map[string][]dimensionSeed{
	"dim_company_status": {
		{"Lead", 1, ""}, {"Prospect", 2, ""}, {"Client", 3, ""}, {"Inactive", 4, ""},
	},
	"dim_lead_source": {
		{"Website", 1, ""}, {"Referral", 2, ""}, {"Cold Call", 3, ""},
		{"LinkedIn", 4, ""}, {"Trade Show", 5, ""}, {"Other", 6, ""},
	},
	"dim_lead_score": {
		{"Hot", 1, "#ef4444"}, {"Warm", 2, "#f59e0b"}, {"Cold", 3, "#3b82f6"},
	},
	"dim_company_size": {
		{"1-10", 1, ""}, {"11-50", 2, ""}, {"51-200", 3, ""}, {"201-500", 4, ""}, {"500+", 5, ""},
	},
	"dim_annual_revenue": {
		{"<1M", 1, ""}, {"1M-5M", 2, ""}, {"5M-10M", 3, ""}, {"10M+", 4, ""},
	},
	"dim_position_type": {
		{"Full-time", 1, ""}, {"Temp", 2, ""}, {"Contract", 3, ""},
		{"Maternity", 4, ""}, {"Temp-to-Perm", 5, ""},
	},
	"dim_note_type": {
		{"Call", 1, ""}, {"Email", 2, ""}, {"Meeting", 3, ""}, {"Follow-up", 4, ""}, {"Other", 5, ""},
	},
	"dim_contact_method": {
		{"Email", 1, ""}, {"Phone", 2, ""}, {"Mobile", 3, ""},
	},
	"dim_contact_type": {
		{"Primary Contact", 1, ""}, {"Decision Maker", 2, ""},
		{"HR Contact", 3, ""}, {"Technical Contact", 4, ""},
	},
	"dim_address_type": {
		{"Business", 1, ""}, {"Billing", 2, ""}, {"Shipping", 3, ""},
	},
	"dim_file_category": {
		{"Contract", 1, ""}, {"Proposal", 2, ""}, {"Resume", 3, ""}, {"Other", 4, ""},
	},
	"dim_industry": {
		{"Healthcare", 1, ""}, {"Technology", 2, ""}, {"Finance", 3, ""},
		{"Manufacturing", 4, ""}, {"Retail", 5, ""}, {"Other", 6, ""},
	},
}

var dimensionTables = func() []string {
	tables := make([]string, 0, len(dimensionSeeds))
	for table := range dimensionSeeds {
		tables = append(tables, table)
	}
	return tables
}()

// IsDimensionTable reports whether the name is a seeded taxonomy table.
// Lookups go through this guard so arbitrary table names never reach a
// query.
func IsDimensionTable(table string) bool {
	_, ok := dimensionSeeds[table]
	return ok
}

// SeedReferenceData inserts the field type registry and the dimension
// taxonomies. Inserts are idempotent; a failing table does not stop the
// rest, the errors are collected and returned together.
func SeedReferenceData(db *sql.DB, logger *zap.SugaredLogger) error {
	var errs error

	for i, kind := range registry.FieldKinds {
		_, err := db.Exec(`INSERT OR IGNORE INTO dim_field_types (id, field_type) VALUES (?, ?)`, i+1, kind)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("error seeding field type %q: %w", kind, err))
		}
	}

	for table, seeds := range dimensionSeeds {
		for i, seed := range seeds {
			var color any
			if seed.color != "" {
				color = seed.color
			}
			_, err := db.Exec(fmt.Sprintf(
				`INSERT OR IGNORE INTO %s (id, name, display_order, is_active, color) VALUES (?, ?, ?, 1, ?)`, table),
				i+1, seed.name, seed.displayOrder, color)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("error seeding %s: %w", table, err))
				break
			}
		}
	}

	if errs != nil {
		return errs
	}

	if logger != nil {
		logger.Infof("Seeded %d field types and %d dimension tables", len(registry.FieldKinds), len(dimensionSeeds))
	}
	return nil
}
