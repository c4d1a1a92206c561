package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in the meta table.
const SchemaVersion = 1

// CreateSchema creates the cell, legend and meta tables.
func CreateSchema(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"cells", `
		CREATE TABLE IF NOT EXISTS cells (
			idx INTEGER PRIMARY KEY,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			variance REAL NOT NULL,
			temp REAL NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			width REAL NOT NULL,
			height REAL NOT NULL,
			fill TEXT NOT NULL,
			tooltip TEXT NOT NULL,
			UNIQUE (year, month)
		)`},
		{"legend", `
		CREATE TABLE IF NOT EXISTS legend (
			idx INTEGER PRIMARY KEY,
			key REAL NOT NULL,
			variance REAL NOT NULL,
			x REAL NOT NULL,
			width REAL NOT NULL,
			fill TEXT NOT NULL
		)`},
		{"legend_ticks", `
		CREATE TABLE IF NOT EXISTS legend_ticks (
			idx INTEGER PRIMARY KEY,
			value REAL NOT NULL,
			pos REAL NOT NULL,
			label TEXT NOT NULL
		)`},
		{"meta", `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`},
		{"cells year index", `CREATE INDEX IF NOT EXISTS idx_cells_year ON cells(year)`},
	}

	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
