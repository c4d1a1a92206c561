package export

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vanderheijden86/tempmap/pkg/chart"
	"github.com/vanderheijden86/tempmap/pkg/interact"
	"github.com/vanderheijden86/tempmap/pkg/version"

	_ "modernc.org/sqlite"
)

// WriteSQLite writes every cell's rendered attributes, the legend, and run
// metadata to a fresh SQLite database at path. Month is stored zero-based, as
// it appears on the rendered cells.
func WriteSQLite(c *chart.Chart, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := insertCells(db, c); err != nil {
		return fmt.Errorf("insert cells: %w", err)
	}
	if err := insertLegend(db, c); err != nil {
		return fmt.Errorf("insert legend: %w", err)
	}
	if err := insertMeta(db, c); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func insertCells(db *sql.DB, c *chart.Chart) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO cells (idx, year, month, variance, temp, x, y, width, height, fill, tooltip)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, cell := range c.Cells {
		_, err := stmt.Exec(
			cell.Index,
			cell.Year,
			cell.MonthIndex,
			cell.Variance,
			cell.Temperature,
			cell.X,
			cell.Y,
			cell.Width,
			cell.Height,
			cell.FillHex(),
			interact.TooltipText(cell),
		)
		if err != nil {
			return fmt.Errorf("insert cell %d-%02d: %w", cell.Year, cell.Month, err)
		}
	}
	return tx.Commit()
}

func insertLegend(db *sql.DB, c *chart.Chart) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	swatch, err := tx.Prepare(`INSERT INTO legend (idx, key, variance, x, width, fill) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer swatch.Close()
	for i, s := range c.Legend.Swatches {
		if _, err := swatch.Exec(i, s.Key, s.Variance, s.X, s.Width, s.FillHex()); err != nil {
			return fmt.Errorf("insert swatch %d: %w", i, err)
		}
	}

	tick, err := tx.Prepare(`INSERT INTO legend_ticks (idx, value, pos, label) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer tick.Close()
	for i, t := range c.Legend.Ticks {
		if _, err := tick.Exec(i, t.Value, t.Pos, t.Label); err != nil {
			return fmt.Errorf("insert legend tick %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func insertMeta(db *sql.DB, c *chart.Chart) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	set := c.Scales
	meta := map[string]string{
		"schema_version":   strconv.Itoa(SchemaVersion),
		"generator":        "tempmap " + version.Version,
		"generated_at":     time.Now().UTC().Format(time.RFC3339),
		"base_temperature": num(set.Base),
		"min_variance":     num(set.MinVariance),
		"max_variance":     num(set.MaxVariance),
		"cell_count":       strconv.Itoa(len(c.Cells)),
		"plot_width":       num(c.Dimensions.PlotWidth),
		"plot_height":      num(c.Dimensions.PlotHeight),
	}
	for k, v := range meta {
		if _, err := stmt.Exec(k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return tx.Commit()
}
