package ui

import (
	"slices"

	"github.com/vanderheijden86/tempmap/pkg/chart"
)

// gridRows is one terminal row per month. Row 0 is December, matching the
// chart's orientation.
const gridRows = 12

// termGrid maps terminal columns and rows onto chart cells. When there are
// more years than columns, each column covers span consecutive years and
// shows the first record found in that range.
type termGrid struct {
	years []int     // first year of each column
	span  int       // years per column
	index [][12]int // [col][row] -> chart cell index, -1 if none
}

func newTermGrid(c *chart.Chart, maxCols int) termGrid {
	years := slices.Clone(c.Dataset.DistinctYears())
	slices.Sort(years)

	span := 1
	if maxCols > 0 && len(years) > maxCols {
		span = (len(years) + maxCols - 1) / maxCols
	}
	cols := (len(years) + span - 1) / span

	g := termGrid{
		years: make([]int, cols),
		span:  span,
		index: make([][12]int, cols),
	}
	pos := make(map[int]int, len(years))
	for i, y := range years {
		pos[y] = i
		col := i / span
		if i%span == 0 {
			g.years[col] = y
		}
	}
	for col := range g.index {
		for row := range g.index[col] {
			g.index[col][row] = -1
		}
	}
	for i, cell := range c.Cells {
		col := pos[cell.Year] / span
		row := gridRows - 1 - cell.MonthIndex
		if g.index[col][row] == -1 {
			g.index[col][row] = i
		}
	}
	return g
}

func (g termGrid) cols() int {
	return len(g.index)
}

// at returns the chart cell shown at (col, row), or -1.
func (g termGrid) at(col, row int) int {
	if col < 0 || col >= len(g.index) || row < 0 || row >= gridRows {
		return -1
	}
	return g.index[col][row]
}

// find returns the grid position of a chart cell.
func (g termGrid) find(cell int) (col, row int, ok bool) {
	for col := range g.index {
		for row, idx := range g.index[col] {
			if idx == cell {
				return col, row, true
			}
		}
	}
	return 0, 0, false
}
