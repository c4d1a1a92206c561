// Package interact implements heat-map hover behavior independently of any
// rendering surface.
//
// A surface (browser page, terminal UI, test fake) forwards pointer events to
// a Listener and exposes the few drawing operations the Handler needs through
// Surface. Dispatch is assumed to be serial: one event at a time.
package interact

import (
	"fmt"

	"github.com/vanderheijden86/tempmap/pkg/chart"
	"github.com/vanderheijden86/tempmap/pkg/debug"
	"github.com/vanderheijden86/tempmap/pkg/model"
)

// TooltipOffsetY is the distance below a cell's top edge where the tooltip starts.
const TooltipOffsetY = 10

// Outline is the stroke applied to a hovered cell.
const (
	OutlineStroke  = "black"
	OutlineOpacity = 1.0
)

// Event is a pointer entering or leaving a cell.
type Event struct {
	Cell     int
	PointerX float64
	PointerY float64
}

// Listener receives pointer events for cells.
type Listener interface {
	OnEnter(Event)
	OnLeave(Event)
}

// Tooltip is what a surface should draw for a hovered cell.
type Tooltip struct {
	Text  string
	Left  float64
	Top   float64
	Year  int
	Cell  int
	Width float64
}

// Surface is the rendering collaborator driven by the Handler.
type Surface interface {
	// MeasureTooltip returns the rendered width of text in surface units.
	MeasureTooltip(text string) float64
	ShowTooltip(Tooltip)
	HideTooltip()
	SetOutline(cell int, on bool)
}

// TooltipText formats the hover text for c.
func TooltipText(c chart.Cell) string {
	return fmt.Sprintf("%d - %s\n%.1f°C\n%.1f°C", c.Year, model.MonthName(c.Month), c.Temperature, c.Variance)
}

// Handler drives the idle/hovered state of every cell on one surface.
// At most one cell is hovered at a time.
type Handler struct {
	cells   []chart.Cell
	surface Surface
	hovered int
}

var _ Listener = (*Handler)(nil)

// NewHandler returns a handler with every cell idle.
func NewHandler(cells []chart.Cell, s Surface) *Handler {
	return &Handler{cells: cells, surface: s, hovered: -1}
}

// Hovered returns the index of the hovered cell, or -1.
func (h *Handler) Hovered() int {
	return h.hovered
}

// OnEnter outlines the cell and shows its tooltip centered on the pointer.
// A cell still hovered from a missed leave event is cleared first.
func (h *Handler) OnEnter(e Event) {
	if e.Cell < 0 || e.Cell >= len(h.cells) {
		return
	}
	if h.hovered >= 0 && h.hovered != e.Cell {
		h.surface.SetOutline(h.hovered, false)
	}

	cell := h.cells[e.Cell]
	text := TooltipText(cell)
	width := h.surface.MeasureTooltip(text)

	h.hovered = e.Cell
	h.surface.ShowTooltip(Tooltip{
		Text:  text,
		Left:  e.PointerX - width/2,
		Top:   cell.Y + TooltipOffsetY,
		Year:  cell.Year,
		Cell:  e.Cell,
		Width: width,
	})
	h.surface.SetOutline(e.Cell, true)
	debug.Log("hover enter cell %d (%d-%02d)", e.Cell, cell.Year, cell.Month)
}

// OnLeave clears the outline and hides the tooltip. Leaving a cell that is
// not the hovered one is a no-op.
func (h *Handler) OnLeave(e Event) {
	if e.Cell != h.hovered || h.hovered < 0 {
		return
	}
	h.surface.SetOutline(e.Cell, false)
	h.surface.HideTooltip()
	h.hovered = -1
}
