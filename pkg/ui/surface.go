package ui

import "github.com/vanderheijden86/tempmap/pkg/interact"

// termSurface is the terminal rendering of hover state. The explorer reads it
// back in View; it draws nothing itself.
type termSurface struct {
	tooltip  *interact.Tooltip
	outlined map[int]bool
	padding  int // border plus horizontal padding of the tooltip box
}

var _ interact.Surface = (*termSurface)(nil)

func newTermSurface() *termSurface {
	return &termSurface{outlined: make(map[int]bool), padding: 4}
}

func (s *termSurface) MeasureTooltip(text string) float64 {
	return float64(textWidth(text) + s.padding)
}

func (s *termSurface) ShowTooltip(t interact.Tooltip) {
	s.tooltip = &t
}

func (s *termSurface) HideTooltip() {
	s.tooltip = nil
}

func (s *termSurface) SetOutline(cell int, on bool) {
	if on {
		s.outlined[cell] = true
		return
	}
	delete(s.outlined, cell)
}
