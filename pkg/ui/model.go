// Package ui is the terminal heat-map explorer. Mouse motion and arrow keys
// are turned into enter/leave events for an interact.Handler; the handler's
// tooltip and outline are drawn from a terminal Surface.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/tempmap/pkg/chart"
	"github.com/vanderheijden86/tempmap/pkg/debug"
	"github.com/vanderheijden86/tempmap/pkg/interact"
	"github.com/vanderheijden86/tempmap/pkg/model"
)

const (
	labelWidth   = 10 // month label column, "September" plus a space
	headerHeight = 3  // title, description, blank line
	swatchWidth  = 6
	yearLabelGap = 10 // columns between year labels
	minGridCols  = 10
)

// ReloadMsg replaces the chart, e.g. after the watched dataset file changed.
type ReloadMsg struct {
	Chart *chart.Chart
	Err   error
}

// Option configures a Model.
type Option func(*Model)

// WithClipboard overrides how the tooltip is copied.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copy = fn }
}

// WithTitle sets the header line.
func WithTitle(title, description string) Option {
	return func(m *Model) {
		m.title = title
		m.description = description
	}
}

// Model is the bubbletea model of the explorer.
type Model struct {
	chart   *chart.Chart
	grid    termGrid
	surface *termSurface
	handler *interact.Handler

	col, row int

	width, height int
	title         string
	description   string
	status        string
	statusErr     bool

	keys     keyMap
	help     help.Model
	theme    Theme
	copy     func(string) error
	quitting bool
}

// NewModel returns an explorer over c with no cell hovered.
func NewModel(c *chart.Chart, opts ...Option) Model {
	m := Model{
		keys:  defaultKeyMap(),
		help:  help.New(),
		theme: DefaultTheme(),
		copy:  clipboard.WriteAll,
		title: "Monthly Global Land-Surface Temperature",
		row:   gridRows - 1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.setChart(c)
	return m
}

func (m *Model) setChart(c *chart.Chart) {
	m.chart = c
	m.surface = newTermSurface()
	m.handler = interact.NewHandler(c.Cells, m.surface)
	m.layoutGrid()
}

func (m *Model) layoutGrid() {
	maxCols := 0
	if m.width > 0 {
		maxCols = max(m.width-labelWidth-1, minGridCols)
	}
	m.grid = newTermGrid(m.chart, maxCols)
	m.col = min(m.col, max(m.grid.cols()-1, 0))
}

// Hovered returns the hovered chart cell index, or -1.
func (m Model) Hovered() int {
	return m.handler.Hovered()
}

// Tooltip returns the visible tooltip, if any.
func (m Model) Tooltip() (interact.Tooltip, bool) {
	if m.surface.tooltip == nil {
		return interact.Tooltip{}, false
	}
	return *m.surface.tooltip, true
}

// Outlined reports whether chart cell i is drawn with the hover outline.
func (m Model) Outlined(i int) bool {
	return m.surface.outlined[i]
}

// Status returns the status line text.
func (m Model) Status() string {
	return m.status
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		hovered := m.handler.Hovered()
		m.layoutGrid()
		if hovered >= 0 {
			if col, row, ok := m.grid.find(hovered); ok {
				m.col, m.row = col, row
			} else if m.grid.at(m.col, m.row) >= 0 {
				// The hovered cell was folded into a wider column.
				m.hover(m.col, m.row, float64(labelWidth+m.col))
			} else {
				m.leave()
			}
		}
		return m, nil

	case ReloadMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("reload failed: %v", msg.Err), true)
			return m, nil
		}
		m.setChart(msg.Chart)
		m.setStatus(fmt.Sprintf("reloaded %d cells", len(msg.Chart.Cells)), false)
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionPress {
			return m, nil
		}
		col, row := msg.X-labelWidth, msg.Y-headerHeight
		if m.grid.at(col, row) < 0 {
			m.leave()
			return m, nil
		}
		m.hover(col, row, float64(msg.X))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Clear):
			m.leave()
		case key.Matches(msg, m.keys.Copy):
			m.copyTooltip()
		case key.Matches(msg, m.keys.Up):
			m.move(0, -1)
		case key.Matches(msg, m.keys.Down):
			m.move(0, 1)
		case key.Matches(msg, m.keys.Left):
			m.move(-1, 0)
		case key.Matches(msg, m.keys.Right):
			m.move(1, 0)
		case key.Matches(msg, m.keys.Home):
			m.move(-m.col, 0)
		case key.Matches(msg, m.keys.End):
			m.move(m.grid.cols()-1-m.col, 0)
		}
		return m, nil
	}
	return m, nil
}

// move steps the cursor and hovers whatever is under it.
func (m *Model) move(dc, dr int) {
	m.col = clamp(m.col+dc, 0, m.grid.cols()-1)
	m.row = clamp(m.row+dr, 0, gridRows-1)
	if m.grid.at(m.col, m.row) < 0 {
		m.leave()
		return
	}
	m.hover(m.col, m.row, float64(labelWidth+m.col))
}

// hover dispatches a leave for the previous cell, if it differs, then an
// enter for the cell at (col, row).
func (m *Model) hover(col, row int, pointerX float64) {
	idx := m.grid.at(col, row)
	if prev := m.handler.Hovered(); prev >= 0 && prev != idx {
		m.handler.OnLeave(interact.Event{Cell: prev})
	}
	m.col, m.row = col, row
	m.handler.OnEnter(interact.Event{Cell: idx, PointerX: pointerX, PointerY: float64(headerHeight + row)})
}

func (m *Model) leave() {
	if prev := m.handler.Hovered(); prev >= 0 {
		m.handler.OnLeave(interact.Event{Cell: prev})
	}
}

func (m *Model) copyTooltip() {
	t, ok := m.Tooltip()
	if !ok {
		m.setStatus("nothing to copy", false)
		return
	}
	text := strings.ReplaceAll(t.Text, "\n", " ")
	if err := m.copy(text); err != nil {
		m.setStatus(fmt.Sprintf("copy failed: %v", err), true)
		return
	}
	m.setStatus("copied "+text, false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
	debug.Log("ui status: %s", s)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.theme.Desc.Render(m.description))
	b.WriteString("\n\n")

	m.renderGrid(&b)
	m.renderYearAxis(&b)
	b.WriteString("\n")
	m.renderLegend(&b)
	b.WriteString("\n")
	m.renderTooltip(&b)

	if m.status != "" {
		style := m.theme.Status
		if m.statusErr {
			style = m.theme.Error
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderGrid(b *strings.Builder) {
	r := m.theme.Renderer
	for row := 0; row < gridRows; row++ {
		label := model.MonthName(gridRows - row)
		b.WriteString(m.theme.Axis.Render(padRight(truncate(label, labelWidth-1), labelWidth)))
		for col := 0; col < m.grid.cols(); col++ {
			idx := m.grid.at(col, row)
			if idx < 0 {
				b.WriteString(" ")
				continue
			}
			cell := m.chart.Cells[idx]
			fill := CellColor(cell.FillHex(), cell.Variance)
			if m.surface.outlined[idx] {
				b.WriteString(m.theme.Outline.Background(fill).Render("▣"))
				continue
			}
			b.WriteString(r.NewStyle().Foreground(fill).Render("█"))
		}
		b.WriteString("\n")
	}
}

func (m Model) renderYearAxis(b *strings.Builder) {
	cols := m.grid.cols()
	line := []rune(strings.Repeat(" ", cols+labelWidth))
	next := 0
	for col := 0; col < cols; col += yearLabelGap {
		label := strconv.Itoa(m.grid.years[col])
		start := labelWidth + col
		if start < next || start+len(label) > len(line) {
			continue
		}
		copy(line[start:], []rune(label))
		next = start + len(label) + 1
	}
	b.WriteString(m.theme.Axis.Render(strings.TrimRight(string(line), " ")))
	b.WriteString("\n")
}

func (m Model) renderLegend(b *strings.Builder) {
	r := m.theme.Renderer
	lg := m.chart.Legend
	b.WriteString(strings.Repeat(" ", labelWidth))
	for _, s := range lg.Swatches {
		fill := CellColor(s.FillHex(), s.Variance)
		b.WriteString(r.NewStyle().Foreground(fill).Render(strings.Repeat("█", swatchWidth)))
	}
	b.WriteString("\n")

	var ticks strings.Builder
	for i, t := range lg.Ticks {
		if i == len(lg.Ticks)-1 {
			ticks.WriteString(t.Label)
			break
		}
		ticks.WriteString(padRight(truncate(t.Label, swatchWidth-1), swatchWidth))
	}
	// Tick i sits at the left edge of swatch i; shift labels half a label left.
	b.WriteString(strings.Repeat(" ", labelWidth-1))
	b.WriteString(m.theme.Axis.Render(ticks.String()))
	b.WriteString("\n")
}

func (m Model) renderTooltip(b *strings.Builder) {
	t, ok := m.Tooltip()
	if !ok {
		b.WriteString(m.theme.Status.Render("hover a cell or use the arrow keys"))
		b.WriteString("\n")
		return
	}
	left := max(int(t.Left), 0)
	if m.width > 0 {
		left = min(left, max(m.width-int(t.Width), 0))
	}
	box := m.theme.Tooltip.Render(t.Text)
	b.WriteString(lipgloss.NewStyle().MarginLeft(left).Render(box))
	b.WriteString("\n")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
