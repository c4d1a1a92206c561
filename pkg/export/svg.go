package export

import (
	"fmt"
	"html"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/vanderheijden86/tempmap/pkg/chart"
	"github.com/vanderheijden86/tempmap/pkg/interact"
)

// Container ids and attribute names read by external verification tooling.
const (
	HeatMapID    = "heat-map"
	LegendID     = "legend"
	TooltipID    = "tooltip"
	XAxisID      = "x-axis"
	YAxisID      = "y-axis"
	LegendAxisID = "legend-axis"

	CellClass   = "cell"
	SwatchClass = "legend-swatch"
)

// legendAxisSpace is the room below the swatches for the legend axis.
const legendAxisSpace = 40

const (
	fontFamily = `font-family="Helvetica, Arial, sans-serif"`
	axisStroke = `stroke="#333333"`
)

var (
	colorBackdrop = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x55, 0x55, 0x55, 0xff}
	colorAxis     = color.RGBA{0x33, 0x33, 0x33, 0xff}
)

// frame is the placement of the plot and legend inside a combined document.
type frame struct {
	width, height float64
	plotX, plotY  float64
	legendY       float64
}

func frameFor(c *chart.Chart, m Margin) frame {
	plotW := c.Dimensions.PlotWidth
	legendY := m.Top + c.Dimensions.PlotHeight + m.Bottom
	return frame{
		width:   m.Left + math.Max(plotW, c.Legend.Width) + m.Right,
		height:  legendY + c.Legend.Height + legendAxisSpace,
		plotX:   m.Left,
		plotY:   m.Top,
		legendY: legendY,
	}
}

// WriteSVG writes the heat map and legend as one SVG document. The two parts
// are groups with ids "heat-map" and "legend".
func WriteSVG(w io.Writer, c *chart.Chart, opts Options) error {
	opts = opts.withDefaults(c)
	f := frameFor(c, opts.Margin)
	ew := &errWriter{w: w}

	canvas := svg.New(ew)
	canvas.Start(int(math.Ceil(f.width)), int(math.Ceil(f.height)))
	canvas.Title(opts.Title)
	canvas.Rect(0, 0, int(math.Ceil(f.width)), int(math.Ceil(f.height)), fmt.Sprintf(`fill="%s"`, css(colorBackdrop)))
	canvas.Text(int(f.plotX), 26, opts.Title, `id="title"`, fontFamily, `font-size="20"`, `font-weight="bold"`, fmt.Sprintf(`fill="%s"`, css(colorText)))
	canvas.Text(int(f.plotX), 46, opts.Description, `id="description"`, fontFamily, `font-size="13"`, fmt.Sprintf(`fill="%s"`, css(colorSubtle)))

	canvas.Group(attr("id", HeatMapID), translate(f.plotX, f.plotY))
	drawHeatmap(canvas, c)
	canvas.Gend()

	canvas.Group(attr("id", LegendID), translate(f.plotX, f.legendY))
	drawLegend(canvas, c)
	canvas.Gend()

	canvas.End()
	return ew.err
}

// writeHeatmapSVG writes only the heat map as a standalone <svg> element.
func writeHeatmapSVG(w io.Writer, c *chart.Chart, m Margin) error {
	ew := &errWriter{w: w}
	width := m.Left + c.Dimensions.PlotWidth + m.Right
	height := m.Top + c.Dimensions.PlotHeight + m.Bottom

	canvas := svg.New(ew)
	canvas.Start(int(math.Ceil(width)), int(math.Ceil(height)))
	canvas.Group(translate(m.Left, m.Top))
	drawHeatmap(canvas, c)
	canvas.Gend()
	canvas.End()
	return ew.err
}

// writeLegendSVG writes only the legend as a standalone <svg> element.
func writeLegendSVG(w io.Writer, c *chart.Chart, m Margin) error {
	ew := &errWriter{w: w}
	width := m.Left + c.Legend.Width + m.Right
	height := c.Legend.Height + legendAxisSpace

	canvas := svg.New(ew)
	canvas.Start(int(math.Ceil(width)), int(math.Ceil(height)))
	canvas.Group(translate(m.Left, 0))
	drawLegend(canvas, c)
	canvas.Gend()
	canvas.End()
	return ew.err
}

func drawHeatmap(canvas *svg.SVG, c *chart.Chart) {
	plotW := c.Dimensions.PlotWidth
	plotH := c.Dimensions.PlotHeight

	canvas.Gid("cells")
	for _, cell := range c.Cells {
		fmt.Fprintf(canvas.Writer,
			`<rect class="%s" x="%s" y="%s" width="%s" height="%s" fill="%s" data-year="%d" data-month="%d" data-variance="%s" data-temp="%s" data-tooltip="%s"/>`+"\n",
			CellClass, num(cell.X), num(cell.Y), num(cell.Width), num(cell.Height), cell.FillHex(),
			cell.Year, cell.MonthIndex, num(cell.Variance), num(cell.Temperature),
			attrEscape(interact.TooltipText(cell)))
	}
	canvas.Gend()

	canvas.Group(attr("id", XAxisID), translate(0, plotH))
	canvas.Line(0, 0, int(math.Round(plotW)), 0, axisStroke)
	for _, t := range c.YearTicks {
		canvas.Group(`class="tick"`, translate(t.Pos, 0))
		canvas.Line(0, 0, 0, 6, axisStroke)
		canvas.Text(0, 20, t.Label, `text-anchor="middle"`, fontFamily, `font-size="11"`)
		canvas.Gend()
	}
	canvas.Text(int(plotW/2), 44, "Years", `text-anchor="middle"`, fontFamily, `font-size="13"`)
	canvas.Gend()

	canvas.Group(attr("id", YAxisID))
	canvas.Line(0, 0, 0, int(math.Round(plotH)), axisStroke)
	for _, t := range c.MonthTicks {
		canvas.Group(`class="tick"`, translate(0, t.Pos))
		canvas.Line(-6, 0, 0, 0, axisStroke)
		canvas.Text(-10, 4, t.Label, `text-anchor="end"`, fontFamily, `font-size="11"`)
		canvas.Gend()
	}
	canvas.Text(-90, int(plotH/2), "Months", `text-anchor="middle"`, fontFamily, `font-size="13"`,
		fmt.Sprintf(`transform="rotate(-90 -90 %d)"`, int(plotH/2)))
	canvas.Gend()
}

func drawLegend(canvas *svg.SVG, c *chart.Chart) {
	lg := c.Legend
	canvas.Gid("swatches")
	for _, s := range lg.Swatches {
		fmt.Fprintf(canvas.Writer,
			`<rect class="%s" x="%s" y="0" width="%s" height="%s" fill="%s" data-key="%s" data-variance="%s"/>`+"\n",
			SwatchClass, num(s.X), num(s.Width), num(s.Height), s.FillHex(), num(s.Key), num(s.Variance))
	}
	canvas.Gend()

	canvas.Group(attr("id", LegendAxisID), translate(0, lg.Height))
	canvas.Line(0, 0, int(math.Round(lg.Width)), 0, axisStroke)
	for _, t := range lg.Ticks {
		canvas.Group(`class="tick"`, translate(t.Pos, 0))
		canvas.Line(0, 0, 0, 6, axisStroke)
		canvas.Text(0, 20, t.Label, `text-anchor="middle"`, fontFamily, `font-size="11"`)
		canvas.Gend()
	}
	canvas.Gend()
}

// --- helpers ---------------------------------------------------------------

// num prints the shortest decimal that round-trips, so equal layouts give
// byte-identical documents.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, attrEscape(value))
}

func translate(x, y float64) string {
	return fmt.Sprintf(`transform="translate(%s,%s)"`, num(x), num(y))
}

// attrEscape escapes s for an attribute value, keeping newlines as
// character references so XML parsers do not fold them into spaces.
func attrEscape(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "&#10;")
}

// errWriter keeps the first write error; svgo itself does not report errors.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
