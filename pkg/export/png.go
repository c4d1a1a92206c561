package export

import (
	"image/png"
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/tempmap/pkg/chart"
)

// WritePNG rasterizes the same layout WriteSVG produces.
func WritePNG(w io.Writer, c *chart.Chart, opts Options) error {
	opts = opts.withDefaults(c)
	f := frameFor(c, opts.Margin)

	dc := gg.NewContext(int(math.Ceil(f.width)), int(math.Ceil(f.height)))
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(opts.Title, f.plotX, 22, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(opts.Description, f.plotX, 42, 0, 0.5)

	dc.Push()
	dc.Translate(f.plotX, f.plotY)
	drawHeatmapPNG(dc, c)
	dc.Pop()

	dc.Push()
	dc.Translate(f.plotX, f.legendY)
	drawLegendPNG(dc, c)
	dc.Pop()

	return png.Encode(w, dc.Image())
}

func drawHeatmapPNG(dc *gg.Context, c *chart.Chart) {
	plotW := c.Dimensions.PlotWidth
	plotH := c.Dimensions.PlotHeight

	for _, cell := range c.Cells {
		dc.SetColor(cell.Fill)
		dc.DrawRectangle(cell.X, cell.Y, cell.Width, cell.Height)
		dc.Fill()
	}

	dc.SetColor(colorAxis)
	dc.SetLineWidth(1)
	dc.DrawLine(0, plotH, plotW, plotH)
	dc.Stroke()
	for _, t := range c.YearTicks {
		dc.DrawLine(t.Pos, plotH, t.Pos, plotH+6)
		dc.Stroke()
		dc.DrawStringAnchored(t.Label, t.Pos, plotH+18, 0.5, 0.5)
	}
	dc.DrawStringAnchored("Years", plotW/2, plotH+40, 0.5, 0.5)

	dc.DrawLine(0, 0, 0, plotH)
	dc.Stroke()
	for _, t := range c.MonthTicks {
		dc.DrawLine(-6, t.Pos, 0, t.Pos)
		dc.Stroke()
		dc.DrawStringAnchored(t.Label, -10, t.Pos, 1, 0.5)
	}
}

func drawLegendPNG(dc *gg.Context, c *chart.Chart) {
	lg := c.Legend
	for _, s := range lg.Swatches {
		dc.SetColor(s.Fill)
		dc.DrawRectangle(s.X, 0, s.Width, s.Height)
		dc.Fill()
	}

	dc.SetColor(colorAxis)
	dc.DrawLine(0, lg.Height, lg.Width, lg.Height)
	dc.Stroke()
	for _, t := range lg.Ticks {
		dc.DrawLine(t.Pos, lg.Height, t.Pos, lg.Height+6)
		dc.Stroke()
		dc.DrawStringAnchored(t.Label, t.Pos, lg.Height+18, 0.5, 0.5)
	}
}
