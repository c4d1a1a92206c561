// Package export renders a laid-out chart to files: SVG, PNG, a
// self-contained interactive HTML page, and a SQLite table of cell
// attributes for external verification tooling.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/tempmap/pkg/chart"
	"github.com/vanderheijden86/tempmap/pkg/debug"
	"github.com/vanderheijden86/tempmap/pkg/metrics"
)

// Format is an output file format.
type Format string

const (
	FormatSVG    Format = "svg"
	FormatPNG    Format = "png"
	FormatHTML   Format = "html"
	FormatSQLite Format = "sqlite"
)

// Margin is the space around the plot area, in pixels.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargin leaves room for the title, month labels and year axis.
func DefaultMargin() Margin {
	return Margin{Top: 60, Right: 40, Bottom: 60, Left: 110}
}

// Options controls how a chart is written.
type Options struct {
	Path        string // Output path; format inferred from extension when Format empty
	Format      Format // If empty, inferred from Path
	Title       string
	Description string // Subtitle; defaults to the year range and base temperature
	Margin      Margin
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return FormatSVG, nil
	case ".png":
		return FormatPNG, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".sqlite", ".sqlite3", ".db":
		return FormatSQLite, nil
	case "":
		return "", fmt.Errorf("output %q has no extension", path)
	default:
		return "", fmt.Errorf("unsupported output %q (want .svg, .png, .html or .sqlite)", path)
	}
}

func (o Options) withDefaults(c *chart.Chart) Options {
	if strings.TrimSpace(o.Title) == "" {
		o.Title = "Monthly Global Land-Surface Temperature"
	}
	if strings.TrimSpace(o.Description) == "" {
		o.Description = describe(c)
	}
	if o.Margin == (Margin{}) {
		o.Margin = DefaultMargin()
	}
	return o
}

func describe(c *chart.Chart) string {
	lo, hi, err := c.Dataset.YearExtent()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d - %d: base temperature %.2f°C", lo, hi, c.Dataset.BaseTemperature)
}

// Save writes c to opts.Path in the requested (or inferred) format.
func Save(c *chart.Chart, opts Options) error {
	if c == nil || len(c.Cells) == 0 {
		return fmt.Errorf("no cells to export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	format := Format(strings.ToLower(strings.TrimPrefix(string(opts.Format), ".")))
	if format == "" {
		f, err := FormatFromPath(opts.Path)
		if err != nil {
			return err
		}
		format = f
	}
	opts = opts.withDefaults(c)

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	defer metrics.Timer(metrics.Render)()
	defer debug.LogEnterExit("export " + string(format) + " " + opts.Path)()

	switch format {
	case FormatSQLite:
		return WriteSQLite(c, opts.Path)
	case FormatSVG, FormatPNG, FormatHTML:
		return writeFile(opts.Path, func(w io.Writer) error {
			switch format {
			case FormatSVG:
				return WriteSVG(w, c, opts)
			case FormatPNG:
				return WritePNG(w, c, opts)
			default:
				return WriteHTML(w, c, opts)
			}
		})
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// UniquePaths drops repeated output paths, keeping the first spelling of each.
func UniquePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// SaveAll writes c to every distinct path concurrently. Renderers only read
// the chart.
func SaveAll(ctx context.Context, c *chart.Chart, base Options, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range UniquePaths(paths) {
		p := p
		opts := base
		opts.Path = p
		opts.Format = ""
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := Save(c, opts); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
