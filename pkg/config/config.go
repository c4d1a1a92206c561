// Package config handles loading and saving tempmap configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/tempmap/config.yaml
//
// Environment variables override the file: TEMPMAP_SOURCE, TEMPMAP_PALETTE.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/tempmap/pkg/chart"
	"github.com/vanderheijden86/tempmap/pkg/export"
	"github.com/vanderheijden86/tempmap/pkg/loader"
	"github.com/vanderheijden86/tempmap/pkg/scale"
)

// MaxYearTicks bounds chart.year_ticks.
const MaxYearTicks = 1000

// ChartConfig holds plot and legend geometry, in pixels.
type ChartConfig struct {
	PlotWidth    float64      `yaml:"plot_width,omitempty"`
	PlotHeight   float64      `yaml:"plot_height,omitempty"`
	LegendWidth  float64      `yaml:"legend_width,omitempty"`
	LegendHeight float64      `yaml:"legend_height,omitempty"`
	YearTicks    int          `yaml:"year_ticks,omitempty"` // Approximate year-axis tick count
	Margin       MarginConfig `yaml:"margin,omitempty"`
}

// MarginConfig is the space around the plot.
type MarginConfig struct {
	Top    float64 `yaml:"top,omitempty"`
	Right  float64 `yaml:"right,omitempty"`
	Bottom float64 `yaml:"bottom,omitempty"`
	Left   float64 `yaml:"left,omitempty"`
}

// PaletteConfig selects the color interpolation.
type PaletteConfig struct {
	Mode string `yaml:"mode,omitempty"` // basis or hcl
}

// OutputConfig controls where rendered files go.
type OutputConfig struct {
	Dir     string   `yaml:"dir,omitempty"`
	Formats []string `yaml:"formats,omitempty"` // Written when no --out is given
	Title   string   `yaml:"title,omitempty"`
}

// Config is the top-level configuration for tempmap.
type Config struct {
	Source       string        `yaml:"source,omitempty"` // URL or local file
	FetchTimeout time.Duration `yaml:"fetch_timeout,omitempty"`
	Chart        ChartConfig   `yaml:"chart,omitempty"`
	Palette      PaletteConfig `yaml:"palette,omitempty"`
	Output       OutputConfig  `yaml:"output,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	dims := scale.DefaultDimensions()
	m := export.DefaultMargin()
	return Config{
		Source:       loader.DefaultURL,
		FetchTimeout: 30 * time.Second,
		Chart: ChartConfig{
			PlotWidth:    dims.PlotWidth,
			PlotHeight:   dims.PlotHeight,
			LegendWidth:  dims.LegendWidth,
			LegendHeight: dims.LegendHeight,
			YearTicks:    chart.DefaultYearTickCount,
			Margin:       MarginConfig{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left},
		},
		Palette: PaletteConfig{Mode: string(scale.ModeBasis)},
		Output: OutputConfig{
			Dir:     ".",
			Formats: []string{"svg"},
		},
	}
}

// ConfigDir returns the XDG config directory for tempmap.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tempmap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tempmap")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory and applies
// environment overrides. Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path, fills unset fields with
// defaults, and applies environment overrides.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnv()
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.ApplyEnv()
	if !loader.IsURL(cfg.Source) {
		cfg.Source = expandHome(cfg.Source)
	}
	cfg.Output.Dir = expandHome(cfg.Output.Dir)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TEMPMAP_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("TEMPMAP_SOURCE")); v != "" {
		c.Source = v
	}
	if v := strings.TrimSpace(os.Getenv("TEMPMAP_PALETTE")); v != "" {
		c.Palette.Mode = v
	}
}

// Validate checks the geometry, palette and timeout.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("source is empty")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %v", c.FetchTimeout)
	}
	if err := c.Dimensions().Validate(); err != nil {
		return err
	}
	if _, err := scale.ParseMode(c.Palette.Mode); err != nil {
		return err
	}
	if c.Chart.YearTicks < 0 || c.Chart.YearTicks > MaxYearTicks {
		return fmt.Errorf("year_ticks must be between 0 and %d, got %d", MaxYearTicks, c.Chart.YearTicks)
	}
	for _, f := range c.Output.Formats {
		if _, err := export.FormatFromPath("x." + f); err != nil {
			return fmt.Errorf("output format %q: %w", f, err)
		}
	}
	return nil
}

// Dimensions returns the chart geometry as scale dimensions.
func (c Config) Dimensions() scale.Dimensions {
	return scale.Dimensions{
		PlotWidth:    c.Chart.PlotWidth,
		PlotHeight:   c.Chart.PlotHeight,
		LegendWidth:  c.Chart.LegendWidth,
		LegendHeight: c.Chart.LegendHeight,
	}
}

// ChartOptions returns the layout options for chart.Build.
func (c Config) ChartOptions() (chart.Options, error) {
	mode, err := scale.ParseMode(c.Palette.Mode)
	if err != nil {
		return chart.Options{}, err
	}
	return chart.Options{
		Dimensions:    c.Dimensions(),
		Palette:       scale.RdBu(mode),
		YearTickCount: c.Chart.YearTicks,
	}, nil
}

// ExportOptions returns the export settings shared by every output file.
func (c Config) ExportOptions() export.Options {
	m := c.Chart.Margin
	return export.Options{
		Title:  c.Output.Title,
		Margin: export.Margin{Top: m.Top, Right: m.Right, Bottom: m.Bottom, Left: m.Left},
	}
}

// OutputPaths returns the default output files: one per configured format,
// named heatmap.<format> in the output directory.
func (c Config) OutputPaths() []string {
	paths := make([]string, 0, len(c.Output.Formats))
	for _, f := range c.Output.Formats {
		paths = append(paths, filepath.Join(c.Output.Dir, "heatmap."+strings.TrimPrefix(f, ".")))
	}
	return paths
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
