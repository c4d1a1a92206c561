package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/tempmap/pkg/chart"
	"github.com/vanderheijden86/tempmap/pkg/config"
	"github.com/vanderheijden86/tempmap/pkg/debug"
	"github.com/vanderheijden86/tempmap/pkg/export"
	"github.com/vanderheijden86/tempmap/pkg/loader"
	"github.com/vanderheijden86/tempmap/pkg/metrics"
	"github.com/vanderheijden86/tempmap/pkg/model"
	"github.com/vanderheijden86/tempmap/pkg/ui"
	"github.com/vanderheijden86/tempmap/pkg/version"
	"github.com/vanderheijden86/tempmap/pkg/watcher"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// isTerminal is swapped in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tempmap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	source := fs.String("source", "", "Dataset URL or local JSON file (default from config, else the freeCodeCamp dataset)")
	configPath := fs.String("config", "", "Config file (default $XDG_CONFIG_HOME/tempmap/config.yaml)")
	var outs stringList
	fs.Var(&outs, "out", "Output file, repeatable or comma-separated; format from extension (.svg .png .html .sqlite)")
	palette := fs.String("palette", "", "Palette interpolation: basis or hcl")
	title := fs.String("title", "", "Chart title")
	explore := fs.Bool("explore", false, "Open the interactive terminal explorer")
	watch := fs.Bool("watch", false, "Re-render when a local --source file changes")
	stats := fs.Bool("stats", false, "Print dataset and timing statistics as JSON")
	initConfig := fs.Bool("init-config", false, "Write the effective configuration to --config (or the default path) and exit")
	cpuProfile := fs.String("cpu-profile", "", "Write CPU profile to file")
	help := fs.Bool("help", false, "Show help")
	versionFlag := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *help {
		fmt.Fprintln(stdout, "Usage: tempmap [options]")
		fmt.Fprintln(stdout, "\nRenders a heat map of monthly global land-surface temperature variance.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}
	if *versionFlag {
		fmt.Fprintf(stdout, "tempmap %s\n", version.Version)
		return 0
	}
	debug.Section("tempmap " + version.Version)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := loadConfig(*configPath, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *source != "" {
		cfg.Source = *source
	}
	if *palette != "" {
		cfg.Palette.Mode = *palette
	}
	if *title != "" {
		cfg.Output.Title = *title
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if *initConfig {
		path, err := writeConfig(cfg, *configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Wrote config %s\n", path)
		return 0
	}
	if *watch && loader.IsURL(cfg.Source) {
		fmt.Fprintln(stderr, "Error: --watch needs a local --source file")
		return 2
	}
	if *explore && !isTerminal() {
		fmt.Fprintln(stderr, "Error: --explore needs an interactive terminal")
		return 2
	}

	ds, err := loadDataset(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading dataset: %v\n", err)
		return 1
	}
	c, err := buildChart(ds, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error building chart: %v\n", err)
		return 1
	}

	if *explore {
		if err := runExplorer(ctx, c, cfg, *watch, stderr); err != nil {
			fmt.Fprintf(stderr, "Error running explorer: %v\n", err)
			return 1
		}
		return 0
	}

	paths := []string(outs)
	if len(paths) == 0 {
		paths = cfg.OutputPaths()
	}
	paths = export.UniquePaths(paths)
	if err := writeOutputs(ctx, c, cfg, paths, stdout); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}

	if *stats {
		if err := printStats(stdout, cfg.Source, c, paths); err != nil {
			fmt.Fprintf(stderr, "Error writing stats: %v\n", err)
			return 1
		}
	}

	if *watch {
		if err := watchAndRender(ctx, cfg, paths, stdout, stderr); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

// loadConfig reads an explicit config file strictly. The default location is
// best-effort: a broken file there only produces a warning.
func loadConfig(path string, stderr io.Writer) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
		cfg.ApplyEnv()
	}
	return cfg, nil
}

// writeConfig saves cfg to path, or to the XDG location when path is empty.
// An existing file is never overwritten.
func writeConfig(cfg config.Config, path string) (string, error) {
	if path == "" {
		path = config.ConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config %s already exists", path)
	}
	if path == config.ConfigPath() {
		return path, config.Save(cfg)
	}
	return path, config.SaveTo(cfg, path)
}

func loadDataset(ctx context.Context, cfg config.Config) (*model.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()
	return loader.Load(ctx, cfg.Source)
}

func buildChart(ds *model.Dataset, cfg config.Config) (*chart.Chart, error) {
	opts, err := cfg.ChartOptions()
	if err != nil {
		return nil, err
	}
	return chart.Build(ds, opts)
}

func writeOutputs(ctx context.Context, c *chart.Chart, cfg config.Config, paths []string, stdout io.Writer) error {
	if err := export.SaveAll(ctx, c, cfg.ExportOptions(), paths); err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(stdout, "Wrote %s (%d cells)\n", p, len(c.Cells))
	}
	return nil
}

// statsReport is the --stats output.
type statsReport struct {
	Source          string                `json:"source"`
	Records         int                   `json:"records"`
	FirstYear       int                   `json:"first_year"`
	LastYear        int                   `json:"last_year"`
	BaseTemperature float64               `json:"base_temperature"`
	MinVariance     float64               `json:"min_variance"`
	MaxVariance     float64               `json:"max_variance"`
	LegendTicks     []float64             `json:"legend_ticks"`
	LegendKeys      []float64             `json:"legend_keys"`
	Outputs         []string              `json:"outputs,omitempty"`
	Timings         []metrics.TimingStats `json:"timings"`
	Version         string                `json:"version"`
}

func printStats(w io.Writer, source string, c *chart.Chart, outputs []string) error {
	lo, hi, err := c.Dataset.YearExtent()
	if err != nil {
		return err
	}
	set := c.Scales
	report := statsReport{
		Source:          source,
		Records:         len(c.Dataset.Records),
		FirstYear:       lo,
		LastYear:        hi,
		BaseTemperature: set.Base,
		MinVariance:     set.MinVariance,
		MaxVariance:     set.MaxVariance,
		LegendTicks:     set.Ticks,
		LegendKeys:      set.Keys,
		Outputs:         outputs,
		Timings:         metrics.AllTimingStats(),
		Version:         version.Version,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// watchAndRender re-renders paths after every change to the source file
// until ctx is cancelled. A bad rewrite keeps the previous outputs.
func watchAndRender(ctx context.Context, cfg config.Config, paths []string, stdout, stderr io.Writer) error {
	rerender := func(ds *model.Dataset, err error) {
		if err != nil {
			fmt.Fprintf(stderr, "Reload failed: %v\n", err)
			return
		}
		c, err := buildChart(ds, cfg)
		if err != nil {
			fmt.Fprintf(stderr, "Reload failed: %v\n", err)
			return
		}
		if err := writeOutputs(ctx, c, cfg, paths, stdout); err != nil {
			fmt.Fprintf(stderr, "Re-render failed: %v\n", err)
		}
	}

	w, err := watcher.WatchDataset(ctx, cfg.Source, rerender)
	if err != nil {
		return err
	}
	mode := "fsnotify"
	if w.IsPolling() {
		mode = "polling"
	}
	fmt.Fprintf(stdout, "Watching %s (%s); Ctrl+C to stop\n", w.Path(), mode)
	<-w.Done()
	return nil
}

func runExplorer(ctx context.Context, c *chart.Chart, cfg config.Config, watch bool, stderr io.Writer) error {
	title := cfg.Output.Title
	if title == "" {
		title = "Monthly Global Land-Surface Temperature"
	}
	lo, hi, _ := c.Dataset.YearExtent()
	desc := fmt.Sprintf("%d - %d: base temperature %.2f°C", lo, hi, c.Dataset.BaseTemperature)

	m := ui.NewModel(c, ui.WithTitle(title, desc))
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	if watch {
		_, err := watcher.WatchDataset(ctx, cfg.Source, func(ds *model.Dataset, err error) {
			if err != nil {
				p.Send(ui.ReloadMsg{Err: err})
				return
			}
			next, err := buildChart(ds, cfg)
			p.Send(ui.ReloadMsg{Chart: next, Err: err})
		})
		if err != nil {
			return err
		}
	}

	debug.Log("explorer: %d cells", len(c.Cells))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
