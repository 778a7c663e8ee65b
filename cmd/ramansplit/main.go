// Command ramansplit builds the train/validation/test split described by a
// YAML config (and RAMAN_* environment overrides), reports the partition
// sizes and per-class counts, and walks one pass of every loader to check
// that the batches materialize.
//
// Usage:
//
//	ramansplit -c split.yaml [--plot-dir plots] [--log-level debug]
package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Noofbiz/samraman/config"
	"github.com/Noofbiz/samraman/datasets"
	"github.com/Noofbiz/samraman/split"
)

type args struct {
	Config   string `arg:"-c,--config" help:"path to the YAML split config; RAMAN_* environment variables override it"`
	PlotDir  string `arg:"--plot-dir" help:"if set, write a per-class distribution chart to this directory"`
	LogLevel string `arg:"--log-level" default:"info" help:"debug, info, warn or error"`
	LogJSON  bool   `arg:"--log-json" help:"log as JSON instead of text"`
	SkipWalk bool   `arg:"--skip-walk" help:"do not iterate the loaders after building the split"`
}

func (args) Description() string {
	return "Build a patient-aware train/validation/test split of Raman spectra."
}

func main() {
	var a args
	arg.MustParse(&a)

	logger := newLogger(a.LogLevel, a.LogJSON)
	slog.SetDefault(logger)

	if err := run(a, logger); err != nil {
		logger.Error("ramansplit failed", "error", err)
		os.Exit(1)
	}
}

func run(a args, logger *slog.Logger) error {
	cfg, err := config.Load(a.Config)
	if err != nil {
		return err
	}
	cfg.Logger = logger

	s, err := split.New(cfg)
	if err != nil {
		return err
	}

	classNames := make([]string, 0, s.Labels().Len())
	for _, l := range s.Labels().Labels() {
		classNames = append(classNames, l.String())
	}

	summary := s.Summary()
	for _, ps := range summary {
		counts := make([]string, len(ps.ClassCounts))
		for code, n := range ps.ClassCounts {
			counts[code] = fmt.Sprintf("%s=%s", classNames[code], humanize.Comma(int64(n)))
		}
		logger.Info("partition",
			"name", ps.Name,
			"examples", humanize.Comma(int64(ps.Size)),
			"classes", strings.Join(counts, " "),
		)
	}

	if !a.SkipWalk {
		for _, l := range []*datasets.Loader{s.Train(), s.Validation(), s.Test()} {
			if err := walk(l, logger); err != nil {
				return err
			}
		}
	}

	if a.PlotDir != "" {
		if err := plotDistribution(a.PlotDir, classNames, summary); err != nil {
			return fmt.Errorf("failed to generate plot: %w", err)
		}
		logger.Info("distribution plot written", "dir", a.PlotDir)
	}
	return nil
}

// walk iterates one full pass of l.
func walk(l *datasets.Loader, logger *slog.Logger) error {
	batches, examples := 0, 0
	for b, err := range l.Epoch() {
		if err != nil {
			return fmt.Errorf("failed to iterate %s: %w", l.Name(), err)
		}
		batches++
		examples += b.Size
	}
	logger.Info("loader pass",
		"name", l.Name(),
		"batches", batches,
		"examples", humanize.Comma(int64(examples)),
		"batch_size", l.BatchSize(),
	)
	return nil
}

func newLogger(level string, json bool) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

var partitionColors = []color.Color{
	color.RGBA{R: 20, G: 80, B: 200, A: 255},
	color.RGBA{R: 40, G: 160, B: 40, A: 255},
	color.RGBA{R: 200, G: 30, B: 30, A: 255},
}

// plotDistribution writes a grouped bar chart of per-class counts, one bar
// per partition.
func plotDistribution(outDir string, classNames []string, summary []split.PartitionSummary) error {
	p := plot.New()
	p.Title.Text = "Examples per class and partition"
	p.Y.Label.Text = "examples"

	w := vg.Points(14)
	for i, ps := range summary {
		values := make(plotter.Values, len(ps.ClassCounts))
		for code, n := range ps.ClassCounts {
			values[code] = float64(n)
		}
		bars, err := plotter.NewBarChart(values, w)
		if err != nil {
			return err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = partitionColors[i%len(partitionColors)]
		bars.Offset = w * vg.Length(i-len(summary)/2)
		p.Add(bars)
		p.Legend.Add(ps.Name, bars)
	}
	p.Legend.Top = true
	p.NominalX(classNames...)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, filepath.Join(outDir, "class_distribution.png"))
}
