package main

import (
	"go/parser"
	"go/token"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_WritesPlot(t *testing.T) {
	dir := t.TempDir()

	var spectra, lbls []string
	for i := range 40 {
		spectra = append(spectra, "0.1,0.2,0.3")
		lbls = append(lbls, []string{"healthy", "tumor"}[i%2])
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "s.csv"), []byte(strings.Join(spectra, "\n")), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "l.csv"), []byte(strings.Join(lbls, "\n")), 0o644))

	cfgPath := filepath.Join(dir, "split.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
spectral_paths: [s.csv]
label_paths: [l.csv]
patient_intervals: [2]
batch_size: 4
workers: 2
`), 0o644))

	plotDir := filepath.Join(dir, "plots")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, run(args{Config: cfgPath, PlotDir: plotDir}, logger))

	_, err := os.Stat(filepath.Join(plotDir, "class_distribution.png"))
	require.NoError(t, err)
}

func TestRun_BadConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(args{Config: filepath.Join(t.TempDir(), "missing.yaml")}, logger)
	require.Error(t, err)
}

func TestMain_HasCommandDoc(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "main.go", nil, parser.ParseComments|parser.PackageClauseOnly)
	require.NoError(t, err)
	require.NotNil(t, f.Doc)
	require.True(t, strings.HasPrefix(f.Doc.Text(), "Command ramansplit "))
}
