package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Noofbiz/samraman/split"
)

func writeYAML(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "split.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FileResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `
spectral_paths: [a_spectra.npy, /abs/b_spectra.npy]
label_paths: [a_labels.npy, /abs/b_labels.npy]
patient_intervals: [5, 3]
batch_size: 32
seed: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, []string{filepath.Join(dir, "a_spectra.npy"), "/abs/b_spectra.npy"}, cfg.SpectralPaths)
	require.Equal(t, []string{filepath.Join(dir, "a_labels.npy"), "/abs/b_labels.npy"}, cfg.LabelPaths)
	require.Equal(t, []int{5, 3}, cfg.PatientIntervals)
	require.Equal(t, 32, cfg.BatchSize)
	require.Zero(t, cfg.Seed)
	require.True(t, cfg.SeedSet)
	require.False(t, cfg.UsePreSplit)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `
use_pre_split: true
train_data_paths: [train.npy]
train_label_paths: [train_labels.npy]
test_data_paths: [test.npy]
test_label_paths: [test_labels.npy]
batch_size: 8
`)
	t.Setenv("RAMAN_BATCH_SIZE", "64")
	t.Setenv("RAMAN_VALIDATION_SIZE", "0.2")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.UsePreSplit)
	require.Equal(t, 64, cfg.BatchSize)
	require.Equal(t, 0.2, cfg.ValidationSize)
	require.False(t, cfg.SeedSet)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("RAMAN_SPECTRAL_PATHS", "a.npy,b.npy")
	t.Setenv("RAMAN_LABEL_PATHS", "al.npy,bl.npy")
	t.Setenv("RAMAN_PATIENT_INTERVALS", "2,4")
	t.Setenv("RAMAN_SEED", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, []string{"a.npy", "b.npy"}, cfg.SpectralPaths)
	require.Equal(t, []int{2, 4}, cfg.PatientIntervals)
	require.Equal(t, int64(7), cfg.Seed)
	require.True(t, cfg.SeedSet)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `
spectral_paths: [a.npy, b.npy]
label_paths: [a_labels.npy]
patient_intervals: [1, 1]
`)
	_, err := Load(path)
	require.ErrorIs(t, err, split.ErrConfig)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_AppliesDefaultsBeforeValidating(t *testing.T) {
	dir := t.TempDir()

	// 0.9 plus the default validation fraction of 0.15 overflows
	path := writeYAML(t, dir, `
spectral_paths: [a.npy]
label_paths: [a_labels.npy]
patient_intervals: [1]
train_fraction: 0.9
`)
	_, err := Load(path)
	require.ErrorIs(t, err, split.ErrConfig)

	path = writeYAML(t, dir, `
spectral_paths: [a.npy]
label_paths: [a_labels.npy]
patient_intervals: [1]
train_fraction: 0.8
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.8, cfg.TrainFraction)
	require.Equal(t, 0.15, cfg.ValidationFraction)
	require.Equal(t, 0.25, cfg.ValidationSize)
	require.Equal(t, 16, cfg.BatchSize)
	require.Equal(t, int64(42), cfg.Seed)
}
