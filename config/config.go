// Package config loads a split.Config from a YAML file and the environment.
//
// Values are read from the YAML file first (when a path is given), then any
// RAMAN_* environment variable overrides the matching field, e.g.
//
//	RAMAN_BATCH_SIZE=32
//	RAMAN_SPECTRAL_PATHS=a_spectra.npy,b_spectra.npy
//	RAMAN_PATIENT_INTERVALS=5,3
//
// Relative paths in the YAML file are resolved against the file's directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Noofbiz/samraman/split"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "RAMAN"

// Load reads the YAML file at path (skipped when path is empty), overlays the
// environment, fills in defaults and validates the result.
func Load(path string) (split.Config, error) {
	var cfg split.Config

	if path != "" {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return split.Config{}, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = fileCfg
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return split.Config{}, fmt.Errorf("failed to load config from env: %w", err)
	}
	if _, ok := os.LookupEnv(EnvPrefix + "_SEED"); ok {
		cfg.SeedSet = true
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return split.Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string) (split.Config, error) {
	var cfg split.Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return cfg, err
	}
	if _, ok := keys["seed"]; ok {
		cfg.SeedSet = true
	}

	dir := filepath.Dir(path)
	for _, paths := range [][]string{
		cfg.SpectralPaths, cfg.LabelPaths,
		cfg.TrainDataPaths, cfg.TrainLabelPaths,
		cfg.TestDataPaths, cfg.TestLabelPaths,
	} {
		resolve(dir, paths)
	}
	return cfg, nil
}

// resolve rewrites relative paths in place to be relative to dir.
func resolve(dir string, paths []string) {
	for i, p := range paths {
		if p != "" && !filepath.IsAbs(p) {
			paths[i] = filepath.Join(dir, p)
		}
	}
}
