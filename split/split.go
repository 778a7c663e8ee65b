// Package split builds patient-aware train, validation and test partitions of
// labeled Raman spectra and exposes a batch Loader over each of them.
//
// A Splitter does all of its work in New: it reads every configured array
// file, builds the label vocabulary, partitions the samples and constructs
// the loaders. Nothing is mutated afterwards.
//
// Randomness comes from a single generator seeded once from Config.Seed and
// drawn from in a fixed order (patient permutations source by source and
// label by label, or stratified draws group by group, then the train loader
// seed), so equal seeds and inputs give equal partitions.
package split

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/Noofbiz/samraman/arrays"
	"github.com/Noofbiz/samraman/datasets"
	"github.com/Noofbiz/samraman/labels"
)

// Partition names.
const (
	Train      = "train"
	Validation = "validation"
	Test       = "test"
)

// Partition is one named subset of the samples, with Data and Labels
// aligned by index.
type Partition struct {
	Name   string
	Data   [][]float64
	Labels []int64
}

// Len returns the number of samples in the partition.
func (p *Partition) Len() int {
	return len(p.Labels)
}

func (p *Partition) appendSamples(rows [][]float64, code int64) {
	p.Data = append(p.Data, rows...)
	for range rows {
		p.Labels = append(p.Labels, code)
	}
}

// Splitter owns the label map, the three partitions and their loaders.
type Splitter struct {
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger

	labels *labels.Map

	train, val, test *Partition

	trainLoader, valLoader, testLoader *datasets.Loader
}

// New validates cfg and eagerly builds the label map, the partitions and the
// loaders. Any failure aborts construction.
func New(cfg Config) (*Splitter, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Splitter{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		logger: cfg.Logger,
		train:  &Partition{Name: Train},
		val:    &Partition{Name: Validation},
		test:   &Partition{Name: Test},
	}

	if err := s.buildLabelMap(); err != nil {
		return nil, err
	}

	var err error
	if cfg.UsePreSplit {
		err = s.splitPreSplit()
	} else {
		err = s.splitGenerate()
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("split built",
		"mode", s.mode(),
		"classes", s.labels.Len(),
		"train", s.train.Len(),
		"validation", s.val.Len(),
		"test", s.test.Len(),
	)

	if err := s.buildLoaders(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Splitter) mode() string {
	if s.cfg.UsePreSplit {
		return "pre-split"
	}
	return "generate"
}

// buildLabelMap gathers the raw labels of every configured label file of the
// selected mode.
func (s *Splitter) buildLabelMap() error {
	var paths []string
	if s.cfg.UsePreSplit {
		paths = append(paths, s.cfg.TrainLabelPaths...)
		paths = append(paths, s.cfg.TestLabelPaths...)
	} else {
		paths = s.cfg.LabelPaths
	}

	sources := make([][]labels.Label, 0, len(paths))
	for _, path := range paths {
		ls, err := arrays.LoadLabels(path)
		if err != nil {
			return err
		}
		sources = append(sources, ls)
	}
	s.labels = labels.NewMap(sources...)
	s.logger.Debug("label map built", "classes", s.labels.Len(), "files", len(paths))
	return nil
}

func (s *Splitter) buildLoaders() error {
	build := func(p *Partition, shuffle bool, seed int64) (*datasets.Loader, error) {
		ds, err := datasets.NewRamanDataset(p.Name, p.Data, p.Labels)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s dataset: %w", p.Name, err)
		}
		return datasets.NewLoader(ds, datasets.LoaderConfig{
			BatchSize: s.cfg.BatchSize,
			Shuffle:   shuffle,
			Seed:      seed,
			Workers:   s.cfg.Workers,
			Logger:    s.logger,
		})
	}

	var err error
	if s.trainLoader, err = build(s.train, true, s.rng.Int63()); err != nil {
		return err
	}
	if s.valLoader, err = build(s.val, false, 0); err != nil {
		return err
	}
	if s.testLoader, err = build(s.test, false, 0); err != nil {
		return err
	}
	return nil
}

// Train returns the shuffling loader over the train partition.
func (s *Splitter) Train() *datasets.Loader { return s.trainLoader }

// Validation returns the loader over the validation partition.
func (s *Splitter) Validation() *datasets.Loader { return s.valLoader }

// Test returns the loader over the test partition.
func (s *Splitter) Test() *datasets.Loader { return s.testLoader }

// Partition returns the partition with the given name, or nil.
func (s *Splitter) Partition(name string) *Partition {
	switch name {
	case Train:
		return s.train
	case Validation:
		return s.val
	case Test:
		return s.test
	}
	return nil
}

// Labels returns the label map shared by all partitions.
func (s *Splitter) Labels() *labels.Map { return s.labels }

// Decode maps a predicted label code back to its raw label.
func (s *Splitter) Decode(code int64) (labels.Label, error) {
	return s.labels.Decode(code)
}

// PartitionSummary reports the size and per-class counts of one partition.
type PartitionSummary struct {
	Name        string
	Size        int
	ClassCounts []int // indexed by label code
}

// Summary reports every partition, in train, validation, test order.
func (s *Splitter) Summary() []PartitionSummary {
	out := make([]PartitionSummary, 0, 3)
	for _, p := range []*Partition{s.train, s.val, s.test} {
		counts := make([]int, s.labels.Len())
		for _, code := range p.Labels {
			counts[code]++
		}
		out = append(out, PartitionSummary{Name: p.Name, Size: p.Len(), ClassCounts: counts})
	}
	return out
}
