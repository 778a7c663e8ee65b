package datasets

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math/rand"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"golang.org/x/sync/errgroup"
)

var _ train.Dataset = (*Loader)(nil)

// LoaderConfig controls how a Loader batches its dataset.
type LoaderConfig struct {
	// BatchSize is the number of examples per batch. The last batch of a pass
	// may be smaller. Default 16.
	BatchSize int

	// Shuffle draws a new example order at the start of every pass.
	Shuffle bool

	// Seed seeds the shuffling generator.
	Seed int64

	// Workers > 1 materializes the examples of a batch concurrently.
	Workers int

	Logger *slog.Logger
}

// Loader iterates a Dataset in batches. It is pull-based: each call to Next
// builds one batch, and io.EOF marks the end of a pass. Reset starts a new
// pass.
//
// A Loader is not safe for concurrent use.
type Loader struct {
	ds     Dataset
	cfg    LoaderConfig
	rng    *rand.Rand
	logger *slog.Logger

	order []int
	pos   int
	pass  int
}

// NewLoader creates a Loader over ds and positions it at the start of the
// first pass.
func NewLoader(ds Dataset, cfg LoaderConfig) (*Loader, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 16
	}
	if cfg.BatchSize < 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	l := &Loader{
		ds:     ds,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		logger: cfg.Logger.With("dataset", ds.Name()),
		order:  make([]int, ds.Len()),
	}
	for i := range l.order {
		l.order[i] = i
	}
	l.Reset()
	return l, nil
}

// Name implements train.Dataset.
func (l *Loader) Name() string {
	return l.ds.Name()
}

// Dataset returns the underlying dataset.
func (l *Loader) Dataset() Dataset {
	return l.ds
}

// BatchSize returns the configured batch size.
func (l *Loader) BatchSize() int {
	return l.cfg.BatchSize
}

// NumBatches returns the number of batches in one full pass.
func (l *Loader) NumBatches() int {
	return (l.ds.Len() + l.cfg.BatchSize - 1) / l.cfg.BatchSize
}

// Reset implements train.Dataset. It rewinds to the start of a new pass,
// reshuffling first if the loader shuffles.
func (l *Loader) Reset() {
	if l.cfg.Shuffle {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
	l.pos = 0
	l.pass++
	l.logger.Debug("loader pass started", "pass", l.pass, "examples", len(l.order), "shuffle", l.cfg.Shuffle)
}

// Next returns the next batch of the current pass, or io.EOF once the pass
// is exhausted.
func (l *Loader) Next() (*Batch, error) {
	if l.pos >= len(l.order) {
		return nil, io.EOF
	}
	end := min(l.pos+l.cfg.BatchSize, len(l.order))
	indices := l.order[l.pos:end]
	l.pos = end
	return l.batch(indices)
}

// Epoch resets the loader and yields every batch of one full pass.
func (l *Loader) Epoch() iter.Seq2[*Batch, error] {
	return func(yield func(*Batch, error) bool) {
		l.Reset()
		for {
			b, err := l.Next()
			if err == io.EOF {
				return
			}
			if !yield(b, err) || err != nil {
				return
			}
		}
	}
}

// Yield implements train.Dataset. It returns the next batch as a [B, 1, L]
// float32 input tensor and a [B] int64 label tensor.
func (l *Loader) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	b, err := l.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	in, la, err := b.ToGomlxTensors()
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, []*tensors.Tensor{in}, []*tensors.Tensor{la}, nil
}

// batch materializes the examples at indices, sequentially or with a
// bounded pool of workers.
func (l *Loader) batch(indices []int) (*Batch, error) {
	inputs := make([][][]float32, len(indices))
	labels := make([]int64, len(indices))

	if l.cfg.Workers <= 1 {
		for k, idx := range indices {
			in, la, err := l.ds.Example(idx)
			if err != nil {
				return nil, fmt.Errorf("failed to read example %d: %w", idx, err)
			}
			inputs[k], labels[k] = in, la
		}
		return MakeBatch(inputs, labels)
	}

	var g errgroup.Group
	g.SetLimit(l.cfg.Workers)
	for k, idx := range indices {
		g.Go(func() error {
			in, la, err := l.ds.Example(idx)
			if err != nil {
				return fmt.Errorf("failed to read example %d: %w", idx, err)
			}
			inputs[k], labels[k] = in, la
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return MakeBatch(inputs, labels)
}
