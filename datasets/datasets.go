package datasets

import (
	"errors"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// This file describes the dataset and loader types used to feed partitioned
// Raman spectra to a classifier.
//
// The data is held in memory as float64 rows (one row per spectrum), and is
// converted to float32 on every access rather than once up front:
//
// RamanDataset
//   - A fixed, indexable collection of (spectrum, label code) pairs.
//   - Example returns the spectrum with a leading singleton channel
//     dimension, shape [1, L], and the label code as an int64.
//
// Loader
//   - Pull-based batching over a Dataset, with optional per-pass shuffling.
//   - Batches are flat float32 buffers that convert to gomlx tensors of shape
//     [B, 1, L] (inputs) and [B] (labels).
//   - Implements gomlx's train.Dataset so it can be handed to a gomlx
//     training loop directly.

// ErrIndexOutOfRange is returned when an example index is outside [0, Len()).
var ErrIndexOutOfRange = errors.New("index out of range")

// Dataset is the indexable source a Loader batches over.
type Dataset interface {
	Name() string
	Len() int
	Example(i int) (inputs [][]float32, label int64, err error)
}

// TensorDataset is a Dataset that can also hand out single examples as gomlx
// tensors.
type TensorDataset interface {
	Dataset
	ExampleTensors(i int) (inputs *tensors.Tensor, label *tensors.Tensor, err error)
}
