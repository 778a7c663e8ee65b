package datasets

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

var _ TensorDataset = (*RamanDataset)(nil)

// RamanDataset pairs spectra with integer-encoded labels. It is immutable
// after construction.
type RamanDataset struct {
	name   string
	data   [][]float64
	labels []int64
}

// NewRamanDataset wraps data and labels, which must be aligned by index.
// The slices are retained, not copied.
func NewRamanDataset(name string, data [][]float64, labels []int64) (*RamanDataset, error) {
	if len(data) != len(labels) {
		return nil, fmt.Errorf("data and labels lengths don't match: %d != %d", len(data), len(labels))
	}
	return &RamanDataset{name: name, data: data, labels: labels}, nil
}

// Name returns the name of the dataset
func (d *RamanDataset) Name() string {
	return d.name
}

// Len returns the number of labeled spectra.
func (d *RamanDataset) Len() int {
	return len(d.labels)
}

// Example returns spectrum i as a [1][L] float32 array along with its label
// code.
func (d *RamanDataset) Example(i int) (inputs [][]float32, label int64, err error) {
	if i < 0 || i >= len(d.labels) {
		return nil, 0, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(d.labels))
	}

	row := d.data[i]
	spectrum := make([]float32, len(row))
	for j, v := range row {
		spectrum[j] = float32(v)
	}
	return [][]float32{spectrum}, d.labels[i], nil
}

// ExampleTensors returns example i as a float32 tensor of shape [1, L] and an
// int64 scalar tensor.
func (d *RamanDataset) ExampleTensors(i int) (*tensors.Tensor, *tensors.Tensor, error) {
	inputs, label, err := d.Example(i)
	if err != nil {
		return nil, nil, err
	}
	return tensors.FromAnyValue(inputs), tensors.FromAnyValue(label), nil
}
