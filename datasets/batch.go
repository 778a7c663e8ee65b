package datasets

import (
	"fmt"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Batch stores a batch of examples in flat contiguous buffers.
// Inputs is laid out as [Size][Channels][Length].
type Batch struct {
	Inputs   []float32
	Labels   []int64
	Size     int
	Channels int
	Length   int
}

// MakeBatch flattens per-example inputs (each [Channels][Length]) and their
// labels into a Batch.
func MakeBatch(inputs [][][]float32, labels []int64) (*Batch, error) {
	if len(inputs) != len(labels) {
		return nil, fmt.Errorf("inputs and labels batch sizes don't match: %d != %d", len(inputs), len(labels))
	}
	if len(inputs) == 0 {
		return &Batch{}, nil
	}

	size := len(inputs)
	channels := len(inputs[0])
	length := 0
	if channels > 0 {
		length = len(inputs[0][0])
	}

	flat := make([]float32, 0, size*channels*length)
	for i, ex := range inputs {
		if len(ex) != channels {
			return nil, fmt.Errorf("inconsistent channel count at example %d: expected %d, got %d",
				i, channels, len(ex))
		}
		for _, ch := range ex {
			if len(ch) != length {
				return nil, fmt.Errorf("inconsistent spectrum length at example %d: expected %d, got %d",
					i, length, len(ch))
			}
			flat = append(flat, ch...)
		}
	}

	return &Batch{
		Inputs:   flat,
		Labels:   append([]int64(nil), labels...),
		Size:     size,
		Channels: channels,
		Length:   length,
	}, nil
}

// Example returns the inputs of example i of the batch, shaped [Channels][Length].
func (b *Batch) Example(i int) [][]float32 {
	out := make([][]float32, b.Channels)
	stride := b.Channels * b.Length
	for c := range b.Channels {
		start := i*stride + c*b.Length
		out[c] = b.Inputs[start : start+b.Length]
	}
	return out
}

// ToGomlxTensors converts the batch to gomlx tensors: inputs of shape
// [Size, Channels, Length] and labels of shape [Size].
func (b *Batch) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, error) {
	// handle empty batch gracefully
	if b.Size == 0 {
		return tensors.FromAnyValue(make([][][]float32, 0)), tensors.FromAnyValue(make([]int64, 0)), nil
	}
	inputs := make([][][]float32, b.Size)
	for i := range b.Size {
		inputs[i] = b.Example(i)
	}
	return tensors.FromAnyValue(inputs), tensors.FromAnyValue(b.Labels), nil
}
