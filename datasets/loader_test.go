package datasets

import (
	"errors"
	"io"
	"slices"
	"testing"
)

// collect drains one pass of l and returns the batch sizes and the labels in
// yielded order.
func collect(t *testing.T, l *Loader) (sizes []int, firsts []float32) {
	t.Helper()
	for b, err := range l.Epoch() {
		if err != nil {
			t.Fatalf("Epoch error: %v", err)
		}
		sizes = append(sizes, b.Size)
		for i := range b.Size {
			firsts = append(firsts, b.Example(i)[0][0])
		}
	}
	return sizes, firsts
}

func TestLoader_BatchCount(t *testing.T) {
	cases := []struct {
		n, batch int
		want     []int
	}{
		{10, 4, []int{4, 4, 2}},
		{8, 4, []int{4, 4}},
		{3, 16, []int{3}},
		{0, 4, nil},
	}
	for _, tc := range cases {
		l, err := NewLoader(makeDataset(t, "train", tc.n), LoaderConfig{BatchSize: tc.batch})
		if err != nil {
			t.Fatalf("NewLoader error: %v", err)
		}
		if got, want := l.NumBatches(), len(tc.want); got != want {
			t.Fatalf("n=%d batch=%d: NumBatches=%d want %d", tc.n, tc.batch, got, want)
		}
		sizes, firsts := collect(t, l)
		if !slices.Equal(sizes, tc.want) {
			t.Fatalf("n=%d batch=%d: sizes=%v want %v", tc.n, tc.batch, sizes, tc.want)
		}
		if len(firsts) != tc.n {
			t.Fatalf("n=%d: pass yielded %d examples", tc.n, len(firsts))
		}
	}
}

func TestLoader_OrderPreservedWithoutShuffle(t *testing.T) {
	l, err := NewLoader(makeDataset(t, "val", 7), LoaderConfig{BatchSize: 3})
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}
	want := []float32{0, 1, 2, 3, 4, 5, 6}
	for pass := range 2 {
		_, got := collect(t, l)
		if !slices.Equal(got, want) {
			t.Fatalf("pass %d: order %v want %v", pass, got, want)
		}
	}
}

func TestLoader_ShuffleEveryPass(t *testing.T) {
	l, err := NewLoader(makeDataset(t, "train", 64), LoaderConfig{BatchSize: 10, Shuffle: true, Seed: 7})
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}

	_, first := collect(t, l)
	_, second := collect(t, l)
	if slices.Equal(first, second) {
		t.Fatalf("expected a different order on each pass")
	}

	sorted := slices.Clone(first)
	slices.Sort(sorted)
	for i, v := range sorted {
		if v != float32(i) {
			t.Fatalf("shuffled pass is not a permutation: %v", sorted)
		}
	}

	// same seed, same sequence of passes
	l2, _ := NewLoader(makeDataset(t, "train", 64), LoaderConfig{BatchSize: 10, Shuffle: true, Seed: 7})
	_, again := collect(t, l2)
	if !slices.Equal(first, again) {
		t.Fatalf("same seed produced different orders")
	}
}

func TestLoader_NextEOFAndReset(t *testing.T) {
	l, err := NewLoader(makeDataset(t, "test", 3), LoaderConfig{BatchSize: 2})
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}
	for range 2 {
		if _, err := l.Next(); err != nil {
			t.Fatalf("Next error: %v", err)
		}
	}
	if _, err := l.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if _, err := l.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF to persist until Reset, got %v", err)
	}
	l.Reset()
	b, err := l.Next()
	if err != nil || b.Size != 2 {
		t.Fatalf("expected a full batch after Reset, got %v, %v", b, err)
	}
}

func TestLoader_Workers(t *testing.T) {
	seq, _ := NewLoader(makeDataset(t, "train", 50), LoaderConfig{BatchSize: 8})
	par, _ := NewLoader(makeDataset(t, "train", 50), LoaderConfig{BatchSize: 8, Workers: 4})

	_, a := collect(t, seq)
	_, b := collect(t, par)
	if !slices.Equal(a, b) {
		t.Fatalf("worker pool changed batch contents: %v vs %v", a, b)
	}
}

func TestLoader_Yield(t *testing.T) {
	l, err := NewLoader(makeDataset(t, "train", 5), LoaderConfig{BatchSize: 4})
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}

	_, inputs, labels, err := l.Yield()
	if err != nil {
		t.Fatalf("Yield error: %v", err)
	}
	if len(inputs) != 1 || len(labels) != 1 {
		t.Fatalf("expected one input and one label tensor")
	}
	dims := inputs[0].Shape().Dimensions
	if len(dims) != 3 || dims[0] != 4 || dims[1] != 1 || dims[2] != 3 {
		t.Fatalf("unexpected input shape %v", inputs[0].Shape())
	}
	if ld := labels[0].Shape().Dimensions; len(ld) != 1 || ld[0] != 4 {
		t.Fatalf("unexpected label shape %v", labels[0].Shape())
	}

	if _, _, _, err := l.Yield(); err != nil {
		t.Fatalf("second Yield error: %v", err)
	}
	if _, _, _, err := l.Yield(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after the pass, got %v", err)
	}
}

func TestMakeBatch_InconsistentLength(t *testing.T) {
	_, err := MakeBatch([][][]float32{{{1, 2}}, {{1, 2, 3}}}, []int64{0, 1})
	if err == nil {
		t.Fatalf("expected error for inconsistent spectrum lengths")
	}
	_, err = MakeBatch([][][]float32{{{1}}}, []int64{0, 1})
	if err == nil {
		t.Fatalf("expected error for mismatched inputs and labels")
	}
}
