package split

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/Noofbiz/samraman/arrays"
	"github.com/Noofbiz/samraman/labels"
)

// ErrStratify is returned when a train array cannot be stratified, because a
// class has too few members to appear in both subsets.
var ErrStratify = errors.New("cannot stratify")

// splitPreSplit takes externally supplied train and test arrays. Test arrays
// become the test partition as-is; each train array is stratified into the
// train and validation partitions.
func (s *Splitter) splitPreSplit() error {
	for i, trainDataPath := range s.cfg.TrainDataPaths {
		testX, testY, err := arrays.LoadPair(s.cfg.TestDataPaths[i], s.cfg.TestLabelPaths[i])
		if err != nil {
			return err
		}
		trainX, trainY, err := arrays.LoadPair(trainDataPath, s.cfg.TrainLabelPaths[i])
		if err != nil {
			return err
		}

		trainIdx, valIdx, err := stratifiedSplit(trainY, s.cfg.ValidationSize, s.rng)
		if err != nil {
			return fmt.Errorf("failed to split %s: %w", trainDataPath, err)
		}

		testRows := arrays.Rows(testX)
		for j, l := range testY {
			if err := s.appendLabeled(s.test, testRows[j], l); err != nil {
				return err
			}
		}

		trainRows := arrays.Rows(trainX)
		for _, j := range trainIdx {
			if err := s.appendLabeled(s.train, trainRows[j], trainY[j]); err != nil {
				return err
			}
		}
		for _, j := range valIdx {
			if err := s.appendLabeled(s.val, trainRows[j], trainY[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Splitter) appendLabeled(p *Partition, row []float64, l labels.Label) error {
	code, err := s.labels.Encode(l)
	if err != nil {
		return err
	}
	p.Data = append(p.Data, row)
	p.Labels = append(p.Labels, code)
	return nil
}

// stratifiedSplit splits the indices of ls into a train and a validation
// subset, the latter holding ceil(valSize*len(ls)) indices. Each class is
// allocated to the validation subset in proportion to its frequency, by
// largest remainder, and every class keeps at least one member on each side.
// Both subsets are returned in random order.
func stratifiedSplit(ls []labels.Label, valSize float64, rng *rand.Rand) (train, val []int, err error) {
	n := len(ls)
	if n == 0 {
		return nil, nil, nil
	}

	members := make(map[labels.Label][]int)
	for i, l := range ls {
		members[l] = append(members[l], i)
	}
	classes := make([]labels.Label, 0, len(members))
	for l := range members {
		classes = append(classes, l)
	}
	slices.SortFunc(classes, labels.Compare)

	for _, c := range classes {
		if len(members[c]) < 2 {
			return nil, nil, fmt.Errorf("%w: class %v has %d member(s), need at least 2", ErrStratify, c, len(members[c]))
		}
	}

	nVal := int(math.Ceil(valSize * float64(n)))
	alloc := allocate(classes, members, nVal, n)

	for k, c := range classes {
		idx := members[c]
		perm := rng.Perm(len(idx))
		for j, p := range perm {
			if j < alloc[k] {
				val = append(val, idx[p])
			} else {
				train = append(train, idx[p])
			}
		}
	}

	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(val), func(i, j int) { val[i], val[j] = val[j], val[i] })
	return train, val, nil
}

// allocate distributes nVal validation slots over classes in proportion to
// their sizes. Leftover slots after flooring go to the largest fractional
// parts, ties to the earlier class. Every class count is then clamped to
// [1, size-1].
func allocate(classes []labels.Label, members map[labels.Label][]int, nVal, n int) []int {
	alloc := make([]int, len(classes))
	frac := make([]float64, len(classes))
	assigned := 0
	for k, c := range classes {
		exact := float64(len(members[c])) * float64(nVal) / float64(n)
		alloc[k] = int(math.Floor(exact))
		frac[k] = exact - float64(alloc[k])
		assigned += alloc[k]
	}

	order := make([]int, len(classes))
	for k := range order {
		order[k] = k
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(frac[b], frac[a]) })
	for _, k := range order {
		if assigned >= nVal {
			break
		}
		if alloc[k] < len(members[classes[k]]) {
			alloc[k]++
			assigned++
		}
	}

	for k, c := range classes {
		alloc[k] = max(1, min(alloc[k], len(members[c])-1))
	}
	return alloc
}
