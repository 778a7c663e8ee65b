// Package arrays reads the flat numeric array files that hold spectra and
// labels.
//
// Two on-disk formats are understood, selected by file extension:
//
//   - .npy: NumPy array files. Spectra must be 2-D (num_samples,
//     spectrum_length) in either C or Fortran order; labels must be 1-D (a
//     trailing singleton dimension is tolerated). Float, signed, unsigned and
//     bool dtypes are accepted.
//   - .csv: one spectrum per row, or one label per row. A label column that
//     parses entirely as integers yields integer labels, one that parses as
//     numbers yields float labels, anything else yields string labels.
//
// Spectra are returned as gonum matrices; rows are samples.
package arrays

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/Noofbiz/samraman/labels"
)

// ErrFormat is returned when a file cannot be decoded as the expected array
// shape or dtype.
var ErrFormat = errors.New("invalid array file")

// LoadSpectra reads a 2-D spectra array from path.
func LoadSpectra(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spectra %s: %w", path, err)
	}
	defer f.Close()

	var m *mat.Dense
	switch ext(path) {
	case ".npy":
		m, err = readSpectraNpy(f)
	case ".csv":
		m, err = readSpectraCSV(f)
	default:
		err = fmt.Errorf("%w: unsupported extension %q", ErrFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load spectra %s: %w", path, err)
	}
	return m, nil
}

// LoadLabels reads a 1-D label array from path.
func LoadLabels(path string) ([]labels.Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels %s: %w", path, err)
	}
	defer f.Close()

	var ls []labels.Label
	switch ext(path) {
	case ".npy":
		ls, err = readLabelsNpy(f)
	case ".csv":
		ls, err = readLabelsCSV(f)
	default:
		err = fmt.Errorf("%w: unsupported extension %q", ErrFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load labels %s: %w", path, err)
	}
	return ls, nil
}

// LoadPair reads a spectra file and its label file and checks that they
// describe the same number of samples.
func LoadPair(spectraPath, labelsPath string) (*mat.Dense, []labels.Label, error) {
	spectra, err := LoadSpectra(spectraPath)
	if err != nil {
		return nil, nil, err
	}
	ls, err := LoadLabels(labelsPath)
	if err != nil {
		return nil, nil, err
	}
	if rows, _ := spectra.Dims(); rows != len(ls) {
		return nil, nil, fmt.Errorf("%w: %s has %d spectra but %s has %d labels",
			ErrFormat, spectraPath, rows, labelsPath, len(ls))
	}
	return spectra, ls, nil
}

// Rows returns views of every row of m.
func Rows(m *mat.Dense) [][]float64 {
	rows, _ := m.Dims()
	out := make([][]float64, rows)
	for i := range rows {
		out[i] = m.RawRowView(i)
	}
	return out
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
