package arrays

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/Noofbiz/samraman/labels"
)

func parseFloat64(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	return strconv.ParseFloat(s, 64)
}

// readSpectraCSV reads one spectrum per record. The csv reader enforces a
// constant number of fields per record.
func readSpectraCSV(r io.Reader) (*mat.Dense, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var (
		data []float64
		rows int
		cols int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		if rows == 0 {
			cols = len(record)
		}
		for j, field := range record {
			v, err := parseFloat64(field)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %d: %v", ErrFormat, rows, j, err)
			}
			data = append(data, v)
		}
		rows++
	}

	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: no spectra found", ErrFormat)
	}
	return mat.NewDense(rows, cols, data), nil
}

// readLabelsCSV reads one label per record and infers a single label kind for
// the whole column.
func readLabelsCSV(r io.Reader) ([]labels.Label, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 1
	reader.TrimLeadingSpace = true

	var raw []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		raw = append(raw, strings.TrimSpace(record[0]))
	}

	kind := labels.Int
	for _, s := range raw {
		if kind == labels.Int {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			kind = labels.Float
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			kind = labels.String
			break
		}
	}

	out := make([]labels.Label, len(raw))
	for i, s := range raw {
		switch kind {
		case labels.Int:
			v, _ := strconv.ParseInt(s, 10, 64)
			out[i] = labels.FromInt(v)
		case labels.Float:
			v, _ := strconv.ParseFloat(s, 64)
			out[i] = labels.FromFloat(v)
		default:
			out[i] = labels.FromString(s)
		}
	}
	return out, nil
}
