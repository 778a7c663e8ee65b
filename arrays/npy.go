package arrays

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/Noofbiz/samraman/labels"
)

// npyArray is a decoded .npy payload. Exactly one of ints, floats or strs is
// set, depending on the dtype family.
type npyArray struct {
	shape   []int
	fortran bool
	ints    []int64
	floats  []float64
	strs    []string
}

func (a *npyArray) len() int {
	switch {
	case a.floats != nil:
		return len(a.floats)
	case a.strs != nil:
		return len(a.strs)
	}
	return len(a.ints)
}

func (a *npyArray) float(i int) float64 {
	if a.floats != nil {
		return a.floats[i]
	}
	return float64(a.ints[i])
}

func readNpy(r io.Reader) (*npyArray, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	descr := nr.Header.Descr
	arr := &npyArray{shape: descr.Shape, fortran: descr.Fortran}

	dtype := descr.Type
	if len(dtype) > 0 && (dtype[0] == '<' || dtype[0] == '>' || dtype[0] == '|' || dtype[0] == '=') {
		dtype = dtype[1:]
	}

	switch dtype {
	case "f8":
		arr.floats, err = readFloats[float64](nr)
	case "f4":
		arr.floats, err = readFloats[float32](nr)
	case "i8":
		arr.ints, err = readInts[int64](nr)
	case "i4":
		arr.ints, err = readInts[int32](nr)
	case "i2":
		arr.ints, err = readInts[int16](nr)
	case "i1":
		arr.ints, err = readInts[int8](nr)
	case "u8":
		arr.ints, err = readInts[uint64](nr)
	case "u4":
		arr.ints, err = readInts[uint32](nr)
	case "u2":
		arr.ints, err = readInts[uint16](nr)
	case "u1":
		arr.ints, err = readInts[uint8](nr)
	case "b1":
		var raw []bool
		if err = nr.Read(&raw); err == nil {
			arr.ints = make([]int64, len(raw))
			for i, b := range raw {
				if b {
					arr.ints[i] = 1
				}
			}
		}
	default:
		if !strings.HasPrefix(dtype, "U") && !strings.HasPrefix(dtype, "S") {
			return nil, fmt.Errorf("%w: unsupported dtype %q", ErrFormat, descr.Type)
		}
		arr.strs, err = readStrings(r, descr.Type, numElems(descr.Shape))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return arr, nil
}

// readStrings decodes n fixed-width strings from the data that follows the
// header. U dtypes hold UTF-32 code points, S dtypes raw bytes; both are
// NUL padded.
func readStrings(r io.Reader, dtype string, n int) ([]string, error) {
	var order binary.ByteOrder = binary.LittleEndian
	if dtype[0] == '>' {
		order = binary.BigEndian
	}
	dtype = strings.TrimLeft(dtype, "<>|=")
	width, err := strconv.Atoi(dtype[1:])
	if err != nil || width < 0 {
		return nil, fmt.Errorf("bad string width in dtype %q", dtype)
	}

	size := width
	if dtype[0] == 'U' {
		size *= 4
	}
	buf := make([]byte, size)
	out := make([]string, n)
	for i := range out {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		if dtype[0] == 'S' {
			out[i] = strings.TrimRight(string(buf), "\x00")
			continue
		}
		runes := make([]rune, 0, width)
		for j := 0; j < size; j += 4 {
			c := order.Uint32(buf[j : j+4])
			if c == 0 {
				break
			}
			runes = append(runes, rune(c))
		}
		out[i] = string(runes)
	}
	return out, nil
}

func numElems(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func readFloats[T float32 | float64](nr *npyio.Reader) ([]float64, error) {
	var raw []T
	if err := nr.Read(&raw); err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out, nil
}

func readInts[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64](nr *npyio.Reader) ([]int64, error) {
	var raw []T
	if err := nr.Read(&raw); err != nil {
		return nil, err
	}
	out := make([]int64, len(raw))
	for i, v := range raw {
		out[i] = int64(v)
	}
	return out, nil
}

func readSpectraNpy(r io.Reader) (*mat.Dense, error) {
	arr, err := readNpy(r)
	if err != nil {
		return nil, err
	}
	if arr.strs != nil {
		return nil, fmt.Errorf("%w: spectra must be numeric, got a string dtype", ErrFormat)
	}
	if len(arr.shape) != 2 {
		return nil, fmt.Errorf("%w: spectra must be 2-D, got shape %v", ErrFormat, arr.shape)
	}
	rows, cols := arr.shape[0], arr.shape[1]
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: empty spectra array of shape %v", ErrFormat, arr.shape)
	}
	if arr.len() != rows*cols {
		return nil, fmt.Errorf("%w: shape %v does not match %d values", ErrFormat, arr.shape, arr.len())
	}

	data := make([]float64, rows*cols)
	for i := range rows {
		for j := range cols {
			src := i*cols + j
			if arr.fortran {
				src = j*rows + i
			}
			data[i*cols+j] = arr.float(src)
		}
	}
	return mat.NewDense(rows, cols, data), nil
}

func readLabelsNpy(r io.Reader) ([]labels.Label, error) {
	arr, err := readNpy(r)
	if err != nil {
		return nil, err
	}
	switch {
	case len(arr.shape) == 1:
	case len(arr.shape) == 2 && arr.shape[1] == 1:
	default:
		return nil, fmt.Errorf("%w: labels must be 1-D, got shape %v", ErrFormat, arr.shape)
	}

	out := make([]labels.Label, arr.len())
	for i := range out {
		switch {
		case arr.strs != nil:
			out[i] = labels.FromString(arr.strs[i])
		case arr.floats != nil:
			out[i] = labels.FromFloat(arr.floats[i])
		default:
			out[i] = labels.FromInt(arr.ints[i])
		}
	}
	return out, nil
}
