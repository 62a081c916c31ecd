package matrix

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sbinet/npyio"
)

// zipMagic is the local-file-header signature every .npz archive starts with.
var zipMagic = []byte("PK\x03\x04")

// Decode parses an uploaded payload into a Matrix. Both bare .npy files and
// .npz archives are accepted; an archive must contain exactly one array.
// field names the multipart field the bytes came from and is carried into
// the returned *DecodeError on failure.
func Decode(data []byte, field string) (*Matrix, error) {
	var (
		m   *Matrix
		err error
	)
	switch {
	case len(data) >= len(zipMagic) && bytes.Equal(data[:len(zipMagic)], zipMagic):
		m, err = decodeNPZ(data)
	case len(data) >= len(npyio.Magic) && bytes.Equal(data[:len(npyio.Magic)], npyio.Magic[:]):
		m, err = decodeNPY(bytes.NewReader(data), field)
	default:
		err = errors.New("payload is neither a .npy file nor a .npz archive")
	}
	if err != nil {
		return nil, &DecodeError{Field: field, Err: err}
	}
	return m, nil
}

// decodeNPY reads a single 2-D float array from a .npy stream.
func decodeNPY(r io.Reader, name string) (*Matrix, error) {
	rd, err := npyio.NewReader(r)
	if err != nil {
		return nil, err
	}

	shape := rd.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, fmt.Errorf("expected a 2-D array, got %d dimension(s)", len(shape))
	}
	rows, cols := shape[0], shape[1]
	n := rows * cols

	dtype, err := dtypeFromDescr(rd.Header.Descr.Type)
	if err != nil {
		return nil, err
	}

	data := make([]float64, n)
	switch dtype {
	case Float32:
		raw := make([]float32, n)
		if err := rd.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			data[i] = float64(v)
		}
	case Float64:
		if err := rd.Read(&data); err != nil {
			return nil, err
		}
	}

	if rd.Header.Descr.Fortran {
		data = colMajorToRowMajor(data, rows, cols)
	}

	return &Matrix{
		Name:  name,
		Rows:  rows,
		Cols:  cols,
		DType: dtype,
		Data:  data,
	}, nil
}

// decodeNPZ opens a .npz archive and decodes its single array entry.
func decodeNPZ(data []byte) (*Matrix, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var entries []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, f)
	}

	switch len(entries) {
	case 0:
		return nil, errors.New("archive contains no arrays, want exactly one")
	case 1:
	default:
		names := make([]string, len(entries))
		for i, f := range entries {
			names[i] = f.Name
		}
		return nil, fmt.Errorf("archive contains %d arrays (%s), want exactly one",
			len(entries), strings.Join(names, ", "))
	}

	entry := entries[0]
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return decodeNPY(rc, strings.TrimSuffix(entry.Name, ".npy"))
}

// colMajorToRowMajor rewrites a fortran-ordered buffer into row-major order.
func colMajorToRowMajor(in []float64, rows, cols int) []float64 {
	out := make([]float64, len(in))
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			out[r*cols+c] = in[c*rows+r]
		}
	}
	return out
}
