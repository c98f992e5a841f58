// Package npz reads and writes numpy .npz archives: a zip file with one .npy
// member per named array. Archives written here load with numpy.load.
package npz

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	da "github.com/Arturo-Amberg/TrabajoTesis/pkg/datastructure"
	"github.com/dsnet/compress/bzip2"
)

// zip method 12, supported by python's zipfile and therefore numpy.load.
const methodBzip2 uint16 = 12

const (
	CompressionDeflate = "deflate"
	CompressionBzip2   = "bzip2"
	CompressionStore   = "store"
)

type Writer struct {
	zw     *zip.Writer
	closer io.Closer
	method uint16
	names  map[string]bool
}

// NewWriter writes an archive to w. compression is one of deflate (what
// numpy.savez_compressed produces), bzip2 or store.
func NewWriter(w io.Writer, compression string) (*Writer, error) {
	zw := zip.NewWriter(w)

	var method uint16
	switch compression {
	case CompressionDeflate, "":
		method = zip.Deflate
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, flate.BestCompression)
		})
	case CompressionBzip2:
		method = methodBzip2
		zw.RegisterCompressor(methodBzip2, func(out io.Writer) (io.WriteCloser, error) {
			return bzip2.NewWriter(out, &bzip2.WriterConfig{Level: bzip2.BestCompression})
		})
	case CompressionStore:
		method = zip.Store
	default:
		return nil, fmt.Errorf("unknown compression %q", compression)
	}

	return &Writer{zw: zw, method: method, names: make(map[string]bool)}, nil
}

// Create truncates path and writes the archive to it. The file is closed by
// Writer.Close.
func Create(path, compression string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, compression)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// writeMember adds name.npy. No modification time is recorded so identical
// inputs give byte-identical archives.
func (w *Writer) writeMember(name string, npy []byte) error {
	if w.names[name] {
		return fmt.Errorf("array %q written twice", name)
	}
	w.names[name] = true

	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   name + ".npy",
		Method: w.method,
	})
	if err != nil {
		return err
	}
	_, err = fw.Write(npy)
	return err
}

func (w *Writer) WriteMatrix(name string, m *da.DurationMatrix) error {
	rows, cols := m.Shape()
	return WriteArray(w, name, []int{rows, cols}, m.Data())
}

func (w *Writer) WriteStrings(name string, ss []string) error {
	return w.writeMember(name, encodeStrings(ss))
}

// WriteArray stores data with the given shape in C order.
func WriteArray[T Numeric](w *Writer, name string, shape []int, data []T) error {
	npy, err := encodeNumeric(shape, data)
	if err != nil {
		return fmt.Errorf("array %s: %w", name, err)
	}
	return w.writeMember(name, npy)
}

func (w *Writer) Close() error {
	err := w.zw.Close()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type Array struct {
	Name  string
	Descr string
	Shape []int
	data  []byte
}

func (a *Array) Float32s() ([]float32, error) {
	return decodeNumeric[float32](a)
}

func (a *Array) Float64s() ([]float64, error) {
	return decodeNumeric[float64](a)
}

func (a *Array) Int64s() ([]int64, error) {
	return decodeNumeric[int64](a)
}

func (a *Array) Strings() ([]string, error) {
	return decodeStrings(a)
}

// Matrix decodes a 2-d float32 array.
func (a *Array) Matrix() (*da.DurationMatrix, error) {
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("array %s has shape %v, want 2 dimensions", a.Name, a.Shape)
	}
	vals, err := a.Float32s()
	if err != nil {
		return nil, err
	}
	return da.NewDurationMatrixFromData(a.Shape[0], a.Shape[1], vals)
}

type Archive struct {
	arrays map[string]*Array
}

func Open(path string) (*Archive, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(raw), int64(len(raw)))
}

func Read(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	zr.RegisterDecompressor(methodBzip2, func(in io.Reader) io.ReadCloser {
		br, err := bzip2.NewReader(in, nil)
		if err != nil {
			return io.NopCloser(errReader{err})
		}
		return br
	})

	ar := &Archive{arrays: make(map[string]*Array, len(zr.File))}
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".npy") {
			continue
		}
		a, err := readMember(f)
		if err != nil {
			return nil, err
		}
		ar.arrays[a.Name] = a
	}
	return ar, nil
}

func readMember(f *zip.File) (*Array, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	descr, shape, offset, err := decodeHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	return &Array{
		Name:  strings.TrimSuffix(f.Name, ".npy"),
		Descr: descr,
		Shape: shape,
		data:  raw[offset:],
	}, nil
}

// Names returns the array names in sorted order.
func (ar *Archive) Names() []string {
	names := make([]string, 0, len(ar.arrays))
	for n := range ar.arrays {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (ar *Archive) Get(name string) (*Array, bool) {
	a, ok := ar.arrays[name]
	return a, ok
}

type errReader struct {
	err error
}

func (r errReader) Read([]byte) (int, error) {
	return 0, r.err
}
