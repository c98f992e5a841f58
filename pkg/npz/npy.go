package npz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/constraints"
)

var npyMagic = []byte("\x93NUMPY")

// header layout of format version 1.0: magic, major, minor, uint16 header
// length, then the python dict literal padded so the data starts on a 64 byte
// boundary.
const (
	npyPreambleLen = 10
	npyAlign       = 64
)

type Numeric interface {
	constraints.Integer | constraints.Float
}

func descrOf[T Numeric]() (string, error) {
	var zero T
	switch any(zero).(type) {
	case float32:
		return "<f4", nil
	case float64:
		return "<f8", nil
	case int64:
		return "<i8", nil
	case int32:
		return "<i4", nil
	case uint8:
		return "|u1", nil
	default:
		return "", fmt.Errorf("unsupported element type %T", zero)
	}
}

func formatShape(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	}
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(dims, ", ") + ")"
}

func encodeHeader(descr string, shape []int) []byte {
	dict := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, formatShape(shape))
	total := npyPreambleLen + len(dict) + 1
	if rem := total % npyAlign; rem != 0 {
		dict += strings.Repeat(" ", npyAlign-rem)
	}
	dict += "\n"

	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(dict)))
	buf.WriteString(dict)
	return buf.Bytes()
}

func encodeNumeric[T Numeric](shape []int, data []T) ([]byte, error) {
	descr, err := descrOf[T]()
	if err != nil {
		return nil, err
	}
	if n := shapeSize(shape); n != len(data) {
		return nil, fmt.Errorf("shape %v holds %d values, got %d", shape, n, len(data))
	}

	var buf bytes.Buffer
	buf.Write(encodeHeader(descr, shape))
	if err := binary.Write(&buf, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeStrings stores ss as a fixed width '<U' array, the dtype numpy gives
// an array of python str.
func encodeStrings(ss []string) []byte {
	width := 1
	for _, s := range ss {
		width = max(width, utf8.RuneCountInString(s))
	}

	var buf bytes.Buffer
	buf.Write(encodeHeader(fmt.Sprintf("<U%d", width), []int{len(ss)}))
	cell := make([]uint32, width)
	for _, s := range ss {
		clear(cell)
		i := 0
		for _, r := range s {
			cell[i] = uint32(r)
			i++
		}
		binary.Write(&buf, binary.LittleEndian, cell)
	}
	return buf.Bytes()
}

func shapeSize(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

var (
	descrRe   = regexp.MustCompile(`'descr':\s*'([^']+)'`)
	fortranRe = regexp.MustCompile(`'fortran_order':\s*(True|False)`)
	shapeRe   = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)
)

// decodeHeader returns descr, shape and the offset of the data.
func decodeHeader(raw []byte) (string, []int, int, error) {
	if len(raw) < npyPreambleLen || !bytes.Equal(raw[:len(npyMagic)], npyMagic) {
		return "", nil, 0, fmt.Errorf("not a npy array")
	}

	major := raw[6]
	var headerLen, offset int
	switch major {
	case 1:
		headerLen = int(binary.LittleEndian.Uint16(raw[8:10]))
		offset = 10
	case 2, 3:
		if len(raw) < 12 {
			return "", nil, 0, fmt.Errorf("truncated npy header")
		}
		headerLen = int(binary.LittleEndian.Uint32(raw[8:12]))
		offset = 12
	default:
		return "", nil, 0, fmt.Errorf("unsupported npy version %d", major)
	}
	if offset+headerLen > len(raw) {
		return "", nil, 0, fmt.Errorf("truncated npy header")
	}
	header := string(raw[offset : offset+headerLen])

	dm := descrRe.FindStringSubmatch(header)
	sm := shapeRe.FindStringSubmatch(header)
	if dm == nil || sm == nil {
		return "", nil, 0, fmt.Errorf("invalid npy header %q", header)
	}
	if fm := fortranRe.FindStringSubmatch(header); fm != nil && fm[1] == "True" {
		return "", nil, 0, fmt.Errorf("fortran ordered arrays are not supported")
	}

	var shape []int
	for _, f := range strings.Split(sm[1], ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		d, err := strconv.Atoi(strings.TrimSuffix(f, "L"))
		if err != nil || d < 0 {
			return "", nil, 0, fmt.Errorf("invalid npy shape %q", sm[1])
		}
		shape = append(shape, d)
	}
	return dm[1], shape, offset + headerLen, nil
}

func decodeNumeric[T Numeric](a *Array) ([]T, error) {
	descr, err := descrOf[T]()
	if err != nil {
		return nil, err
	}
	if a.Descr != descr {
		return nil, fmt.Errorf("array %s has dtype %s, want %s", a.Name, a.Descr, descr)
	}

	out := make([]T, shapeSize(a.Shape))
	if err := binary.Read(bytes.NewReader(a.data), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("array %s: %w", a.Name, err)
	}
	return out, nil
}

func decodeStrings(a *Array) ([]string, error) {
	if !strings.HasPrefix(a.Descr, "<U") {
		return nil, fmt.Errorf("array %s has dtype %s, want a unicode string array", a.Name, a.Descr)
	}
	width, err := strconv.Atoi(a.Descr[2:])
	if err != nil {
		return nil, fmt.Errorf("array %s: invalid dtype %s", a.Name, a.Descr)
	}

	n := shapeSize(a.Shape)
	cells := make([]uint32, n*width)
	if err := binary.Read(bytes.NewReader(a.data), binary.LittleEndian, cells); err != nil {
		return nil, fmt.Errorf("array %s: %w", a.Name, err)
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		var sb strings.Builder
		for _, r := range cells[i*width : (i+1)*width] {
			if r == 0 {
				break
			}
			sb.WriteRune(rune(r))
		}
		out[i] = sb.String()
	}
	return out, nil
}
