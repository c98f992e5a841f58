package datastructure

import (
	"fmt"
	"math"
)

// DurationMatrix holds travel times in minutes, one row per source and one
// column per destination, stored row-major as float32 to halve the memory of
// country-sized matrices.
type DurationMatrix struct {
	rows, cols int
	data       []float32
}

func NewDurationMatrix(rows, cols int) *DurationMatrix {
	return &DurationMatrix{
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}
}

func NewFilledDurationMatrix(rows, cols int, val float32) *DurationMatrix {
	m := NewDurationMatrix(rows, cols)
	for i := range m.data {
		m.data[i] = val
	}
	return m
}

// NewDurationMatrixFromData wraps data without copying it.
func NewDurationMatrixFromData(rows, cols int, data []float32) (*DurationMatrix, error) {
	if rows*cols != len(data) {
		return nil, fmt.Errorf("matrix data has %d values, want %dx%d", len(data), rows, cols)
	}
	return &DurationMatrix{rows: rows, cols: cols, data: data}, nil
}

func (m *DurationMatrix) Rows() int {
	return m.rows
}

func (m *DurationMatrix) Cols() int {
	return m.cols
}

func (m *DurationMatrix) Shape() (int, int) {
	return m.rows, m.cols
}

func (m *DurationMatrix) At(i, j int) float32 {
	return m.data[i*m.cols+j]
}

func (m *DurationMatrix) Set(i, j int, val float32) {
	m.data[i*m.cols+j] = val
}

func (m *DurationMatrix) Row(i int) []float32 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

func (m *DurationMatrix) Data() []float32 {
	return m.data
}

// SetBlock copies sub into the rectangle starting at (rowOffset, colOffset).
func (m *DurationMatrix) SetBlock(rowOffset, colOffset int, sub *DurationMatrix) error {
	if rowOffset < 0 || colOffset < 0 || rowOffset+sub.rows > m.rows || colOffset+sub.cols > m.cols {
		return fmt.Errorf("block %dx%d at (%d,%d) does not fit in %dx%d matrix",
			sub.rows, sub.cols, rowOffset, colOffset, m.rows, m.cols)
	}
	for i := 0; i < sub.rows; i++ {
		copy(m.Row(rowOffset + i)[colOffset:colOffset+sub.cols], sub.Row(i))
	}
	return nil
}

func (m *DurationMatrix) FillBlock(rowOffset, colOffset, rows, cols int, val float32) {
	for i := rowOffset; i < rowOffset+rows; i++ {
		row := m.Row(i)
		for j := colOffset; j < colOffset+cols; j++ {
			row[j] = val
		}
	}
}

// Count returns how many cells equal val.
func (m *DurationMatrix) Count(val float32) int {
	n := 0
	for _, v := range m.data {
		if v == val {
			n++
		}
	}
	return n
}

func (m *DurationMatrix) Equal(other *DurationMatrix) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

type MatrixStats struct {
	Min  float64
	Max  float64
	Mean float64
}

func (m *DurationMatrix) Stats() MatrixStats {
	if len(m.data) == 0 {
		return MatrixStats{}
	}
	st := MatrixStats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, v := range m.data {
		fv := float64(v)
		st.Min = math.Min(st.Min, fv)
		st.Max = math.Max(st.Max, fv)
		sum += fv
	}
	st.Mean = sum / float64(len(m.data))
	return st
}
