package polyring

import "fmt"

// SymmetricMatrix is a square symmetric matrix of size n,
// stored as its packed lower triangle of n(n+1)/2 entries,
// row-major within rows 0..n.
// Entry (i, j) and (j, i) address the same cell.
type SymmetricMatrix[T any] struct {
	size int
	data []T
}

func packedIndex(i, j int) int {
	if i < j {
		i, j = j, i
	}
	return i*(i+1)/2 + j
}

// PackedSize returns n(n+1)/2.
func PackedSize(n int) int {
	return n * (n + 1) / 2
}

// NewSymmetricMatrix creates a new SymmetricMatrix of size n with zero values.
func NewSymmetricMatrix[T any](n int) SymmetricMatrix[T] {
	return SymmetricMatrix[T]{
		size: n,
		data: make([]T, PackedSize(n)),
	}
}

// NewSymmetricMatrixFromPacked wraps packed lower-triangular data.
// Returns an error if len(data) != n(n+1)/2.
func NewSymmetricMatrixFromPacked[T any](n int, data []T) (SymmetricMatrix[T], error) {
	if n < 0 || len(data) != PackedSize(n) {
		return SymmetricMatrix[T]{}, fmt.Errorf("packed length %d does not match size %d", len(data), n)
	}
	return SymmetricMatrix[T]{size: n, data: data}, nil
}

// PackLower packs the lower triangle of a square matrix.
// The upper triangle is ignored.
func PackLower[T any](rows [][]T) (SymmetricMatrix[T], error) {
	n := len(rows)
	m := NewSymmetricMatrix[T](n)
	for i := range rows {
		if len(rows[i]) != n {
			return SymmetricMatrix[T]{}, fmt.Errorf("row %d has length %d, expected %d", i, len(rows[i]), n)
		}
		for j := 0; j <= i; j++ {
			m.data[packedIndex(i, j)] = rows[i][j]
		}
	}
	return m, nil
}

// Size returns n.
func (m SymmetricMatrix[T]) Size() int {
	return m.size
}

// At returns the entry (i, j).
func (m SymmetricMatrix[T]) At(i, j int) T {
	return m.data[packedIndex(i, j)]
}

// Set sets the entry (i, j), and hence (j, i).
func (m SymmetricMatrix[T]) Set(i, j int, v T) {
	m.data[packedIndex(i, j)] = v
}

// Packed returns the packed lower triangle.
// The returned slice shares memory with m.
func (m SymmetricMatrix[T]) Packed() []T {
	return m.data
}

// Unpack returns the full n x n matrix.
func (m SymmetricMatrix[T]) Unpack() [][]T {
	rows := make([][]T, m.size)
	for i := range rows {
		rows[i] = make([]T, m.size)
		for j := range rows[i] {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}

// Range calls f on every cell (i, j) with i >= j, in packed order.
func (m SymmetricMatrix[T]) Range(f func(i, j int, v T)) {
	for i := 0; i < m.size; i++ {
		for j := 0; j <= i; j++ {
			f(i, j, m.data[packedIndex(i, j)])
		}
	}
}
