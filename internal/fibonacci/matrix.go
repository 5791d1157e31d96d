package fibonacci

import (
	"fmt"
	"math/big"
)

// Matrix is a 2x2 matrix of *big.Int values, stored row-major:
//
//	[ a b ]
//	[ c d ]
//
// It is the working value of the logarithmic algorithm. Methods that combine
// matrices mutate the receiver; accessors return copies so that cells never
// alias state held by a caller.
type Matrix struct{ a, b, c, d *big.Int }

// NewMatrix returns the matrix [[a, b], [c, d]].
func NewMatrix(a, b, c, d int64) *Matrix {
	return &Matrix{
		a: big.NewInt(a),
		b: big.NewInt(b),
		c: big.NewInt(c),
		d: big.NewInt(d),
	}
}

// Identity returns the multiplicative identity [[1, 0], [0, 1]].
func Identity() *Matrix {
	return NewMatrix(1, 0, 0, 1)
}

// FibonacciQ returns the base Fibonacci matrix Q = [[1, 1], [1, 0]].
// Q^k = [[F(k+1), F(k)], [F(k), F(k-1)]].
func FibonacciQ() *Matrix {
	return NewMatrix(1, 1, 1, 0)
}

// At returns a copy of the cell at (row, col). It panics if either index is
// outside [0, 1].
func (m *Matrix) At(row, col int) *big.Int {
	var cell *big.Int
	switch {
	case row == 0 && col == 0:
		cell = m.a
	case row == 0 && col == 1:
		cell = m.b
	case row == 1 && col == 0:
		cell = m.c
	case row == 1 && col == 1:
		cell = m.d
	default:
		panic(fmt.Sprintf("fibonacci: matrix index (%d, %d) out of range", row, col))
	}
	return new(big.Int).Set(cell)
}

// Set deep-copies other into m and returns m.
func (m *Matrix) Set(other *Matrix) *Matrix {
	m.a = new(big.Int).Set(other.a)
	m.b = new(big.Int).Set(other.b)
	m.c = new(big.Int).Set(other.c)
	m.d = new(big.Int).Set(other.d)
	return m
}

// Equal reports whether m and other hold the same four values.
func (m *Matrix) Equal(other *Matrix) bool {
	return m.a.Cmp(other.a) == 0 &&
		m.b.Cmp(other.b) == 0 &&
		m.c.Cmp(other.c) == 0 &&
		m.d.Cmp(other.d) == 0
}

// Mul sets m to the product m * other and returns m.
//
// The four result cells are computed into temporaries before any cell of m is
// replaced, so m.Mul(m) squares m correctly.
//
//	[ a b ] [ e f ]   [ ae+bg  af+bh ]
//	[ c d ] [ g h ] = [ ce+dg  cf+dh ]
func (m *Matrix) Mul(other *Matrix) *Matrix {
	p := new(big.Int)

	t0 := new(big.Int).Mul(m.a, other.a)
	t0.Add(t0, p.Mul(m.b, other.c))

	t1 := new(big.Int).Mul(m.a, other.b)
	t1.Add(t1, p.Mul(m.b, other.d))

	t2 := new(big.Int).Mul(m.c, other.a)
	t2.Add(t2, p.Mul(m.d, other.c))

	t3 := new(big.Int).Mul(m.c, other.b)
	t3.Add(t3, p.Mul(m.d, other.d))

	m.a, m.b, m.c, m.d = t0, t1, t2, t3
	return m
}

// String renders the matrix as [[a b] [c d]].
func (m *Matrix) String() string {
	return fmt.Sprintf("[[%s %s] [%s %s]]", m.a, m.b, m.c, m.d)
}
