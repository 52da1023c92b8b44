package similarity

import "math"

// Matrix is a square matrix of pairwise scores indexed by input position.
// Matrices returned by this package are not modified after construction.
type Matrix [][]float64

// NewMatrix returns an n×n zero matrix.
func NewMatrix(n int) Matrix {
	m := make(Matrix, n)
	backing := make([]float64, n*n)
	for i := range m {
		m[i] = backing[i*n : (i+1)*n : (i+1)*n]
	}
	return m
}

// Identity returns an n×n matrix with ones on the diagonal.
func Identity(n int) Matrix {
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m[i][i] = 1
	}
	return m
}

// Size returns the number of rows.
func (m Matrix) Size() int {
	return len(m)
}

// At returns the value at row i, column j.
func (m Matrix) At(i, j int) float64 {
	return m[i][j]
}

// IsSymmetric reports whether |m[i][j] - m[j][i]| <= tol for every pair.
func (m Matrix) IsSymmetric(tol float64) bool {
	for i := range m {
		if len(m[i]) != len(m) {
			return false
		}
		for j := i + 1; j < len(m); j++ {
			if math.Abs(m[i][j]-m[j][i]) > tol {
				return false
			}
		}
	}
	return true
}

// symmetricFrom fills an n×n matrix from f evaluated on the upper triangle
// and sets the diagonal to 1.
func symmetricFrom(n int, f func(i, j int) float64) Matrix {
	m := Identity(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := f(i, j)
			m[i][j] = v
			m[j][i] = v
		}
	}
	return m
}
