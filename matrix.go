package gcn

// Matrix is a dense row-major block of float64s. It is the shape that per-node data takes
// throughout the package: one row per node, one column per feature or class.
//
// The zero Matrix is not usable; construct with NewMatrix or WrapMatrix.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix returns a zeroed rows x cols Matrix. It panics if either dimension is negative,
// as that can only be a programming error.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic("matrix dimensions cannot be negative")
	}

	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

// WrapMatrix wraps an existing row-major slice without copying. The slice length must equal
// rows*cols.
func WrapMatrix(rows, cols int, data []float64) (*Matrix, error) {
	if len(data) != rows*cols {
		return nil, SizeMismatchError{"matrix backing slice", rows * cols, len(data)}
	}

	return &Matrix{rows, cols, data}, nil
}

func (m *Matrix) Rows() int {
	return m.rows
}

func (m *Matrix) Cols() int {
	return m.cols
}

// Row returns the i'th row as a slice aliasing the Matrix's storage -- writes through it are
// writes to the Matrix.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

func (m *Matrix) Set(i, j int, v float64) {
	m.data[i*m.cols+j] = v
}

// Data returns the backing slice. Like Row, it aliases rather than copies.
func (m *Matrix) Data() []float64 {
	return m.data
}

// Clone returns a Matrix with the same dimensions and copied values.
func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.rows, m.cols)
	copy(c.data, m.data)
	return c
}

// Zero sets every value to 0, reusing the storage.
func (m *Matrix) Zero() {
	for i := range m.data {
		m.data[i] = 0
	}
}
