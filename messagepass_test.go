package gcn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gcn "github.com/aksnzhy/dgl-winter-school"
)

func featMatrix(t *testing.T, rows [][]float64) *gcn.Matrix {
	t.Helper()

	m := gcn.NewMatrix(len(rows), len(rows[0]))
	for i, r := range rows {
		copy(m.Row(i), r)
	}

	return m
}

func TestSumNeighbors(t *testing.T) {
	// 0 -> 1, 2 -> 1, 1 -> 0; node 3 is isolated
	g, err := gcn.NewGraph(4, []int{0, 2, 1}, []int{1, 1, 0})
	require.NoError(t, err)

	in := featMatrix(t, [][]float64{
		{1, 2},
		{10, 20},
		{100, 200},
		{7, 7},
	})

	out, err := gcn.SumNeighbors(g, in)
	require.NoError(t, err)

	// output width equals input width
	assert.Equal(t, in.Cols(), out.Cols())
	assert.Equal(t, in.Rows(), out.Rows())

	assert.Equal(t, []float64{10, 20}, out.Row(0))
	assert.Equal(t, []float64{101, 202}, out.Row(1))

	// nodes with no in-neighbors produce exactly the zero vector
	assert.Equal(t, []float64{0, 0}, out.Row(2))
	assert.Equal(t, []float64{0, 0}, out.Row(3))
}

func TestSumNeighborsOrderInvariance(t *testing.T) {
	in := featMatrix(t, [][]float64{
		{0.1, -3}, {2.5, 0.7}, {-1.25, 4}, {3.375, -0.5},
	})

	// the same edge multiset, listed in different orders
	a, err := gcn.NewGraph(4, []int{0, 1, 2, 3}, []int{3, 3, 3, 0})
	require.NoError(t, err)
	b, err := gcn.NewGraph(4, []int{2, 0, 3, 1}, []int{3, 3, 0, 3})
	require.NoError(t, err)

	outA, err := gcn.SumNeighbors(a, in)
	require.NoError(t, err)
	outB, err := gcn.SumNeighbors(b, in)
	require.NoError(t, err)

	for v := 0; v < 4; v++ {
		for k := 0; k < in.Cols(); k++ {
			assert.InDelta(t, outA.At(v, k), outB.At(v, k), 1e-12)
		}
	}
}

func TestSumNeighborsSizeMismatch(t *testing.T) {
	g, err := gcn.NewGraph(3, []int{0}, []int{1})
	require.NoError(t, err)

	_, err = gcn.SumNeighbors(g, gcn.NewMatrix(2, 4))
	assert.ErrorAs(t, err, &gcn.SizeMismatchError{})

	_, err = gcn.SumNeighbors(g, nil)
	assert.Error(t, err)
	_, err = gcn.SumNeighbors(nil, gcn.NewMatrix(3, 1))
	assert.Error(t, err)
}

func TestAggregateCustomMessageAndReduce(t *testing.T) {
	// 0 -> 2, 1 -> 2
	g, err := gcn.NewGraph(3, []int{0, 1}, []int{2, 2})
	require.NoError(t, err)

	in := featMatrix(t, [][]float64{{1, 4}, {3, 2}, {0, 0}})

	double := func(src, out []float64) {
		for i, v := range src {
			out[i] = 2 * v
		}
	}
	max := func(acc, msg []float64) {
		for i, v := range msg {
			if v > acc[i] {
				acc[i] = v
			}
		}
	}

	out, err := gcn.Aggregate(g, in, double, max)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 8}, out.Row(2))
}

func TestSumNeighborsReverse(t *testing.T) {
	// 0 -> 1, 0 -> 2
	g, err := gcn.NewGraph(3, []int{0, 0}, []int{1, 2})
	require.NoError(t, err)

	in := featMatrix(t, [][]float64{{0}, {5}, {7}})

	out, err := gcn.SumNeighborsReverse(g, in)
	require.NoError(t, err)

	assert.Equal(t, []float64{12}, out.Row(0))
	assert.Equal(t, []float64{0}, out.Row(1))
	assert.Equal(t, []float64{0}, out.Row(2))
}
