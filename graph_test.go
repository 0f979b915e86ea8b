package gcn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gcn "github.com/aksnzhy/dgl-winter-school"
)

func TestNewGraphValidation(t *testing.T) {
	_, err := gcn.NewGraph(0, nil, nil)
	assert.Error(t, err)

	_, err = gcn.NewGraph(-3, nil, nil)
	assert.Error(t, err)

	_, err = gcn.NewGraph(2, []int{0}, []int{0, 1})
	assert.Error(t, err)

	_, err = gcn.NewGraph(2, []int{0}, []int{2})
	assert.Error(t, err)

	_, err = gcn.NewGraph(2, []int{-1}, []int{0})
	assert.Error(t, err)

	g, err := gcn.NewGraph(3, []int{0, 1}, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
}

func TestGraphNeighbors(t *testing.T) {
	// 0 -> 1, 1 -> 0, 1 -> 2, 2 -> 1
	g, err := gcn.NewGraph(4, []int{0, 1, 1, 2}, []int{1, 0, 2, 1})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{0, 2}, g.InNeighbors(1))
	assert.ElementsMatch(t, []int{1}, g.InNeighbors(0))
	assert.Empty(t, g.InNeighbors(3))

	assert.Equal(t, 2, g.InDegree(1))
	assert.Equal(t, 1, g.OutDegree(0))
	assert.Equal(t, 0, g.InDegree(3))
	assert.Equal(t, 0, g.OutDegree(3))

	assert.ElementsMatch(t, []int{0, 2}, g.OutNeighbors(1))
}

func TestWithSelfLoops(t *testing.T) {
	g, err := gcn.NewGraph(3, []int{0, 1, 2}, []int{1, 0, 2})
	require.NoError(t, err)

	looped := g.WithSelfLoops()

	// node 2 already had a loop; 0 and 1 each gain one
	assert.Equal(t, 5, looped.EdgeCount())
	assert.Equal(t, 3, g.EdgeCount(), "original graph unchanged")

	for v := 0; v < 3; v++ {
		assert.Contains(t, looped.InNeighbors(v), v)
	}

	// attribute tables are shared, not copied, even when the first write
	// happens after the derived graph exists
	require.NoError(t, g.SetIntAttr("label", []int{0, 1, 0}))
	labels, err := looped.IntAttr("label")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0}, labels)

	// and sharing runs the other way too
	require.NoError(t, looped.SetBoolAttr("train_mask", []bool{true, false, true}))
	mask, err := g.BoolAttr("train_mask")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, mask)
}

func TestGraphAttributes(t *testing.T) {
	g, err := gcn.NewGraph(3, nil, nil)
	require.NoError(t, err)

	err = g.SetAttr("feat", gcn.NewMatrix(2, 4))
	assert.ErrorAs(t, err, &gcn.SizeMismatchError{})

	require.NoError(t, g.SetAttr("feat", gcn.NewMatrix(3, 4)))
	m, err := g.Attr("feat")
	require.NoError(t, err)
	assert.Equal(t, 4, m.Cols())

	_, err = g.Attr("missing")
	assert.Error(t, err)

	assert.Error(t, g.SetIntAttr("label", []int{1, 2}))
	assert.Error(t, g.SetBoolAttr("train_mask", []bool{true}))

	require.NoError(t, g.SetBoolAttr("train_mask", []bool{true, false, true}))
	mask, err := g.BoolAttr("train_mask")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, mask)

	_, err = g.IntAttr("missing")
	assert.Error(t, err)
	_, err = g.BoolAttr("missing")
	assert.Error(t, err)

	// nil matrix is rejected, not stored
	assert.Error(t, g.SetAttr("feat", nil))
}
