package gcn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gcn "github.com/aksnzhy/dgl-winter-school"
)

func TestNewGCNValidation(t *testing.T) {
	_, err := gcn.NewGCN(0, 16, 7)
	assert.ErrorAs(t, err, &gcn.InvalidConfigError{})

	_, err = gcn.NewGCN(1433, 0, 7)
	assert.ErrorAs(t, err, &gcn.InvalidConfigError{})

	_, err = gcn.NewGCN(1433, 16, 0)
	assert.ErrorAs(t, err, &gcn.InvalidConfigError{})

	m, err := gcn.NewGCN(1433, 16, 7)
	require.NoError(t, err)
	assert.Equal(t, 1433, m.InFeats())
	assert.Equal(t, 16, m.HiddenFeats())
	assert.Equal(t, 7, m.NumClasses())
	assert.Len(t, m.Params(), 4)
}

func TestGCNForwardShape(t *testing.T) {
	g, err := gcn.NewGraph(5, []int{0, 1, 2, 3}, []int{1, 2, 3, 4})
	require.NoError(t, err)

	m, err := gcn.NewGCN(8, 4, 3)
	require.NoError(t, err)
	m.WithInit(testInit{seed: 11})

	feats := gcn.NewMatrix(5, 8)
	for i := 0; i < 5; i++ {
		feats.Set(i, i%8, 1)
	}

	logits, err := m.Forward(g, feats)
	require.NoError(t, err)
	assert.Equal(t, 5, logits.Rows())
	assert.Equal(t, 3, logits.Cols())

	_, err = m.Forward(g, gcn.NewMatrix(5, 6))
	assert.ErrorAs(t, err, &gcn.SizeMismatchError{})
}

func TestGCNBackwardBeforeForward(t *testing.T) {
	g, err := gcn.NewGraph(2, []int{0}, []int{1})
	require.NoError(t, err)

	m, err := gcn.NewGCN(2, 2, 2)
	require.NoError(t, err)

	assert.Error(t, m.Backward(g, gcn.NewMatrix(2, 2)))
}

func TestGCNSaveLoad(t *testing.T) {
	dir := t.TempDir()

	src, err := gcn.NewGCN(6, 4, 3)
	require.NoError(t, err)
	src.WithInit(testInit{seed: 21})
	require.NoError(t, src.Save(dir))

	dst, err := gcn.NewGCN(6, 4, 3)
	require.NoError(t, err)
	dst.WithInit(testInit{seed: 99})
	require.NoError(t, dst.Load(dir))

	srcPs, dstPs := src.Params(), dst.Params()
	require.Equal(t, len(srcPs), len(dstPs))
	for i := range srcPs {
		assert.Equal(t, srcPs[i].Data, dstPs[i].Data, "param %q", srcPs[i].Name)
	}
}

func TestGCNLoadDimensionMismatch(t *testing.T) {
	dir := t.TempDir()

	src, err := gcn.NewGCN(6, 4, 3)
	require.NoError(t, err)
	require.NoError(t, src.Save(dir))

	dst, err := gcn.NewGCN(6, 5, 3)
	require.NoError(t, err)

	err = dst.Load(dir)
	assert.ErrorAs(t, err, &gcn.SizeMismatchError{})
}

func TestGCNLoadMissingFiles(t *testing.T) {
	m, err := gcn.NewGCN(6, 4, 3)
	require.NoError(t, err)

	assert.Error(t, m.Load(t.TempDir()))
}
