package gcn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gcn "github.com/aksnzhy/dgl-winter-school"
	"github.com/aksnzhy/dgl-winter-school/costfuncs"
	"github.com/aksnzhy/dgl-winter-school/dataset"
	"github.com/aksnzhy/dgl-winter-school/optimizers"
)

// smallTrainingGraph is a 4-node graph with features, labels, and masks already attached.
// Nodes 0 and 1 are class 0, nodes 2 and 3 are class 1.
func smallTrainingGraph(t *testing.T) *gcn.Graph {
	t.Helper()

	g, err := gcn.NewGraph(4, []int{0, 1, 1, 2}, []int{1, 0, 2, 1})
	require.NoError(t, err)

	feats := featMatrix(t, [][]float64{
		{1, 0, 0.5},
		{0.75, 0.25, 0.5},
		{0, 1, -0.5},
		{0.25, 0.75, -0.25},
	})

	require.NoError(t, g.SetAttr("feat", feats))
	require.NoError(t, g.SetIntAttr("label", []int{0, 0, 1, 1}))
	require.NoError(t, g.SetBoolAttr("train_mask", []bool{true, true, true, false}))
	require.NoError(t, g.SetBoolAttr("val_mask", []bool{false, false, false, true}))
	require.NoError(t, g.SetBoolAttr("test_mask", []bool{true, true, true, true}))

	return g.WithSelfLoops()
}

func TestNewTrainerValidation(t *testing.T) {
	g := smallTrainingGraph(t)

	model, err := gcn.NewGCN(3, 4, 2)
	require.NoError(t, err)

	base := gcn.TrainArgs{
		Graph:    g,
		Model:    model,
		CostFunc: costfuncs.CrossEntropy(),
		Opt:      optimizers.GradientDescent(),
		Epochs:   10,
	}

	for _, tc := range []struct {
		name   string
		mangle func(*gcn.TrainArgs)
	}{
		{"Graph", func(a *gcn.TrainArgs) { a.Graph = nil }},
		{"Model", func(a *gcn.TrainArgs) { a.Model = nil }},
		{"CostFunc", func(a *gcn.TrainArgs) { a.CostFunc = nil }},
		{"Opt", func(a *gcn.TrainArgs) { a.Opt = nil }},
	} {
		args := base
		tc.mangle(&args)

		_, err := gcn.NewTrainer(args)
		assert.ErrorAs(t, err, &gcn.NilArgError{}, tc.name)
	}

	args := base
	args.Epochs = 0
	_, err = gcn.NewTrainer(args)
	assert.ErrorAs(t, err, &gcn.InvalidConfigError{})

	tr, err := gcn.NewTrainer(base)
	require.NoError(t, err)
	_, err = tr.TestAccuracy()
	assert.ErrorIs(t, err, gcn.ErrNotTrained)
}

func TestTrainerReducesCost(t *testing.T) {
	g := smallTrainingGraph(t)

	model, err := gcn.NewGCN(3, 4, 2)
	require.NoError(t, err)
	model.WithInit(testInit{seed: 7})

	var costs []float64

	tr, err := gcn.NewTrainer(gcn.TrainArgs{
		Graph:      g,
		Model:      model,
		CostFunc:   costfuncs.CrossEntropy(),
		Opt:        optimizers.GradientDescent(),
		Epochs:     50,
		SendStatus: gcn.Every(1),
		Update: func(r gcn.Result) {
			if !r.IsTest {
				costs = append(costs, r.Cost)
			}
		},
	})
	require.NoError(t, err)
	require.NoError(t, tr.Train())

	require.Len(t, costs, 50)
	for i, c := range costs {
		require.False(t, math.IsNaN(c) || math.IsInf(c, 0), "epoch %d", i)
		assert.GreaterOrEqual(t, c, 0.0, "epoch %d", i)

		if i > 0 {
			assert.LessOrEqual(t, c, costs[i-1]+1e-3, "epoch %d", i)
		}
	}
	assert.Less(t, costs[len(costs)-1], costs[0])

	assert.Equal(t, 50, tr.Epoch())

	acc, err := tr.TestAccuracy()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.0)
	assert.LessOrEqual(t, acc, 1.0)

	assert.ErrorIs(t, tr.Train(), gcn.ErrAlreadyTrained)
}

func TestTrainerValidationUpdates(t *testing.T) {
	g := smallTrainingGraph(t)

	model, err := gcn.NewGCN(3, 4, 2)
	require.NoError(t, err)
	model.WithInit(testInit{seed: 7})

	var valEpochs []int

	tr, err := gcn.NewTrainer(gcn.TrainArgs{
		Graph:      g,
		Model:      model,
		CostFunc:   costfuncs.CrossEntropy(),
		Opt:        optimizers.GradientDescent(),
		Epochs:     10,
		ShouldTest: gcn.Every(4),
		Update: func(r gcn.Result) {
			require.True(t, r.IsTest)
			valEpochs = append(valEpochs, r.Epoch)
		},
	})
	require.NoError(t, err)
	require.NoError(t, tr.Train())

	assert.Equal(t, []int{0, 4, 8}, valEpochs)
}

// nanCost always reports a non-finite training cost.
type nanCost struct{}

func (nanCost) TypeString() string {
	return "nan"
}

func (nanCost) Cost(logits *gcn.Matrix, labels []int, mask []bool) (float64, error) {
	return math.NaN(), nil
}

func (nanCost) Derivs(logits *gcn.Matrix, labels []int, mask []bool) (*gcn.Matrix, error) {
	return gcn.NewMatrix(logits.Rows(), logits.Cols()), nil
}

func TestTrainerDiverged(t *testing.T) {
	g := smallTrainingGraph(t)

	model, err := gcn.NewGCN(3, 4, 2)
	require.NoError(t, err)

	tr, err := gcn.NewTrainer(gcn.TrainArgs{
		Graph:    g,
		Model:    model,
		CostFunc: nanCost{},
		Opt:      optimizers.GradientDescent(),
		Epochs:   5,
	})
	require.NoError(t, err)

	err = tr.Train()
	var diverged gcn.DivergedError
	require.ErrorAs(t, err, &diverged)
	assert.Equal(t, 0, diverged.Epoch)
}

func TestTrainerMissingAttributes(t *testing.T) {
	g, err := gcn.NewGraph(4, []int{0, 1}, []int{1, 2})
	require.NoError(t, err)

	model, err := gcn.NewGCN(3, 4, 2)
	require.NoError(t, err)

	tr, err := gcn.NewTrainer(gcn.TrainArgs{
		Graph:    g,
		Model:    model,
		CostFunc: costfuncs.CrossEntropy(),
		Opt:      optimizers.GradientDescent(),
		Epochs:   5,
	})
	require.NoError(t, err)
	assert.Error(t, tr.Train())
}

func TestAccuracy(t *testing.T) {
	logits := featMatrix(t, [][]float64{
		{2, 1},
		{0, 3},
		{5, -1},
	})

	labels := []int{0, 1, 0}

	acc, err := gcn.Accuracy(logits, labels, []bool{true, true, true})
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	acc, err = gcn.Accuracy(logits, []int{1, 0, 1}, []bool{true, true, true})
	require.NoError(t, err)
	assert.Equal(t, 0.0, acc)

	// rows outside the mask can't change the result
	acc, err = gcn.Accuracy(logits, []int{0, 0, 0}, []bool{true, false, true})
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	_, err = gcn.Accuracy(logits, labels, []bool{false, false, false})
	assert.ErrorIs(t, err, gcn.ErrEmptyMask)

	_, err = gcn.Accuracy(logits, []int{0}, []bool{true, true, true})
	assert.ErrorAs(t, err, &gcn.SizeMismatchError{})

	_, err = gcn.Accuracy(nil, labels, []bool{true, true, true})
	assert.Error(t, err)
}

func TestTrainerOnSyntheticGraph(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping training run in short mode")
	}

	g, info, err := dataset.Synthetic(dataset.DefaultSyntheticConfig())
	require.NoError(t, err)

	model, err := gcn.NewGCN(info.FeatDim, 8, info.NumClasses)
	require.NoError(t, err)
	model.WithInit(testInit{seed: 42}).Normalize()

	tr, err := gcn.NewTrainer(gcn.TrainArgs{
		Graph:    g.WithSelfLoops(),
		Model:    model,
		CostFunc: costfuncs.CrossEntropy(),
		Opt:      optimizers.Adam(),
		Epochs:   100,
	})
	require.NoError(t, err)
	require.NoError(t, tr.Train())

	acc, err := tr.TestAccuracy()
	require.NoError(t, err)
	assert.Greater(t, acc, 0.7, "test accuracy")
}
