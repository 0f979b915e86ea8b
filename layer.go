package gcn

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/aksnzhy/dgl-winter-school/utils"
)

// GraphConv is one trainable graph convolution: neighbor summation followed by a learned affine
// transform. Given a Graph and per-node features of width InFeats, the forward pass produces
// per-node outputs of width OutFeats:
//
//	out[v] = (sum of feature rows over in-neighbors of v) * W + b
//
// Any nonlinearity is the caller's business. The layer owns its weight matrix and bias vector
// exclusively; nothing mutates them during Forward, only Adjust (through the Optimizer) does.
//
// With Normalize set, the neighbor sum becomes the symmetric degree-normalized sum
// 1/sqrt(deg(v)) * sum over j of feature[j]/sqrt(deg(j)), with isolated nodes given factor 1.
type GraphConv struct {
	inFeats, outFeats int

	weights *Matrix // inFeats x outFeats
	biases  []float64

	wParam, bParam *Param

	useBias   bool
	normalize bool

	gradW *Matrix
	gradB []float64

	// set by the most recent Forward, consumed by Backward
	agg              *Matrix
	srcNorm, dstNorm []float64
}

// NewGraphConv returns a layer mapping feature width inFeats to outFeats. Both widths must be
// positive; a non-positive width returns an InvalidConfigError before any computation happens.
//
// Weights start uniformly random, scaled down by the input width. Use WithInit for anything
// more deliberate.
func NewGraphConv(inFeats, outFeats int) (*GraphConv, error) {
	if inFeats < 1 {
		return nil, InvalidConfigError{"inFeats", inFeats}
	} else if outFeats < 1 {
		return nil, InvalidConfigError{"outFeats", outFeats}
	}

	c := &GraphConv{
		inFeats:  inFeats,
		outFeats: outFeats,
		weights:  NewMatrix(inFeats, outFeats),
		biases:   make([]float64, outFeats),
		useBias:  true,
		gradW:    NewMatrix(inFeats, outFeats),
		gradB:    make([]float64, outFeats),
	}

	for i := range c.weights.data {
		c.weights.data[i] = (2*rand.Float64() - 1) / float64(inFeats)
	}

	c.wParam = &Param{Name: "weights", Data: c.weights.data}
	c.bParam = &Param{Name: "biases", Data: c.biases}

	return c, nil
}

// WithInit re-initializes the weights with the given Initializer and returns the layer.
// WithInit panics with type NilArgError if init is nil.
func (c *GraphConv) WithInit(init Initializer) *GraphConv {
	if init == nil {
		panic(NilArgError{"Initializer"})
	}

	init.Set(c.inFeats, c.outFeats, c.weights.data)
	return c
}

// Normalize switches the layer to symmetric degree normalization and returns it.
func (c *GraphConv) Normalize() *GraphConv {
	c.normalize = true
	return c
}

// NoBias removes the bias term from the layer and returns it.
func (c *GraphConv) NoBias() *GraphConv {
	c.useBias = false
	for i := range c.biases {
		c.biases[i] = 0
	}

	return c
}

func (c *GraphConv) InFeats() int {
	return c.inFeats
}

func (c *GraphConv) OutFeats() int {
	return c.outFeats
}

// Weights returns the layer's weight matrix. It aliases the layer's storage; tests and
// persistence read it, nothing else should write it.
func (c *GraphConv) Weights() *Matrix {
	return c.weights
}

// Biases returns the layer's bias vector, aliased like Weights.
func (c *GraphConv) Biases() []float64 {
	return c.biases
}

// Params returns the layer's parameter groups, for Optimizers that keep per-parameter state.
func (c *GraphConv) Params() []*Param {
	if !c.useBias {
		return []*Param{c.wParam}
	}

	return []*Param{c.wParam, c.bParam}
}

// invDegrees returns 1/sqrt(deg) per node, with degree-zero nodes given 1 so that isolated
// nodes pass through unscaled instead of dividing by zero.
func invDegrees(n int, degree func(int) int) []float64 {
	norm := make([]float64, n)
	for v := range norm {
		if d := degree(v); d > 0 {
			norm[v] = 1 / math.Sqrt(float64(d))
		} else {
			norm[v] = 1
		}
	}

	return norm
}

// Forward runs the layer over the full Graph. The input must have one row per node and width
// InFeats; violating either returns a SizeMismatchError. The returned matrix is owned by the
// caller and freshly allocated every call.
func (c *GraphConv) Forward(g *Graph, in *Matrix) (*Matrix, error) {
	if g == nil {
		return nil, NilArgError{"Graph"}
	} else if in == nil {
		return nil, NilArgError{"input matrix"}
	} else if in.Cols() != c.inFeats {
		return nil, SizeMismatchError{"feature width", c.inFeats, in.Cols()}
	}

	src := in
	if c.normalize {
		c.srcNorm = invDegrees(g.NodeCount(), g.OutDegree)
		c.dstNorm = invDegrees(g.NodeCount(), g.InDegree)

		src = NewMatrix(in.Rows(), in.Cols())
		for v := 0; v < in.Rows(); v++ {
			from, to := in.Row(v), src.Row(v)
			for k := range to {
				to[k] = from[k] * c.srcNorm[v]
			}
		}
	}

	agg, err := SumNeighbors(g, src)
	if err != nil {
		return nil, errors.Wrapf(err, "neighbor aggregation failed")
	}

	if c.normalize {
		for v := 0; v < agg.Rows(); v++ {
			row := agg.Row(v)
			for k := range row {
				row[k] *= c.dstNorm[v]
			}
		}
	}

	c.agg = agg

	out := NewMatrix(g.NodeCount(), c.outFeats)
	computeRow := func(v int) {
		a := agg.Row(v)
		o := out.Row(v)
		copy(o, c.biases)

		for j, av := range a {
			if av == 0 {
				continue
			}

			w := c.weights.Row(j)
			for k := range o {
				o[k] += av * w[k]
			}
		}
	}

	opsPerThread, threadsPerCPU := 4, 1
	utils.MultiThread(0, g.NodeCount(), computeRow, opsPerThread, threadsPerCPU)

	return out, nil
}

// Backward consumes the derivative of the cost with respect to the layer's output and produces
// the derivative with respect to its input, overwriting the layer's stored weight and bias
// gradients along the way. It must follow a Forward over the same graph.
func (c *GraphConv) Backward(g *Graph, delta *Matrix) (*Matrix, error) {
	return c.backward(g, delta, true)
}

// backward is Backward with the input-derivative pass optional; the first layer of a model has
// no upstream layer to feed, so the model skips that work.
func (c *GraphConv) backward(g *Graph, delta *Matrix, needIn bool) (*Matrix, error) {
	if g == nil {
		return nil, NilArgError{"Graph"}
	} else if delta == nil {
		return nil, NilArgError{"delta matrix"}
	} else if c.agg == nil {
		return nil, errors.Errorf("Backward called before Forward")
	} else if delta.Rows() != g.NodeCount() {
		return nil, SizeMismatchError{"delta rows", g.NodeCount(), delta.Rows()}
	} else if delta.Cols() != c.outFeats {
		return nil, SizeMismatchError{"delta width", c.outFeats, delta.Cols()}
	}

	// bias gradient: column sums of delta
	for k := range c.gradB {
		c.gradB[k] = 0
	}
	for v := 0; v < delta.Rows(); v++ {
		row := delta.Row(v)
		for k, d := range row {
			c.gradB[k] += d
		}
	}

	// weight gradient: gradW[j][k] = sum over v of agg[v][j] * delta[v][k].
	// Threaded by weight row, so no two goroutines touch the same slot.
	agg := c.agg
	computeWRow := func(j int) {
		row := c.gradW.Row(j)
		for k := range row {
			row[k] = 0
		}

		for v := 0; v < agg.Rows(); v++ {
			av := agg.At(v, j)
			if av == 0 {
				continue
			}

			d := delta.Row(v)
			for k := range row {
				row[k] += av * d[k]
			}
		}
	}

	opsPerThread, threadsPerCPU := 1, 1
	utils.MultiThread(0, c.inFeats, computeWRow, opsPerThread, threadsPerCPU)

	if !needIn {
		return nil, nil
	}

	// input derivative: push delta back through the affine transform, then scatter it along
	// reversed edges (mirroring the forward normalization if set)
	dAgg := NewMatrix(delta.Rows(), c.inFeats)
	computeDAggRow := func(v int) {
		d := delta.Row(v)
		o := dAgg.Row(v)
		for j := range o {
			w := c.weights.Row(j)
			var sum float64
			for k := range d {
				sum += d[k] * w[k]
			}
			o[j] = sum
		}

		if c.normalize {
			for j := range o {
				o[j] *= c.dstNorm[v]
			}
		}
	}

	utils.MultiThread(0, delta.Rows(), computeDAggRow, 4, threadsPerCPU)

	dIn, err := SumNeighborsReverse(g, dAgg)
	if err != nil {
		return nil, errors.Wrapf(err, "reverse aggregation failed")
	}

	if c.normalize {
		for v := 0; v < dIn.Rows(); v++ {
			row := dIn.Row(v)
			for j := range row {
				row[j] *= c.srcNorm[v]
			}
		}
	}

	return dIn, nil
}

// Adjust applies the Optimizer to the layer's parameters using the gradients left by the most
// recent Backward.
func (c *GraphConv) Adjust(opt Optimizer, learningRate float64) error {
	if opt == nil {
		return NilArgError{"Optimizer"}
	}

	{
		grad := func(i int) float64 {
			return c.gradW.data[i]
		}
		add := func(i int, addend float64) {
			c.weights.data[i] += addend
		}

		if err := opt.Run(c.wParam, len(c.weights.data), grad, add, learningRate); err != nil {
			return errors.Wrapf(err, "running optimizer on weights failed")
		}
	}

	if c.useBias {
		grad := func(i int) float64 {
			return c.gradB[i]
		}
		add := func(i int, addend float64) {
			c.biases[i] += addend
		}

		if err := opt.Run(c.bParam, len(c.biases), grad, add, learningRate); err != nil {
			return errors.Wrapf(err, "running optimizer on biases failed")
		}
	}

	return nil
}
