package gcn

import (
	"github.com/aksnzhy/dgl-winter-school/utils"
)

// Message transforms one source node's row before it is folded into the destination's
// accumulator. It must write the transformed row into out, which has the same width as src.
type Message func(src, out []float64)

// Reduce folds one message into a destination node's accumulator. The accumulator starts at
// the zero vector.
type Reduce func(acc, msg []float64)

// Aggregate runs one round of message passing over the Graph: for every node v it produces
//
//	out[v] = reduce over { message(in[j]) : j an in-neighbor of v }
//
// A nil msg means the identity, a nil red means element-wise summation, which together give the
// neighbor-sum primitive the GraphConv layer is built on. Nodes with no in-neighbors produce
// the zero vector.
//
// The traversal walks the in-edge index once, so the cost is proportional to the edge count
// times the row width, never to the square of the node count. Each destination is accumulated
// by exactly one goroutine; the result does not depend on neighbor order beyond float rounding.
func Aggregate(g *Graph, in *Matrix, msg Message, red Reduce) (*Matrix, error) {
	if g == nil {
		return nil, NilArgError{"Graph"}
	} else if in == nil {
		return nil, NilArgError{"input matrix"}
	} else if in.Rows() != g.NodeCount() {
		return nil, SizeMismatchError{"input rows", g.NodeCount(), in.Rows()}
	}

	width := in.Cols()
	out := NewMatrix(g.NodeCount(), width)

	aggregateOne := func(v int) {
		acc := out.Row(v)

		if msg == nil && red == nil {
			for _, src := range g.InNeighbors(v) {
				row := in.Row(src)
				for k := range acc {
					acc[k] += row[k]
				}
			}
			return
		}

		buf := make([]float64, width)
		for _, src := range g.InNeighbors(v) {
			m := in.Row(src)
			if msg != nil {
				msg(m, buf)
				m = buf
			}

			if red != nil {
				red(acc, m)
			} else {
				for k := range acc {
					acc[k] += m[k]
				}
			}
		}
	}

	opsPerThread, threadsPerCPU := 16, 1
	utils.MultiThread(0, g.NodeCount(), aggregateOne, opsPerThread, threadsPerCPU)

	return out, nil
}

// SumNeighbors returns the neighbor sum out[v] = sum of in[j] over in-neighbors j of v. It is
// Aggregate with the identity message and summation reduce.
func SumNeighbors(g *Graph, in *Matrix) (*Matrix, error) {
	return Aggregate(g, in, nil, nil)
}

// SumNeighborsReverse aggregates along reversed edges: out[v] = sum of in[j] over
// out-neighbors j of v. The backward pass of a layer scatters derivatives with it.
func SumNeighborsReverse(g *Graph, in *Matrix) (*Matrix, error) {
	if g == nil {
		return nil, NilArgError{"Graph"}
	} else if in == nil {
		return nil, NilArgError{"input matrix"}
	} else if in.Rows() != g.NodeCount() {
		return nil, SizeMismatchError{"input rows", g.NodeCount(), in.Rows()}
	}

	width := in.Cols()
	out := NewMatrix(g.NodeCount(), width)

	aggregateOne := func(v int) {
		acc := out.Row(v)
		for _, dst := range g.OutNeighbors(v) {
			row := in.Row(dst)
			for k := range acc {
				acc[k] += row[k]
			}
		}
	}

	opsPerThread, threadsPerCPU := 16, 1
	utils.MultiThread(0, g.NodeCount(), aggregateOne, opsPerThread, threadsPerCPU)

	return out, nil
}
