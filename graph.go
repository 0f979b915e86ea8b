package gcn

import (
	"github.com/pkg/errors"
)

// Graph is an immutable set of nodes and directed edges, plus per-node attribute tables.
// The topology is fixed at construction; only the attribute tables can be written afterwards,
// and those writes are local to the Graph instance.
//
// Edges are stored twice, indexed by destination and by source, so that both aggregation over
// in-neighbors and the reverse pass over out-neighbors cost time proportional to the edge count.
type Graph struct {
	numNodes int
	numEdges int

	// CSR over in-edges: inIdx[inPtr[v]:inPtr[v+1]] holds the sources of edges into v
	inPtr, inIdx []int

	// CSR over out-edges: outIdx[outPtr[v]:outPtr[v+1]] holds the destinations of edges out of v
	outPtr, outIdx []int

	floats map[string]*Matrix
	ints   map[string][]int
	bools  map[string][]bool
}

// NewGraph builds a Graph with numNodes nodes (ids 0..numNodes-1) and one directed edge
// srcs[e] -> dsts[e] for each e. Self-loops are permitted but never implied; callers that want
// them add them explicitly (see WithSelfLoops).
//
// NewGraph returns an error if numNodes is not positive, if the edge slices disagree in length,
// or if any endpoint is out of range.
func NewGraph(numNodes int, srcs, dsts []int) (*Graph, error) {
	if numNodes < 1 {
		return nil, InvalidConfigError{"numNodes", numNodes}
	} else if len(srcs) != len(dsts) {
		return nil, SizeMismatchError{"edge list", len(srcs), len(dsts)}
	}

	for e := range srcs {
		if srcs[e] < 0 || srcs[e] >= numNodes {
			return nil, errors.Errorf("edge %d has source %d outside [0, %d)", e, srcs[e], numNodes)
		} else if dsts[e] < 0 || dsts[e] >= numNodes {
			return nil, errors.Errorf("edge %d has destination %d outside [0, %d)", e, dsts[e], numNodes)
		}
	}

	g := &Graph{
		numNodes: numNodes,
		numEdges: len(srcs),
	}

	g.inPtr, g.inIdx = buildCSR(numNodes, dsts, srcs)
	g.outPtr, g.outIdx = buildCSR(numNodes, srcs, dsts)

	return g, nil
}

// buildCSR groups 'values' by their paired 'keys': the returned idx[ptr[k]:ptr[k+1]] holds
// every values[e] for which keys[e] == k.
func buildCSR(n int, keys, values []int) (ptr, idx []int) {
	ptr = make([]int, n+1)
	for _, k := range keys {
		ptr[k+1]++
	}
	for v := 0; v < n; v++ {
		ptr[v+1] += ptr[v]
	}

	idx = make([]int, len(values))
	fill := make([]int, n)
	for e, k := range keys {
		idx[ptr[k]+fill[k]] = values[e]
		fill[k]++
	}

	return ptr, idx
}

// NodeCount returns the number of nodes in the Graph.
func (g *Graph) NodeCount() int {
	return g.numNodes
}

// EdgeCount returns the number of directed edges in the Graph.
func (g *Graph) EdgeCount() int {
	return g.numEdges
}

// InNeighbors returns the sources of all edges pointing at v. The slice aliases the Graph's
// storage and must not be modified. A node may appear more than once if parallel edges were
// given at construction.
func (g *Graph) InNeighbors(v int) []int {
	return g.inIdx[g.inPtr[v]:g.inPtr[v+1]]
}

// OutNeighbors returns the destinations of all edges leaving v. The slice aliases the Graph's
// storage and must not be modified.
func (g *Graph) OutNeighbors(v int) []int {
	return g.outIdx[g.outPtr[v]:g.outPtr[v+1]]
}

// InDegree returns the number of edges pointing at v.
func (g *Graph) InDegree(v int) int {
	return g.inPtr[v+1] - g.inPtr[v]
}

// OutDegree returns the number of edges leaving v.
func (g *Graph) OutDegree(v int) int {
	return g.outPtr[v+1] - g.outPtr[v]
}

// WithSelfLoops returns a new Graph that additionally has the edge v -> v for every node that
// does not already have one. Attribute tables are shared with the receiver, not copied; the
// topology is rebuilt.
func (g *Graph) WithSelfLoops() *Graph {
	// the maps must exist before both graphs alias them, or attributes set on
	// one afterwards never reach the other
	g.init()

	srcs := make([]int, 0, g.numEdges+g.numNodes)
	dsts := make([]int, 0, g.numEdges+g.numNodes)

	for v := 0; v < g.numNodes; v++ {
		hasLoop := false
		for _, dst := range g.OutNeighbors(v) {
			srcs = append(srcs, v)
			dsts = append(dsts, dst)
			if dst == v {
				hasLoop = true
			}
		}

		if !hasLoop {
			srcs = append(srcs, v)
			dsts = append(dsts, v)
		}
	}

	// endpoints came from a valid Graph, so the error is impossible
	looped, err := NewGraph(g.numNodes, srcs, dsts)
	if err != nil {
		panic(err)
	}

	looped.floats = g.floats
	looped.ints = g.ints
	looped.bools = g.bools

	return looped
}

func (g *Graph) init() {
	if g.floats != nil {
		return
	}

	g.floats = make(map[string]*Matrix)
	g.ints = make(map[string][]int)
	g.bools = make(map[string][]bool)
}

// SetAttr stores a per-node float matrix under the given name, overwriting any previous value.
// The matrix must have exactly one row per node; anything else returns a SizeMismatchError.
func (g *Graph) SetAttr(name string, m *Matrix) error {
	if m == nil {
		return NilArgError{"attribute matrix"}
	} else if m.Rows() != g.numNodes {
		return SizeMismatchError{"attribute " + name, g.numNodes, m.Rows()}
	}

	g.init()
	g.floats[name] = m
	return nil
}

// Attr returns the float attribute stored under the given name.
func (g *Graph) Attr(name string) (*Matrix, error) {
	m, ok := g.floats[name]
	if !ok {
		return nil, errors.Errorf("graph has no attribute %q", name)
	}

	return m, nil
}

// SetIntAttr stores a per-node integer array, such as class labels.
func (g *Graph) SetIntAttr(name string, vs []int) error {
	if len(vs) != g.numNodes {
		return SizeMismatchError{"attribute " + name, g.numNodes, len(vs)}
	}

	g.init()
	g.ints[name] = vs
	return nil
}

// IntAttr returns the integer attribute stored under the given name.
func (g *Graph) IntAttr(name string) ([]int, error) {
	vs, ok := g.ints[name]
	if !ok {
		return nil, errors.Errorf("graph has no integer attribute %q", name)
	}

	return vs, nil
}

// SetBoolAttr stores a per-node boolean array, such as a train/validation/test mask.
func (g *Graph) SetBoolAttr(name string, vs []bool) error {
	if len(vs) != g.numNodes {
		return SizeMismatchError{"attribute " + name, g.numNodes, len(vs)}
	}

	g.init()
	g.bools[name] = vs
	return nil
}

// BoolAttr returns the boolean attribute stored under the given name.
func (g *Graph) BoolAttr(name string) ([]bool, error) {
	vs, ok := g.bools[name]
	if !ok {
		return nil, errors.Errorf("graph has no boolean attribute %q", name)
	}

	return vs, nil
}
