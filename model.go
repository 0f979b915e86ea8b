package gcn

import (
	"github.com/pkg/errors"
)

// GCN is the two-layer classifier: GraphConv (inFeats -> hiddenFeats), rectified-linear
// activation, GraphConv (hiddenFeats -> numClasses). Forward returns raw per-class scores;
// callers wanting probabilities apply softmax themselves -- the cross-entropy cost already
// works on logits.
type GCN struct {
	conv1, conv2 *GraphConv

	// which hidden activations were positive in the last Forward, for the backward pass
	reluMask []bool
}

// NewGCN returns a two-layer model. All three widths must be positive; a hidden width of 16 is
// the usual starting point for citation graphs.
func NewGCN(inFeats, hiddenFeats, numClasses int) (*GCN, error) {
	if inFeats < 1 {
		return nil, InvalidConfigError{"inFeats", inFeats}
	} else if hiddenFeats < 1 {
		return nil, InvalidConfigError{"hiddenFeats", hiddenFeats}
	} else if numClasses < 1 {
		return nil, InvalidConfigError{"numClasses", numClasses}
	}

	conv1, err := NewGraphConv(inFeats, hiddenFeats)
	if err != nil {
		return nil, err
	}

	conv2, err := NewGraphConv(hiddenFeats, numClasses)
	if err != nil {
		return nil, err
	}

	return &GCN{conv1: conv1, conv2: conv2}, nil
}

// WithInit re-initializes both layers' weights and returns the model.
func (m *GCN) WithInit(init Initializer) *GCN {
	m.conv1.WithInit(init)
	m.conv2.WithInit(init)
	return m
}

// Normalize switches both layers to symmetric degree normalization and returns the model.
func (m *GCN) Normalize() *GCN {
	m.conv1.Normalize()
	m.conv2.Normalize()
	return m
}

func (m *GCN) InFeats() int {
	return m.conv1.InFeats()
}

func (m *GCN) HiddenFeats() int {
	return m.conv1.OutFeats()
}

func (m *GCN) NumClasses() int {
	return m.conv2.OutFeats()
}

// Params returns the parameter groups of both layers.
func (m *GCN) Params() []*Param {
	return append(m.conv1.Params(), m.conv2.Params()...)
}

// Forward runs the full model over the Graph, returning one row of class scores per node.
func (m *GCN) Forward(g *Graph, feats *Matrix) (*Matrix, error) {
	hidden, err := m.conv1.Forward(g, feats)
	if err != nil {
		return nil, errors.Wrapf(err, "first layer failed")
	}

	data := hidden.Data()
	if len(m.reluMask) != len(data) {
		m.reluMask = make([]bool, len(data))
	}
	for i, v := range data {
		if v > 0 {
			m.reluMask[i] = true
		} else {
			m.reluMask[i] = false
			data[i] = 0
		}
	}

	logits, err := m.conv2.Forward(g, hidden)
	if err != nil {
		return nil, errors.Wrapf(err, "second layer failed")
	}

	return logits, nil
}

// Backward propagates the cost derivative through both layers, leaving each layer's parameter
// gradients ready for Adjust. It must follow a Forward over the same graph.
func (m *GCN) Backward(g *Graph, dLogits *Matrix) error {
	if m.reluMask == nil {
		return errors.Errorf("Backward called before Forward")
	}

	dHidden, err := m.conv2.Backward(g, dLogits)
	if err != nil {
		return errors.Wrapf(err, "second layer backward failed")
	}

	data := dHidden.Data()
	for i := range data {
		if !m.reluMask[i] {
			data[i] = 0
		}
	}

	// the first layer has no upstream consumer for its input derivative
	if _, err = m.conv1.backward(g, dHidden, false); err != nil {
		return errors.Wrapf(err, "first layer backward failed")
	}

	return nil
}

// Adjust applies the Optimizer to every parameter of the model.
func (m *GCN) Adjust(opt Optimizer, learningRate float64) error {
	if err := m.conv1.Adjust(opt, learningRate); err != nil {
		return errors.Wrapf(err, "adjusting first layer failed")
	}

	if err := m.conv2.Adjust(opt, learningRate); err != nil {
		return errors.Wrapf(err, "adjusting second layer failed")
	}

	return nil
}
