package gcn

// Param is a handle to one flat group of trainable values -- a weight matrix or a bias vector.
// The slice aliases the owning layer's storage, so writes through Data are writes to the layer.
// Stateful Optimizers key their per-parameter state off the *Param pointer.
type Param struct {
	// The name that will be used to print this parameter. Completely optional, may be empty.
	Name string

	Data []float64
}

// Optimizer is an interface for applying first-order updates to a group of weights.
type Optimizer interface {
	// Run is called to suggest changes to each weight, given:
	// the parameter group, number of weights, gradient at weight,
	// function to add to weights, and a learning-rate.
	//
	// 'grad' and 'add' operate on indexes into p.Data. Run will only ever be
	// given indexes in [0, size).
	Run(p *Param, size int, grad func(int) float64, add func(int, float64), learningRate float64) error

	// TypeString returns the string corresponding to the type of the Optimizer.
	// For example: the Optimizer "Adam" should return "adam", or something
	// to that effect.
	TypeString() string
}

// CostFunction maps per-node class scores to a scalar training cost over the nodes selected by a
// mask, and provides the derivatives that seed the backward pass.
type CostFunction interface {
	// Cost returns the mean cost over the masked rows of logits.
	//
	// labels and mask must both have length logits.Rows(). Rows outside the
	// mask are ignored entirely.
	Cost(logits *Matrix, labels []int, mask []bool) (float64, error)

	// Derivs returns the derivative of the total cost with respect to every
	// entry of logits. Rows outside the mask are exactly zero.
	//
	// Derivs will only be called after Cost has been run on the same inputs.
	Derivs(logits *Matrix, labels []int, mask []bool) (*Matrix, error)

	// TypeString returns the string corresponding to the type of the CostFunction.
	TypeString() string
}

// Initializer dictates how the weights in a layer will be set, given a blank slice to hold
// weights and the fan of the layer they belong to.
type Initializer interface {
	Set(fanIn, fanOut int, ws []float64)
}

// HyperParameter is a training quantity that may change as epochs pass, such as the
// learning rate.
type HyperParameter interface {
	Value(epoch int) float64
	TypeString() string
}

type constantRate float64

func (c constantRate) Value(epoch int) float64 {
	return float64(c)
}

func (c constantRate) TypeString() string {
	return "constant"
}

// ConstantRate returns a HyperParameter that always gives the same value. The hyperparams
// subpackage has schedules with more structure.
func ConstantRate(learningRate float64) HyperParameter {
	return constantRate(learningRate)
}
