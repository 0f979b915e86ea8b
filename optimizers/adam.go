package optimizers

import (
	"math"

	"github.com/pkg/errors"

	gcn "github.com/aksnzhy/dgl-winter-school"
)

type adamState struct {
	m, v []float64
	t    int
}

type adam struct {
	beta1, beta2, eps float64

	state map[*gcn.Param]*adamState
}

const (
	defaultBeta1 float64 = 0.9
	defaultBeta2 float64 = 0.999
	defaultEps   float64 = 1e-8
)

// Adam returns the Adam optimizer, which implements gcn.Optimizer. It keeps bias-corrected
// first and second moment estimates per parameter group, keyed by the *Param it is run with.
// The decay rates and epsilon default to 0.9, 0.999, and 1e-8, settable by Beta1, Beta2, and
// Epsilon.
func Adam() *adam {
	return &adam{
		beta1: defaultBeta1,
		beta2: defaultBeta2,
		eps:   defaultEps,
		state: make(map[*gcn.Param]*adamState),
	}
}

// Beta1 sets the decay rate of the first moment estimate, returning the Optimizer.
func (a *adam) Beta1(b float64) *adam {
	a.beta1 = b
	return a
}

// Beta2 sets the decay rate of the second moment estimate, returning the Optimizer.
func (a *adam) Beta2(b float64) *adam {
	a.beta2 = b
	return a
}

// Epsilon sets the denominator fuzz term, returning the Optimizer.
func (a *adam) Epsilon(eps float64) *adam {
	a.eps = eps
	return a
}

func (a *adam) TypeString() string {
	return "adam"
}

func (a *adam) Run(p *gcn.Param, size int, grad func(int) float64, add func(int, float64), learningRate float64) error {
	if p == nil {
		return errors.Errorf("adam requires a Param to key its moments by")
	}

	st, ok := a.state[p]
	if !ok {
		st = &adamState{
			m: make([]float64, size),
			v: make([]float64, size),
		}
		a.state[p] = st
	} else if len(st.m) != size {
		return gcn.SizeMismatchError{Context: "adam state for " + p.Name, Expected: len(st.m), Got: size}
	}

	st.t++
	mCorrection := 1 / (1 - math.Pow(a.beta1, float64(st.t)))
	vCorrection := 1 / (1 - math.Pow(a.beta2, float64(st.t)))

	for i := 0; i < size; i++ {
		g := grad(i)

		st.m[i] = a.beta1*st.m[i] + (1-a.beta1)*g
		st.v[i] = a.beta2*st.v[i] + (1-a.beta2)*g*g

		mHat := st.m[i] * mCorrection
		vHat := st.v[i] * vCorrection

		add(i, -learningRate*mHat/(math.Sqrt(vHat)+a.eps))
	}

	return nil
}
