package optimizers

import (
	"github.com/pkg/errors"

	gcn "github.com/aksnzhy/dgl-winter-school"
)

type momentum struct {
	mu float64

	velocity map[*gcn.Param][]float64
}

const defaultMu float64 = 0.9

// Momentum returns gradient descent with classical momentum, which implements gcn.Optimizer.
// The decay coefficient defaults to 0.9 and can be set by Mu.
func Momentum() *momentum {
	return &momentum{
		mu:       defaultMu,
		velocity: make(map[*gcn.Param][]float64),
	}
}

// Mu sets the velocity decay coefficient, returning the Optimizer.
func (m *momentum) Mu(mu float64) *momentum {
	m.mu = mu
	return m
}

func (m *momentum) TypeString() string {
	return "momentum"
}

func (m *momentum) Run(p *gcn.Param, size int, grad func(int) float64, add func(int, float64), learningRate float64) error {
	if p == nil {
		return errors.Errorf("momentum requires a Param to key its velocity by")
	}

	vel, ok := m.velocity[p]
	if !ok {
		vel = make([]float64, size)
		m.velocity[p] = vel
	} else if len(vel) != size {
		return gcn.SizeMismatchError{Context: "momentum state for " + p.Name, Expected: len(vel), Got: size}
	}

	for i := 0; i < size; i++ {
		vel[i] = m.mu*vel[i] - learningRate*grad(i)
		add(i, vel[i])
	}

	return nil
}
