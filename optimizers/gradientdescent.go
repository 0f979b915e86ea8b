// Package optimizers provides the Optimizer implementations that apply parameter updates:
// plain gradient descent, classical momentum, and Adam.
package optimizers

import (
	gcn "github.com/aksnzhy/dgl-winter-school"
)

type gradientdescent int8

// GradientDescent returns plain stochastic gradient descent, which implements gcn.Optimizer.
// It keeps no state; each weight moves by -learningRate * gradient.
func GradientDescent() gradientdescent {
	return gradientdescent(0)
}

// SGD is a proxy for GradientDescent
func SGD() gradientdescent {
	return GradientDescent()
}

func (g gradientdescent) TypeString() string {
	return "sgd"
}

func (g gradientdescent) Run(p *gcn.Param, size int, grad func(int) float64, add func(int, float64), learningRate float64) error {
	for i := 0; i < size; i++ {
		add(i, -1*learningRate*grad(i))
	}

	return nil
}
