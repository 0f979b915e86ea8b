// Package hyperparams provides HyperParameter implementations for quantities that change (or
// deliberately don't) as training progresses, such as the learning rate.
package hyperparams

type constant float64

// Constant returns a HyperParameter that always gives the same value.
func Constant(value float64) *constant {
	c := constant(value)
	return &c
}

func (c *constant) TypeString() string {
	return "constant"
}

func (c *constant) Value(epoch int) float64 {
	return float64(*c)
}
