package hyperparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstant(t *testing.T) {
	c := Constant(0.01)
	assert.Equal(t, 0.01, c.Value(0))
	assert.Equal(t, 0.01, c.Value(1000))
}

func TestStep(t *testing.T) {
	s := Step(0.1).Add(50, 0.01).Add(100, 0.001)

	assert.Equal(t, 0.1, s.Value(0))
	assert.Equal(t, 0.1, s.Value(49))
	assert.Equal(t, 0.01, s.Value(50))
	assert.Equal(t, 0.01, s.Value(99))
	assert.Equal(t, 0.001, s.Value(100))
	assert.Equal(t, 0.001, s.Value(10000))
}

func TestStepWithoutAdds(t *testing.T) {
	s := Step(0.05)
	assert.Equal(t, 0.05, s.Value(0))
	assert.Equal(t, 0.05, s.Value(123))
}
