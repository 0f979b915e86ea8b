// Package costfuncs provides the CostFunction implementations used for training: softmax
// cross-entropy for classification, squared error mostly for tests and sanity checks.
//
// All cost functions here are masked: they read only the rows a boolean mask selects and
// produce derivatives that are exactly zero everywhere else, which is what restricts learning
// to the labeled subset of nodes.
package costfuncs

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	gcn "github.com/aksnzhy/dgl-winter-school"
	"github.com/aksnzhy/dgl-winter-school/utils"
)

type crossEntropy int8

// CrossEntropy returns the multi-class cross-entropy cost over raw class scores, which
// implements gcn.CostFunction. The softmax lives inside the cost: Cost treats each masked row
// of logits as unnormalized log-probabilities and charges -log softmax(row)[label].
func CrossEntropy() crossEntropy {
	return crossEntropy(0)
}

func (c crossEntropy) TypeString() string {
	return "cross-entropy"
}

// checkDims validates the shared preconditions of Cost and Derivs and returns the mask count.
func checkDims(logits *gcn.Matrix, labels []int, mask []bool) (int, error) {
	if logits == nil {
		return 0, errors.Errorf("logits is nil")
	} else if len(labels) != logits.Rows() {
		return 0, gcn.SizeMismatchError{Context: "labels length", Expected: logits.Rows(), Got: len(labels)}
	} else if len(mask) != logits.Rows() {
		return 0, gcn.SizeMismatchError{Context: "mask length", Expected: logits.Rows(), Got: len(mask)}
	}

	count := 0
	for i, in := range mask {
		if !in {
			continue
		}

		if labels[i] < 0 || labels[i] >= logits.Cols() {
			return 0, errors.Errorf("label %d at node %d is outside [0, %d)", labels[i], i, logits.Cols())
		}
		count++
	}

	if count == 0 {
		return 0, gcn.ErrEmptyMask
	}

	return count, nil
}

// Cost returns the mean negative log-likelihood over the masked rows. The computation is the
// numerically stable log-sum-exp form; rows are processed in parallel and folded into an
// atomic accumulator.
func (c crossEntropy) Cost(logits *gcn.Matrix, labels []int, mask []bool) (float64, error) {
	count, err := checkDims(logits, labels, mask)
	if err != nil {
		return 0, err
	}

	total := atomic.NewFloat64(0)

	costRow := func(i int) {
		if !mask[i] {
			return
		}

		row := logits.Row(i)

		max := row[0]
		for _, v := range row[1:] {
			if v > max {
				max = v
			}
		}

		var sum float64
		for _, v := range row {
			sum += math.Exp(v - max)
		}

		// -log softmax(row)[label] = logsumexp(row) - row[label]
		total.Add(max + math.Log(sum) - row[labels[i]])
	}

	opsPerThread, threadsPerCPU := 64, 1
	utils.MultiThread(0, logits.Rows(), costRow, opsPerThread, threadsPerCPU)

	return total.Load() / float64(count), nil
}

// Derivs returns d(mean masked cost)/d(logits): (softmax(row) - onehot(label)) / maskCount on
// masked rows, zero rows elsewhere.
func (c crossEntropy) Derivs(logits *gcn.Matrix, labels []int, mask []bool) (*gcn.Matrix, error) {
	count, err := checkDims(logits, labels, mask)
	if err != nil {
		return nil, err
	}

	scale := 1 / float64(count)
	ds := gcn.NewMatrix(logits.Rows(), logits.Cols())

	derivRow := func(i int) {
		if !mask[i] {
			return
		}

		row := logits.Row(i)
		d := ds.Row(i)

		max := row[0]
		for _, v := range row[1:] {
			if v > max {
				max = v
			}
		}

		var sum float64
		for k, v := range row {
			d[k] = math.Exp(v - max)
			sum += d[k]
		}

		for k := range d {
			d[k] *= scale / sum
		}
		d[labels[i]] -= scale
	}

	opsPerThread, threadsPerCPU := 64, 1
	utils.MultiThread(0, logits.Rows(), derivRow, opsPerThread, threadsPerCPU)

	return ds, nil
}
