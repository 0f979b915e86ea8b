package costfuncs

import (
	gcn "github.com/aksnzhy/dgl-winter-school"
)

type mse int8

// MSE returns the squared-error cost against one-hot label targets, which implements
// gcn.CostFunction. Cross-entropy is the better fit for classification; MSE exists because its
// hand-checkable derivatives make it useful in tests.
func MSE() mse {
	return mse(0)
}

// L2 is a proxy for MSE
func L2() mse {
	return MSE()
}

func (m mse) TypeString() string {
	return "mse"
}

// Cost returns the mean over masked rows of 0.5 * |row - onehot(label)|^2.
func (m mse) Cost(logits *gcn.Matrix, labels []int, mask []bool) (float64, error) {
	count, err := checkDims(logits, labels, mask)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := range mask {
		if !mask[i] {
			continue
		}

		row := logits.Row(i)
		for k, v := range row {
			target := 0.0
			if k == labels[i] {
				target = 1
			}

			sum += 0.5 * (v - target) * (v - target)
		}
	}

	return sum / float64(count), nil
}

// Derivs returns (row - onehot(label)) / maskCount on masked rows, zero rows elsewhere.
func (m mse) Derivs(logits *gcn.Matrix, labels []int, mask []bool) (*gcn.Matrix, error) {
	count, err := checkDims(logits, labels, mask)
	if err != nil {
		return nil, err
	}

	scale := 1 / float64(count)
	ds := gcn.NewMatrix(logits.Rows(), logits.Cols())

	for i := range mask {
		if !mask[i] {
			continue
		}

		row := logits.Row(i)
		d := ds.Row(i)
		for k, v := range row {
			d[k] = v * scale
		}
		d[labels[i]] -= scale
	}

	return ds, nil
}
