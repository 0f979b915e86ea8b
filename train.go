package gcn

import (
	"math"

	"github.com/pkg/errors"
)

type status int8

const (
	initialized status = iota
	training
	evaluating
	done
)

// Result is a wrapper for sending back the progress of training or evaluation.
type Result struct {
	// The epoch the result was produced during
	Epoch int

	// Mean cost over the training mask, from the CostFunction
	Cost float64

	// The fraction of masked nodes whose highest-scoring class matches their label, 0 -> 1
	Accuracy float64

	// Whether the result came from a validation pass or a status update
	IsTest bool
}

// TrainArgs configures a Trainer. Graph, Model, CostFunc, and Opt are required; everything
// else has a usable default.
//
// The Graph must carry the dataset collaborator's attributes: "feat" (float matrix of the
// model's input width), "label" (class ids), and the boolean masks "train_mask", "val_mask",
// and "test_mask".
type TrainArgs struct {
	Graph *Graph
	Model *GCN

	CostFunc CostFunction

	// Opt applies parameter updates; it is the one collaborator that mutates the Model.
	Opt Optimizer

	// LearningRate can be left nil for a constant 0.01.
	LearningRate HyperParameter

	// Epochs is the fixed number of passes to run. It must be positive.
	Epochs int

	// SendStatus indicates whether to report training cost and accuracy for the given epoch.
	// Can be left nil to represent an unconditional false.
	SendStatus func(epoch int) bool

	// ShouldTest indicates whether to evaluate on the validation mask at the given epoch.
	// Can be left nil to represent an unconditional false.
	ShouldTest func(epoch int) bool

	// Update is how evaluation and status results are returned. If both SendStatus and
	// ShouldTest are nil, Update can also be left nil.
	Update func(Result)
}

// Trainer drives the training loop: forward pass, masked cost, backward pass, optimizer step,
// with periodic masked evaluation. It moves through the states initialized -> training (with
// excursions to evaluating) -> done, and can be run exactly once.
type Trainer struct {
	args TrainArgs
	stat status

	epoch        int
	testAccuracy float64
}

// NewTrainer validates args and returns a Trainer in its initial state. Missing collaborators
// return a NilArgError; a non-positive epoch count returns an InvalidConfigError.
func NewTrainer(args TrainArgs) (*Trainer, error) {
	if args.Graph == nil {
		return nil, NilArgError{"Graph"}
	} else if args.Model == nil {
		return nil, NilArgError{"Model"}
	} else if args.CostFunc == nil {
		return nil, NilArgError{"CostFunc"}
	} else if args.Opt == nil {
		return nil, NilArgError{"Opt"}
	} else if args.Epochs < 1 {
		return nil, InvalidConfigError{"Epochs", args.Epochs}
	}

	if args.LearningRate == nil {
		args.LearningRate = ConstantRate(0.01)
	}
	if args.SendStatus == nil {
		args.SendStatus = func(int) bool { return false }
	}
	if args.ShouldTest == nil {
		args.ShouldTest = func(int) bool { return false }
	}
	if args.Update == nil {
		args.Update = func(Result) {}
	}

	return &Trainer{args: args}, nil
}

// Epoch returns the index of the epoch the Trainer is on, or the total count once done.
func (t *Trainer) Epoch() int {
	return t.epoch
}

// TestAccuracy returns the accuracy over the test mask measured after the final epoch. It
// returns ErrNotTrained until Train has completed.
func (t *Trainer) TestAccuracy() (float64, error) {
	if t.stat < done {
		return 0, ErrNotTrained
	}

	return t.testAccuracy, nil
}

// Train runs the full fixed-epoch loop to completion. Each epoch is one synchronous cycle:
// forward pass over the whole graph, cost over the training mask, derivative, backward pass,
// optimizer step. At the cadence given by ShouldTest, the current scores are evaluated against
// the validation mask and reported through Update. After the last epoch, a final forward pass
// is evaluated against the test mask; the result is available from TestAccuracy.
//
// A non-finite training cost aborts immediately with type DivergedError. Train returns
// ErrAlreadyTrained if called a second time.
func (t *Trainer) Train() error {
	if t.stat != initialized {
		return ErrAlreadyTrained
	}

	g := t.args.Graph

	feats, err := g.Attr("feat")
	if err != nil {
		return errors.Wrapf(err, "graph is missing features")
	}

	labels, err := g.IntAttr("label")
	if err != nil {
		return errors.Wrapf(err, "graph is missing labels")
	}

	trainMask, err := g.BoolAttr("train_mask")
	if err != nil {
		return errors.Wrapf(err, "graph is missing the training mask")
	}

	valMask, err := g.BoolAttr("val_mask")
	if err != nil {
		return errors.Wrapf(err, "graph is missing the validation mask")
	}

	testMask, err := g.BoolAttr("test_mask")
	if err != nil {
		return errors.Wrapf(err, "graph is missing the test mask")
	}

	t.stat = training

	for t.epoch = 0; t.epoch < t.args.Epochs; t.epoch++ {
		logits, err := t.args.Model.Forward(g, feats)
		if err != nil {
			return errors.Wrapf(err, "forward pass failed on epoch %d", t.epoch)
		}

		cost, err := t.args.CostFunc.Cost(logits, labels, trainMask)
		if err != nil {
			return errors.Wrapf(err, "cost computation failed on epoch %d", t.epoch)
		}

		if math.IsNaN(cost) || math.IsInf(cost, 0) {
			return DivergedError{t.epoch, cost}
		}

		if t.args.SendStatus(t.epoch) {
			acc, err := Accuracy(logits, labels, trainMask)
			if err != nil {
				return errors.Wrapf(err, "status accuracy failed on epoch %d", t.epoch)
			}

			t.args.Update(Result{Epoch: t.epoch, Cost: cost, Accuracy: acc})
		}

		if t.args.ShouldTest(t.epoch) {
			t.stat = evaluating

			// parameters haven't changed since the forward pass above, so the
			// scores are current -- no second pass needed
			acc, err := Accuracy(logits, labels, valMask)
			if err != nil {
				return errors.Wrapf(err, "validation failed on epoch %d", t.epoch)
			}

			t.args.Update(Result{Epoch: t.epoch, Cost: cost, Accuracy: acc, IsTest: true})
			t.stat = training
		}

		derivs, err := t.args.CostFunc.Derivs(logits, labels, trainMask)
		if err != nil {
			return errors.Wrapf(err, "cost derivatives failed on epoch %d", t.epoch)
		}

		if err = t.args.Model.Backward(g, derivs); err != nil {
			return errors.Wrapf(err, "backward pass failed on epoch %d", t.epoch)
		}

		lr := t.args.LearningRate.Value(t.epoch)
		if err = t.args.Model.Adjust(t.args.Opt, lr); err != nil {
			return errors.Wrapf(err, "optimizer step failed on epoch %d", t.epoch)
		}
	}

	// final evaluation over the test mask
	t.stat = evaluating

	logits, err := t.args.Model.Forward(g, feats)
	if err != nil {
		return errors.Wrapf(err, "final forward pass failed")
	}

	if t.testAccuracy, err = Accuracy(logits, labels, testMask); err != nil {
		return errors.Wrapf(err, "final test evaluation failed")
	}

	t.stat = done
	return nil
}

// Every returns a cadence function that fires once every 'frequency' epochs, for
// TrainArgs.SendStatus and TrainArgs.ShouldTest.
func Every(frequency int) func(int) bool {
	return func(epoch int) bool {
		return epoch%frequency == 0
	}
}

// argmax returns the index of the largest value. Ties go to the lower index.
func argmax(vs []float64) int {
	best := 0
	for i, v := range vs {
		if v > vs[best] {
			best = i
		}
	}

	return best
}

// Accuracy returns the fraction of mask-selected rows whose highest-scoring class equals the
// label. It is unaffected by rows outside the mask. An empty mask returns ErrEmptyMask; a
// length disagreement between logits, labels, and mask returns a SizeMismatchError.
func Accuracy(logits *Matrix, labels []int, mask []bool) (float64, error) {
	if logits == nil {
		return 0, NilArgError{"logits"}
	} else if len(labels) != logits.Rows() {
		return 0, SizeMismatchError{"labels length", logits.Rows(), len(labels)}
	} else if len(mask) != logits.Rows() {
		return 0, SizeMismatchError{"mask length", logits.Rows(), len(mask)}
	}

	var correct, total int
	for i := range mask {
		if !mask[i] {
			continue
		}

		total++
		if argmax(logits.Row(i)) == labels[i] {
			correct++
		}
	}

	if total == 0 {
		return 0, ErrEmptyMask
	}

	return float64(correct) / float64(total), nil
}
