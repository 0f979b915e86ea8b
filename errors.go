package gcn

import "fmt"

// Error is a wrapper for specific types of errors for which there is no additional information
// necessary. These errors are defined as global variables.
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

// These are the global errors that may be returned.
var (
	ErrNotTrained     = Error{"Trainer has not finished training"}
	ErrAlreadyTrained = Error{"Trainer has already been run"}
	ErrEmptyMask      = Error{"mask selects no nodes"}
)

// NilArgError documents errors resulting from certain arguments provided to a function being nil.
type NilArgError struct{ string }

func (err NilArgError) Error() string {
	return err.string + " is nil"
}

// SizeMismatchError reports a per-node array or matrix whose dimensions disagree with what the
// receiving operation declared. It covers both length mismatches against the node count and
// width mismatches against a layer's feature size. These are detected eagerly, never coerced.
type SizeMismatchError struct {
	// Context names the dimension that was violated, e.g. "feature width" or "attribute length".
	Context string

	Expected, Got int
}

func (err SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch in %s: expected %d, got %d", err.Context, err.Expected, err.Got)
}

// InvalidConfigError reports a non-positive dimension given at construction, before any forward
// pass has run.
type InvalidConfigError struct {
	Field string
	Value int
}

func (err InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s must be positive (got %d)", err.Field, err.Value)
}

// DivergedError terminates training when the cost stops being finite, instead of letting further
// updates corrupt the parameters.
type DivergedError struct {
	Epoch int
	Cost  float64
}

func (err DivergedError) Error() string {
	return fmt.Sprintf("training diverged at epoch %d: cost is %v", err.Epoch, err.Cost)
}
