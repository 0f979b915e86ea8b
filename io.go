package gcn

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// layerState is the on-disk form of one GraphConv.
type layerState struct {
	InFeats, OutFeats int

	Weights []float64
	Biases  []float64
}

func (c *GraphConv) save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "couldn't create file %q", path)
	}

	defer f.Close()

	st := layerState{
		InFeats:  c.inFeats,
		OutFeats: c.outFeats,
		Weights:  c.weights.data,
		Biases:   c.biases,
	}

	enc := json.NewEncoder(f)
	if err = enc.Encode(st); err != nil {
		return errors.Wrapf(err, "couldn't encode JSON to file %q", path)
	}

	return nil
}

func (c *GraphConv) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "couldn't open file %q", path)
	}

	defer f.Close()

	var st layerState

	dec := json.NewDecoder(f)
	if err = dec.Decode(&st); err != nil {
		return errors.Wrapf(err, "couldn't decode JSON from file %q", path)
	}

	if st.InFeats != c.inFeats {
		return SizeMismatchError{"saved layer input width", c.inFeats, st.InFeats}
	} else if st.OutFeats != c.outFeats {
		return SizeMismatchError{"saved layer output width", c.outFeats, st.OutFeats}
	} else if len(st.Weights) != len(c.weights.data) {
		return SizeMismatchError{"saved weights", len(c.weights.data), len(st.Weights)}
	} else if len(st.Biases) != len(c.biases) {
		return SizeMismatchError{"saved biases", len(c.biases), len(st.Biases)}
	}

	copy(c.weights.data, st.Weights)
	copy(c.biases, st.Biases)

	return nil
}

// Save writes the model's parameters into the given directory, creating it if necessary. The
// layout is one JSON file per layer.
func (m *GCN) Save(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return errors.Wrapf(err, "couldn't create directory %q", dirPath)
	}

	if err := m.conv1.save(filepath.Join(dirPath, "conv1.txt")); err != nil {
		return errors.Wrapf(err, "couldn't save first layer")
	}

	if err := m.conv2.save(filepath.Join(dirPath, "conv2.txt")); err != nil {
		return errors.Wrapf(err, "couldn't save second layer")
	}

	return nil
}

// Load reads parameters previously written by Save into a model of matching dimensions. A
// dimension disagreement returns a SizeMismatchError and leaves the layer that failed
// untouched.
func (m *GCN) Load(dirPath string) error {
	if err := m.conv1.load(filepath.Join(dirPath, "conv1.txt")); err != nil {
		return errors.Wrapf(err, "couldn't load first layer")
	}

	if err := m.conv2.load(filepath.Join(dirPath, "conv2.txt")); err != nil {
		return errors.Wrapf(err, "couldn't load second layer")
	}

	return nil
}
