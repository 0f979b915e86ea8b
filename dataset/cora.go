// Package dataset is the collaborator that supplies ready-made graphs in the attribute layout
// the trainer expects: "feat", "label", "train_mask", "val_mask", "test_mask".
//
// It covers the Cora citation dataset in its raw published form and a seeded synthetic
// generator for demos and tests.
package dataset

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	gcn "github.com/aksnzhy/dgl-winter-school"
)

// Info summarizes a loaded dataset.
type Info struct {
	Nodes, Edges int
	FeatDim      int
	NumClasses   int

	// mask sizes
	Train, Val, Test int
}

// Standard split sizes for the citation datasets: 20 labeled nodes per class for training, 500
// validation nodes, 1000 test nodes.
const (
	trainPerClass = 20
	numVal        = 500
	numTest       = 1000
)

// LoadCora reads the raw Cora files ("cora.content" and "cora.cites") from dir and returns a
// Graph carrying features, labels, and the standard train/validation/test masks.
//
// Each citation link becomes two directed edges, one per direction, so neighbor aggregation
// sees both citing and cited papers; for the reference data that gives 2708 nodes and 10556
// edges. Features are row-normalized word-presence vectors of width 1433.
//
// A nil logger disables logging.
func LoadCora(dir string, logger *zap.Logger) (*gcn.Graph, *Info, error) {
	return loadCora(dir, logger, trainPerClass, numVal, numTest)
}

func loadCora(dir string, logger *zap.Logger, perClass, nVal, nTest int) (*gcn.Graph, *Info, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ids, feats, classNames, err := readContent(filepath.Join(dir, "cora.content"))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading cora.content failed")
	}

	n := len(feats)

	// class ids are assigned in sorted name order so runs are reproducible regardless of the
	// order papers appear in the file
	names := make([]string, 0, 8)
	seen := make(map[string]bool)
	for _, c := range classNames {
		if !seen[c] {
			seen[c] = true
			names = append(names, c)
		}
	}
	sort.Strings(names)

	classID := make(map[string]int, len(names))
	for i, c := range names {
		classID[c] = i
	}

	labels := make([]int, n)
	for v, c := range classNames {
		labels[v] = classID[c]
	}

	srcs, dsts, err := readCites(filepath.Join(dir, "cora.cites"), ids)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading cora.cites failed")
	}

	g, err := gcn.NewGraph(n, srcs, dsts)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "constructing the graph failed")
	}

	width := len(feats[0])
	fm := gcn.NewMatrix(n, width)
	for v, row := range feats {
		if len(row) != width {
			return nil, nil, gcn.SizeMismatchError{Context: "feature row", Expected: width, Got: len(row)}
		}

		copy(fm.Row(v), row)
	}
	normalizeRows(fm)

	train, val, test, err := Split(labels, len(names), perClass, nVal, nTest)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "building masks failed")
	}

	if err = attach(g, fm, labels, train, val, test); err != nil {
		return nil, nil, err
	}

	info := &Info{
		Nodes:      n,
		Edges:      g.EdgeCount(),
		FeatDim:    width,
		NumClasses: len(names),
		Train:      count(train),
		Val:        count(val),
		Test:       count(test),
	}

	logger.Info("loaded cora",
		zap.Int("nodes", info.Nodes),
		zap.Int("edges", info.Edges),
		zap.Int("featDim", info.FeatDim),
		zap.Int("classes", info.NumClasses),
		zap.Int("train", info.Train),
		zap.Int("val", info.Val),
		zap.Int("test", info.Test))

	return g, info, nil
}

// readContent parses cora.content: one line per paper, whitespace-separated as
// <paper id> <feature values ...> <class name>.
func readContent(path string) (ids map[string]int, feats [][]float64, classes []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "couldn't open %q", path)
	}

	defer f.Close()

	ids = make(map[string]int)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		} else if len(fields) < 3 {
			return nil, nil, nil, errors.Errorf("line %d has %d fields, need at least 3", line, len(fields))
		}

		id := fields[0]
		if _, ok := ids[id]; ok {
			return nil, nil, nil, errors.Errorf("line %d repeats paper id %q", line, id)
		}

		row := make([]float64, len(fields)-2)
		for i, s := range fields[1 : len(fields)-1] {
			if row[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, nil, nil, errors.Wrapf(err, "line %d has a bad feature value %q", line, s)
			}
		}

		ids[id] = len(feats)
		feats = append(feats, row)
		classes = append(classes, fields[len(fields)-1])
	}

	if err = sc.Err(); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "scanning %q failed", path)
	} else if len(feats) == 0 {
		return nil, nil, nil, errors.Errorf("%q contains no papers", path)
	}

	return ids, feats, classes, nil
}

// readCites parses cora.cites: one line per citation link as <cited id> <citing id>. Each link
// produces both directed edges.
func readCites(path string, ids map[string]int) (srcs, dsts []int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "couldn't open %q", path)
	}

	defer f.Close()

	sc := bufio.NewScanner(f)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		} else if len(fields) != 2 {
			return nil, nil, errors.Errorf("line %d has %d fields, need 2", line, len(fields))
		}

		cited, ok := ids[fields[0]]
		if !ok {
			return nil, nil, errors.Errorf("line %d cites unknown paper %q", line, fields[0])
		}

		citing, ok := ids[fields[1]]
		if !ok {
			return nil, nil, errors.Errorf("line %d cites from unknown paper %q", line, fields[1])
		}

		srcs = append(srcs, citing, cited)
		dsts = append(dsts, cited, citing)
	}

	if err = sc.Err(); err != nil {
		return nil, nil, errors.Wrapf(err, "scanning %q failed", path)
	}

	return srcs, dsts, nil
}

// normalizeRows divides each row by its sum, leaving all-zero rows alone.
func normalizeRows(m *gcn.Matrix) {
	for v := 0; v < m.Rows(); v++ {
		row := m.Row(v)

		var sum float64
		for _, x := range row {
			sum += x
		}
		if sum == 0 {
			continue
		}

		for i := range row {
			row[i] /= sum
		}
	}
}

// Split builds the standard citation-dataset masks: the first perClass nodes of each class (in
// node order) train, the next numVal nodes validate, and the last numTest nodes test. The
// three masks are pairwise disjoint by construction.
func Split(labels []int, numClasses, perClass, numVal, numTest int) (train, val, test []bool, err error) {
	n := len(labels)
	train = make([]bool, n)
	val = make([]bool, n)
	test = make([]bool, n)

	taken := make([]int, numClasses)
	for v := 0; v < n; v++ {
		c := labels[v]
		if c < 0 || c >= numClasses {
			return nil, nil, nil, errors.Errorf("node %d has label %d outside [0, %d)", v, c, numClasses)
		}

		if taken[c] < perClass {
			train[v] = true
			taken[c]++
		}
	}

	placed := 0
	for v := 0; v < n && placed < numVal; v++ {
		if !train[v] {
			val[v] = true
			placed++
		}
	}
	if placed < numVal {
		return nil, nil, nil, errors.Errorf("not enough nodes for %d validation nodes", numVal)
	}

	placed = 0
	for v := n - 1; v >= 0 && placed < numTest; v-- {
		if !train[v] && !val[v] {
			test[v] = true
			placed++
		}
	}
	if placed < numTest {
		return nil, nil, nil, errors.Errorf("not enough nodes for %d test nodes", numTest)
	}

	return train, val, test, nil
}

func attach(g *gcn.Graph, feats *gcn.Matrix, labels []int, train, val, test []bool) error {
	if err := g.SetAttr("feat", feats); err != nil {
		return errors.Wrapf(err, "attaching features failed")
	}
	if err := g.SetIntAttr("label", labels); err != nil {
		return errors.Wrapf(err, "attaching labels failed")
	}
	if err := g.SetBoolAttr("train_mask", train); err != nil {
		return errors.Wrapf(err, "attaching the training mask failed")
	}
	if err := g.SetBoolAttr("val_mask", val); err != nil {
		return errors.Wrapf(err, "attaching the validation mask failed")
	}
	if err := g.SetBoolAttr("test_mask", test); err != nil {
		return errors.Wrapf(err, "attaching the test mask failed")
	}

	return nil
}

func count(mask []bool) int {
	c := 0
	for _, in := range mask {
		if in {
			c++
		}
	}

	return c
}
