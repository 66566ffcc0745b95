package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/bibbank/scoring-service/internal/domain/model"
)

// LeafFeature marks a leaf node.
const LeafFeature = -1

// Node is one node of a binary decision tree. Samples with
// x[Feature] <= Threshold go Left.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	// Value is the default probability at the node. For internal nodes it
	// is recomputed on load as the cover-weighted mean of its children.
	Value float64 `json:"value"`
	// Cover is the number of training samples that reached the node.
	Cover float64 `json:"cover"`
}

// IsLeaf reports whether the node is a leaf.
func (n Node) IsLeaf() bool { return n.Feature == LeafFeature }

// Tree is a decision tree stored in pre-order: every child index is
// greater than its parent's.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Artifact is the JSON form of a trained random forest.
type Artifact struct {
	Algorithm     string             `json:"algorithm"`
	Version       string             `json:"version"`
	SchemaVersion string             `json:"schema_version"`
	FeatureNames  []string           `json:"feature_names"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	Trees         []Tree             `json:"trees"`
}

// Forest is a loaded random forest classifier. Its prediction is the mean
// leaf probability over all trees. A Forest is read-only after loading.
type Forest struct {
	info        model.ModelInfo
	trees       []Tree
	numFeatures int
}

// ErrInvalidArtifact is returned for malformed model artifacts.
var ErrInvalidArtifact = errors.New("invalid model artifact")

// LoadForest reads a forest artifact from a JSON file.
func LoadForest(path string) (*Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()

	forest, err := ReadForest(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return forest, nil
}

// ReadForest decodes and validates a forest artifact.
func ReadForest(r io.Reader) (*Forest, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidArtifact, err)
	}
	return NewForest(a)
}

// NewForest validates an artifact and builds a Forest from it. Internal
// node values and covers are recomputed from the leaves.
func NewForest(a Artifact) (*Forest, error) {
	if len(a.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: feature_names is empty", ErrInvalidArtifact)
	}
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("%w: no trees", ErrInvalidArtifact)
	}

	numFeatures := len(a.FeatureNames)
	trees := make([]Tree, len(a.Trees))
	for t, tree := range a.Trees {
		normalized, err := normalizeTree(tree, numFeatures)
		if err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidArtifact, t, err)
		}
		trees[t] = normalized
	}

	algorithm := a.Algorithm
	if algorithm == "" {
		algorithm = "random_forest"
	}

	f := &Forest{trees: trees, numFeatures: numFeatures}
	f.info = model.ModelInfo{
		Algorithm:     algorithm,
		Version:       a.Version,
		SchemaVersion: a.SchemaVersion,
		FeatureNames:  append([]string(nil), a.FeatureNames...),
		Metrics:       a.Metrics,
		Estimators:    len(trees),
		Importances:   f.importances(a.FeatureNames),
	}
	return f, nil
}

func normalizeTree(tree Tree, numFeatures int) (Tree, error) {
	n := len(tree.Nodes)
	if n == 0 {
		return Tree{}, fmt.Errorf("no nodes")
	}
	nodes := make([]Node, n)
	copy(nodes, tree.Nodes)

	parents := make([]int, n)
	for i := range parents {
		parents[i] = -1
	}

	for i, node := range nodes {
		if node.IsLeaf() {
			if math.IsNaN(node.Value) || node.Value < 0 || node.Value > 1 {
				return Tree{}, fmt.Errorf("leaf %d value %v outside [0,1]", i, node.Value)
			}
			if !(node.Cover > 0) {
				return Tree{}, fmt.Errorf("leaf %d has non-positive cover", i)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= numFeatures {
			return Tree{}, fmt.Errorf("node %d splits on feature %d, model has %d", i, node.Feature, numFeatures)
		}
		if math.IsNaN(node.Threshold) {
			return Tree{}, fmt.Errorf("node %d has NaN threshold", i)
		}
		for _, child := range []int{node.Left, node.Right} {
			if child <= i || child >= n {
				return Tree{}, fmt.Errorf("node %d has invalid child %d", i, child)
			}
			if parents[child] != -1 {
				return Tree{}, fmt.Errorf("node %d has more than one parent", child)
			}
			parents[child] = i
		}
		if node.Left == node.Right {
			return Tree{}, fmt.Errorf("node %d has identical children", i)
		}
	}
	for i := 1; i < n; i++ {
		if parents[i] == -1 {
			return Tree{}, fmt.Errorf("node %d is unreachable", i)
		}
	}

	// Children always follow their parent, so a reverse scan sees both
	// children before the node itself.
	for i := n - 1; i >= 0; i-- {
		node := &nodes[i]
		if node.IsLeaf() {
			continue
		}
		l, r := nodes[node.Left], nodes[node.Right]
		node.Cover = l.Cover + r.Cover
		node.Value = (l.Value*l.Cover + r.Value*r.Cover) / node.Cover
	}

	return Tree{Nodes: nodes}, nil
}

// importances weights every split by its cover and the gap between its
// children's values, normalized to sum to one.
func (f *Forest) importances(names []string) []model.FeatureImportance {
	raw := make([]float64, f.numFeatures)
	total := 0.0
	for _, tree := range f.trees {
		for _, node := range tree.Nodes {
			if node.IsLeaf() {
				continue
			}
			gain := node.Cover * math.Abs(tree.Nodes[node.Left].Value-tree.Nodes[node.Right].Value)
			raw[node.Feature] += gain
			total += gain
		}
	}

	out := make([]model.FeatureImportance, len(names))
	for i, name := range names {
		imp := 0.0
		if total > 0 {
			imp = raw[i] / total
		}
		out[i] = model.FeatureImportance{Feature: name, Importance: imp}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	return out
}

// NumFeatures returns the input width.
func (f *Forest) NumFeatures() int { return f.numFeatures }

// Info returns the artifact metadata.
func (f *Forest) Info() model.ModelInfo { return f.info }

// Trees returns the number of trees.
func (f *Forest) Trees() int { return len(f.trees) }

// PredictProba returns the mean leaf probability over all trees.
func (f *Forest) PredictProba(x []float64) (float64, error) {
	if len(x) != f.numFeatures {
		return 0, &model.FeatureShapeMismatchError{Expected: f.numFeatures, Got: len(x)}
	}
	sum := 0.0
	for _, tree := range f.trees {
		sum += tree.Nodes[tree.leaf(x)].Value
	}
	return sum / float64(len(f.trees)), nil
}

// baseline returns the mean root value, the expected prediction over the
// training distribution.
func (f *Forest) baseline() float64 {
	sum := 0.0
	for _, tree := range f.trees {
		sum += tree.Nodes[0].Value
	}
	return sum / float64(len(f.trees))
}

// leaf returns the index of the leaf reached by x.
func (t Tree) leaf(x []float64) int {
	i := 0
	for !t.Nodes[i].IsLeaf() {
		i = t.next(i, x)
	}
	return i
}

func (t Tree) next(i int, x []float64) int {
	n := t.Nodes[i]
	if x[n.Feature] <= n.Threshold {
		return n.Left
	}
	return n.Right
}
