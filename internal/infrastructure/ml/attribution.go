package ml

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/bibbank/scoring-service/internal/domain/port"
)

// ErrUnsupportedModel is returned when an attributor cannot handle the classifier.
var ErrUnsupportedModel = errors.New("unsupported model for attribution")

// ErrTooManyFeatures is returned when exact enumeration would exceed the
// configured feature budget.
var ErrTooManyFeatures = errors.New("too many features for exact attribution")

const (
	// DefaultTreeShapleyMaxFeatures bounds the distinct features of a single tree.
	DefaultTreeShapleyMaxFeatures = 20

	// DefaultBaselineShapleyMaxFeatures bounds the features that differ
	// from the reference vector.
	DefaultBaselineShapleyMaxFeatures = 16
)

func asForest(clf port.Classifier) (*Forest, error) {
	f, ok := clf.(*Forest)
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: %T is not a tree ensemble", ErrUnsupportedModel, clf)
	}
	return f, nil
}

// PathAttributor decomposes each tree prediction along the decision path:
// every split credits its feature with the change in node value it causes.
// Contributions sum exactly to prediction minus the mean root value.
type PathAttributor struct{}

// NewPathAttributor returns the decision-path attributor.
func NewPathAttributor() PathAttributor { return PathAttributor{} }

// Name implements port.Attributor.
func (PathAttributor) Name() string { return "tree_path" }

// Attribute implements port.Attributor.
func (PathAttributor) Attribute(clf port.Classifier, x []float64) (port.Attribution, error) {
	f, err := asForest(clf)
	if err != nil {
		return port.Attribution{}, err
	}
	if len(x) != f.numFeatures {
		return port.Attribution{}, fmt.Errorf("expected %d features, got %d", f.numFeatures, len(x))
	}

	values := make([]float64, f.numFeatures)
	output := 0.0
	for _, tree := range f.trees {
		i := 0
		for !tree.Nodes[i].IsLeaf() {
			next := tree.next(i, x)
			values[tree.Nodes[i].Feature] += tree.Nodes[next].Value - tree.Nodes[i].Value
			i = next
		}
		output += tree.Nodes[i].Value
	}

	scale := 1 / float64(len(f.trees))
	for i := range values {
		values[i] *= scale
	}
	return port.Attribution{Baseline: f.baseline(), Values: values, Output: output * scale}, nil
}

// TreeShapley computes exact Shapley values of each tree where a missing
// feature is marginalized by following both branches weighted by cover.
// Cost grows as 2^k per tree, k being the number of distinct features the
// tree splits on.
type TreeShapley struct {
	maxFeatures int
}

// NewTreeShapley returns an exact tree Shapley attributor. maxFeatures
// bounds k; values below 1 use DefaultTreeShapleyMaxFeatures.
func NewTreeShapley(maxFeatures int) TreeShapley {
	if maxFeatures < 1 {
		maxFeatures = DefaultTreeShapleyMaxFeatures
	}
	return TreeShapley{maxFeatures: maxFeatures}
}

// Name implements port.Attributor.
func (TreeShapley) Name() string { return "tree_shapley" }

// Attribute implements port.Attributor.
func (s TreeShapley) Attribute(clf port.Classifier, x []float64) (port.Attribution, error) {
	f, err := asForest(clf)
	if err != nil {
		return port.Attribution{}, err
	}
	if len(x) != f.numFeatures {
		return port.Attribution{}, fmt.Errorf("expected %d features, got %d", f.numFeatures, len(x))
	}

	values := make([]float64, f.numFeatures)
	output := 0.0
	for t, tree := range f.trees {
		used := tree.features()
		if len(used) > s.maxFeatures {
			return port.Attribution{}, fmt.Errorf("%w: tree %d splits on %d features, limit %d",
				ErrTooManyFeatures, t, len(used), s.maxFeatures)
		}
		bit := make(map[int]uint, len(used))
		for i, feat := range used {
			bit[feat] = uint(i)
		}

		v := make([]float64, 1<<len(used))
		for mask := range v {
			v[mask] = tree.expectation(0, x, uint(mask), bit)
		}
		for i, phi := range shapley(len(used), v) {
			values[used[i]] += phi
		}
		output += tree.Nodes[tree.leaf(x)].Value
	}

	scale := 1 / float64(len(f.trees))
	for i := range values {
		values[i] *= scale
	}
	return port.Attribution{Baseline: f.baseline(), Values: values, Output: output * scale}, nil
}

// features returns the distinct split features of the tree in first-seen order.
func (t Tree) features() []int {
	seen := make(map[int]bool)
	var out []int
	for _, n := range t.Nodes {
		if !n.IsLeaf() && !seen[n.Feature] {
			seen[n.Feature] = true
			out = append(out, n.Feature)
		}
	}
	return out
}

// expectation returns the expected value of the subtree at i when only the
// features in mask are known.
func (t Tree) expectation(i int, x []float64, mask uint, bit map[int]uint) float64 {
	n := t.Nodes[i]
	if n.IsLeaf() {
		return n.Value
	}
	if mask&(1<<bit[n.Feature]) != 0 {
		return t.expectation(t.next(i, x), x, mask, bit)
	}
	l, r := t.Nodes[n.Left], t.Nodes[n.Right]
	return (t.expectation(n.Left, x, mask, bit)*l.Cover + t.expectation(n.Right, x, mask, bit)*r.Cover) / n.Cover
}

// BaselineShapley computes exact interventional Shapley values for any
// classifier: a missing feature takes its value from a reference vector.
// Only features that differ from the reference are enumerated; the others
// get zero attribution.
type BaselineShapley struct {
	reference   []float64
	maxFeatures int
}

// NewBaselineShapley returns a model-agnostic attributor against reference.
// maxFeatures bounds the number of differing features; values below 1 use
// DefaultBaselineShapleyMaxFeatures.
func NewBaselineShapley(reference []float64, maxFeatures int) BaselineShapley {
	if maxFeatures < 1 {
		maxFeatures = DefaultBaselineShapleyMaxFeatures
	}
	return BaselineShapley{reference: append([]float64(nil), reference...), maxFeatures: maxFeatures}
}

// Name implements port.Attributor.
func (BaselineShapley) Name() string { return "baseline_shapley" }

// Attribute implements port.Attributor.
func (s BaselineShapley) Attribute(clf port.Classifier, x []float64) (port.Attribution, error) {
	if clf == nil {
		return port.Attribution{}, fmt.Errorf("%w: nil classifier", ErrUnsupportedModel)
	}
	if len(x) != len(s.reference) {
		return port.Attribution{}, fmt.Errorf("reference has %d features, input has %d", len(s.reference), len(x))
	}

	var differing []int
	for i := range x {
		if x[i] != s.reference[i] {
			differing = append(differing, i)
		}
	}
	if len(differing) > s.maxFeatures {
		return port.Attribution{}, fmt.Errorf("%w: %d features differ from the reference, limit %d",
			ErrTooManyFeatures, len(differing), s.maxFeatures)
	}

	probe := make([]float64, len(x))
	v := make([]float64, 1<<len(differing))
	for mask := range v {
		copy(probe, s.reference)
		for b, feat := range differing {
			if mask&(1<<b) != 0 {
				probe[feat] = x[feat]
			}
		}
		p, err := clf.PredictProba(probe)
		if err != nil {
			return port.Attribution{}, fmt.Errorf("evaluate coalition: %w", err)
		}
		v[mask] = p
	}

	values := make([]float64, len(x))
	for i, phi := range shapley(len(differing), v) {
		values[differing[i]] = phi
	}
	return port.Attribution{Baseline: v[0], Values: values, Output: v[len(v)-1]}, nil
}

// shapley returns the Shapley value of each of m players given the value
// v[mask] of every coalition.
func shapley(m int, v []float64) []float64 {
	phi := make([]float64, m)
	if m == 0 {
		return phi
	}

	// weight[s] = s! (m-s-1)! / m!
	weight := make([]float64, m)
	weight[0] = 1 / float64(m)
	for s := 1; s < m; s++ {
		weight[s] = weight[s-1] * float64(s) / float64(m-s)
	}

	for mask := 0; mask < len(v); mask++ {
		size := bits.OnesCount(uint(mask))
		for i := 0; i < m; i++ {
			if mask&(1<<i) != 0 {
				continue
			}
			phi[i] += weight[size] * (v[mask|1<<i] - v[mask])
		}
	}
	return phi
}
