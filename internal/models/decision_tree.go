package models

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

type DTNode struct {
	Feature   int
	Threshold float64
	Left      *DTNode
	Right     *DTNode
	IsLeaf    bool
	ProbaLeaf float64
}

// DecisionTree is a CART classifier grown with the gini criterion.
// MaxDepth 0 means unlimited; MaxThresholdsPerFe 0 means every midpoint
// between consecutive distinct values is a candidate split.
type DecisionTree struct {
	MaxDepth           int
	MinSamplesSplit    int
	MinSamplesLeaf     int
	MaxThresholdsPerFe int
	Root               *DTNode

	nFeatures int
	rng       *rand.Rand
}

func NewDecisionTree(seed int64) *DecisionTree {
	return &DecisionTree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		rng:             newRand(seed),
	}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
	d, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("dtree: %w", err)
	}
	if dt.rng == nil { dt.rng = newRand(0) }
	if dt.MinSamplesSplit < 2 { dt.MinSamplesSplit = 2 }
	if dt.MinSamplesLeaf < 1 { dt.MinSamplesLeaf = 1 }
	dt.nFeatures = d
	idx := make([]int, len(X))
	for i := range idx { idx[i] = i }
	dt.Root = dt.build(X, y, idx, 0)
	return nil
}

func (dt *DecisionTree) PredictProba(X [][]float64) ([]float64, error) {
	if dt.Root == nil {
		return nil, errors.New("dtree: model not fitted")
	}
	out := make([]float64, len(X))
	for i := range X {
		if len(X[i]) != dt.nFeatures {
			return nil, fmt.Errorf("dtree: row %d has %d features, want %d", i, len(X[i]), dt.nFeatures)
		}
		out[i] = dt.predictProbaOne(X[i])
	}
	return out, nil
}

func (dt *DecisionTree) predictProbaOne(x []float64) float64 {
	n := dt.Root
	for !n.IsLeaf {
		if x[n.Feature] <= n.Threshold { n = n.Left } else { n = n.Right }
	}
	return n.ProbaLeaf
}

// Depth reports the depth of the fitted tree; a single leaf has depth 0.
func (dt *DecisionTree) Depth() int { return depthOf(dt.Root) }

func depthOf(n *DTNode) int {
	if n == nil || n.IsLeaf { return 0 }
	return 1 + max(depthOf(n.Left), depthOf(n.Right))
}

func (dt *DecisionTree) build(X [][]float64, y []int, idx []int, depth int) *DTNode {
	p := classProba(y, idx)
	node := &DTNode{IsLeaf: true, ProbaLeaf: p}
	if p == 0 || p == 1 { return node }
	if len(idx) < dt.MinSamplesSplit || (dt.MaxDepth > 0 && depth >= dt.MaxDepth) { return node }

	best := splitCandidate{feature: -1}
	for _, f := range dt.rng.Perm(dt.nFeatures) {
		c := dt.bestSplitOn(X, y, idx, f)
		if c.feature < 0 { continue }
		if best.feature < 0 || c.impurity < best.impurity-1e-12 { best = c }
	}
	if best.feature == -1 { return node }

	lIdx, rIdx := splitIdx(X, idx, best.feature, best.threshold)
	node.IsLeaf = false
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = dt.build(X, y, lIdx, depth+1)
	node.Right = dt.build(X, y, rIdx, depth+1)
	return node
}

type splitCandidate struct {
	feature   int
	threshold float64
	impurity  float64
}

// bestSplitOn sweeps the sorted values of feature f once, scoring every
// admissible midpoint by weighted gini impurity.
func (dt *DecisionTree) bestSplitOn(X [][]float64, y []int, idx []int, f int) splitCandidate {
	n := len(idx)
	order := append([]int(nil), idx...)
	sort.SliceStable(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

	cand := make([]int, 0, n)
	for k := 1; k < n; k++ {
		if X[order[k]][f] <= X[order[k-1]][f] { continue }
		if k < dt.MinSamplesLeaf || n-k < dt.MinSamplesLeaf { continue }
		cand = append(cand, k)
	}
	if len(cand) == 0 { return splitCandidate{feature: -1} }
	if dt.MaxThresholdsPerFe > 0 && len(cand) > dt.MaxThresholdsPerFe {
		dt.rng.Shuffle(len(cand), func(a, b int) { cand[a], cand[b] = cand[b], cand[a] })
		cand = cand[:dt.MaxThresholdsPerFe]
		sort.Ints(cand)
	}

	total := 0
	for _, i := range idx { total += y[i] }
	best := splitCandidate{feature: -1}
	leftPos, k := 0, 0
	for _, cut := range cand {
		for ; k < cut; k++ { leftPos += y[order[k]] }
		imp := giniImpurity(leftPos, cut, total-leftPos, n-cut)
		if best.feature < 0 || imp < best.impurity {
			lo, hi := X[order[cut-1]][f], X[order[cut]][f]
			thr := lo + (hi-lo)/2
			if thr >= hi { thr = lo }
			best = splitCandidate{feature: f, threshold: thr, impurity: imp}
		}
	}
	return best
}

func classProba(y []int, idx []int) float64 {
	sum := 0
	for _, i := range idx { sum += y[i] }
	return float64(sum) / float64(len(idx))
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
	l := make([]int, 0, len(idx))
	r := make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][f] <= thr { l = append(l, i) } else { r = append(r, i) }
	}
	return l, r
}

func giniImpurity(lPos, lN, rPos, rN int) float64 {
	g := func(pos, n int) float64 {
		if n == 0 { return 0 }
		p := float64(pos) / float64(n)
		return 2 * p * (1 - p)
	}
	wl := float64(lN)
	wr := float64(rN)
	total := wl + wr
	return (wl/total)*g(lPos, lN) + (wr/total)*g(rPos, rN)
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}
