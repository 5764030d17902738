// Package metrics scores transform outputs against PU labels.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ROCCurve returns the false and true positive rates at every distinct score
// cutoff, starting at (0,0). Instances with a NaN score are skipped.
func ROCCurve(y []int, scores []float64) (fpr, tpr []float64, err error) {
	if len(y) != len(scores) {
		return nil, nil, fmt.Errorf("metrics: %d labels but %d scores", len(y), len(scores))
	}
	type pair struct {
		s   float64
		pos bool
	}
	pairs := make([]pair, 0, len(y))
	var pos, neg int
	for i, s := range scores {
		if math.IsNaN(s) { continue }
		switch y[i] {
		case 1:
			pos++
		case 0:
			neg++
		default:
			return nil, nil, fmt.Errorf("metrics: label %d at index %d is not binary", y[i], i)
		}
		pairs = append(pairs, pair{s, y[i] == 1})
	}
	if pos == 0 || neg == 0 {
		return nil, nil, errors.New("metrics: AUROC needs at least one instance of each class")
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].s < pairs[j].s })
	ys := make([]float64, len(pairs))
	classes := make([]bool, len(pairs))
	for i, p := range pairs {
		ys[i] = p.s
		classes[i] = p.pos
	}
	tpr, fpr, _ = stat.ROC(nil, ys, classes, nil)
	return fpr, tpr, nil
}

// AUROC is the tie-aware area under the ROC curve.
func AUROC(y []int, scores []float64) (float64, error) {
	fpr, tpr, err := ROCCurve(y, scores)
	if err != nil {
		return 0, err
	}
	return integrate.Trapezoidal(fpr, tpr), nil
}
