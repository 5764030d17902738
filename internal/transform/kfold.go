package transform

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"putransform/internal/features"
	"putransform/internal/metrics"
	"putransform/internal/models"
)

const DefaultFolds = 10

// Fold is one held-out block of a K-fold split.
type Fold struct {
	Train []int
	Test  []int
}

// KFoldSplits partitions 0..n-1 into k contiguous, unshuffled blocks. The
// first n%k blocks hold one extra index.
func KFoldSplits(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("transform: k-fold needs at least 2 folds, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("transform: cannot split %d instances into %d folds", n, k)
	}
	folds := make([]Fold, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k { size++ }
		end := start + size
		fold := Fold{Train: make([]int, 0, n-size), Test: make([]int, 0, size)}
		for i := 0; i < n; i++ {
			if i >= start && i < end { fold.Test = append(fold.Test, i) } else { fold.Train = append(fold.Train, i) }
		}
		folds[f] = fold
		start = end
	}
	return folds, nil
}

// TrainKFoldClassifier scores every instance with a model fitted on the
// other k-1 folds. Features are normalized once over the whole dataset
// rather than inside each fold.
func TrainKFoldClassifier(ctx context.Context, X [][]float64, y []int, factory models.Factory, k int, opts ...Option) (Result, error) {
	o := buildOptions(opts)
	if factory == nil {
		return Result{}, errors.New("transform: nil model factory")
	}
	if err := checkLabels(X, y); err != nil {
		return Result{}, err
	}
	Xz, _, err := features.PrepFeatures(X)
	if err != nil {
		return Result{}, err
	}
	folds, err := KFoldSplits(len(Xz), k)
	if err != nil {
		return Result{}, err
	}

	scores := make([]float64, len(Xz))
	for f, fold := range folds {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		Xtr, ytr := subset(Xz, y, fold.Train)
		Xval, _ := subset(Xz, y, fold.Test)
		mdl := factory(memberSeed(o.seed, f))
		if err := mdl.Fit(Xtr, ytr); err != nil {
			return Result{}, fmt.Errorf("transform: fold %d: %w", f, err)
		}
		p, err := mdl.PredictProba(Xval)
		if err != nil {
			return Result{}, fmt.Errorf("transform: fold %d: %w", f, err)
		}
		if len(p) != len(fold.Test) {
			return Result{}, fmt.Errorf("transform: fold %d: %s returned %d probabilities for %d rows", f, mdl.Name(), len(p), len(fold.Test))
		}
		for j, i := range fold.Test { scores[i] = p[j] }
		o.logger.Debug("fold scored", zap.Int("fold", f), zap.Int("held_out", len(fold.Test)))
	}

	auc, err := metrics.AUROC(y, scores)
	if err != nil {
		return Result{}, err
	}
	return Result{Scores: scores, AUC: auc}, nil
}

func subset(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	Xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for j, i := range idx {
		Xs[j] = X[i]
		ys[j] = y[i]
	}
	return Xs, ys
}
