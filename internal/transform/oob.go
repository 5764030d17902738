package transform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"putransform/internal/features"
	"putransform/internal/metrics"
	"putransform/internal/models"
)

const DefaultEstimators = 100

type oobMember struct {
	oob   []int
	proba []float64
}

// TrainOOBClassifier fits nEstimators bootstrap models and scores every
// instance with the mean P(y=1) of the members that never saw it. An
// instance drawn into every bootstrap sample keeps a NaN score and is left
// out of the AUROC.
func TrainOOBClassifier(ctx context.Context, X [][]float64, y []int, factory models.Factory, nEstimators int, opts ...Option) (Result, error) {
	o := buildOptions(opts)
	if factory == nil {
		return Result{}, errors.New("transform: nil model factory")
	}
	if nEstimators < 1 {
		return Result{}, fmt.Errorf("transform: ensemble size must be positive, got %d", nEstimators)
	}
	if err := checkLabels(X, y); err != nil {
		return Result{}, err
	}
	Xz, _, err := features.PrepFeatures(X)
	if err != nil {
		return Result{}, err
	}

	members := make([]oobMember, nEstimators)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for m := 0; m < nEstimators; m++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mb, err := fitMember(Xz, y, factory, o.seed, m)
			if err != nil {
				return fmt.Errorf("transform: ensemble member %d: %w", m, err)
			}
			members[m] = mb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	n := len(Xz)
	sum := make([]float64, n)
	count := make([]int, n)
	for _, mb := range members {
		for k, i := range mb.oob {
			sum[i] += mb.proba[k]
			count[i]++
		}
	}
	scores := make([]float64, n)
	unscored := 0
	for i := range scores {
		if count[i] == 0 {
			scores[i] = math.NaN()
			unscored++
			continue
		}
		scores[i] = sum[i] / float64(count[i])
	}
	if unscored > 0 {
		o.logger.Warn("instances never out of bag", zap.Int("unscored", unscored), zap.Int("estimators", nEstimators))
	}

	auc, err := metrics.AUROC(y, scores)
	if err != nil {
		return Result{}, err
	}
	return Result{Scores: scores, AUC: auc}, nil
}

// fitMember trains one ensemble member on a full-size bootstrap resample
// and predicts the rows it left out.
func fitMember(X [][]float64, y []int, factory models.Factory, seed int64, m int) (oobMember, error) {
	n := len(X)
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(m)+1))
	inBag := make([]bool, n)
	Xb := make([][]float64, n)
	yb := make([]int, n)
	for i := 0; i < n; i++ {
		k := rng.IntN(n)
		inBag[k] = true
		Xb[i] = X[k]
		yb[i] = y[k]
	}

	mdl := factory(memberSeed(seed, m))
	if err := mdl.Fit(Xb, yb); err != nil {
		return oobMember{}, err
	}

	var mb oobMember
	var rows [][]float64
	for i := 0; i < n; i++ {
		if inBag[i] { continue }
		mb.oob = append(mb.oob, i)
		rows = append(rows, X[i])
	}
	if len(rows) == 0 { return mb, nil }
	p, err := mdl.PredictProba(rows)
	if err != nil {
		return oobMember{}, err
	}
	if len(p) != len(rows) {
		return oobMember{}, fmt.Errorf("%s returned %d probabilities for %d rows", mdl.Name(), len(p), len(rows))
	}
	mb.proba = p
	return mb, nil
}

func memberSeed(seed int64, m int) int64 { return seed*1_000_003 + int64(m) }

func checkLabels(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("transform: empty feature matrix")
	}
	if len(y) != len(X) {
		return fmt.Errorf("transform: %d rows but %d labels", len(X), len(y))
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return fmt.Errorf("transform: label %d at index %d is not 0 or 1", v, i)
		}
	}
	return nil
}
