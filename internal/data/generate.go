package data

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// SyntheticConfig describes a two-component Gaussian PU problem. Labeled
// positives are drawn from the positive component; the unlabeled set is a
// mixture holding ClassPrior positives.
type SyntheticConfig struct {
	N               int     `yaml:"n" validate:"gte=2"`
	Dims            int     `yaml:"dims" validate:"gte=1"`
	LabeledFraction float64 `yaml:"labeledFraction" validate:"gt=0,lt=1"`
	ClassPrior      float64 `yaml:"classPrior" validate:"gte=0,lte=1"`
	Separation      float64 `yaml:"separation" validate:"gte=0"`
}

func DefaultSynthetic() SyntheticConfig {
	return SyntheticConfig{N: 1000, Dims: 5, LabeledFraction: 0.2, ClassPrior: 0.5, Separation: 2}
}

func GenerateSyntheticPU(cfg SyntheticConfig, seed uint64) (*Dataset, error) {
	if cfg.N < 2 || cfg.Dims < 1 {
		return nil, fmt.Errorf("data: need n >= 2 and dims >= 1, got n=%d dims=%d", cfg.N, cfg.Dims)
	}
	if cfg.LabeledFraction <= 0 || cfg.LabeledFraction >= 1 {
		return nil, errors.New("data: labeled fraction must be in (0,1)")
	}
	if cfg.ClassPrior < 0 || cfg.ClassPrior > 1 {
		return nil, errors.New("data: class prior must be in [0,1]")
	}

	rng := rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
	pos := distuv.Normal{Mu: cfg.Separation / 2, Sigma: 1, Src: rand.NewPCG(seed+1, 1)}
	neg := distuv.Normal{Mu: -cfg.Separation / 2, Sigma: 1, Src: rand.NewPCG(seed+2, 2)}

	ds := &Dataset{
		Names: make([]string, cfg.Dims),
		X:     make([][]float64, cfg.N),
		Y:     make([]int, cfg.N),
		Truth: make([]int, cfg.N),
	}
	for j := range ds.Names { ds.Names[j] = fmt.Sprintf("x%d", j) }

	for i := 0; i < cfg.N; i++ {
		labeled := rng.Float64() < cfg.LabeledFraction
		positive := labeled || rng.Float64() < cfg.ClassPrior
		// both classes are always present
		if i == 0 { labeled, positive = true, true }
		if i == 1 { labeled = false }
		src := neg
		if positive { src = pos }
		row := make([]float64, cfg.Dims)
		for j := range row { row[j] = src.Rand() }
		ds.X[i] = row
		if labeled { ds.Y[i] = 1 }
		if positive { ds.Truth[i] = 1 }
	}
	return ds, nil
}
