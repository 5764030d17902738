package models

//go:generate mockgen -destination=mock_model.go -package=models . Model

import (
	"errors"
	"fmt"
)

// Model is the capability set every transform learner provides.
// PredictProba returns P(y=1) for each row.
type Model interface {
	Fit(X [][]float64, y []int) error
	PredictProba(X [][]float64) ([]float64, error)
	Name() string
}

// Factory produces a fresh, untrained model seeded for reproducibility.
type Factory func(seed int64) Model

type Kind string

const (
	KindTree Kind = "tree"
	KindMLP  Kind = "mlp"
	KindSVM  Kind = "svm"
)

// Spec describes one concrete variant and its hyperparameters.
type Spec struct {
	Kind          Kind    `json:"kind" yaml:"kind"`
	HiddenLayers  []int   `json:"hidden_layers,omitempty" yaml:"hiddenLayers,omitempty"`
	Kernel        Kernel  `json:"kernel,omitempty" yaml:"kernel,omitempty"`
	Degree        int     `json:"degree,omitempty" yaml:"degree,omitempty"`
	C             float64 `json:"c,omitempty" yaml:"c,omitempty"`
	MaxThresholds int     `json:"max_thresholds,omitempty" yaml:"maxThresholds,omitempty"`
}

func NewFactory(s Spec) (Factory, error) {
	switch s.Kind {
	case KindTree:
		return func(seed int64) Model {
			dt := NewDecisionTree(seed)
			dt.MaxThresholdsPerFe = s.MaxThresholds
			return dt
		}, nil
	case KindMLP:
		hidden := append([]int(nil), s.HiddenLayers...)
		if len(hidden) == 0 { hidden = []int{100} }
		for _, h := range hidden {
			if h <= 0 { return nil, fmt.Errorf("models: hidden layer size must be positive, got %d", h) }
		}
		return func(seed int64) Model { return NewMLP(hidden, seed) }, nil
	case KindSVM:
		k := s.Kernel
		if k == "" { k = KernelRBF }
		if k != KernelLinear && k != KernelPoly && k != KernelRBF {
			return nil, fmt.Errorf("models: unknown kernel %q", k)
		}
		deg := s.Degree
		if deg <= 0 { deg = 3 }
		c := s.C
		if c <= 0 { c = 1 }
		return func(seed int64) Model {
			svc := NewSVC(seed)
			svc.Kernel = k
			svc.Degree = deg
			svc.C = c
			return svc
		}, nil
	case "":
		return nil, errors.New("models: empty model kind")
	default:
		return nil, fmt.Errorf("models: unknown model kind %q", s.Kind)
	}
}

func checkXY(X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, errors.New("empty X")
	}
	if len(y) != len(X) {
		return 0, fmt.Errorf("X has %d rows but y has %d labels", len(X), len(y))
	}
	d := len(X[0])
	for i := range X {
		if len(X[i]) != d { return 0, fmt.Errorf("row %d has %d features, want %d", i, len(X[i]), d) }
	}
	for i, v := range y {
		if v != 0 && v != 1 { return 0, fmt.Errorf("label %d at row %d is not binary", v, i) }
	}
	return d, nil
}

func positiveRate(y []int) float64 {
	pos := 0
	for _, v := range y { pos += v }
	return float64(pos) / float64(len(y))
}
