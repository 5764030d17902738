package models

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type Kernel string

const (
	KernelLinear Kernel = "linear"
	KernelPoly   Kernel = "poly"
	KernelRBF    Kernel = "rbf"
)

// SVC is a C-support vector classifier solved with SMO. Probabilities come
// from a sigmoid fitted on cross-validated decision values (Platt scaling).
type SVC struct {
	Kernel   Kernel
	Degree   int
	Coef0    float64
	C        float64
	Tol      float64
	MaxIter  int
	ProbFold int

	// Gamma is resolved at fit time from the "scale" heuristic when zero.
	Gamma float64

	sv        [][]float64
	coef      []float64
	rho       float64
	probA     float64
	probB     float64
	nFeatures int
	rng       *rand.Rand
}

func NewSVC(seed int64) *SVC {
	return &SVC{
		Kernel:   KernelRBF,
		Degree:   3,
		C:        1,
		Tol:      1e-3,
		MaxIter:  1_000_000,
		ProbFold: 5,
		rng:      newRand(seed),
	}
}

func (s *SVC) Name() string {
	if s.Kernel == KernelPoly { return fmt.Sprintf("SVC(poly,%d)", s.Degree) }
	return fmt.Sprintf("SVC(%s)", s.Kernel)
}

func (s *SVC) Fit(X [][]float64, y []int) error {
	d, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("svc: %w", err)
	}
	if p := positiveRate(y); p == 0 || p == 1 {
		return errors.New("svc: the number of classes has to be greater than one")
	}
	if s.rng == nil { s.rng = newRand(0) }
	s.nFeatures = d
	if s.Gamma <= 0 { s.Gamma = scaleGamma(X) }

	dec, err := s.crossValidatedDecisions(X, y)
	if err != nil {
		return err
	}
	s.probA, s.probB = sigmoidTrain(dec, y)

	sol, err := s.solve(X, y)
	if err != nil {
		return err
	}
	s.sv, s.coef, s.rho = sol.sv, sol.coef, sol.rho
	return nil
}

// DecisionFunction returns signed distances; positive favours class 1.
func (s *SVC) DecisionFunction(X [][]float64) ([]float64, error) {
	if s.coef == nil {
		return nil, errors.New("svc: model not fitted")
	}
	out := make([]float64, len(X))
	for i, x := range X {
		if len(x) != s.nFeatures {
			return nil, fmt.Errorf("svc: row %d has %d features, want %d", i, len(x), s.nFeatures)
		}
		out[i] = decisionValue(s, s.sv, s.coef, s.rho, x)
	}
	return out, nil
}

func (s *SVC) PredictProba(X [][]float64) ([]float64, error) {
	dec, err := s.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	for i, f := range dec { dec[i] = sigmoidPredict(f, s.probA, s.probB) }
	return dec, nil
}

func (s *SVC) kernel(a, b []float64) float64 {
	switch s.Kernel {
	case KernelLinear:
		return floats.Dot(a, b)
	case KernelPoly:
		return math.Pow(s.Gamma*floats.Dot(a, b)+s.Coef0, float64(s.Degree))
	default:
		dist := floats.Distance(a, b, 2)
		return math.Exp(-s.Gamma * dist * dist)
	}
}

type svmSolution struct {
	sv   [][]float64
	coef []float64
	rho  float64
}

// solve runs SMO with maximal-violating-pair working set selection on the
// dual problem min ½aᵀQa − eᵀa, 0 ≤ a ≤ C, yᵀa = 0.
func (s *SVC) solve(X [][]float64, labels []int) (svmSolution, error) {
	n := len(X)
	y := make([]float64, n)
	for i, v := range labels {
		y[i] = -1
		if v == 1 { y[i] = 1 }
	}
	Q := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ { Q.SetSym(i, j, y[i]*y[j]*s.kernel(X[i], X[j])) }
	}

	C := s.C
	alpha := make([]float64, n)
	G := make([]float64, n)
	for i := range G { G[i] = -1 }
	const tau = 1e-12

	for iter := 0; iter < s.MaxIter; iter++ {
		i, j := -1, -1
		gmax, gmin := math.Inf(-1), math.Inf(1)
		for t := 0; t < n; t++ {
			v := -y[t] * G[t]
			if inUp(alpha[t], y[t], C) && v >= gmax { i, gmax = t, v }
			if inLow(alpha[t], y[t], C) && v <= gmin { j, gmin = t, v }
		}
		if i < 0 || j < 0 || gmax-gmin < s.Tol { break }

		oldI, oldJ := alpha[i], alpha[j]
		qii, qjj, qij := Q.At(i, i), Q.At(j, j), Q.At(i, j)
		if y[i] != y[j] {
			quad := qii + qjj + 2*qij
			if quad <= 0 { quad = tau }
			delta := (-G[i] - G[j]) / quad
			diff := alpha[i] - alpha[j]
			alpha[i] += delta
			alpha[j] += delta
			if diff > 0 {
				if alpha[j] < 0 { alpha[j] = 0; alpha[i] = diff }
			} else if alpha[i] < 0 {
				alpha[i] = 0
				alpha[j] = -diff
			}
			if diff > 0 {
				if alpha[i] > C { alpha[i] = C; alpha[j] = C - diff }
			} else if alpha[j] > C {
				alpha[j] = C
				alpha[i] = C + diff
			}
		} else {
			quad := qii + qjj - 2*qij
			if quad <= 0 { quad = tau }
			delta := (G[i] - G[j]) / quad
			sum := alpha[i] + alpha[j]
			alpha[i] -= delta
			alpha[j] += delta
			if sum > C {
				if alpha[i] > C { alpha[i] = C; alpha[j] = sum - C }
			} else if alpha[j] < 0 {
				alpha[j] = 0
				alpha[i] = sum
			}
			if sum > C {
				if alpha[j] > C { alpha[j] = C; alpha[i] = sum - C }
			} else if alpha[i] < 0 {
				alpha[i] = 0
				alpha[j] = sum
			}
		}

		dI, dJ := alpha[i]-oldI, alpha[j]-oldJ
		for t := 0; t < n; t++ { G[t] += Q.At(i, t)*dI + Q.At(j, t)*dJ }
	}

	ub, lb := math.Inf(1), math.Inf(-1)
	sumFree, nFree := 0.0, 0
	for t := 0; t < n; t++ {
		yG := y[t] * G[t]
		switch {
		case alpha[t] >= C:
			if y[t] < 0 { ub = math.Min(ub, yG) } else { lb = math.Max(lb, yG) }
		case alpha[t] <= 0:
			if y[t] > 0 { ub = math.Min(ub, yG) } else { lb = math.Max(lb, yG) }
		default:
			nFree++
			sumFree += yG
		}
	}
	var rho float64
	if nFree > 0 { rho = sumFree / float64(nFree) } else { rho = (ub + lb) / 2 }
	if math.IsNaN(rho) || math.IsInf(rho, 0) {
		return svmSolution{}, errors.New("svc: solver did not converge to a finite bias")
	}

	sol := svmSolution{rho: rho}
	for t := 0; t < n; t++ {
		if alpha[t] > 0 {
			sol.sv = append(sol.sv, X[t])
			sol.coef = append(sol.coef, alpha[t]*y[t])
		}
	}
	if sol.coef == nil { sol.coef = []float64{} }
	return sol, nil
}

func inUp(a, y, C float64) bool  { return (y > 0 && a < C) || (y < 0 && a > 0) }
func inLow(a, y, C float64) bool { return (y < 0 && a < C) || (y > 0 && a > 0) }

func decisionValue(s *SVC, sv [][]float64, coef []float64, rho float64, x []float64) float64 {
	f := -rho
	for k, v := range sv { f += coef[k] * s.kernel(v, x) }
	return f
}

// crossValidatedDecisions collects out-of-fold decision values on a
// shuffled ProbFold-way split, the input for the Platt sigmoid.
func (s *SVC) crossValidatedDecisions(X [][]float64, y []int) ([]float64, error) {
	n := len(X)
	folds := s.ProbFold
	if folds < 2 { folds = 2 }
	if folds > n { folds = n }
	perm := s.rng.Perm(n)
	dec := make([]float64, n)
	for k := 0; k < folds; k++ {
		begin, end := k*n/folds, (k+1)*n/folds
		var trX [][]float64
		var trY []int
		pos, neg := 0, 0
		for p := 0; p < n; p++ {
			if p >= begin && p < end { continue }
			trX = append(trX, X[perm[p]])
			trY = append(trY, y[perm[p]])
			if y[perm[p]] == 1 { pos++ } else { neg++ }
		}
		switch {
		case pos > 0 && neg == 0:
			for p := begin; p < end; p++ { dec[perm[p]] = 1 }
		case pos == 0 && neg > 0:
			for p := begin; p < end; p++ { dec[perm[p]] = -1 }
		case pos == 0 && neg == 0:
			for p := begin; p < end; p++ { dec[perm[p]] = 0 }
		default:
			sol, err := s.solve(trX, trY)
			if err != nil {
				return nil, err
			}
			for p := begin; p < end; p++ {
				dec[perm[p]] = decisionValue(s, sol.sv, sol.coef, sol.rho, X[perm[p]])
			}
		}
	}
	return dec, nil
}

// sigmoidTrain fits P(y=1|f) = 1/(1+exp(Af+B)) by Newton's method with
// backtracking, using regularised targets.
func sigmoidTrain(dec []float64, y []int) (float64, float64) {
	var prior1, prior0 float64
	for _, v := range y {
		if v == 1 { prior1++ } else { prior0++ }
	}
	const (
		maxIter = 100
		minStep = 1e-10
		sigma   = 1e-12
		eps     = 1e-5
	)
	hi := (prior1 + 1) / (prior1 + 2)
	lo := 1 / (prior0 + 2)
	t := make([]float64, len(y))
	for i, v := range y {
		if v == 1 { t[i] = hi } else { t[i] = lo }
	}
	A, B := 0.0, math.Log((prior0+1)/(prior1+1))
	objective := func(A, B float64) float64 {
		f := 0.0
		for i, d := range dec {
			z := d*A + B
			if z >= 0 { f += t[i]*z + math.Log1p(math.Exp(-z)) } else { f += (t[i]-1)*z + math.Log1p(math.Exp(z)) }
		}
		return f
	}
	fval := objective(A, B)
	for it := 0; it < maxIter; it++ {
		h11, h22, h21, g1, g2 := sigma, sigma, 0.0, 0.0, 0.0
		for i, d := range dec {
			z := d*A + B
			var p, q float64
			if z >= 0 {
				p = math.Exp(-z) / (1 + math.Exp(-z))
				q = 1 / (1 + math.Exp(-z))
			} else {
				p = 1 / (1 + math.Exp(z))
				q = math.Exp(z) / (1 + math.Exp(z))
			}
			d2 := p * q
			h11 += d * d * d2
			h22 += d2
			h21 += d * d2
			d1 := t[i] - p
			g1 += d * d1
			g2 += d1
		}
		if math.Abs(g1) < eps && math.Abs(g2) < eps { break }
		det := h11*h22 - h21*h21
		dA := -(h22*g1 - h21*g2) / det
		dB := -(-h21*g1 + h11*g2) / det
		gd := g1*dA + g2*dB
		step := 1.0
		for step >= minStep {
			nA, nB := A+step*dA, B+step*dB
			nf := objective(nA, nB)
			if nf < fval+0.0001*step*gd {
				A, B, fval = nA, nB, nf
				break
			}
			step /= 2
		}
		if step < minStep { break }
	}
	return A, B
}

func sigmoidPredict(f, A, B float64) float64 {
	z := f*A + B
	if z >= 0 { return math.Exp(-z) / (1 + math.Exp(-z)) }
	return 1 / (1 + math.Exp(z))
}

// scaleGamma is 1/(d·Var(X)) over every entry of X, or 1 for constant X.
func scaleGamma(X [][]float64) float64 {
	all := make([]float64, 0, len(X)*len(X[0]))
	for _, row := range X { all = append(all, row...) }
	_, v := stat.PopMeanVariance(all, nil)
	if v == 0 { return 1 }
	return 1 / (float64(len(X[0])) * v)
}
