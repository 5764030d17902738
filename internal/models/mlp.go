package models

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MLP is a feed-forward binary classifier with ReLU hidden layers and a
// logistic output unit, trained with Adam on mini-batches.
type MLP struct {
	HiddenLayers  []int
	LearningRate  float64
	Alpha         float64
	BatchSize     int
	MaxIter       int
	Tol           float64
	NIterNoChange int

	// Loss is the training loss of the last completed epoch.
	Loss  float64
	NIter int

	weights   []*mat.Dense
	biases    [][]float64
	constant  float64
	isConst   bool
	nFeatures int
	rng       *rand.Rand
}

func NewMLP(hidden []int, seed int64) *MLP {
	return &MLP{
		HiddenLayers:  append([]int(nil), hidden...),
		LearningRate:  1e-3,
		Alpha:         1e-4,
		BatchSize:     200,
		MaxIter:       200,
		Tol:           1e-4,
		NIterNoChange: 10,
		rng:           newRand(seed),
	}
}

func (m *MLP) Name() string { return fmt.Sprintf("MLP%v", m.HiddenLayers) }

func (m *MLP) Fit(X [][]float64, y []int) error {
	d, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("mlp: %w", err)
	}
	if m.rng == nil { m.rng = newRand(0) }
	m.nFeatures = d
	m.isConst = false
	if p := positiveRate(y); p == 0 || p == 1 {
		m.isConst, m.constant = true, p
		return nil
	}

	m.init(d)
	n := len(X)
	bs := m.BatchSize
	if bs <= 0 || bs > n { bs = n }

	opt := newAdam(m.weights, m.biases, m.LearningRate)
	order := make([]int, n)
	for i := range order { order[i] = i }
	bestLoss := math.Inf(1)
	noImprove := 0
	for epoch := 0; epoch < m.MaxIter; epoch++ {
		m.rng.Shuffle(n, func(a, b int) { order[a], order[b] = order[b], order[a] })
		total := 0.0
		for start := 0; start < n; start += bs {
			end := min(start+bs, n)
			Xb, yb := batch(X, y, order[start:end])
			loss, gW, gB := m.backprop(Xb, yb)
			opt.step(m.weights, m.biases, gW, gB)
			total += loss * float64(end-start)
		}
		m.Loss = total / float64(n)
		m.NIter = epoch + 1
		if math.IsNaN(m.Loss) || math.IsInf(m.Loss, 0) {
			return errors.New("mlp: training diverged")
		}
		if m.Loss > bestLoss-m.Tol { noImprove++ } else { noImprove = 0 }
		if m.Loss < bestLoss { bestLoss = m.Loss }
		if noImprove > m.NIterNoChange { break }
	}
	return nil
}

func (m *MLP) PredictProba(X [][]float64) ([]float64, error) {
	if m.weights == nil && !m.isConst {
		return nil, errors.New("mlp: model not fitted")
	}
	for i := range X {
		if len(X[i]) != m.nFeatures {
			return nil, fmt.Errorf("mlp: row %d has %d features, want %d", i, len(X[i]), m.nFeatures)
		}
	}
	out := make([]float64, len(X))
	if m.isConst {
		for i := range out { out[i] = m.constant }
		return out, nil
	}
	if len(X) == 0 { return out, nil }
	acts := m.forward(toDense(X))
	mat.Col(out, 0, acts[len(acts)-1])
	return out, nil
}

// init applies Glorot uniform initialisation to weights and biases.
func (m *MLP) init(d int) {
	sizes := append(append([]int{d}, m.HiddenLayers...), 1)
	m.weights = make([]*mat.Dense, len(sizes)-1)
	m.biases = make([][]float64, len(sizes)-1)
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		factor := 6.0
		if l == len(sizes)-2 { factor = 2.0 }
		bound := math.Sqrt(factor / float64(in+out))
		w := make([]float64, in*out)
		for i := range w { w[i] = m.rng.Float64()*2*bound - bound }
		b := make([]float64, out)
		for i := range b { b[i] = m.rng.Float64()*2*bound - bound }
		m.weights[l] = mat.NewDense(in, out, w)
		m.biases[l] = b
	}
}

func (m *MLP) forward(X *mat.Dense) []*mat.Dense {
	acts := make([]*mat.Dense, len(m.weights)+1)
	acts[0] = X
	last := len(m.weights) - 1
	for l, W := range m.weights {
		b := m.biases[l]
		z := &mat.Dense{}
		z.Mul(acts[l], W)
		z.Apply(func(_, j int, v float64) float64 {
			v += b[j]
			if l == last { return sigmoid(v) }
			return math.Max(0, v)
		}, z)
		acts[l+1] = z
	}
	return acts
}

func (m *MLP) backprop(X *mat.Dense, y []float64) (float64, []*mat.Dense, [][]float64) {
	acts := m.forward(X)
	rows, _ := X.Dims()
	bs := float64(rows)
	out := acts[len(acts)-1]

	loss := 0.0
	delta := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		p := math.Min(math.Max(out.At(i, 0), machineEps), 1-machineEps)
		loss -= y[i]*math.Log(p) + (1-y[i])*math.Log(1-p)
		delta.Set(i, 0, out.At(i, 0)-y[i])
	}
	loss /= bs
	sq := 0.0
	for _, W := range m.weights {
		raw := W.RawMatrix().Data
		sq += floats.Dot(raw, raw)
	}
	loss += 0.5 * m.Alpha * sq / bs

	gW := make([]*mat.Dense, len(m.weights))
	gB := make([][]float64, len(m.weights))
	for l := len(m.weights) - 1; l >= 0; l-- {
		g := &mat.Dense{}
		g.Mul(acts[l].T(), delta)
		reg := &mat.Dense{}
		reg.Scale(m.Alpha, m.weights[l])
		g.Add(g, reg)
		g.Scale(1/bs, g)
		gW[l] = g

		_, cols := delta.Dims()
		gB[l] = make([]float64, cols)
		for j := 0; j < cols; j++ { gB[l][j] = mat.Sum(delta.ColView(j)) / bs }

		if l > 0 {
			prev := &mat.Dense{}
			prev.Mul(delta, m.weights[l].T())
			a := acts[l]
			prev.Apply(func(i, j int, v float64) float64 {
				if a.At(i, j) <= 0 { return 0 }
				return v
			}, prev)
			delta = prev
		}
	}
	return loss, gW, gB
}

type adam struct {
	lr, beta1, beta2, eps float64
	t                     int
	mW, vW                []*mat.Dense
	mB, vB                [][]float64
}

func newAdam(ws []*mat.Dense, bs [][]float64, lr float64) *adam {
	a := &adam{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-8}
	for l := range ws {
		r, c := ws[l].Dims()
		a.mW = append(a.mW, mat.NewDense(r, c, nil))
		a.vW = append(a.vW, mat.NewDense(r, c, nil))
		a.mB = append(a.mB, make([]float64, len(bs[l])))
		a.vB = append(a.vB, make([]float64, len(bs[l])))
	}
	return a
}

func (a *adam) step(ws []*mat.Dense, bs [][]float64, gW []*mat.Dense, gB [][]float64) {
	a.t++
	lrT := a.lr * math.Sqrt(1-math.Pow(a.beta2, float64(a.t))) / (1 - math.Pow(a.beta1, float64(a.t)))
	for l := range ws {
		a.update(ws[l].RawMatrix().Data, gW[l].RawMatrix().Data, a.mW[l].RawMatrix().Data, a.vW[l].RawMatrix().Data, lrT)
		a.update(bs[l], gB[l], a.mB[l], a.vB[l], lrT)
	}
}

func (a *adam) update(p, g, m, v []float64, lrT float64) {
	for i := range p {
		m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
		v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]
		p[i] -= lrT * m[i] / (math.Sqrt(v[i]) + a.eps)
	}
}

func batch(X [][]float64, y []int, idx []int) (*mat.Dense, []float64) {
	d := len(X[0])
	data := make([]float64, 0, len(idx)*d)
	yb := make([]float64, len(idx))
	for k, i := range idx {
		data = append(data, X[i]...)
		yb[k] = float64(y[i])
	}
	return mat.NewDense(len(idx), d, data), yb
}

func toDense(X [][]float64) *mat.Dense {
	d := len(X[0])
	data := make([]float64, 0, len(X)*d)
	for _, row := range X { data = append(data, row...) }
	return mat.NewDense(len(X), d, data)
}

func sigmoid(z float64) float64 {
	if z >= 0 { return 1.0 / (1.0 + math.Exp(-z)) }
	e := math.Exp(z)
	return e / (1.0 + e)
}

const machineEps = 2.220446049250313e-16
