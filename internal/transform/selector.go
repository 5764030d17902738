package transform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"putransform/internal/models"
)

type TrainerKind string

const (
	TrainerOOB   TrainerKind = "oob"
	TrainerKFold TrainerKind = "kfold"
)

const (
	// DefaultTransform is returned when no configuration beats BaselineAUC.
	DefaultTransform = "rt"
	BaselineAUC      = 0.5
)

// Config is one entry of the selector menu. Size is the ensemble size for
// TrainerOOB and the fold count for TrainerKFold. A non-nil Factory takes
// precedence over Model.
type Config struct {
	Name    string         `json:"name" yaml:"name"`
	Trainer TrainerKind    `json:"trainer" yaml:"trainer"`
	Model   models.Spec    `json:"model" yaml:"model"`
	Size    int            `json:"size" yaml:"size"`
	Factory models.Factory `json:"-" yaml:"-"`
}

func (c Config) factory() (models.Factory, error) {
	if c.Factory != nil { return c.Factory, nil }
	return models.NewFactory(c.Model)
}

// DefaultMenu returns the six univariate transforms in evaluation order.
func DefaultMenu() []Config {
	nn := models.Spec{Kind: models.KindMLP, HiddenLayers: []int{1, 1}}
	svm := models.Spec{Kind: models.KindSVM, Kernel: models.KernelPoly, Degree: 1}
	return []Config{
		{Name: "nn_1", Trainer: TrainerOOB, Model: nn, Size: 100},
		{Name: "nn_5", Trainer: TrainerOOB, Model: nn, Size: 100},
		{Name: "nn_25", Trainer: TrainerOOB, Model: nn, Size: 100},
		{Name: "rt", Trainer: TrainerOOB, Model: models.Spec{Kind: models.KindTree}, Size: 1000},
		{Name: "svm_1", Trainer: TrainerKFold, Model: svm, Size: 10},
		{Name: "svm_2", Trainer: TrainerKFold, Model: svm, Size: 10},
	}
}

// Progress is reported before (Done=false) and after (Done=true) each
// configuration is trained.
type Progress struct {
	Index   int
	Total   int
	Name    string
	Done    bool
	AUC     float64
	Elapsed time.Duration
}

type Candidate struct {
	Name    string      `json:"name"`
	Trainer TrainerKind `json:"trainer"`
	Result
}

// Report carries every candidate plus the selected transform.
type Report struct {
	Best       string      `json:"best"`
	Scores     []float64   `json:"scores"`
	AUC        float64     `json:"auc_pu"`
	Candidates []Candidate `json:"candidates"`
}

type Selector struct {
	opts []Option
	o    options
}

func NewSelector(opts ...Option) *Selector {
	return &Selector{opts: opts, o: buildOptions(opts)}
}

// Menu returns the configurations the selector will evaluate.
func (s *Selector) Menu() []Config {
	if len(s.o.menu) > 0 { return append([]Config(nil), s.o.menu...) }
	return DefaultMenu()
}

// GetOptimalTransform trains the menu and returns the scores and AUROC of
// the best transform.
func GetOptimalTransform(ctx context.Context, X [][]float64, y []int, opts ...Option) ([]float64, float64, error) {
	rep, err := NewSelector(opts...).Run(ctx, X, y)
	if err != nil {
		return nil, 0, err
	}
	return rep.Scores, rep.AUC, nil
}

// Run trains every configuration in order. Any failure aborts the run.
func (s *Selector) Run(ctx context.Context, X [][]float64, y []int) (Report, error) {
	menu := s.Menu()
	if err := ValidateMenu(menu); err != nil {
		return Report{}, err
	}
	log := s.o.logger
	rep := Report{Candidates: make([]Candidate, 0, len(menu))}
	for i, cfg := range menu {
		s.report(Progress{Index: i, Total: len(menu), Name: cfg.Name})
		start := time.Now()
		res, err := s.train(ctx, X, y, cfg, int64(i))
		if err != nil {
			return Report{}, fmt.Errorf("transform %s: %w", cfg.Name, err)
		}
		elapsed := time.Since(start)
		log.Info("transform trained",
			zap.String("transform", cfg.Name),
			zap.String("trainer", string(cfg.Trainer)),
			zap.Float64("auc_pu", res.AUC),
			zap.Duration("elapsed", elapsed),
		)
		rep.Candidates = append(rep.Candidates, Candidate{Name: cfg.Name, Trainer: cfg.Trainer, Result: res})
		s.report(Progress{Index: i, Total: len(menu), Name: cfg.Name, Done: true, AUC: res.AUC, Elapsed: elapsed})
	}

	best := pickBest(rep.Candidates)
	rep.Best = rep.Candidates[best].Name
	rep.Scores = rep.Candidates[best].Scores
	rep.AUC = rep.Candidates[best].AUC
	log.Info("optimal transform selected", zap.String("transform", rep.Best), zap.Float64("auc_pu", rep.AUC))
	return rep, nil
}

func (s *Selector) train(ctx context.Context, X [][]float64, y []int, cfg Config, offset int64) (Result, error) {
	factory, err := cfg.factory()
	if err != nil {
		return Result{}, err
	}
	opts := append(append([]Option(nil), s.opts...), WithSeed(s.o.seed+offset))
	switch cfg.Trainer {
	case TrainerKFold:
		return TrainKFoldClassifier(ctx, X, y, factory, cfg.Size, opts...)
	default:
		return TrainOOBClassifier(ctx, X, y, factory, cfg.Size, opts...)
	}
}

func (s *Selector) report(p Progress) {
	if s.o.progress != nil { s.o.progress(p) }
}

// pickBest starts from DefaultTransform at BaselineAUC and moves only on a
// strictly higher AUROC, so ties keep the earlier candidate.
func pickBest(cands []Candidate) int {
	best := 0
	for i, c := range cands {
		if c.Name == DefaultTransform {
			best = i
			break
		}
	}
	bestAUC := BaselineAUC
	for i, c := range cands {
		if c.AUC > bestAUC {
			best = i
			bestAUC = c.AUC
		}
	}
	return best
}

// ValidateMenu rejects empty menus, duplicate names and unknown trainers.
func ValidateMenu(menu []Config) error {
	if len(menu) == 0 {
		return errors.New("transform: empty menu")
	}
	seen := make(map[string]bool, len(menu))
	for _, c := range menu {
		if c.Name == "" {
			return errors.New("transform: menu entry without a name")
		}
		if seen[c.Name] {
			return fmt.Errorf("transform: duplicate menu entry %q", c.Name)
		}
		seen[c.Name] = true
		if c.Trainer != TrainerOOB && c.Trainer != TrainerKFold {
			return fmt.Errorf("transform: %s: unknown trainer %q", c.Name, c.Trainer)
		}
		if c.Size < 1 {
			return fmt.Errorf("transform: %s: size must be positive", c.Name)
		}
		if _, err := c.factory(); err != nil {
			return fmt.Errorf("transform: %s: %w", c.Name, err)
		}
	}
	return nil
}
