// Package transform trains the univariate PU transforms and picks the one
// with the best AUROC.
package transform

import (
	"runtime"

	"go.uber.org/zap"
)

// Result is the output of a single trainer run.
type Result struct {
	Scores []float64 `json:"scores"`
	AUC    float64   `json:"auc_pu"`
}

type options struct {
	seed        int64
	parallelism int
	logger      *zap.Logger
	progress    func(Progress)
	menu        []Config
}

// Option configures trainers and the selector.
type Option func(*options)

func WithSeed(seed int64) Option { return func(o *options) { o.seed = seed } }

// WithParallelism bounds the number of ensemble members fitted at once.
func WithParallelism(n int) Option { return func(o *options) { o.parallelism = n } }

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithProgress installs a hook called before and after each configuration.
func WithProgress(fn func(Progress)) Option { return func(o *options) { o.progress = fn } }

// WithMenu replaces the default six configurations.
func WithMenu(menu []Config) Option {
	return func(o *options) { o.menu = append([]Config(nil), menu...) }
}

func buildOptions(opts []Option) options {
	o := options{
		parallelism: runtime.GOMAXPROCS(0),
		logger:      zap.NewNop(),
	}
	for _, fn := range opts { fn(&o) }
	if o.parallelism < 1 { o.parallelism = 1 }
	if o.logger == nil { o.logger = zap.NewNop() }
	return o
}
