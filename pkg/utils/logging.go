package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"putransform/internal/transform"
)

var (
	logger   *zap.Logger
	initOnce sync.Once
)

// Logger returns the process logger configured from LOG_LEVEL and LOG_FILE.
// With LOG_FILE set, JSON records go to both the file and stdout.
func Logger() *zap.Logger {
	initOnce.Do(func() {
		l, err := NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE"))
		if err != nil {
			l, _ = zap.NewProduction()
			l.Warn("falling back to default logger", zap.Error(err))
		}
		logger = l
	})
	return logger
}

func NewLogger(level, file string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(level); err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)
	if file == "" {
		return zap.New(consoleCore), nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
	return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}

// LogProgress reports selector progress through l.
func LogProgress(l *zap.Logger) func(transform.Progress) {
	return func(p transform.Progress) {
		step := fmt.Sprintf("%d/%d", p.Index+1, p.Total)
		if !p.Done {
			l.Info("Training univariate transform", zap.String("step", step), zap.String("transform", p.Name))
			return
		}
		l.Info("Univariate transform done",
			zap.String("step", step),
			zap.String("transform", p.Name),
			zap.Float64("auc_pu", p.AUC),
			zap.Duration("elapsed", p.Elapsed),
		)
	}
}
