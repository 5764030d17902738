package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"putransform/internal/config"
	"putransform/internal/data"
	"putransform/internal/report"
	"putransform/internal/store"
	"putransform/internal/transform"
	"putransform/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfgPath := flag.String("config", "", "YAML run file")
	dataPath := flag.String("data", "", "CSV with features and a 0/1 label column (empty: synthetic data)")
	label := flag.String("label", "", "Label column name (default: last column)")
	seed := flag.Int64("seed", 0, "Random seed (overrides the config file when non-zero)")
	n := flag.Int("n", 0, "Synthetic instances (overrides the config file when non-zero)")
	saveData := flag.String("save_data", "", "Write the dataset used to this CSV")
	scoresOut := flag.String("scores_out", "", "CSV of per-instance transform scores")
	candOut := flag.String("candidates_out", "", "CSV summary of all candidates")
	rocOut := flag.String("roc_out", "", "PNG with the ROC curve of every candidate")
	storePath := flag.String("store", "", "BoltDB file recording a summary of each run")
	flag.Parse()

	settings, err := config.Load(*cfgPath)
	if err != nil { logger.Fatal("Failed to load config", zap.Error(err)) }
	if *dataPath != "" { settings.Data.Path = *dataPath }
	if *label != "" { settings.Data.LabelColumn = *label }
	if *seed != 0 { settings.Seed = *seed }
	if *n > 0 { settings.Data.Synthetic.N = *n }
	if *scoresOut != "" { settings.Output.Scores = *scoresOut }
	if *candOut != "" { settings.Output.Candidates = *candOut }
	if *rocOut != "" { settings.Output.ROCImage = *rocOut }
	if *storePath != "" { settings.Output.Store = *storePath }
	if err := settings.Validate(); err != nil { logger.Fatal("Invalid settings", zap.Error(err)) }

	ds, err := loadDataset(settings)
	if err != nil { logger.Fatal("Failed to load dataset", zap.Error(err)) }
	labeled, unlabeled := ds.Counts()
	logger.Info("Dataset ready",
		zap.Int("instances", ds.Len()),
		zap.Int("features", ds.Dims()),
		zap.Int("labeled", labeled),
		zap.Int("unlabeled", unlabeled),
	)
	if *saveData != "" {
		if err := data.WriteCSV(*saveData, ds); err != nil { logger.Warn("Failed to save dataset", zap.Error(err)) }
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := append(settings.Options(),
		transform.WithLogger(logger),
		transform.WithProgress(utils.LogProgress(logger)),
	)
	rep, err := transform.NewSelector(opts...).Run(ctx, ds.X, ds.Y)
	if err != nil { logger.Fatal("Failed to train univariate transforms", zap.Error(err)) }

	if err := data.WriteScoresCSV(settings.Output.Scores, ds.Y, rep.Scores); err != nil {
		logger.Fatal("Failed to write scores", zap.Error(err))
	}
	if settings.Output.Candidates != "" {
		if err := report.WriteCandidatesCSV(settings.Output.Candidates, rep); err != nil {
			logger.Warn("Failed to write candidate summary", zap.Error(err))
		}
	}
	if settings.Output.ROCImage != "" {
		if err := report.PlotROC(settings.Output.ROCImage, ds.Y, rep); err != nil {
			logger.Warn("Failed to plot ROC curves", zap.Error(err))
		} else {
			logger.Info("ROC curves saved", zap.String("png", settings.Output.ROCImage))
		}
	}
	if settings.Output.Store != "" {
		if err := recordRun(settings, ds, rep); err != nil {
			logger.Warn("Failed to record run", zap.Error(err))
		}
	}
	logger.Info("Scores saved", zap.String("path", settings.Output.Scores))
	fmt.Printf("Transform: %s  AUC_PU: %.4f\n", rep.Best, rep.AUC)
}

func recordRun(s config.Settings, ds *data.Dataset, rep transform.Report) (err error) {
	runs, err := store.Open(s.Output.Store)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, runs.Close()) }()
	source := s.Data.Path
	if source == "" { source = "synthetic" }
	_, err = runs.Save(store.NewRun(source, s.Seed, ds.X, rep))
	return err
}

func loadDataset(s config.Settings) (*data.Dataset, error) {
	if s.Data.Path != "" {
		return data.LoadCSV(s.Data.Path, s.Data.LabelColumn)
	}
	return data.GenerateSyntheticPU(s.Data.Synthetic, uint64(s.Seed))
}
