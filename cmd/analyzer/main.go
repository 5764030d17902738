package main

import (
	"context"
	"flag"
	"fmt"
	"math"

	"go.uber.org/zap"

	"putransform/internal/config"
	"putransform/internal/data"
	"putransform/internal/report"
	"putransform/internal/transform"
	"putransform/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfgPath := flag.String("config", "", "YAML run file")
	dataPath := flag.String("data", "", "CSV input (empty: synthetic data)")
	label := flag.String("label", "", "Label column name (default: last column)")
	points := flag.Int("points", 6, "Number of points on the curve")
	minSize := flag.Int("min", 50, "Smallest sample size")
	outImg := flag.String("out_img", "data/auc_curve.png", "Output PNG")
	outCsv := flag.String("out_csv", "data/auc_curve.csv", "Output CSV")
	flag.Parse()

	settings, err := config.Load(*cfgPath)
	if err != nil { logger.Fatal("Failed to load config", zap.Error(err)) }
	if *dataPath != "" { settings.Data.Path = *dataPath }
	if *label != "" { settings.Data.LabelColumn = *label }

	var ds *data.Dataset
	if settings.Data.Path != "" {
		ds, err = data.LoadCSV(settings.Data.Path, settings.Data.LabelColumn)
	} else {
		ds, err = data.GenerateSyntheticPU(settings.Data.Synthetic, uint64(settings.Seed))
	}
	if err != nil { logger.Fatal("Failed to load dataset", zap.Error(err)) }

	menu := settings.Menu()
	curve := report.Curve{Sizes: curveSizes(ds.Len(), *points, *minSize), AUC: map[string][]float64{}}
	for _, c := range menu { curve.Names = append(curve.Names, c.Name) }

	ctx := context.Background()
	for _, s := range curve.Sizes {
		sub := ds.Head(s)
		if l, u := sub.Counts(); l == 0 || u == 0 {
			logger.Fatal("Sample has a single class", zap.Int("size", s))
		}
		rep, err := transform.NewSelector(append(settings.Options(), transform.WithLogger(logger))...).Run(ctx, sub.X, sub.Y)
		if err != nil { logger.Fatal("Training failed", zap.Int("size", s), zap.Error(err)) }
		for _, c := range rep.Candidates { curve.AUC[c.Name] = append(curve.AUC[c.Name], c.AUC) }
		fmt.Printf("size=%d | best=%s | auc=%.3f\n", s, rep.Best, rep.AUC)
	}

	if err := report.WriteCurveCSV(*outCsv, curve); err != nil {
		logger.Warn("Failed to write curve CSV", zap.Error(err))
	} else {
		logger.Info("Curve saved", zap.String("csv", *outCsv))
	}
	if err := report.PlotCurve(*outImg, curve); err != nil {
		logger.Warn("Failed to plot curve", zap.Error(err))
	} else {
		logger.Info("Chart saved", zap.String("png", *outImg))
	}
}

// curveSizes spaces points geometrically from min up to total.
func curveSizes(total, points, min int) []int {
	if points < 2 { points = 2 }
	if min < 20 { min = 20 }
	if min > total { min = total }
	ratio := math.Pow(float64(total)/float64(min), 1.0/float64(points-1))
	sizes := make([]int, 0, points)
	last := 0
	for i := 0; i < points; i++ {
		s := int(math.Round(float64(min) * math.Pow(ratio, float64(i))))
		if s > total { s = total }
		if s > last {
			sizes = append(sizes, s)
			last = s
		}
	}
	if sizes[len(sizes)-1] != total { sizes[len(sizes)-1] = total }
	return sizes
}
