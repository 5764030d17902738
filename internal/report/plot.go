// Package report renders transform results as charts and tables.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"putransform/internal/data"
	"putransform/internal/metrics"
	"putransform/internal/transform"
)

// PlotROC draws one ROC curve per candidate, the selected one first.
func PlotROC(path string, y []int, rep transform.Report) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Univariate transforms (best: %s, AUC %.3f)", rep.Best, rep.AUC)
	p.X.Label.Text = "False positive rate"
	p.Y.Label.Text = "True positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	var lines []interface{}
	for _, c := range ordered(rep) {
		fpr, tpr, err := metrics.ROCCurve(y, c.Scores)
		if err != nil {
			return fmt.Errorf("report: %s: %w", c.Name, err)
		}
		pts := make(plotter.XYs, len(fpr))
		for i := range fpr { pts[i].X, pts[i].Y = fpr[i], tpr[i] }
		lines = append(lines, fmt.Sprintf("%s (%.3f)", c.Name, c.AUC), pts)
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return err
	}
	return save(p, path)
}

// Curve is the AUROC of each transform at increasing sample sizes.
type Curve struct {
	Sizes []int
	AUC   map[string][]float64
	Names []string
}

func PlotCurve(path string, c Curve) error {
	p := plot.New()
	p.Title.Text = "AUROC vs sample size"
	p.X.Label.Text = "Instances"
	p.Y.Label.Text = "AUROC"
	p.Y.Min, p.Y.Max = 0, 1

	var lines []interface{}
	for _, name := range c.Names {
		pts := make(plotter.XYs, len(c.Sizes))
		for i, s := range c.Sizes { pts[i].X, pts[i].Y = float64(s), c.AUC[name][i] }
		lines = append(lines, name, pts)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return err
	}
	return save(p, path)
}

func WriteCurveCSV(path string, c Curve) error {
	hdr := append([]string{"size"}, c.Names...)
	rows := make([][]string, len(c.Sizes))
	for i, s := range c.Sizes {
		rec := []string{strconv.Itoa(s)}
		for _, name := range c.Names { rec = append(rec, fmt.Sprintf("%.6f", c.AUC[name][i])) }
		rows[i] = rec
	}
	return data.Table(path, hdr, rows)
}

// WriteCandidatesCSV summarises each candidate and marks the selected one.
func WriteCandidatesCSV(path string, rep transform.Report) error {
	rows := make([][]string, 0, len(rep.Candidates))
	for _, c := range rep.Candidates {
		rows = append(rows, []string{c.Name, string(c.Trainer), fmt.Sprintf("%.6f", c.AUC), strconv.FormatBool(c.Name == rep.Best)})
	}
	return data.Table(path, []string{"transform", "trainer", "auc_pu", "selected"}, rows)
}

func ordered(rep transform.Report) []transform.Candidate {
	out := make([]transform.Candidate, 0, len(rep.Candidates))
	for _, c := range rep.Candidates {
		if c.Name == rep.Best { out = append(out, c) }
	}
	for _, c := range rep.Candidates {
		if c.Name != rep.Best { out = append(out, c) }
	}
	return out
}

func save(p *plot.Plot, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil { return err }
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
