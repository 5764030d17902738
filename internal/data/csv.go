package data

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/multierr"
)

// LoadCSV reads a headed CSV of numeric features plus one 0/1 label column.
// An empty labelColumn selects the last column.
func LoadCSV(path, labelColumn string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("data: read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("data: %s has no instances", path)
	}
	hdr := rows[0]
	if len(hdr) < 2 {
		return nil, fmt.Errorf("data: %s needs at least one feature and a label column", path)
	}
	labelIdx := len(hdr) - 1
	if labelColumn != "" {
		labelIdx = -1
		for i, h := range hdr {
			if h == labelColumn { labelIdx = i }
		}
		if labelIdx < 0 {
			return nil, fmt.Errorf("data: label column %q not found in %s", labelColumn, path)
		}
	}

	ds := &Dataset{X: make([][]float64, 0, len(rows)-1), Y: make([]int, 0, len(rows)-1)}
	for i, h := range hdr {
		if i != labelIdx { ds.Names = append(ds.Names, h) }
	}
	for r := 1; r < len(rows); r++ {
		row := rows[r]
		if len(row) != len(hdr) {
			return nil, fmt.Errorf("data: line %d has %d fields, want %d", r+1, len(row), len(hdr))
		}
		x := make([]float64, 0, len(hdr)-1)
		for i, v := range row {
			if i == labelIdx {
				lab, err := strconv.Atoi(v)
				if err != nil || (lab != 0 && lab != 1) {
					return nil, fmt.Errorf("data: line %d: label %q is not 0 or 1", r+1, v)
				}
				ds.Y = append(ds.Y, lab)
				continue
			}
			fv, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("data: line %d column %s: %w", r+1, hdr[i], err)
			}
			x = append(x, fv)
		}
		ds.X = append(ds.X, x)
	}
	return ds, nil
}

// WriteCSV stores a dataset in the layout LoadCSV reads, label last.
func WriteCSV(path string, ds *Dataset) (err error) {
	w, closeFn, err := create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeFn()) }()

	hdr := append(append([]string(nil), ds.Names...), "label")
	if err := w.Write(hdr); err != nil {
		return err
	}
	for i, row := range ds.X {
		rec := make([]string, 0, len(row)+1)
		for _, v := range row { rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64)) }
		rec = append(rec, strconv.Itoa(ds.Y[i]))
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteScoresCSV writes one line per instance; unscored instances get an
// empty score field.
func WriteScoresCSV(path string, y []int, scores []float64) (err error) {
	if len(y) != len(scores) {
		return fmt.Errorf("data: %d labels but %d scores", len(y), len(scores))
	}
	w, closeFn, err := create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeFn()) }()

	if err := w.Write([]string{"instance", "label", "score"}); err != nil {
		return err
	}
	for i, s := range scores {
		sv := ""
		if !math.IsNaN(s) { sv = fmt.Sprintf("%.6f", s) }
		if err := w.Write([]string{strconv.Itoa(i), strconv.Itoa(y[i]), sv}); err != nil {
			return err
		}
	}
	return nil
}

// Table writes arbitrary rows under a header; used for summaries.
func Table(path string, header []string, rows [][]string) (err error) {
	w, closeFn, err := create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeFn()) }()
	if err := w.Write(header); err != nil {
		return err
	}
	return w.WriteAll(rows)
}

func create(path string) (*csv.Writer, func() error, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := csv.NewWriter(f)
	return w, func() error {
		w.Flush()
		return multierr.Combine(w.Error(), f.Close())
	}, nil
}
