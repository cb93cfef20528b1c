package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

const (
	ConvergenceCSV     = "convergence_all.csv"
	FinalGenerationCSV = "final_generation_all.csv"
	ConvergencePlot    = "convergence.html"
	FrontPlot          = "pareto_front.html"
	DistributionPlot   = "distribution.html"
)

// FileRecorder writes the run tables as CSV into Dir, plus HTML charts unless
// SkipPlots is set. Files are overwritten on every run.
type FileRecorder struct {
	Dir       string
	SkipPlots bool
}

var _ framework.Recorder = &FileRecorder{}

// NewFileRecorder creates dir if needed.
func NewFileRecorder(dir string) (*FileRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &FileRecorder{Dir: dir}, nil
}

func (f *FileRecorder) RecordConvergence(ctx context.Context, records []framework.ConvergenceRecord) error {
	logger := klog.FromContext(ctx)

	path := filepath.Join(f.Dir, ConvergenceCSV)
	if err := writeFile(path, func(w io.Writer) error { return WriteConvergenceCSV(w, records) }); err != nil {
		return err
	}
	logger.V(2).Info("Saved convergence", "path", path, "generations", len(records))

	// A run without generations has nothing to chart.
	if f.SkipPlots || len(records) == 0 {
		return nil
	}
	path = filepath.Join(f.Dir, ConvergencePlot)
	if err := writeFile(path, func(w io.Writer) error { return PlotConvergence(w, records) }); err != nil {
		return fmt.Errorf("plotting convergence: %w", err)
	}
	return nil
}

func (f *FileRecorder) RecordFinalGeneration(ctx context.Context, rows []framework.FinalGenerationRow) error {
	logger := klog.FromContext(ctx)

	path := filepath.Join(f.Dir, FinalGenerationCSV)
	if err := writeFile(path, func(w io.Writer) error { return WriteFinalGenerationCSV(w, rows) }); err != nil {
		return err
	}
	logger.V(2).Info("Saved final generation", "path", path, "individuals", len(rows))

	if f.SkipPlots || len(rows) == 0 {
		return nil
	}
	path = filepath.Join(f.Dir, FrontPlot)
	if err := writeFile(path, func(w io.Writer) error { return PlotFront(w, rows) }); err != nil {
		return fmt.Errorf("plotting front: %w", err)
	}
	path = filepath.Join(f.Dir, DistributionPlot)
	if err := writeFile(path, func(w io.Writer) error { return PlotDistribution(w, rows) }); err != nil {
		return fmt.Errorf("plotting distribution: %w", err)
	}
	return nil
}

// RenderPlots redraws the charts of dir from the CSV tables a FileRecorder
// left there.
func RenderPlots(ctx context.Context, dir string) error {
	logger := klog.FromContext(ctx)

	records, err := ReadConvergenceCSV(filepath.Join(dir, ConvergenceCSV))
	if err != nil {
		return err
	}
	rows, err := ReadFinalGenerationCSV(filepath.Join(dir, FinalGenerationCSV))
	if err != nil {
		return err
	}

	plots := []struct {
		name string
		plot func(io.Writer) error
		skip bool
	}{
		{ConvergencePlot, func(w io.Writer) error { return PlotConvergence(w, records) }, len(records) == 0},
		{FrontPlot, func(w io.Writer) error { return PlotFront(w, rows) }, len(rows) == 0},
		{DistributionPlot, func(w io.Writer) error { return PlotDistribution(w, rows) }, len(rows) == 0},
	}
	for _, p := range plots {
		if p.skip {
			continue
		}
		path := filepath.Join(dir, p.name)
		if err := writeFile(path, p.plot); err != nil {
			return err
		}
		logger.V(2).Info("Rendered chart", "path", path)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}
