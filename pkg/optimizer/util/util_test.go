package util

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

func testRecords() []framework.ConvergenceRecord {
	return []framework.ConvergenceRecord{
		{Generation: 1, AvgCost: 0.12, AvgAvailability: 0.95, MinCost: 0.064, MaxAvailability: 0.9702},
		{Generation: 2, AvgCost: 0.1, AvgAvailability: 0.96, MinCost: 0.064, MaxAvailability: 0.9702},
	}
}

func testRows() []framework.FinalGenerationRow {
	a := framework.CatalogEntry{ID: "A", Price: 0.05, Availability: 0.99, Latency: 100}
	b := framework.CatalogEntry{ID: "B", Price: 0.03, Availability: 0.98, Latency: 150}
	c := framework.CatalogEntry{ID: "C", Price: 0.10, Availability: 0.95, Latency: 80}
	return []framework.FinalGenerationRow{
		{
			Selection: framework.Selection{
				Services:   []framework.CatalogEntry{a, b},
				Objectives: framework.Objectives{Cost: 0.064, Availability: 0.9702, Latency: 150},
			},
			Crowding: 1e9,
		},
		{
			Selection: framework.Selection{
				Services:   []framework.CatalogEntry{a, c},
				Objectives: framework.Objectives{Cost: 0.12, Availability: 0.9405, Latency: 100},
			},
			DominanceCount: 1,
			Crowding:       0.5,
		},
	}
}

func TestWriteFinalGenerationCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFinalGenerationCSV(&buf, testRows()); err != nil {
		t.Fatal(err)
	}

	want := "selected_services,cost,availability,latency,dominance_count,crowding\n" +
		"A;B,0.064,0.9702,150,0,1000000000\n" +
		"A;C,0.12,0.9405,100,1,0.5\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Unexpected CSV (-want +got):\n%s", diff)
	}
}

func TestConvergenceCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConvergenceCSV)
	if err := writeFile(path, func(w io.Writer) error { return WriteConvergenceCSV(w, testRecords()) }); err != nil {
		t.Fatal(err)
	}

	got, err := ReadConvergenceCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testRecords(), got); diff != "" {
		t.Errorf("Unexpected records (-want +got):\n%s", diff)
	}
}

func TestFileRecorder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plot_data")
	recorder, err := NewFileRecorder(dir)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := recorder.RecordConvergence(ctx, testRecords()); err != nil {
		t.Fatal(err)
	}
	if err := recorder.RecordFinalGeneration(ctx, testRows()); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{ConvergenceCSV, FinalGenerationCSV, ConvergencePlot, FrontPlot, DistributionPlot} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("Expected %s to be written: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
		if strings.HasSuffix(name, ".html") && !strings.Contains(string(data), "echarts") {
			t.Errorf("%s does not look like a chart", name)
		}
	}
}

func TestFileRecorderWithoutGenerations(t *testing.T) {
	recorder := &FileRecorder{Dir: t.TempDir(), SkipPlots: false}

	if err := recorder.RecordConvergence(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(recorder.Dir, ConvergencePlot)); !os.IsNotExist(err) {
		t.Error("No chart should be written without generations")
	}
	data, err := os.ReadFile(filepath.Join(recorder.Dir, ConvergenceCSV))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != strings.Join(convergenceColumns, ",") {
		t.Errorf("Expected a header-only CSV, got %q", got)
	}
}

func TestFileRecorderMissingDir(t *testing.T) {
	recorder := &FileRecorder{Dir: filepath.Join(t.TempDir(), "missing")}
	if err := recorder.RecordConvergence(context.Background(), testRecords()); err == nil {
		t.Error("Expected an error writing into a missing directory")
	}
}

func TestHistogram(t *testing.T) {
	testCases := []struct {
		name   string
		values []float64
		bins   int
		want   []int
	}{
		{name: "spread", values: []float64{0, 1, 2, 3, 4}, bins: 2, want: []int{2, 3}},
		{name: "constant", values: []float64{5, 5, 5}, bins: 3, want: []int{3, 0, 0}},
		{name: "empty", values: nil, bins: 2, want: []int{0, 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Histogram(tc.values, tc.bins)); diff != "" {
				t.Errorf("Unexpected histogram (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlotsRejectEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotConvergence(&buf, nil); err == nil {
		t.Error("Expected an error for empty convergence")
	}
	if err := PlotFront(&buf, nil); err == nil {
		t.Error("Expected an error for empty rows")
	}
	if err := PlotDistribution(&buf, nil); err == nil {
		t.Error("Expected an error for empty rows")
	}
}

func TestFinalGenerationCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FinalGenerationCSV)
	if err := writeFile(path, func(w io.Writer) error { return WriteFinalGenerationCSV(w, testRows()) }); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFinalGenerationCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	want := testRows()
	for i := range want {
		for j, s := range want[i].Services {
			want[i].Services[j] = framework.CatalogEntry{ID: s.ID}
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unexpected rows (-want +got):\n%s", diff)
	}
}

func TestReadCSVRejectsForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConvergenceCSV)
	if err := writeFile(path, func(w io.Writer) error { return WriteFinalGenerationCSV(w, testRows()) }); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConvergenceCSV(path); err == nil {
		t.Error("Expected an error reading a final generation table as convergence")
	}
}

func TestRenderPlots(t *testing.T) {
	recorder := &FileRecorder{Dir: t.TempDir(), SkipPlots: true}
	ctx := context.Background()
	if err := recorder.RecordConvergence(ctx, testRecords()); err != nil {
		t.Fatal(err)
	}
	if err := recorder.RecordFinalGeneration(ctx, testRows()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(recorder.Dir, ConvergencePlot)); !os.IsNotExist(err) {
		t.Fatal("No chart should be written with SkipPlots")
	}

	if err := RenderPlots(ctx, recorder.Dir); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{ConvergencePlot, FrontPlot, DistributionPlot} {
		data, err := os.ReadFile(filepath.Join(recorder.Dir, name))
		if err != nil {
			t.Errorf("Expected %s to be rendered: %v", name, err)
			continue
		}
		if !strings.Contains(string(data), "echarts") {
			t.Errorf("%s does not look like a chart", name)
		}
	}

	if err := RenderPlots(ctx, t.TempDir()); err == nil {
		t.Error("Expected an error for a directory without tables")
	}
}
