package util

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"gonum.org/v1/gonum/floats"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

const distributionBins = 10

// PlotConvergence renders the average cost and availability per generation as
// a line chart.
func PlotConvergence(w io.Writer, records []framework.ConvergenceRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no convergence records to plot")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Convergence of Avg Cost & Availability Across Generations",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Generation",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Metric Value",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))

	generations := make([]int, len(records))
	avgCost := make([]opts.LineData, len(records))
	avgAvailability := make([]opts.LineData, len(records))
	for i, r := range records {
		generations[i] = r.Generation
		avgCost[i] = opts.LineData{Value: r.AvgCost}
		avgAvailability[i] = opts.LineData{Value: r.AvgAvailability}
	}

	line.SetXAxis(generations).
		AddSeries("Avg Cost", avgCost).
		AddSeries("Avg Availability", avgAvailability)

	return line.Render(w)
}

// PlotFront renders the final generation in the latency/cost plane, the
// non-dominated individuals in their own series.
func PlotFront(w io.Writer, rows []framework.FinalGenerationRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no final generation rows to plot")
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Pareto Front (Final Generation)",
			Subtitle: "symbol size grows with availability",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Latency",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Cost",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))

	var front, dominated []opts.ScatterData
	for _, row := range rows {
		point := opts.ScatterData{
			Name:       fmt.Sprintf("%v availability=%.4f", serviceIDs(row.Services), row.Availability),
			Value:      []float64{row.Latency, row.Cost},
			SymbolSize: symbolSize(row.Availability),
		}
		if row.DominanceCount == 0 {
			point.Symbol = "triangle"
			front = append(front, point)
		} else {
			point.Symbol = "circle"
			dominated = append(dominated, point)
		}
	}

	scatter.AddSeries("Non-dominated", front).
		AddSeries("Dominated", dominated).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
			charts.WithEmphasisOpts(opts.Emphasis{}),
		)

	return scatter.Render(w)
}

// PlotDistribution renders histograms of the final generation objectives.
func PlotDistribution(w io.Writer, rows []framework.FinalGenerationRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no final generation rows to plot")
	}

	costs := make([]float64, len(rows))
	avail := make([]float64, len(rows))
	latency := make([]float64, len(rows))
	for i, row := range rows {
		costs[i] = row.Cost
		avail[i] = row.Availability
		latency[i] = row.Latency
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Final Generation Metric Distribution",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Bin",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Individuals",
		}))

	labels := make([]string, distributionBins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i+1)
	}
	bar.SetXAxis(labels).
		AddSeries("Cost", barData(Histogram(costs, distributionBins))).
		AddSeries("Availability", barData(Histogram(avail, distributionBins))).
		AddSeries("Latency", barData(Histogram(latency, distributionBins)))

	return bar.Render(w)
}

// Histogram counts values into equal width bins spanning their range. All
// values land in the first bin when the range is empty.
func Histogram(values []float64, bins int) []int {
	counts := make([]int, bins)
	if len(values) == 0 || bins == 0 {
		return counts
	}
	lo, hi := floats.Min(values), floats.Max(values)
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		i := 0
		if width > 0 {
			i = min(int((v-lo)/width), bins-1)
		}
		counts[i]++
	}
	return counts
}

func barData(counts []int) []opts.BarData {
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}
	return data
}

func symbolSize(availability float64) int {
	return 4 + int(availability*8)
}

func serviceIDs(services []framework.CatalogEntry) []string {
	ids := make([]string, len(services))
	for i, s := range services {
		ids[i] = s.ID
	}
	return ids
}
