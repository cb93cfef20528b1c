package objectives_test

import (
	"math"
	"testing"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/objectives"
)

func TestEvaluate(t *testing.T) {
	services := []framework.CatalogEntry{
		{ID: "A", Price: 0.05, Availability: 0.99, Latency: 100},
		{ID: "B", Price: 0.03, Availability: 0.98, Latency: 150},
		{ID: "C", Price: 0.10, Availability: 0.95, Latency: 80},
	}

	testCases := []struct {
		name     string
		services []framework.CatalogEntry
		want     framework.Objectives
	}{
		{
			name:     "PairAB",
			services: services[:2],
			want:     framework.Objectives{Cost: 0.064, Availability: 0.9702, Latency: 150},
		},
		{
			name:     "PairAC",
			services: []framework.CatalogEntry{services[0], services[2]},
			want:     framework.Objectives{Cost: 0.12, Availability: 0.9405, Latency: 100},
		},
		{
			name:     "SingleService",
			services: services[2:],
			want:     framework.Objectives{Cost: 0.08, Availability: 0.95, Latency: 80},
		},
	}

	eval := objectives.NewEvaluator(objectives.DefaultCostDiscount)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := eval.Evaluate(tc.services)
			if !approx(got.Cost, tc.want.Cost) {
				t.Errorf("cost: expected %v, got %v", tc.want.Cost, got.Cost)
			}
			if !approx(got.Availability, tc.want.Availability) {
				t.Errorf("availability: expected %v, got %v", tc.want.Availability, got.Availability)
			}
			if !approx(got.Latency, tc.want.Latency) {
				t.Errorf("latency: expected %v, got %v", tc.want.Latency, got.Latency)
			}
		})
	}
}

func TestCostDiscount(t *testing.T) {
	services := []framework.CatalogEntry{{ID: "A", Price: 1}, {ID: "B", Price: 1}}
	if got := objectives.CostObjective(1.0)(services); !approx(got, 2) {
		t.Errorf("Expected undiscounted cost 2, got %v", got)
	}
	if got := objectives.CostObjective(0.5)(services); !approx(got, 1) {
		t.Errorf("Expected discounted cost 1, got %v", got)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
