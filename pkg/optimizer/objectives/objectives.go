package objectives

import (
	"gonum.org/v1/gonum/floats"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

// DefaultCostDiscount is the negotiated discount applied to the summed price.
const DefaultCostDiscount = 0.8

// ObjectiveFunc computes one aggregate over a combination of services.
type ObjectiveFunc func(services []framework.CatalogEntry) float64

// CostObjective sums the prices and applies the discount factor.
func CostObjective(discount float64) ObjectiveFunc {
	return func(services []framework.CatalogEntry) float64 {
		prices := make([]float64, len(services))
		for i, s := range services {
			prices[i] = s.Price
		}
		return floats.Sum(prices) * discount
	}
}

// AvailabilityObjective is the product of the availabilities: every service
// in the combination has to be up.
func AvailabilityObjective(services []framework.CatalogEntry) float64 {
	if len(services) == 0 {
		return 0
	}
	avail := make([]float64, len(services))
	for i, s := range services {
		avail[i] = s.Availability
	}
	return floats.Prod(avail)
}

// LatencyObjective models the worst case of the chain.
func LatencyObjective(services []framework.CatalogEntry) float64 {
	if len(services) == 0 {
		return 0
	}
	lat := make([]float64, len(services))
	for i, s := range services {
		lat[i] = s.Latency
	}
	return floats.Max(lat)
}

// Evaluator computes all three objectives for a combination.
type Evaluator struct {
	cost ObjectiveFunc
}

// NewEvaluator returns an Evaluator using the given cost discount.
func NewEvaluator(discount float64) *Evaluator {
	return &Evaluator{cost: CostObjective(discount)}
}

// Evaluate returns the aggregate objectives of the given services.
func (e *Evaluator) Evaluate(services []framework.CatalogEntry) framework.Objectives {
	return framework.Objectives{
		Cost:         e.cost(services),
		Availability: AvailabilityObjective(services),
		Latency:      LatencyObjective(services),
	}
}
