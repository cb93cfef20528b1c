package algorithms

import (
	"sort"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

// CrowdingSentinel marks the boundary individuals of an objective, the most
// isolated points of the population.
const CrowdingSentinel = 1e9

// DominanceFunc reports whether a dominates b.
type DominanceFunc func(a, b *framework.Individual) bool

// StrictDominates requires a to be strictly better than b in all three
// objectives at once: cheaper, more available and faster.
func StrictDominates(a, b *framework.Individual) bool {
	return a.Cost < b.Cost &&
		a.Availability > b.Availability &&
		a.Latency < b.Latency
}

// ParetoDominates is the canonical relation: a is no worse than b in every
// objective and strictly better in at least one.
func ParetoDominates(a, b *framework.Individual) bool {
	if a.Cost > b.Cost || a.Availability < b.Availability || a.Latency > b.Latency {
		return false
	}
	return a.Cost < b.Cost || a.Availability > b.Availability || a.Latency < b.Latency
}

// CrowdingAccumulation selects how per-objective crowding contributions combine.
type CrowdingAccumulation int

const (
	// CrowdingOverwrite keeps only the contribution of the last objective.
	CrowdingOverwrite CrowdingAccumulation = iota
	// CrowdingSum adds the contributions of all objectives, capped at the sentinel.
	CrowdingSum
)

// objectiveAccessors lists the objectives in processing order.
var objectiveAccessors = []func(*framework.Individual) float64{
	func(ind *framework.Individual) float64 { return ind.Cost },
	func(ind *framework.Individual) float64 { return ind.Availability },
	func(ind *framework.Individual) float64 { return ind.Latency },
}

// Ranker computes dominance counts and crowding over a population.
type Ranker struct {
	Dominates    DominanceFunc
	Accumulation CrowdingAccumulation
}

// NewRanker returns a ranker; a nil dominance func means StrictDominates.
func NewRanker(dominates DominanceFunc, accumulation CrowdingAccumulation) *Ranker {
	if dominates == nil {
		dominates = StrictDominates
	}
	return &Ranker{
		Dominates:    dominates,
		Accumulation: accumulation,
	}
}

// Rank updates DominanceCount and Crowding of every individual and returns
// a new slice ordered by ascending dominance count, ties broken toward higher
// crowding. The input slice order is left untouched.
func (rk *Ranker) Rank(population []*framework.Individual) []*framework.Individual {
	DominanceCounts(population, rk.Dominates)

	ranked := make([]*framework.Individual, len(population))
	copy(ranked, population)
	CrowdingDistance(ranked, rk.Accumulation)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].DominanceCount != ranked[j].DominanceCount {
			return ranked[i].DominanceCount < ranked[j].DominanceCount
		}
		return ranked[i].Crowding > ranked[j].Crowding
	})
	return ranked
}

// DominanceCounts sets, for each individual, the number of other individuals
// in the population that dominate it.
func DominanceCounts(population []*framework.Individual, dominates DominanceFunc) {
	for i := range population {
		population[i].DominanceCount = 0
	}
	for i := 0; i < len(population); i++ {
		for j := 0; j < len(population); j++ {
			if i != j && dominates(population[j], population[i]) {
				population[i].DominanceCount++
			}
		}
	}
}

// CrowdingDistance computes crowding over the whole population. The slice is
// reordered in place (sorted by the last objective).
func CrowdingDistance(population []*framework.Individual, accumulation CrowdingAccumulation) {
	for i := range population {
		population[i].Crowding = 0
	}
	if len(population) < 3 {
		return
	}

	last := len(population) - 1
	for _, value := range objectiveAccessors {
		sort.SliceStable(population, func(i, j int) bool {
			return value(population[i]) < value(population[j])
		})

		objectiveRange := value(population[last]) - value(population[0])
		for i := 1; i < last; i++ {
			d := 0.0
			if objectiveRange != 0 {
				d = (value(population[i+1]) - value(population[i-1])) / objectiveRange
			}
			population[i].Crowding = accumulate(population[i].Crowding, d, accumulation)
		}

		population[0].Crowding = accumulate(population[0].Crowding, CrowdingSentinel, accumulation)
		population[last].Crowding = accumulate(population[last].Crowding, CrowdingSentinel, accumulation)
	}
}

func accumulate(current, d float64, accumulation CrowdingAccumulation) float64 {
	if accumulation == CrowdingOverwrite {
		return d
	}
	sum := current + d
	if sum > CrowdingSentinel {
		return CrowdingSentinel
	}
	return sum
}

// NonDominated returns the individuals no one else dominates, in input order.
// DominanceCount must be up to date.
func NonDominated(population []*framework.Individual) []*framework.Individual {
	front := make([]*framework.Individual, 0, len(population))
	for _, ind := range population {
		if ind.DominanceCount == 0 {
			front = append(front, ind)
		}
	}
	return front
}
