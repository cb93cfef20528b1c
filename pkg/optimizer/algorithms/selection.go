package algorithms

import (
	"golang.org/x/exp/rand"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

// TournamentSize is the number of contestants per tournament.
const TournamentSize = 2

// TournamentSelect runs n binary tournaments over the ranked population and
// returns the winners. Each tournament draws two distinct individuals; the
// one with fewer dominators wins and ties go to the first drawn.
// The population must hold at least two individuals.
func TournamentSelect(r *rand.Rand, population []*framework.Individual, n int) []*framework.Individual {
	parents := make([]*framework.Individual, 0, n)
	for len(parents) < n {
		i := r.Intn(len(population))
		j := r.Intn(len(population) - 1)
		if j >= i {
			j++
		}

		best, contestant := population[i], population[j]
		if contestant.DominanceCount < best.DominanceCount {
			best = contestant
		}
		parents = append(parents, best)
	}
	return parents
}
