package algorithms

import (
	"golang.org/x/exp/rand"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

// Variator produces offspring through set crossover and replacement mutation.
type Variator struct {
	factory *Factory
}

// NewVariator returns a variator that evaluates offspring through the factory.
func NewVariator(factory *Factory) *Variator {
	return &Variator{factory: factory}
}

// Crossover draws half of the services (rounded up) from the first parent and
// the rest from the second, then merges them dropping duplicates. A shared
// service leaves the child smaller than its parents; it is not backfilled.
// The second child holds the same services in a shuffled order.
func (v *Variator) Crossover(r *rand.Rand, p1, p2 *framework.Individual) (*framework.Individual, *framework.Individual, error) {
	k := v.factory.Size()
	fromFirst := (k + 1) / 2
	ids := UnionIDs(pick(r, p1.ServiceIDs, fromFirst), pick(r, p2.ServiceIDs, k-fromFirst))

	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	child1, err := v.factory.Create(ids)
	if err != nil {
		return nil, nil, err
	}
	child2, err := v.factory.Create(shuffled)
	if err != nil {
		return nil, nil, err
	}
	return child1, child2, nil
}

// Mutate replaces one random service of the individual with a random service
// it does not contain yet. When every catalog service is already part of the
// individual it is returned unchanged.
func (v *Variator) Mutate(r *rand.Rand, ind *framework.Individual) (*framework.Individual, error) {
	candidates := v.factory.Store().IDsExcluding(ind.ServiceIDs)
	if len(candidates) == 0 || len(ind.ServiceIDs) == 0 {
		return ind, nil
	}

	ids := make([]string, len(ind.ServiceIDs))
	copy(ids, ind.ServiceIDs)
	ids[r.Intn(len(ids))] = candidates[r.Intn(len(candidates))]

	return v.factory.Create(ids)
}

// UnionIDs concatenates the lists keeping the first occurrence of every id.
func UnionIDs(lists ...[]string) []string {
	seen := sets.New[string]()
	var out []string
	for _, ids := range lists {
		for _, id := range ids {
			if seen.Has(id) {
				continue
			}
			seen.Insert(id)
			out = append(out, id)
		}
	}
	return out
}

// pick draws up to n distinct elements of ids at random.
func pick(r *rand.Rand, ids []string, n int) []string {
	if n > len(ids) {
		n = len(ids)
	}
	out := make([]string, n)
	for i, p := range r.Perm(len(ids))[:n] {
		out[i] = ids[p]
	}
	return out
}
