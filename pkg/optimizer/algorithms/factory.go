package algorithms

import (
	"golang.org/x/exp/rand"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/catalog"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

// MetricSource returns the objectives of a combination of services.
type MetricSource interface {
	Get(ids []string) (framework.Objectives, error)
}

// Factory builds individuals over a catalog snapshot.
type Factory struct {
	store   *catalog.Store
	metrics MetricSource
	size    int
}

// NewFactory returns a factory building individuals of the given size.
func NewFactory(store *catalog.Store, metrics MetricSource, size int) *Factory {
	return &Factory{
		store:   store,
		metrics: metrics,
		size:    size,
	}
}

// Size is the number of services in a randomly drawn individual.
func (f *Factory) Size() int {
	return f.size
}

// Store returns the catalog snapshot the factory draws from.
func (f *Factory) Store() *catalog.Store {
	return f.store
}

// Create builds an individual for the given ids and attaches its objectives.
// The ids are copied.
func (f *Factory) Create(ids []string) (*framework.Individual, error) {
	obj, err := f.metrics.Get(ids)
	if err != nil {
		return nil, err
	}
	own := make([]string, len(ids))
	copy(own, ids)
	return &framework.Individual{
		ServiceIDs: own,
		Objectives: obj,
	}, nil
}

// Random draws Size distinct services and builds an individual from them.
func (f *Factory) Random(r *rand.Rand) (*framework.Individual, error) {
	ids, err := f.store.SampleDistinct(r, f.size)
	if err != nil {
		return nil, err
	}
	return f.Create(ids)
}
