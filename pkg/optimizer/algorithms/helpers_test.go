package algorithms_test

import (
	"testing"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/algorithms"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/catalog"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/metriccache"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/objectives"
)

func exampleCatalog() []framework.CatalogEntry {
	return []framework.CatalogEntry{
		{ID: "A", Price: 0.05, Availability: 0.99, Latency: 100},
		{ID: "B", Price: 0.03, Availability: 0.98, Latency: 150},
		{ID: "C", Price: 0.10, Availability: 0.95, Latency: 80},
	}
}

func newFactory(t *testing.T, entries []framework.CatalogEntry, k int) (*algorithms.Factory, *metriccache.Cache) {
	t.Helper()
	store, err := catalog.NewStore(entries)
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	cache := metriccache.New(store, objectives.NewEvaluator(objectives.DefaultCostDiscount))
	return algorithms.NewFactory(store, cache, k), cache
}

func individual(cost, availability, latency float64) *framework.Individual {
	return &framework.Individual{
		Objectives: framework.Objectives{Cost: cost, Availability: availability, Latency: latency},
	}
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}
