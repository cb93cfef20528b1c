// Package catalog holds the read-only snapshot of selectable services that a
// single optimization run works against, and a generator for synthetic catalogs.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/exp/rand"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
)

// Store is an immutable snapshot of a catalog. It is safe for concurrent reads.
type Store struct {
	entries []framework.CatalogEntry
	index   map[string]int
}

// NewStore copies and validates the given entries. The caller may keep
// mutating its own slice afterwards.
func NewStore(entries []framework.CatalogEntry) (*Store, error) {
	s := &Store{
		entries: make([]framework.CatalogEntry, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	copy(s.entries, entries)

	for i, e := range s.entries {
		if err := Validate(e); err != nil {
			return nil, err
		}
		if _, ok := s.index[e.ID]; ok {
			return nil, &framework.DuplicateServiceError{ID: e.ID}
		}
		s.index[e.ID] = i
	}
	return s, nil
}

// Validate checks the id and the metric ranges of a single entry.
func Validate(e framework.CatalogEntry) error {
	switch {
	case e.ID == "" || strings.IndexFunc(e.ID, unicode.IsControl) >= 0:
		return &framework.InvalidServiceIDError{ID: e.ID}
	case e.Price < 0:
		return &framework.InvalidMetricError{ID: e.ID, Field: "price", Value: e.Price, Reason: "must be >= 0"}
	case e.Availability <= 0 || e.Availability > 1:
		return &framework.InvalidMetricError{ID: e.ID, Field: "availability", Value: e.Availability, Reason: "must be in (0, 1]"}
	case e.Latency < 0:
		return &framework.InvalidMetricError{ID: e.ID, Field: "latency", Value: e.Latency, Reason: "must be >= 0"}
	}
	return nil
}

// Len returns the number of services in the snapshot.
func (s *Store) Len() int {
	return len(s.entries)
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (framework.CatalogEntry, error) {
	i, ok := s.index[id]
	if !ok {
		return framework.CatalogEntry{}, &framework.UnknownServiceError{ID: id}
	}
	return s.entries[i], nil
}

// Resolve looks up all ids, preserving their order.
func (s *Store) Resolve(ids []string) ([]framework.CatalogEntry, error) {
	out := make([]framework.CatalogEntry, 0, len(ids))
	for _, id := range ids {
		e, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Entries returns a copy of the snapshot in catalog order.
func (s *Store) Entries() []framework.CatalogEntry {
	out := make([]framework.CatalogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// AllIDs returns the set of ids in the snapshot.
func (s *Store) AllIDs() sets.Set[string] {
	ids := sets.New[string]()
	for _, e := range s.entries {
		ids.Insert(e.ID)
	}
	return ids
}

// SampleDistinct draws k distinct ids uniformly at random.
func (s *Store) SampleDistinct(r *rand.Rand, k int) ([]string, error) {
	if k > len(s.entries) {
		return nil, &framework.EmptyCatalogError{Available: len(s.entries), Required: k}
	}
	perm := r.Perm(len(s.entries))
	ids := make([]string, k)
	for i := 0; i < k; i++ {
		ids[i] = s.entries[perm[i]].ID
	}
	return ids, nil
}

// IDsExcluding returns, in catalog order, every id not in the given list.
func (s *Store) IDsExcluding(ids []string) []string {
	exclude := sets.New(ids...)
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if !exclude.Has(e.ID) {
			out = append(out, e.ID)
		}
	}
	return out
}
