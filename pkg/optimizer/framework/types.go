package framework

import (
	"context"
	"time"
)

// CatalogEntry describes a single selectable service.
type CatalogEntry struct {
	ID           string
	Price        float64
	Availability float64 // in (0, 1]
	Latency      float64 // in seconds

	// Descriptive metadata, not used by the objectives
	Name    string
	Version string
	Owner   string
	Host    string
	Port        int
	Status      string
	LastUpdated time.Time
}

// Objectives holds the aggregate objective values of a combination of services.
// Cost and Latency are minimised, Availability is maximised.
type Objectives struct {
	Cost         float64
	Availability float64
	Latency      float64
}

// ObjectiveSpacePoint represents a point in the objective space, ordered
// as [cost, availability, latency].
type ObjectiveSpacePoint []float64

// Point returns the objectives as an ObjectiveSpacePoint.
func (o Objectives) Point() ObjectiveSpacePoint {
	return ObjectiveSpacePoint{o.Cost, o.Availability, o.Latency}
}

// Individual is a candidate solution: a small set of services together with
// its objective values. DominanceCount and Crowding are owned by the ranker.
type Individual struct {
	ServiceIDs []string
	Objectives

	DominanceCount int
	Crowding       float64
}

// Clone returns a copy of the individual that does not share its ids.
func (ind *Individual) Clone() *Individual {
	ids := make([]string, len(ind.ServiceIDs))
	copy(ids, ind.ServiceIDs)
	return &Individual{
		ServiceIDs:     ids,
		Objectives:     ind.Objectives,
		DominanceCount: ind.DominanceCount,
		Crowding:       ind.Crowding,
	}
}

// ConvergenceRecord summarises the population of one generation.
type ConvergenceRecord struct {
	Generation      int
	AvgCost         float64
	AvgAvailability float64
	MinCost         float64
	MaxAvailability float64
}

// Selection is a resolved individual returned to callers.
type Selection struct {
	Services []CatalogEntry
	Objectives
}

// FinalGenerationRow is one surviving individual of the last generation.
type FinalGenerationRow struct {
	Selection
	DominanceCount int
	Crowding       float64
}

// Recorder receives the side artifacts of a run. Format and location are
// up to the implementation.
type Recorder interface {
	RecordConvergence(ctx context.Context, records []ConvergenceRecord) error
	RecordFinalGeneration(ctx context.Context, rows []FinalGenerationRow) error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordConvergence(context.Context, []ConvergenceRecord) error { return nil }

func (NopRecorder) RecordFinalGeneration(context.Context, []FinalGenerationRow) error { return nil }
