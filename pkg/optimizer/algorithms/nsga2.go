package algorithms

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/metrics"
)

const (
	Name = "NSGA-II"
)

// NSGA2Config holds configuration parameters for NSGA-II
type NSGA2Config struct {
	PopulationSize int
	MaxGenerations int

	// The loop stops once the average cost moved less than EarlyStopThreshold
	// over the last EarlyStopWindow generations, but never before
	// EarlyStopMinGeneration generations have completed.
	EarlyStopThreshold     float64
	EarlyStopWindow        int
	EarlyStopMinGeneration int

	MaxResults int
	Workers    int // initial population evaluation, 0 means NumCPU

	Dominance DominanceFunc
	Crowding  CrowdingAccumulation
}

// RunResult is the outcome of a run.
type RunResult struct {
	Selections      []framework.Selection
	Front           []*framework.Individual
	FinalPopulation []*framework.Individual
	Convergence     []framework.ConvergenceRecord

	Generations  int // completed generations
	EarlyStopped bool
	StoppedAt    int // generation at which the early stop fired
	Duration     time.Duration
}

// NSGAII drives the generational search.
type NSGAII struct {
	config   NSGA2Config
	factory  *Factory
	variator *Variator
	ranker   *Ranker
	recorder framework.Recorder
	clock    clock.PassiveClock
}

// Option customises an NSGAII instance.
type Option func(*NSGAII)

// WithRecorder sets the collaborator receiving the convergence series and the
// final population.
func WithRecorder(r framework.Recorder) Option {
	return func(n *NSGAII) {
		n.recorder = r
	}
}

// WithClock overrides the clock used to time runs.
func WithClock(c clock.PassiveClock) Option {
	return func(n *NSGAII) {
		n.clock = c
	}
}

// NewNSGAII creates a new instance of NSGA-II with given parameters
func NewNSGAII(config NSGA2Config, factory *Factory, opts ...Option) *NSGAII {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	n := &NSGAII{
		config:   config,
		factory:  factory,
		variator: NewVariator(factory),
		ranker:   NewRanker(config.Dominance, config.Crowding),
		recorder: framework.NopRecorder{},
		clock:    clock.RealClock{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Run executes the NSGA-II algorithm. All randomness is drawn from r, so two
// runs with equally seeded sources and the same catalog return the same result.
// The context is checked once per generation.
func (n *NSGAII) Run(ctx context.Context, r *rand.Rand) (*RunResult, error) {
	logger := klog.FromContext(ctx).WithValues("algorithm", Name)
	span := trace.SpanFromContext(ctx)
	startTime := n.clock.Now()

	logger.V(2).Info("Starting evolution",
		"populationSize", n.config.PopulationSize,
		"generations", n.config.MaxGenerations,
		"selectionSize", n.factory.Size(),
		"workers", n.config.Workers)

	population, err := n.initialize(ctx, r)
	if err != nil {
		return nil, &framework.OptimizationError{Err: err}
	}

	result := &RunResult{}
	for gen := 1; gen <= n.config.MaxGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, &framework.OptimizationError{Generation: gen, Err: err}
		}

		ranked := n.ranker.Rank(population)

		if n.converged(gen, result.Convergence) {
			result.EarlyStopped = true
			result.StoppedAt = gen
			metrics.EarlyStopsTotal.Inc()
			logger.V(2).Info("Average cost converged, stopping early", "generation", gen)
			break
		}

		parents := TournamentSelect(r, ranked, n.config.PopulationSize/2)
		offspring, err := n.reproduce(r, parents)
		if err != nil {
			return nil, &framework.OptimizationError{Generation: gen, Err: err}
		}

		population = n.nextGeneration(ranked, offspring)

		record := convergenceRecord(gen, population)
		result.Convergence = append(result.Convergence, record)
		result.Generations = gen
		metrics.GenerationsTotal.Inc()

		span.AddEvent("generation", trace.WithAttributes(
			attribute.Int("generation", gen),
			attribute.Float64("avgCost", record.AvgCost),
			attribute.Float64("avgAvailability", record.AvgAvailability)))
		if gen%10 == 0 || gen < 5 {
			logger.V(3).Info("Generation complete",
				"generation", gen,
				"avgCost", fmt.Sprintf("%.4f", record.AvgCost),
				"minCost", fmt.Sprintf("%.4f", record.MinCost),
				"avgAvailability", fmt.Sprintf("%.4f", record.AvgAvailability),
				"maxAvailability", fmt.Sprintf("%.4f", record.MaxAvailability))
		}
	}

	final := n.ranker.Rank(population)
	result.FinalPopulation = final
	result.Front = BestOf(NonDominated(final), n.config.MaxResults)

	if err := n.emit(ctx, result); err != nil {
		return nil, &framework.OptimizationError{Generation: result.Generations, Err: err}
	}

	result.Selections, err = n.resolve(result.Front)
	if err != nil {
		return nil, &framework.OptimizationError{Generation: result.Generations, Err: err}
	}

	result.Duration = n.clock.Since(startTime)
	logger.V(2).Info("Evolution complete",
		"generations", result.Generations,
		"earlyStopped", result.EarlyStopped,
		"nonDominated", len(NonDominated(final)),
		"duration", result.Duration)
	return result, nil
}

// initialize draws the initial id sets sequentially, so the result only depends
// on r, then evaluates them on a bounded worker pool.
func (n *NSGAII) initialize(ctx context.Context, r *rand.Rand) ([]*framework.Individual, error) {
	draws := make([][]string, n.config.PopulationSize)
	for i := range draws {
		ids, err := n.factory.Store().SampleDistinct(r, n.factory.Size())
		if err != nil {
			return nil, err
		}
		draws[i] = ids
	}

	population := make([]*framework.Individual, len(draws))
	p := pool.New().WithMaxGoroutines(n.config.Workers).WithContext(ctx).WithCancelOnError()
	for i := range draws {
		p.Go(func(ctx context.Context) error {
			ind, err := n.factory.Create(draws[i])
			if err != nil {
				return fmt.Errorf("creating individual %d: %w", i, err)
			}
			population[i] = ind
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return population, nil
}

// reproduce pairs consecutive parents; every pair yields two children through
// crossover followed by mutation.
func (n *NSGAII) reproduce(r *rand.Rand, parents []*framework.Individual) ([]*framework.Individual, error) {
	limit := n.config.PopulationSize / 2
	offspring := make([]*framework.Individual, 0, limit)

	for i := 0; i+1 < len(parents) && len(offspring) < limit; i += 2 {
		child1, child2, err := n.variator.Crossover(r, parents[i], parents[i+1])
		if err != nil {
			return nil, fmt.Errorf("crossover: %w", err)
		}
		for _, child := range []*framework.Individual{child1, child2} {
			if len(offspring) == limit {
				break
			}
			mutated, err := n.variator.Mutate(r, child)
			if err != nil {
				return nil, fmt.Errorf("mutation: %w", err)
			}
			offspring = append(offspring, mutated)
		}
	}
	return offspring, nil
}

// nextGeneration keeps the best half of the ranked population, appends the
// offspring and fills any gap with the next ranked individuals.
func (n *NSGAII) nextGeneration(ranked, offspring []*framework.Individual) []*framework.Individual {
	size := n.config.PopulationSize
	elite := min(size/2, len(ranked))

	next := make([]*framework.Individual, 0, size+len(offspring))
	next = append(next, ranked[:elite]...)
	next = append(next, offspring...)
	for i := elite; len(next) < size && i < len(ranked); i++ {
		next = append(next, ranked[i])
	}
	if len(next) > size {
		next = next[:size]
	}
	return next
}

func (n *NSGAII) converged(gen int, records []framework.ConvergenceRecord) bool {
	c := n.config
	if gen <= c.EarlyStopMinGeneration || c.EarlyStopWindow < 1 {
		return false
	}
	if len(records) < max(c.EarlyStopMinGeneration, c.EarlyStopWindow) {
		return false
	}
	// The window spans the last EarlyStopWindow records, both ends included.
	last := len(records) - 1
	return math.Abs(records[last].AvgCost-records[last-(c.EarlyStopWindow-1)].AvgCost) < c.EarlyStopThreshold
}

func (n *NSGAII) emit(ctx context.Context, result *RunResult) error {
	if err := n.recorder.RecordConvergence(ctx, result.Convergence); err != nil {
		return fmt.Errorf("recording convergence: %w", err)
	}

	rows := make([]framework.FinalGenerationRow, len(result.FinalPopulation))
	for i, ind := range result.FinalPopulation {
		services, err := n.factory.Store().Resolve(ind.ServiceIDs)
		if err != nil {
			return err
		}
		rows[i] = framework.FinalGenerationRow{
			Selection:      framework.Selection{Services: services, Objectives: ind.Objectives},
			DominanceCount: ind.DominanceCount,
			Crowding:       ind.Crowding,
		}
	}
	if err := n.recorder.RecordFinalGeneration(ctx, rows); err != nil {
		return fmt.Errorf("recording final generation: %w", err)
	}
	return nil
}

func (n *NSGAII) resolve(front []*framework.Individual) ([]framework.Selection, error) {
	selections := make([]framework.Selection, len(front))
	for i, ind := range front {
		services, err := n.factory.Store().Resolve(ind.ServiceIDs)
		if err != nil {
			return nil, err
		}
		selections[i] = framework.Selection{Services: services, Objectives: ind.Objectives}
	}
	return selections, nil
}

// BestOf orders individuals by ascending cost, then descending availability,
// and keeps at most limit of them. A non-positive limit keeps all.
func BestOf(individuals []*framework.Individual, limit int) []*framework.Individual {
	sorted := make([]*framework.Individual, len(individuals))
	copy(sorted, individuals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Cost != sorted[j].Cost {
			return sorted[i].Cost < sorted[j].Cost
		}
		return sorted[i].Availability > sorted[j].Availability
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func convergenceRecord(gen int, population []*framework.Individual) framework.ConvergenceRecord {
	costs := make([]float64, len(population))
	avail := make([]float64, len(population))
	for i, ind := range population {
		costs[i] = ind.Cost
		avail[i] = ind.Availability
	}
	return framework.ConvergenceRecord{
		Generation:      gen,
		AvgCost:         stat.Mean(costs, nil),
		AvgAvailability: stat.Mean(avail, nil),
		MinCost:         floats.Min(costs),
		MaxAvailability: floats.Max(avail),
	}
}
