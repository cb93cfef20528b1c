/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package optimizer

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/algorithms"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/catalog"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/framework"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/metriccache"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/metrics"
	"github.com/mihai-snyk/moga-optimizer/pkg/optimizer/objectives"
	"github.com/mihai-snyk/moga-optimizer/pkg/tracing"
)

const Name = "ServiceSelection"

// Result is the outcome of Optimize.
type Result struct {
	*algorithms.RunResult

	// Seed the random source was created with.
	Seed  uint64
	Cache metriccache.Stats
}

type options struct {
	recorder framework.Recorder
	clock    clock.PassiveClock
}

// Option configures a single Optimize call.
type Option func(*options)

// WithRecorder sets where the convergence and final generation tables go.
func WithRecorder(r framework.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithClock overrides the clock used for seeding and timing.
func WithClock(c clock.PassiveClock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// Optimize selects services from entries. Unset args take their defaults; the
// caller's args are not modified.
func Optimize(ctx context.Context, entries []framework.CatalogEntry, args *OptimizerArgs, opts ...Option) (*Result, error) {
	o := options{recorder: framework.NopRecorder{}, clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	logger := klog.FromContext(ctx).WithValues("optimizer", Name)

	if args == nil {
		args = &OptimizerArgs{}
	}
	args = args.DeepCopy()
	Scheme.Default(args)
	if err := ValidateOptimizerArgs(args); err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("invalid optimizer args: %w", err)
	}

	store, err := catalog.NewStore(entries)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if store.Len() < args.SelectionSize {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, &framework.EmptyCatalogError{Available: store.Len(), Required: args.SelectionSize}
	}

	seed := args.Seed
	if seed == 0 {
		seed = uint64(o.clock.Now().UnixNano())
	}

	ctx, span := tracing.Tracer().Start(ctx, "Optimize")
	defer span.End()
	span.SetAttributes(
		attribute.Int("catalogSize", store.Len()),
		attribute.Int("selectionSize", args.SelectionSize),
		attribute.Int("populationSize", args.PopulationSize),
		attribute.Int64("seed", int64(seed)))

	logger.Info("Starting service selection",
		"catalogSize", store.Len(),
		"selectionSize", args.SelectionSize,
		"populationSize", args.PopulationSize,
		"generations", *args.Generations,
		"seed", seed)

	cache := metriccache.New(store, objectives.NewEvaluator(args.CostDiscount))
	factory := algorithms.NewFactory(store, cache, args.SelectionSize)
	nsga := algorithms.NewNSGAII(nsgaConfig(args), factory,
		algorithms.WithRecorder(o.recorder),
		algorithms.WithClock(o.clock))

	run, err := nsga.Run(klog.NewContext(ctx, logger), rand.New(rand.NewSource(seed)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			metrics.RunsTotal.WithLabelValues("canceled").Inc()
		} else {
			metrics.RunsTotal.WithLabelValues("error").Inc()
		}
		logger.Error(err, "Service selection failed")
		return nil, err
	}

	metrics.RunsTotal.WithLabelValues("success").Inc()
	metrics.RunDuration.Observe(run.Duration.Seconds())
	span.SetAttributes(
		attribute.Int("generations", run.Generations),
		attribute.Bool("earlyStopped", run.EarlyStopped),
		attribute.Int("results", len(run.Selections)))

	stats := cache.Stats()
	logger.Info("Service selection complete",
		"generations", run.Generations,
		"earlyStopped", run.EarlyStopped,
		"results", len(run.Selections),
		"cacheEntries", stats.Entries,
		"cacheHits", stats.Hits,
		"duration", run.Duration)
	for i, sel := range run.Selections {
		logger.V(1).Info("Selection",
			"index", i+1,
			"services", serviceIDs(sel.Services),
			"cost", fmt.Sprintf("%.4f", sel.Cost),
			"availability", fmt.Sprintf("%.4f", sel.Availability),
			"latency", fmt.Sprintf("%.2f", sel.Latency))
	}

	return &Result{RunResult: run, Seed: seed, Cache: stats}, nil
}

func nsgaConfig(args *OptimizerArgs) algorithms.NSGA2Config {
	config := algorithms.NSGA2Config{
		PopulationSize:         args.PopulationSize,
		MaxGenerations:         *args.Generations,
		EarlyStopThreshold:     *args.EarlyStopThreshold,
		EarlyStopWindow:        args.EarlyStopWindow,
		EarlyStopMinGeneration: *args.EarlyStopMinGeneration,
		MaxResults:             args.MaxResults,
		Workers:                args.Workers,
		Dominance:              algorithms.StrictDominates,
		Crowding:               algorithms.CrowdingOverwrite,
	}
	if args.Dominance == DominancePareto {
		config.Dominance = algorithms.ParetoDominates
	}
	if args.Crowding == CrowdingSum {
		config.Crowding = algorithms.CrowdingSum
	}
	return config
}

func serviceIDs(services []framework.CatalogEntry) []string {
	ids := make([]string, len(services))
	for i, s := range services {
		ids[i] = s.ID
	}
	return ids
}
