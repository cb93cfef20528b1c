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

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "moga_optimizer"

var (
	// RunsTotal counts finished optimization runs by result (success, error, canceled).
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Number of optimization runs by result.",
		}, []string{"result"})

	// GenerationsTotal counts completed generations across all runs.
	GenerationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Number of completed generations.",
		})

	// EarlyStopsTotal counts runs ended by the early-stop policy.
	EarlyStopsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "early_stops_total",
			Help:      "Number of runs that converged before the generation budget.",
		})

	// RunDuration observes the wall time of a run.
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of optimization runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		})

	// CacheLookupsTotal counts metric cache lookups by result (hit, miss).
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metric_cache_lookups_total",
			Help:      "Number of metric cache lookups by result.",
		}, []string{"result"})
)

var registerOnce sync.Once

// Register registers all collectors with the given registerer. Subsequent
// calls are no-ops.
func Register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(RunsTotal, GenerationsTotal, EarlyStopsTotal, RunDuration, CacheLookupsTotal)
	})
}
